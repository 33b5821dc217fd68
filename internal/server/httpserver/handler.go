package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/dmitrijs2005/shopauth/internal/server/oauth"
	"github.com/dmitrijs2005/shopauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *HTTPServer) Login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	res, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeAuth(c, res)
}

func (s *HTTPServer) Register(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	res, err := s.users.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", res.User.ID)
	s.writeAuth(c, res)
}

// GetNewTokens rotates the refresh token taken from the cookie, or from the
// JSON body when no cookie was sent.
func (s *HTTPServer) GetNewTokens(c *gin.Context) {
	token := s.refreshCookie(c)
	if token == "" {
		var req refreshRequest
		if c.Request.ContentLength != 0 {
			_ = c.ShouldBindJSON(&req)
		}
		token = req.RefreshToken
	}

	if token == "" {
		s.clearRefreshCookie(c)
		abortWithMessage(c, http.StatusUnauthorized, "Refresh token not passed")
		return
	}

	res, err := s.users.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.clearRefreshCookie(c)
		}
		s.writeError(c, err)
		return
	}

	s.writeAuth(c, res)
}

func (s *HTTPServer) Logout(c *gin.Context) {
	s.clearRefreshCookie(c)
	c.JSON(http.StatusOK, true)
}

func (s *HTTPServer) Profile(c *gin.Context) {
	userID, ok := UserIDFromContext(c.Request.Context())
	if !ok {
		abortWithMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.users.Profile(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GoogleAuth starts the OAuth handshake.
func (s *HTTPServer) GoogleAuth(c *gin.Context) {
	if s.provider == nil {
		abortWithMessage(c, http.StatusNotFound, "OAuth is not configured")
		return
	}

	state, err := common.MakeRandHexString(16)
	if err != nil {
		s.writeError(c, err)
		return
	}
	verifier := oauth.NewVerifier()

	setOAuthCookie(c, oauthStateCookie, state, oauthCookieMaxAge)
	setOAuthCookie(c, oauthVerifierCookie, verifier, oauthCookieMaxAge)

	c.Redirect(http.StatusFound, s.provider.AuthCodeURL(state, verifier))
}

// GoogleCallback completes the handshake, signs the user in and sends them
// back to the client with the access token in the query string.
func (s *HTTPServer) GoogleCallback(c *gin.Context) {
	if s.provider == nil {
		abortWithMessage(c, http.StatusNotFound, "OAuth is not configured")
		return
	}

	ctx := c.Request.Context()

	wantState, _ := c.Cookie(oauthStateCookie)
	verifier, _ := c.Cookie(oauthVerifierCookie)
	setOAuthCookie(c, oauthStateCookie, "", -1)
	setOAuthCookie(c, oauthVerifierCookie, "", -1)

	state := c.Query("state")
	if wantState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(wantState)) != 1 {
		abortWithMessage(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := c.Query("code")
	if code == "" {
		abortWithMessage(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	identity, err := s.provider.Exchange(ctx, code, verifier)
	if err != nil {
		s.logger.Warn(ctx, "oauth exchange failed", "provider", s.provider.Name(), "error", err)
		if errors.Is(err, oauth.ErrUnverifiedEmail) {
			abortWithMessage(c, http.StatusBadRequest, "Email is not verified")
			return
		}
		abortWithMessage(c, http.StatusBadGateway, "OAuth provider error")
		return
	}

	res, err := s.users.OAuthLogin(ctx, *identity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	target, err := url.Parse(s.config.OAuthSuccessURL)
	if err != nil {
		s.writeError(c, err)
		return
	}
	q := target.Query()
	q.Set("accessToken", res.Tokens.AccessToken)
	target.RawQuery = q.Encode()

	s.setRefreshCookie(c, res.Tokens.RefreshToken)
	c.Redirect(http.StatusFound, target.String())
}

func (s *HTTPServer) writeAuth(c *gin.Context, res *services.AuthResult) {
	s.setRefreshCookie(c, res.Tokens.RefreshToken)
	c.JSON(http.StatusOK, authResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}
