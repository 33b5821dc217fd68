package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthVerifierCookie = "oauth_verifier"
	oauthCookiePath     = "/auth/google"
	oauthCookieMaxAge   = 10 * 60
)

func (s *HTTPServer) setRefreshCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.config.RefreshCookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.config.CookieDomain,
		Expires:  s.now().Add(s.config.RefreshTokenValidityDuration),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (s *HTTPServer) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.config.RefreshCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (s *HTTPServer) refreshCookie(c *gin.Context) string {
	v, err := c.Cookie(s.config.RefreshCookieName)
	if err != nil {
		return ""
	}
	return v
}

// setOAuthCookie stores short-lived handshake values scoped to the OAuth
// routes. Lax so the provider's top-level redirect carries them back.
func setOAuthCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     oauthCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
