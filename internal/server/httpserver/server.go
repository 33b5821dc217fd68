// Package httpserver exposes the auth service over HTTP using gin.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shopauth/internal/logging"
	"github.com/dmitrijs2005/shopauth/internal/server/config"
	"github.com/dmitrijs2005/shopauth/internal/server/models"
	"github.com/dmitrijs2005/shopauth/internal/server/oauth"
	"github.com/dmitrijs2005/shopauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is the part of services.UserService used by the handlers.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	OAuthLogin(ctx context.Context, id oauth.Identity) (*services.AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	VerifyAccess(token string) (string, error)
}

type HTTPServer struct {
	address  string
	config   *config.Config
	users    UserService
	provider oauth.Provider
	logger   logging.Logger
	now      func() time.Time
}

// NewHTTPServer builds the server. provider may be nil, in which case the
// OAuth routes answer 404.
func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService, provider oauth.Provider) *HTTPServer {
	return &HTTPServer{
		address:  cfg.EndpointAddrHTTP,
		config:   cfg,
		users:    us,
		provider: provider,
		logger:   l.With("module", "http_server"),
		now:      time.Now,
	}
}

// Router returns the gin engine with every route registered.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(s.requestLogger(), gin.CustomRecovery(s.onPanic), s.cors())

	r.GET("/ping", s.Ping)

	a := r.Group("/auth")
	a.POST("/login", s.Login)
	a.POST("/register", s.Register)
	a.POST("/login/access-token", s.GetNewTokens)
	a.POST("/logout", s.Logout)
	a.GET("/google", s.GoogleAuth)
	a.GET("/google/callback", s.GoogleCallback)

	u := r.Group("/users", s.requireAccessToken())
	u.GET("/profile", s.Profile)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
