// Package services contains application services for the shopauth CLI.
// AuthService keeps the signed-in session: the access token in memory and
// the refresh token in the local database so a later run can resume.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shopauth/internal/client/client"
	"github.com/dmitrijs2005/shopauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/dmitrijs2005/shopauth/internal/dbx"
)

const (
	keyEmail        = "email"
	keyRefreshToken = "refresh_token"
)

// AuthService defines the session operations used by the CLI.
// All methods honor context cancellation.
type AuthService interface {
	Register(ctx context.Context, email, name string, password []byte) (*client.User, error)
	Login(ctx context.Context, email string, password []byte) (*client.User, error)
	// Resume signs in with the refresh token saved by an earlier run.
	Resume(ctx context.Context) (*client.User, error)
	Refresh(ctx context.Context) error
	// Profile fetches the current user, refreshing the access token once
	// when the server rejects it.
	Profile(ctx context.Context) (*client.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Email() string
	IsLoggedIn() bool
	Close() error
}

type authService struct {
	client client.Client
	db     *sql.DB

	mu           sync.Mutex
	email        string
	accessToken  string
	refreshToken string
}

func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db}
}

func (a *authService) Register(ctx context.Context, email, name string, password []byte) (*client.User, error) {
	res, err := a.client.Register(ctx, email, name, string(password))
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	if err := a.start(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*client.User, error) {
	res, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.start(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (a *authService) Resume(ctx context.Context) (*client.User, error) {
	token, err := metadata.NewSQLiteRepository(a.db).Get(ctx, keyRefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, client.ErrNoSession
		}
		return nil, err
	}

	res, err := a.client.Refresh(ctx, string(token))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, common.ErrorNotFound) {
			_ = a.clearSaved(ctx)
		}
		return nil, fmt.Errorf("resume error: %w", err)
	}
	if err := a.start(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (a *authService) Refresh(ctx context.Context) error {
	a.mu.Lock()
	token := a.refreshToken
	a.mu.Unlock()

	if token == "" {
		return client.ErrUnauthorized
	}

	res, err := a.client.Refresh(ctx, token)
	if err != nil {
		return fmt.Errorf("refresh error: %w", err)
	}
	return a.start(ctx, res)
}

func (a *authService) Profile(ctx context.Context) (*client.User, error) {
	a.mu.Lock()
	access := a.accessToken
	a.mu.Unlock()

	if access == "" {
		return nil, client.ErrUnauthorized
	}

	u, err := a.client.Profile(ctx, access)
	if !errors.Is(err, client.ErrUnauthorized) {
		return u, err
	}

	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	access = a.accessToken
	a.mu.Unlock()

	return a.client.Profile(ctx, access)
}

// Logout forgets the session locally even when the server is unreachable.
func (a *authService) Logout(ctx context.Context) error {
	serverErr := a.client.Logout(ctx)

	a.mu.Lock()
	a.email, a.accessToken, a.refreshToken = "", "", ""
	a.mu.Unlock()

	if err := a.clearSaved(ctx); err != nil {
		return err
	}
	if serverErr != nil && !errors.Is(serverErr, client.ErrUnavailable) {
		return serverErr
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Email() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email
}

func (a *authService) IsLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken != ""
}

func (a *authService) Close() error {
	return a.db.Close()
}

// start keeps the tokens of res and saves the refresh token locally.
func (a *authService) start(ctx context.Context, res *client.AuthResponse) error {
	a.mu.Lock()
	a.email = res.User.Email
	a.accessToken = res.AccessToken
	a.refreshToken = res.RefreshToken
	a.mu.Unlock()

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyEmail, []byte(res.User.Email)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(res.RefreshToken))
	})
}

func (a *authService) clearSaved(ctx context.Context) error {
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}
