package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/dmitrijs2005/shopauth/internal/cryptox"
	"github.com/dmitrijs2005/shopauth/internal/dbx"
	"github.com/dmitrijs2005/shopauth/internal/logging"
	"github.com/dmitrijs2005/shopauth/internal/server/auth"
	"github.com/dmitrijs2005/shopauth/internal/server/models"
	"github.com/dmitrijs2005/shopauth/internal/server/oauth"
	"github.com/dmitrijs2005/shopauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopauth/internal/server/repositories/users"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// AuthResult is what a successful register/login/refresh returns.
type AuthResult struct {
	User   *models.User
	Tokens *auth.TokenPair
}

// UserService orchestrates sessions:
//   - Register: create a local user and mint tokens
//   - Login: validate credentials and mint tokens
//   - Refresh: rotate a refresh token into a new pair
//   - ReconcileOAuthIdentity / OAuthLogin: map external identities to users
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	issuer         *auth.Issuer
	hasher         cryptox.PasswordHasher
	validator      *CredentialValidator
	defaultPicture string
	logger         logging.Logger
	newID          func() string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, hasher cryptox.PasswordHasher, defaultPicture string, l logging.Logger) *UserService {
	if defaultPicture == "" {
		defaultPicture = common.DefaultUserPicture
	}
	return &UserService{
		db:             db,
		repomanager:    m,
		issuer:         issuer,
		hasher:         hasher,
		validator:      NewCredentialValidator(db, m, hasher),
		defaultPicture: defaultPicture,
		logger:         l,
		newID:          uuid.NewString,
	}
}

// Register creates a user with a hashed password. An already registered
// email yields common.ErrorConflict, including when a concurrent request
// wins the race on the unique index.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorConflict
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		ID:           s.newID(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: &hash,
		Picture:      s.defaultPicture,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	(&models.Attachments{}).Attach(user)

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login validates the credentials and reads the user with their collections
// in one read-only transaction.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.loadUser(ctx, func(ctx context.Context, repo users.Repository) (*models.User, error) {
		return s.validator.check(ctx, repo, email, password)
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Refresh verifies a refresh token and returns the current user with a new
// token pair. Invalid or expired tokens yield common.ErrorUnauthorized
// wrapping the token error; a deleted user yields common.ErrorNotFound.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	user, err := s.loadUser(ctx, func(ctx context.Context, repo users.Repository) (*models.User, error) {
		return repo.GetByID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// ReconcileOAuthIdentity returns the user owning the identity's email, with
// their collections, creating a password-less one on first sign in. It
// issues no tokens.
func (s *UserService) ReconcileOAuthIdentity(ctx context.Context, id oauth.Identity) (*models.User, error) {
	email := normalizeEmail(id.Email)
	if email == "" {
		return nil, common.ErrorValidation
	}

	byEmail := func(ctx context.Context, repo users.Repository) (*models.User, error) {
		return repo.GetByEmail(ctx, email)
	}

	user, err := s.loadUser(ctx, byEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	picture := id.Picture
	if picture == "" {
		picture = s.defaultPicture
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, &models.User{
		ID:      s.newID(),
		Email:   email,
		Name:    id.Name,
		Picture: picture,
	})
	switch {
	case errors.Is(err, common.ErrorConflict):
		// lost the race against a concurrent first sign in
		user, err = s.loadUser(ctx, byEmail)
		if err != nil {
			return nil, fmt.Errorf("error provisioning user: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("error provisioning user: %w", err)
	}
	(&models.Attachments{}).Attach(user)

	s.logger.Info(ctx, "user provisioned from oauth identity", "user_id", user.ID)
	return user, nil
}

func (s *UserService) OAuthLogin(ctx context.Context, id oauth.Identity) (*AuthResult, error) {
	user, err := s.ReconcileOAuthIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Profile returns the user with their collections.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.loadUser(ctx, func(ctx context.Context, repo users.Repository) (*models.User, error) {
		return repo.GetByID(ctx, userID)
	})
}

// VerifyAccess resolves an access token to a user id.
func (s *UserService) VerifyAccess(token string) (string, error) {
	return s.issuer.VerifyAccess(token)
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (s *UserService) RefreshTTL() time.Duration {
	return s.issuer.RefreshTTL()
}

// loadUser reads a user and their collections from one read-only snapshot.
func (s *UserService) loadUser(ctx context.Context, find func(context.Context, users.Repository) (*models.User, error)) (*models.User, error) {
	var user *models.User
	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := find(ctx, s.repomanager.Users(tx))
		if err != nil {
			return err
		}
		att, err := s.repomanager.Attachments(tx).Load(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("error loading user collections: %w", err)
		}
		att.Attach(u)
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	pair, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing tokens: %w", err)
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
