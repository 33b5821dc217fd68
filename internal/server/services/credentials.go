// Package services contains server-side business logic: the credential
// validator and UserService, which turns register/login/refresh/OAuth
// requests into users and token pairs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/dmitrijs2005/shopauth/internal/cryptox"
	"github.com/dmitrijs2005/shopauth/internal/server/models"
	"github.com/dmitrijs2005/shopauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopauth/internal/server/repositories/users"
)

// CredentialValidator checks an email/password pair against the store.
type CredentialValidator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
}

func NewCredentialValidator(db *sql.DB, m repomanager.RepositoryManager, h cryptox.PasswordHasher) *CredentialValidator {
	return &CredentialValidator{db: db, repomanager: m, hasher: h}
}

// Validate returns the user when the password matches the stored hash.
// An unknown email yields common.ErrorNotFound; a wrong password, or a user
// that has no password (OAuth-only), yields common.ErrorUnauthorized.
func (v *CredentialValidator) Validate(ctx context.Context, email, password string) (*models.User, error) {
	return v.check(ctx, v.repomanager.Users(v.db), email, password)
}

// check runs the validation against repo, which may be bound to a transaction.
func (v *CredentialValidator) check(ctx context.Context, repo users.Repository, email, password string) (*models.User, error) {
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !user.HasPassword() {
		return nil, common.ErrorUnauthorized
	}

	ok, err := v.hasher.Verify(password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}
