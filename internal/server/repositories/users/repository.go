// Package users is the credential store: persistence of user rows keyed by
// id and by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/shopauth/internal/server/models"
)

// Repository is the credential store contract. Lookups return
// common.ErrorNotFound when no row matches; Create returns
// common.ErrorConflict when the email is already taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
