// Package attachments reads the collections owned by other shop services
// (stores, favorites, orders) that are returned together with a user.
package attachments

import (
	"context"

	"github.com/dmitrijs2005/shopauth/internal/server/models"
)

type Repository interface {
	Load(ctx context.Context, userID string) (*models.Attachments, error)
}
