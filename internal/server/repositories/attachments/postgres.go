package attachments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shopauth/internal/dbx"
	"github.com/dmitrijs2005/shopauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Load runs one query per collection. Callers wanting a consistent view run
// it on the same transaction as the user lookup.
func (r *PostgresRepository) Load(ctx context.Context, userID string) (*models.Attachments, error) {
	a := &models.Attachments{}

	stores, err := collect(ctx, r.db,
		`SELECT id, title, description FROM stores
		 WHERE user_id = $1
		 ORDER BY created_at
		 `, userID,
		func(rows *sql.Rows) (models.Store, error) {
			var s models.Store
			err := rows.Scan(&s.ID, &s.Title, &s.Description)
			return s, err
		})
	if err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	a.Stores = stores

	favorites, err := collect(ctx, r.db,
		`SELECT product_id, created_at FROM favorites
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `, userID,
		func(rows *sql.Rows) (models.Favorite, error) {
			var f models.Favorite
			err := rows.Scan(&f.ProductID, &f.CreatedAt)
			return f, err
		})
	if err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	a.Favorites = favorites

	orders, err := collect(ctx, r.db,
		`SELECT id, status, total, created_at FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `, userID,
		func(rows *sql.Rows) (models.Order, error) {
			var o models.Order
			err := rows.Scan(&o.ID, &o.Status, &o.Total, &o.CreatedAt)
			return o, err
		})
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	a.Orders = orders

	return a, nil
}

func collect[T any](ctx context.Context, db dbx.DBTX, query string, arg any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
