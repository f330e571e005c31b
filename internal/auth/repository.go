package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-webinar/insights/internal/analytics"
	"github.com/aura-webinar/insights/internal/models"
)

// Repository reads creator accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCreator returns the creator with the given id, including the connected payment account.
// It returns analytics.ErrCreatorNotFound when no such user exists.
func (r *Repository) GetCreator(ctx context.Context, id uuid.UUID) (*models.Creator, error) {
	const q = `SELECT id, email, full_name, COALESCE(stripe_connect_id, ''), created_at
		FROM users WHERE id = $1`
	var c models.Creator
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Email, &c.FullName, &c.ConnectedAccountID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, analytics.ErrCreatorNotFound
		}
		return nil, err
	}
	return &c, nil
}
