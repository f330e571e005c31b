package webinars

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-webinar/insights/internal/models"
)

// Repository reads webinar metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webinar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByPresenter returns the analytics projection of every webinar owned by presenterID.
func (r *Repository) ListByPresenter(ctx context.Context, presenterID uuid.UUID) ([]models.WebinarSummary, error) {
	const q = `SELECT id, title, cta_type, COALESCE(tags, '{}'), start_time, presenter_id
		FROM webinars WHERE presenter_id = $1 ORDER BY start_time DESC`
	rows, err := r.pool.Query(ctx, q, presenterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.WebinarSummary
	for rows.Next() {
		var w models.WebinarSummary
		var cta string
		if err := rows.Scan(&w.ID, &w.Title, &cta, &w.Tags, &w.StartTime, &w.PresenterID); err != nil {
			return nil, err
		}
		w.CTAType = models.CTAType(cta)
		list = append(list, w)
	}
	return list, rows.Err()
}
