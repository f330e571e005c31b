package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/models"
)

// Repository reads attendance rows and attendee call statuses.
// Rows whose stage is not a known lifecycle stage are skipped and logged.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

const recordColumns = `webinar_id, attendee_id, attended_type, created_at, updated_at, joined_at`

// CountByStage returns attendance counts grouped by webinar and lifecycle stage.
func (r *Repository) CountByStage(ctx context.Context, webinarIDs []uuid.UUID) ([]models.StageCount, error) {
	const q = `SELECT webinar_id, attended_type, COUNT(*) FROM attendances
		WHERE webinar_id = ANY($1) GROUP BY webinar_id, attended_type`
	rows, err := r.pool.Query(ctx, q, webinarIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.StageCount
	for rows.Next() {
		var sc models.StageCount
		var stage string
		if err := rows.Scan(&sc.WebinarID, &stage, &sc.Count); err != nil {
			return nil, err
		}
		var ok bool
		if sc.Stage, ok = r.stage(stage); !ok {
			continue
		}
		list = append(list, sc)
	}
	return list, rows.Err()
}

// ListCreatedSince returns rows registered at or after since, newest first, at most limit rows.
func (r *Repository) ListCreatedSince(ctx context.Context, webinarIDs []uuid.UUID, since time.Time, limit int) ([]models.AttendanceRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM attendances
		WHERE webinar_id = ANY($1) AND created_at >= $2
		ORDER BY created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, q, webinarIDs, since, limit)
	if err != nil {
		return nil, err
	}
	return r.scanRecords(rows)
}

// ListConvertedSince returns CONVERTED rows last updated at or after since, newest first, at most limit rows.
func (r *Repository) ListConvertedSince(ctx context.Context, webinarIDs []uuid.UUID, since time.Time, limit int) ([]models.AttendanceRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM attendances
		WHERE webinar_id = ANY($1) AND attended_type = $2 AND updated_at >= $3
		ORDER BY updated_at DESC LIMIT $4`
	rows, err := r.pool.Query(ctx, q, webinarIDs, string(models.StageConverted), since, limit)
	if err != nil {
		return nil, err
	}
	return r.scanRecords(rows)
}

// ListTaggedSince returns the stage and webinar tags of rows registered at or after since,
// newest first, at most limit rows.
func (r *Repository) ListTaggedSince(ctx context.Context, webinarIDs []uuid.UUID, since time.Time, limit int) ([]models.TaggedAttendance, error) {
	const q = `SELECT a.webinar_id, a.attended_type, COALESCE(w.tags, '{}')
		FROM attendances a INNER JOIN webinars w ON w.id = a.webinar_id
		WHERE a.webinar_id = ANY($1) AND a.created_at >= $2
		ORDER BY a.created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, q, webinarIDs, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TaggedAttendance
	for rows.Next() {
		var t models.TaggedAttendance
		var stage string
		if err := rows.Scan(&t.WebinarID, &stage, &t.Tags); err != nil {
			return nil, err
		}
		var ok bool
		if t.Stage, ok = r.stage(stage); !ok {
			continue
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// DistinctAttendees returns every attendee id with an attendance row for the webinars.
func (r *Repository) DistinctAttendees(ctx context.Context, webinarIDs []uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT attendee_id FROM attendances WHERE webinar_id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, webinarIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByCallStatus returns attendee counts grouped by current call status.
func (r *Repository) CountByCallStatus(ctx context.Context, attendeeIDs []uuid.UUID) ([]models.CallStatusCount, error) {
	const q = `SELECT call_status, COUNT(*) FROM attendees WHERE id = ANY($1) GROUP BY call_status`
	rows, err := r.pool.Query(ctx, q, attendeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.CallStatusCount
	for rows.Next() {
		var c models.CallStatusCount
		var status string
		if err := rows.Scan(&status, &c.Count); err != nil {
			return nil, err
		}
		c.Status = models.CallStatus(status)
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *Repository) scanRecords(rows pgx.Rows) ([]models.AttendanceRecord, error) {
	defer rows.Close()
	var list []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		var stage string
		if err := rows.Scan(&rec.WebinarID, &rec.AttendeeID, &stage, &rec.CreatedAt, &rec.UpdatedAt, &rec.JoinedAt); err != nil {
			return nil, err
		}
		var ok bool
		if rec.Stage, ok = r.stage(stage); !ok {
			continue
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// stage converts a stored attended_type. Unknown values report false.
func (r *Repository) stage(raw string) (models.LifecycleStage, bool) {
	s := models.LifecycleStage(raw)
	if !s.Valid() {
		r.logger.Warn("skipping attendance row with unknown stage", zap.String("stage", raw))
		return "", false
	}
	return s, true
}
