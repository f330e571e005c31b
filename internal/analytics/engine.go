// Package analytics builds creator analytics reports: per-webinar funnels, a dense
// daily trend, tag and call-pipeline rankings, and revenue from the payment ledger.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aura-webinar/insights/internal/metrics"
	"github.com/aura-webinar/insights/internal/models"
)

// DefaultFetchCap bounds the rows read by each windowed attendance query.
const DefaultFetchCap = 5000

// DefaultLedgerPageSize is the number of payment sessions requested per report.
const DefaultLedgerPageSize = 100

// WebinarStore lists webinars owned by a presenter.
type WebinarStore interface {
	ListByPresenter(ctx context.Context, presenterID uuid.UUID) ([]models.WebinarSummary, error)
}

// AttendanceStore reads attendance records for a set of webinars.
// List methods return at most limit rows, most recent first.
type AttendanceStore interface {
	CountByStage(ctx context.Context, webinarIDs []uuid.UUID) ([]models.StageCount, error)
	ListCreatedSince(ctx context.Context, webinarIDs []uuid.UUID, since time.Time, limit int) ([]models.AttendanceRecord, error)
	ListConvertedSince(ctx context.Context, webinarIDs []uuid.UUID, since time.Time, limit int) ([]models.AttendanceRecord, error)
	ListTaggedSince(ctx context.Context, webinarIDs []uuid.UUID, since time.Time, limit int) ([]models.TaggedAttendance, error)
	DistinctAttendees(ctx context.Context, webinarIDs []uuid.UUID) ([]uuid.UUID, error)
	CountByCallStatus(ctx context.Context, attendeeIDs []uuid.UUID) ([]models.CallStatusCount, error)
}

// Ledger lists payment sessions of a connected account created at or after since.
type Ledger interface {
	ListSessions(ctx context.Context, accountID string, since time.Time, limit int) ([]models.PaymentSession, error)
}

// Config tunes an Engine. Zero values select defaults.
type Config struct {
	DefaultDays    int
	FetchCap       int
	LedgerPageSize int
	LedgerTimeout  time.Duration
}

// Engine computes creator analytics reports. It holds no per-request state.
type Engine struct {
	webinars       WebinarStore
	attendance     AttendanceStore
	ledger         Ledger
	defaultDays    int
	fetchCap       int
	ledgerPageSize int
	ledgerTimeout  time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewEngine creates an analytics engine. ledger may be nil, in which case revenue is always omitted.
func NewEngine(webinars WebinarStore, attendance AttendanceStore, ledger Ledger, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultDays < 1 || cfg.DefaultDays > MaxDays {
		cfg.DefaultDays = DefaultDays
	}
	if cfg.FetchCap <= 0 {
		cfg.FetchCap = DefaultFetchCap
	}
	if cfg.LedgerPageSize <= 0 {
		cfg.LedgerPageSize = DefaultLedgerPageSize
	}
	return &Engine{
		webinars:       webinars,
		attendance:     attendance,
		ledger:         ledger,
		defaultDays:    cfg.DefaultDays,
		fetchCap:       cfg.FetchCap,
		ledgerPageSize: cfg.LedgerPageSize,
		ledgerTimeout:  cfg.LedgerTimeout,
		now:            time.Now,
		logger:         logger,
	}
}

// GetCreatorAnalytics builds the analytics report for creator.
// Store failures fail the report; ledger failures only drop the revenue section.
func (e *Engine) GetCreatorAnalytics(ctx context.Context, creator models.Creator, opts Options) (*Report, error) {
	start := time.Now()
	opts = opts.normalize(e.defaultDays)
	now := e.now().UTC()

	owned, err := e.webinars.ListByPresenter(ctx, creator.ID)
	if err != nil {
		metrics.ReportDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("list webinars: %w", err)
	}
	scope := resolveScope(owned, opts.WebinarID)
	if scope.Empty() {
		metrics.ReportDuration.WithLabelValues("empty").Observe(time.Since(start).Seconds())
		return EmptyReport(opts.Days, opts.WebinarID, now), nil
	}
	filter := ""
	if opts.WebinarID != "" {
		filter = scope.IDs[0].String()
	}
	since := trendWindow(now, opts.Days)

	revenueCh := make(chan *RevenueSnapshot, 1)
	go func() {
		revenueCh <- e.reconcileRevenue(ctx, creator, since, filter, scope)
	}()

	parts, err := e.collect(ctx, scope, since, opts.Days)
	if err != nil {
		metrics.ReportDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	parts.days = opts.Days
	parts.webinarID = opts.WebinarID
	parts.now = now
	parts.webinars = len(scope.IDs)
	parts.revenue = <-revenueCh

	report := assembleReport(parts)
	metrics.ReportDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	e.logger.Debug("creator analytics built",
		zap.String("creator_id", creator.ID.String()),
		zap.Int("webinars", len(scope.IDs)),
		zap.Int("days", opts.Days),
		zap.Bool("revenue", report.Revenue != nil),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// collect runs the funnel, trend, tag and call-pipeline fetches concurrently.
func (e *Engine) collect(ctx context.Context, scope Scope, since time.Time, days int) (reportParts, error) {
	var (
		parts         reportParts
		stageCounts   []models.StageCount
		registrations []models.AttendanceRecord
		conversions   []models.AttendanceRecord
		tagged        []models.TaggedAttendance
		callCounts    []models.CallStatusCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stageCounts, err = e.attendance.CountByStage(gctx, scope.IDs)
		if err != nil {
			return fmt.Errorf("count attendance by stage: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		registrations, err = e.attendance.ListCreatedSince(gctx, scope.IDs, since, e.fetchCap)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}
		e.noteTruncation("registrations", len(registrations))
		return nil
	})
	g.Go(func() error {
		var err error
		conversions, err = e.attendance.ListConvertedSince(gctx, scope.IDs, since, e.fetchCap)
		if err != nil {
			return fmt.Errorf("list conversions: %w", err)
		}
		e.noteTruncation("conversions", len(conversions))
		return nil
	})
	g.Go(func() error {
		var err error
		tagged, err = e.attendance.ListTaggedSince(gctx, scope.IDs, since, e.fetchCap)
		if err != nil {
			return fmt.Errorf("list tagged attendance: %w", err)
		}
		e.noteTruncation("tags", len(tagged))
		return nil
	})
	g.Go(func() error {
		attendees, err := e.attendance.DistinctAttendees(gctx, scope.IDs)
		if err != nil {
			return fmt.Errorf("list attendees: %w", err)
		}
		if len(attendees) == 0 {
			return nil
		}
		callCounts, err = e.attendance.CountByCallStatus(gctx, attendees)
		if err != nil {
			return fmt.Errorf("count call statuses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return parts, err
	}

	parts.topFunnels, parts.totals = aggregateFunnels(scope, stageCounts)
	parts.trend = buildTrend(since, days, registrations, conversions)
	parts.tags = rankTags(tagged)
	parts.calls = callPipeline(callCounts)
	return parts, nil
}

func (e *Engine) noteTruncation(query string, n int) {
	if n < e.fetchCap {
		return
	}
	metrics.FetchTruncations.WithLabelValues(query).Inc()
	e.logger.Debug("attendance fetch hit cap", zap.String("query", query), zap.Int("cap", e.fetchCap))
}
