package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/metrics"
	"github.com/aura-webinar/insights/internal/models"
)

const (
	// TopRevenueLimit is the number of per-webinar revenue rows kept in a report.
	TopRevenueLimit = 10
	// UnknownWebinar keys sessions whose metadata names no webinar.
	UnknownWebinar = "unknown"
)

// reconcileRevenue fetches payment sessions for the creator's connected account
// and reduces them to a snapshot. It returns nil when the creator has no connected
// account or when the ledger fails for any reason.
func (e *Engine) reconcileRevenue(ctx context.Context, creator models.Creator, since time.Time, filter string, scope Scope) (snap *RevenueSnapshot) {
	if !creator.HasConnectedAccount() || e.ledger == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.LedgerFailures.WithLabelValues("panic").Inc()
			e.logger.Error("payment ledger panicked, omitting revenue",
				zap.String("creator_id", creator.ID.String()),
				zap.Any("panic", r))
			snap = nil
		}
	}()
	if e.ledgerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ledgerTimeout)
		defer cancel()
	}
	sessions, err := e.ledger.ListSessions(ctx, creator.ConnectedAccountID, since, e.ledgerPageSize)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		} else if errors.Is(err, models.ErrLedgerUnavailable) {
			reason = "circuit_open"
		}
		metrics.LedgerFailures.WithLabelValues(reason).Inc()
		e.logger.Warn("payment ledger unavailable, omitting revenue",
			zap.String("creator_id", creator.ID.String()),
			zap.String("reason", reason),
			zap.Error(err))
		return nil
	}
	return summarizeRevenue(sessions, filter, scope)
}

// summarizeRevenue totals completed sessions, optionally restricted to one webinar.
// Amounts in different currencies are summed nominally; the first currency seen is reported.
func summarizeRevenue(sessions []models.PaymentSession, filter string, scope Scope) *RevenueSnapshot {
	snap := &RevenueSnapshot{}
	byWebinar := make(map[string]int64)
	for _, s := range sessions {
		if s.Status != models.PaymentSessionStatusComplete {
			continue
		}
		webinarID := canonicalWebinarID(s.WebinarID)
		if filter != "" && webinarID != filter {
			continue
		}
		snap.TotalCents += s.AmountTotal
		snap.SessionCount++
		byWebinar[webinarID] += s.AmountTotal
		if snap.Currency == "" && s.Currency != "" {
			snap.Currency = s.Currency
		}
	}
	if snap.SessionCount > 0 {
		snap.AverageOrderValueCents = decimal.NewFromInt(snap.TotalCents).
			Div(decimal.NewFromInt(int64(snap.SessionCount))).
			Round(0).
			IntPart()
	}

	snap.ByWebinar = make([]WebinarRevenue, 0, len(byWebinar))
	for id, amount := range byWebinar {
		snap.ByWebinar = append(snap.ByWebinar, WebinarRevenue{
			WebinarID:   id,
			Title:       scope.Title(id),
			AmountCents: amount,
		})
	}
	sort.Slice(snap.ByWebinar, func(i, j int) bool {
		a, b := snap.ByWebinar[i], snap.ByWebinar[j]
		if a.AmountCents != b.AmountCents {
			return a.AmountCents > b.AmountCents
		}
		return a.WebinarID < b.WebinarID
	})
	if len(snap.ByWebinar) > TopRevenueLimit {
		snap.ByWebinar = snap.ByWebinar[:TopRevenueLimit]
	}
	return snap
}

// canonicalWebinarID normalizes session metadata to the lower-case uuid form used
// for scope ids. Values that are not uuids are kept as is; empty ones become UnknownWebinar.
func canonicalWebinarID(raw string) string {
	if raw == "" {
		return UnknownWebinar
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()
	}
	return raw
}
