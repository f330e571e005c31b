// Package ledger reads payment sessions from the external payment ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/models"
)

// MetadataWebinarID is the session metadata key naming the purchased webinar.
const MetadataWebinarID = "webinarId"

// Source fetches one page of raw sessions for a connected account.
type Source interface {
	ListSessions(ctx context.Context, accountID string, since time.Time, limit int) ([]models.PaymentSession, error)
}

// Breaker guards a Source with a circuit breaker so a failing ledger is not
// called on every report while it is down.
type Breaker struct {
	source  Source
	breaker *gobreaker.CircuitBreaker[[]models.PaymentSession]
	logger  *zap.Logger
}

// NewBreaker wraps source with a circuit breaker.
func NewBreaker(source Source, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "payment-ledger"
	}
	return &Breaker{
		source:  source,
		breaker: newBreaker[[]models.PaymentSession](cfg, logger),
		logger:  logger,
	}
}

// ListSessions calls the wrapped source unless the circuit is open.
// An open circuit is reported as models.ErrLedgerUnavailable.
func (b *Breaker) ListSessions(ctx context.Context, accountID string, since time.Time, limit int) ([]models.PaymentSession, error) {
	sessions, err := b.breaker.Execute(func() ([]models.PaymentSession, error) {
		return b.source.ListSessions(ctx, accountID, since, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", models.ErrLedgerUnavailable, err)
	}
	return sessions, err
}

// State returns the breaker state for diagnostics.
func (b *Breaker) State() string {
	return b.breaker.State().String()
}
