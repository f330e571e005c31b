package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/aura-webinar/insights/internal/models"
)

// ErrNotConfigured is returned when no Stripe secret key is set.
var ErrNotConfigured = errors.New("stripe secret key not configured")

// Stripe lists checkout sessions of connected accounts.
type Stripe struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripe creates a Stripe-backed session source.
func NewStripe(secretKey string, logger *zap.Logger) (*Stripe, error) {
	if secretKey == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stripe{api: client.New(secretKey, nil), logger: logger}, nil
}

// ListSessions returns a single page of up to limit checkout sessions created at or after since
// on the connected account.
func (s *Stripe) ListSessions(ctx context.Context, accountID string, since time.Time, limit int) ([]models.PaymentSession, error) {
	params := &stripe.CheckoutSessionListParams{
		CreatedRange: &stripe.RangeQueryParams{GreaterThanOrEqual: since.Unix()},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))
	params.Single = true
	params.SetStripeAccount(accountID)

	var out []models.PaymentSession
	iter := s.api.CheckoutSessions.List(params)
	for iter.Next() {
		cs := iter.CheckoutSession()
		if cs == nil {
			return nil, fmt.Errorf("stripe: malformed checkout session in list response")
		}
		out = append(out, toPaymentSession(cs))
		if len(out) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list checkout sessions: %w", err)
	}
	s.logger.Debug("stripe sessions listed", zap.String("account", accountID), zap.Int("count", len(out)))
	return out, nil
}

func toPaymentSession(cs *stripe.CheckoutSession) models.PaymentSession {
	return models.PaymentSession{
		ID:          cs.ID,
		Status:      string(cs.Status),
		AmountTotal: cs.AmountTotal,
		Currency:    string(cs.Currency),
		WebinarID:   cs.Metadata[MetadataWebinarID],
	}
}
