package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"

	"github.com/aura-webinar/insights/internal/models"
)

type fakeSource struct {
	sessions []models.PaymentSession
	err      error
	calls    int
}

func (f *fakeSource) ListSessions(ctx context.Context, accountID string, since time.Time, limit int) ([]models.PaymentSession, error) {
	f.calls++
	return f.sessions, f.err
}

func TestBreakerPassesThrough(t *testing.T) {
	src := &fakeSource{sessions: []models.PaymentSession{{ID: "cs_1"}}}
	b := NewBreaker(src, BreakerConfig{}, nil)

	got, err := b.ListSessions(context.Background(), "acct_1", time.Now(), 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(got) != 1 || got[0].ID != "cs_1" {
		t.Errorf("sessions = %+v, want cs_1", got)
	}
	if b.State() != "closed" {
		t.Errorf("State = %q, want closed", b.State())
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	srcErr := errors.New("stripe: 503")
	src := &fakeSource{err: srcErr}
	b := NewBreaker(src, BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, nil)

	for i := 0; i < 2; i++ {
		if _, err := b.ListSessions(context.Background(), "acct_1", time.Now(), 10); !errors.Is(err, srcErr) {
			t.Fatalf("call %d: err = %v, want %v", i, err, srcErr)
		}
	}
	_, err := b.ListSessions(context.Background(), "acct_1", time.Now(), 10)
	if !errors.Is(err, models.ErrLedgerUnavailable) {
		t.Errorf("open circuit err = %v, want ErrLedgerUnavailable", err)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
	if b.State() != "open" {
		t.Errorf("State = %q, want open", b.State())
	}
}

func TestNewStripeRequiresKey(t *testing.T) {
	if _, err := NewStripe("", nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewStripe(\"\") err = %v, want ErrNotConfigured", err)
	}
	if _, err := NewStripe("sk_test_123", nil); err != nil {
		t.Errorf("NewStripe: %v", err)
	}
}

func TestToPaymentSession(t *testing.T) {
	cs := &stripe.CheckoutSession{
		ID:          "cs_test_1",
		Status:      stripe.CheckoutSessionStatusComplete,
		AmountTotal: 4900,
		Currency:    stripe.CurrencyUSD,
		Metadata:    map[string]string{MetadataWebinarID: "w-1"},
	}
	got := toPaymentSession(cs)
	want := models.PaymentSession{
		ID:          "cs_test_1",
		Status:      models.PaymentSessionStatusComplete,
		AmountTotal: 4900,
		Currency:    "usd",
		WebinarID:   "w-1",
	}
	if got != want {
		t.Errorf("toPaymentSession = %+v, want %+v", got, want)
	}

	if got := toPaymentSession(&stripe.CheckoutSession{ID: "cs_2"}); got.WebinarID != "" {
		t.Errorf("WebinarID without metadata = %q, want empty", got.WebinarID)
	}
}
