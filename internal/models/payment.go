package models

import "errors"

// PaymentSessionStatusComplete is the ledger status of a paid checkout session.
const PaymentSessionStatusComplete = "complete"

// ErrLedgerUnavailable is returned by ledgers that refuse calls, e.g. while a circuit breaker is open.
var ErrLedgerUnavailable = errors.New("payment ledger unavailable")

// PaymentSession is one checkout session read from the payment ledger.
type PaymentSession struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	AmountTotal int64  `json:"amount_total"` // cents
	Currency    string `json:"currency"`
	WebinarID   string `json:"webinar_id,omitempty"` // from metadata; empty when absent
}
