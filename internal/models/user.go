package models

import (
	"time"

	"github.com/google/uuid"
)

// Creator is the authenticated webinar presenter requesting analytics.
type Creator struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	// ConnectedAccountID is the linked payment account; empty when payments are not connected.
	ConnectedAccountID string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

// HasConnectedAccount reports whether the creator linked a payment account.
func (c Creator) HasConnectedAccount() bool {
	return c.ConnectedAccountID != ""
}
