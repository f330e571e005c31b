package models

import (
	"time"

	"github.com/google/uuid"
)

// CTAType is the call-to-action mode of a webinar.
type CTAType string

const (
	CTABookACall CTAType = "BOOK_A_CALL"
	CTABuyNow    CTAType = "BUY_NOW"
)

// WebinarSummary is the read-only projection of a webinar used by analytics.
type WebinarSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	CTAType     CTAType   `json:"cta_type"`
	Tags        []string  `json:"tags"`
	StartTime   time.Time `json:"start_time"`
	PresenterID uuid.UUID `json:"presenter_id"`
}
