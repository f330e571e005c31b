package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/aura-webinar/insights/internal/models"
)

// Report is the creator analytics snapshot returned by GET /analytics.
type Report struct {
	Days        int                 `json:"days"`
	WebinarID   string              `json:"webinar_id,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
	Totals      Totals              `json:"totals"`
	Rates       Rates               `json:"rates"`
	Trend       []DailyPoint        `json:"trend"`
	TopFunnels  []WebinarFunnel     `json:"top_funnels"`
	Tags        []TagPerformance    `json:"tags"`
	Calls       []CallPipelineEntry `json:"calls"`
	Revenue     *RevenueSnapshot    `json:"revenue"`
}

// Totals are lifecycle counts summed across all in-scope webinars.
type Totals struct {
	Webinars      int `json:"webinars"`
	Registrations int `json:"registrations"`
	Attended      int `json:"attended"`
	Converted     int `json:"converted"`
}

// Rates are funnel ratios derived from Totals. Each is 0 when its denominator is 0.
type Rates struct {
	RegToAttend       float64 `json:"reg_to_attend"`
	AttendToConvert   float64 `json:"attend_to_convert"`
	OverallConversion float64 `json:"overall_conversion"`
}

// DailyPoint is one calendar day of the trend series.
type DailyPoint struct {
	Date          string `json:"date"` // YYYY-MM-DD, UTC
	Registrations int    `json:"registrations"`
	Conversions   int    `json:"conversions"`
}

// FunnelStage is one labelled step of a webinar funnel.
type FunnelStage struct {
	Label models.LifecycleStage `json:"label"`
	Count int                   `json:"count"`
}

// WebinarFunnel is the four-step funnel of one webinar.
type WebinarFunnel struct {
	WebinarID      uuid.UUID      `json:"webinar_id"`
	Title          string         `json:"title"`
	CTAType        models.CTAType `json:"cta_type"`
	Stages         []FunnelStage  `json:"stages"`
	ConversionRate float64        `json:"conversion_rate"`
}

// Converted returns the final stage count.
func (f WebinarFunnel) Converted() int {
	if len(f.Stages) == 0 {
		return 0
	}
	return f.Stages[len(f.Stages)-1].Count
}

// TagPerformance aggregates registrations and conversions per webinar tag.
type TagPerformance struct {
	Tag            string  `json:"tag"`
	Registrations  int     `json:"registrations"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// CallPipelineEntry counts distinct attendees in one call status.
type CallPipelineEntry struct {
	Status models.CallStatus `json:"status"`
	Count  int               `json:"count"`
}

// RevenueSnapshot summarizes completed payment sessions in the window.
type RevenueSnapshot struct {
	TotalCents             int64            `json:"total_cents"`
	Currency               string           `json:"currency"`
	SessionCount           int              `json:"session_count"`
	AverageOrderValueCents int64            `json:"average_order_value_cents"`
	ByWebinar              []WebinarRevenue `json:"by_webinar"`
}

// WebinarRevenue is revenue attributed to one webinar id (or "unknown").
type WebinarRevenue struct {
	WebinarID   string `json:"webinar_id"`
	Title       string `json:"title"`
	AmountCents int64  `json:"amount_cents"`
}

// reportParts are the stage outputs merged by assembleReport.
type reportParts struct {
	days       int
	webinarID  string
	now        time.Time
	webinars   int
	totals     Totals
	trend      []DailyPoint
	topFunnels []WebinarFunnel
	tags       []TagPerformance
	calls      []CallPipelineEntry
	revenue    *RevenueSnapshot
}

// assembleReport merges stage outputs. Lists are never nil so they encode as [].
func assembleReport(p reportParts) *Report {
	totals := p.totals
	totals.Webinars = p.webinars
	r := &Report{
		Days:        p.days,
		WebinarID:   p.webinarID,
		GeneratedAt: p.now,
		Totals:      totals,
		Rates:       computeRates(totals),
		Trend:       p.trend,
		TopFunnels:  p.topFunnels,
		Tags:        p.tags,
		Calls:       p.calls,
		Revenue:     p.revenue,
	}
	if r.Trend == nil {
		r.Trend = []DailyPoint{}
	}
	if r.TopFunnels == nil {
		r.TopFunnels = []WebinarFunnel{}
	}
	if r.Tags == nil {
		r.Tags = []TagPerformance{}
	}
	if r.Calls == nil {
		r.Calls = []CallPipelineEntry{}
	}
	return r
}

// EmptyReport is the report for a creator with no webinars in scope.
func EmptyReport(days int, webinarID string, now time.Time) *Report {
	return assembleReport(reportParts{days: days, webinarID: webinarID, now: now})
}
