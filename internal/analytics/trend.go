package analytics

import (
	"sort"
	"time"

	"github.com/aura-webinar/insights/internal/models"
)

const dayLayout = "2006-01-02"

// trendWindow returns the fetch lower bound for a window of days UTC calendar
// days ending on the day of now. The bound is midnight of the first day.
func trendWindow(now time.Time, days int) time.Time {
	today := now.UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -(days - 1))
}

// buildTrend buckets registration and conversion events into a dense daily series
// starting at since. Registrations are keyed by CreatedAt; conversions by the
// UpdatedAt of records currently in CONVERTED. Events outside the pre-filled
// range get their own bucket rather than being dropped.
func buildTrend(since time.Time, days int, registrations, conversions []models.AttendanceRecord) []DailyPoint {
	buckets := make(map[string]*DailyPoint, days)
	start := since.UTC()
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format(dayLayout)
		buckets[d] = &DailyPoint{Date: d}
	}
	bucket := func(t time.Time) *DailyPoint {
		d := t.UTC().Format(dayLayout)
		p, ok := buckets[d]
		if !ok {
			p = &DailyPoint{Date: d}
			buckets[d] = p
		}
		return p
	}

	for _, r := range registrations {
		bucket(r.CreatedAt).Registrations++
	}
	for _, r := range conversions {
		if r.Stage != models.StageConverted {
			continue
		}
		bucket(r.UpdatedAt).Conversions++
	}

	out := make([]DailyPoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
