package analytics

import (
	"sort"

	"github.com/google/uuid"

	"github.com/aura-webinar/insights/internal/models"
)

// TopFunnelsLimit is the number of webinar funnels kept in a report.
const TopFunnelsLimit = 6

type stageCounts map[models.LifecycleStage]int

// aggregateFunnels builds one funnel per in-scope webinar from grouped stage counts
// and sums the global totals. Counts for webinars outside the scope are ignored.
func aggregateFunnels(scope Scope, counts []models.StageCount) ([]WebinarFunnel, Totals) {
	byWebinar := make(map[uuid.UUID]stageCounts, len(scope.IDs))
	for _, id := range scope.IDs {
		byWebinar[id] = stageCounts{}
	}
	for _, c := range counts {
		sc, ok := byWebinar[c.WebinarID]
		if !ok {
			continue
		}
		sc[c.Stage] += c.Count
	}

	var totals Totals
	funnels := make([]WebinarFunnel, 0, len(scope.IDs))
	for _, id := range scope.IDs {
		sc := byWebinar[id]
		w := scope.Webinars[id]
		registered := sc[models.StageRegistered]
		attended := sc[models.StageAttended]
		converted := sc[models.StageConverted]

		totals.Registrations += registered
		totals.Attended += attended
		totals.Converted += converted

		thirdLabel, third := thirdStage(w.CTAType, sc)
		funnels = append(funnels, WebinarFunnel{
			WebinarID: id,
			Title:     w.Title,
			CTAType:   w.CTAType,
			Stages: []FunnelStage{
				{Label: models.StageRegistered, Count: registered},
				{Label: models.StageAttended, Count: attended},
				{Label: thirdLabel, Count: third},
				{Label: models.StageConverted, Count: converted},
			},
			ConversionRate: ratio(converted, registered),
		})
	}

	sort.SliceStable(funnels, func(i, j int) bool {
		a, b := funnels[i], funnels[j]
		if a.Converted() != b.Converted() {
			return a.Converted() > b.Converted()
		}
		if a.Stages[0].Count != b.Stages[0].Count {
			return a.Stages[0].Count > b.Stages[0].Count
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.WebinarID.String() < b.WebinarID.String()
	})
	if len(funnels) > TopFunnelsLimit {
		funnels = funnels[:TopFunnelsLimit]
	}
	return funnels, totals
}

// thirdStage picks the funnel's third step for a webinar's CTA type.
//
// BOOK_A_CALL webinars count attendees that reached the breakout room. Older
// call-booking records stored that step as ADDED_TO_CART, so when no
// BREAKOUT_ROOM rows exist the ADDED_TO_CART count stands in for it. This
// fallback applies to BOOK_A_CALL only.
func thirdStage(cta models.CTAType, sc stageCounts) (models.LifecycleStage, int) {
	switch cta {
	case models.CTABookACall:
		if n := sc[models.StageBreakoutRoom]; n != 0 {
			return models.StageBreakoutRoom, n
		}
		return models.StageBreakoutRoom, sc[models.StageAddedToCart]
	default:
		return models.StageAddedToCart, sc[models.StageAddedToCart]
	}
}

// computeRates derives funnel ratios from totals.
func computeRates(t Totals) Rates {
	return Rates{
		RegToAttend:       ratio(t.Attended, t.Registrations),
		AttendToConvert:   ratio(t.Converted, t.Attended),
		OverallConversion: ratio(t.Converted, t.Registrations),
	}
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
