package analytics

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/aura-webinar/insights/internal/models"
)

func webinar(title string, cta models.CTAType, tags ...string) models.WebinarSummary {
	return models.WebinarSummary{ID: uuid.New(), Title: title, CTAType: cta, Tags: tags}
}

func count(id uuid.UUID, stage models.LifecycleStage, n int) models.StageCount {
	return models.StageCount{WebinarID: id, Stage: stage, Count: n}
}

func TestAggregateFunnelsBuyNow(t *testing.T) {
	w := webinar("Launch", models.CTABuyNow)
	scope := resolveScope([]models.WebinarSummary{w}, "")
	funnels, totals := aggregateFunnels(scope, []models.StageCount{
		count(w.ID, models.StageRegistered, 100),
		count(w.ID, models.StageAttended, 40),
		count(w.ID, models.StageAddedToCart, 25),
		count(w.ID, models.StageConverted, 10),
		count(w.ID, models.StageFollowUp, 7),
	})

	if len(funnels) != 1 {
		t.Fatalf("len(funnels) = %d, want 1", len(funnels))
	}
	f := funnels[0]
	want := []FunnelStage{
		{Label: models.StageRegistered, Count: 100},
		{Label: models.StageAttended, Count: 40},
		{Label: models.StageAddedToCart, Count: 25},
		{Label: models.StageConverted, Count: 10},
	}
	for i, s := range want {
		if f.Stages[i] != s {
			t.Errorf("stage[%d] = %+v, want %+v", i, f.Stages[i], s)
		}
	}
	if f.ConversionRate != 0.10 {
		t.Errorf("ConversionRate = %v, want 0.10", f.ConversionRate)
	}
	if totals.Registrations != 100 || totals.Attended != 40 || totals.Converted != 10 {
		t.Errorf("totals = %+v, want 100/40/10", totals)
	}
}

func TestAggregateFunnelsBookACallFallback(t *testing.T) {
	withBreakout := webinar("Coaching", models.CTABookACall)
	legacy := webinar("Legacy", models.CTABookACall)
	scope := resolveScope([]models.WebinarSummary{withBreakout, legacy}, "")
	funnels, _ := aggregateFunnels(scope, []models.StageCount{
		count(withBreakout.ID, models.StageRegistered, 10),
		count(withBreakout.ID, models.StageBreakoutRoom, 4),
		count(withBreakout.ID, models.StageAddedToCart, 9),
		count(legacy.ID, models.StageRegistered, 8),
		count(legacy.ID, models.StageAddedToCart, 3),
	})

	got := map[string]FunnelStage{}
	for _, f := range funnels {
		got[f.Title] = f.Stages[2]
	}
	if s := got["Coaching"]; s.Label != models.StageBreakoutRoom || s.Count != 4 {
		t.Errorf("Coaching third stage = %+v, want BREAKOUT_ROOM/4", s)
	}
	if s := got["Legacy"]; s.Label != models.StageBreakoutRoom || s.Count != 3 {
		t.Errorf("Legacy third stage = %+v, want BREAKOUT_ROOM/3", s)
	}
}

func TestAggregateFunnelsTopLimitAndOrder(t *testing.T) {
	var owned []models.WebinarSummary
	var counts []models.StageCount
	for i := 0; i < 9; i++ {
		w := webinar(fmt.Sprintf("W%d", i), models.CTABuyNow)
		owned = append(owned, w)
		counts = append(counts,
			count(w.ID, models.StageRegistered, 50),
			count(w.ID, models.StageConverted, i))
	}
	// Unowned rows must not leak into totals.
	counts = append(counts, count(uuid.New(), models.StageRegistered, 1000))

	funnels, totals := aggregateFunnels(resolveScope(owned, ""), counts)
	if len(funnels) != TopFunnelsLimit {
		t.Fatalf("len(funnels) = %d, want %d", len(funnels), TopFunnelsLimit)
	}
	for i := 1; i < len(funnels); i++ {
		if funnels[i-1].Converted() < funnels[i].Converted() {
			t.Errorf("funnels not sorted by converted desc at %d", i)
		}
	}
	if funnels[0].Title != "W8" {
		t.Errorf("top funnel = %q, want W8", funnels[0].Title)
	}
	if totals.Registrations != 450 {
		t.Errorf("totals.Registrations = %d, want 450", totals.Registrations)
	}
	if totals.Converted != 36 {
		t.Errorf("totals.Converted = %d, want 36", totals.Converted)
	}
}

func TestAggregateFunnelsNoRows(t *testing.T) {
	w := webinar("Quiet", models.CTABuyNow)
	funnels, totals := aggregateFunnels(resolveScope([]models.WebinarSummary{w}, ""), nil)
	if len(funnels) != 1 {
		t.Fatalf("len(funnels) = %d, want 1", len(funnels))
	}
	if funnels[0].ConversionRate != 0 {
		t.Errorf("ConversionRate = %v, want 0", funnels[0].ConversionRate)
	}
	if totals != (Totals{}) {
		t.Errorf("totals = %+v, want zero", totals)
	}
}

func TestComputeRates(t *testing.T) {
	tests := []struct {
		name   string
		totals Totals
		want   Rates
	}{
		{"zero", Totals{}, Rates{}},
		{"no attendance", Totals{Registrations: 10}, Rates{}},
		{"full", Totals{Registrations: 200, Attended: 50, Converted: 10}, Rates{
			RegToAttend:       0.25,
			AttendToConvert:   0.2,
			OverallConversion: 0.05,
		}},
		{"conversions without attendance", Totals{Registrations: 4, Converted: 2}, Rates{
			OverallConversion: 0.5,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeRates(tt.totals); got != tt.want {
				t.Errorf("computeRates(%+v) = %+v, want %+v", tt.totals, got, tt.want)
			}
		})
	}
}
