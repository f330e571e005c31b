package analytics

import (
	"sort"

	"github.com/aura-webinar/insights/internal/models"
)

// TopTagsLimit is the number of tags kept in a report.
const TopTagsLimit = 10

// rankTags fans each record out across its webinar's tags. A REGISTERED record
// adds a registration and a CONVERTED record adds a conversion; other stages
// contribute nothing.
func rankTags(records []models.TaggedAttendance) []TagPerformance {
	byTag := make(map[string]*TagPerformance)
	for _, r := range records {
		if r.Stage != models.StageRegistered && r.Stage != models.StageConverted {
			continue
		}
		seen := make(map[string]struct{}, len(r.Tags))
		for _, tag := range r.Tags {
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tp, ok := byTag[tag]
			if !ok {
				tp = &TagPerformance{Tag: tag}
				byTag[tag] = tp
			}
			if r.Stage == models.StageRegistered {
				tp.Registrations++
			} else {
				tp.Conversions++
			}
		}
	}

	out := make([]TagPerformance, 0, len(byTag))
	for _, tp := range byTag {
		tp.ConversionRate = ratio(tp.Conversions, tp.Registrations)
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ConversionRate != b.ConversionRate {
			return a.ConversionRate > b.ConversionRate
		}
		if a.Conversions != b.Conversions {
			return a.Conversions > b.Conversions
		}
		if a.Registrations != b.Registrations {
			return a.Registrations > b.Registrations
		}
		return a.Tag < b.Tag
	})
	if len(out) > TopTagsLimit {
		out = out[:TopTagsLimit]
	}
	return out
}

// callPipeline turns grouped call-status counts into report entries, known
// statuses first in pipeline order, then any others alphabetically.
func callPipeline(counts []models.CallStatusCount) []CallPipelineEntry {
	byStatus := make(map[models.CallStatus]int, len(counts))
	for _, c := range counts {
		byStatus[c.Status] += c.Count
	}
	out := make([]CallPipelineEntry, 0, len(byStatus))
	for _, s := range models.CallStatuses {
		if n, ok := byStatus[s]; ok {
			out = append(out, CallPipelineEntry{Status: s, Count: n})
			delete(byStatus, s)
		}
	}
	var rest []CallPipelineEntry
	for s, n := range byStatus {
		rest = append(rest, CallPipelineEntry{Status: s, Count: n})
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Status < rest[j].Status })
	return append(out, rest...)
}
