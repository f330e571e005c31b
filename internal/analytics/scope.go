package analytics

import (
	"github.com/google/uuid"

	"github.com/aura-webinar/insights/internal/models"
)

const (
	// DefaultDays is the trend window when none is requested.
	DefaultDays = 30
	// MaxDays is the largest accepted trend window.
	MaxDays = 365
)

// Options narrow a creator analytics request.
type Options struct {
	Days      int    // 0 means default; otherwise clamped to 1..365
	WebinarID string // optional single-webinar filter
}

// normalize substitutes def for a zero Days and clamps anything else into [1, MaxDays].
func (o Options) normalize(def int) Options {
	if def < 1 || def > MaxDays {
		def = DefaultDays
	}
	switch {
	case o.Days == 0:
		o.Days = def
	case o.Days < 1:
		o.Days = 1
	case o.Days > MaxDays:
		o.Days = MaxDays
	}
	return o
}

// Scope is the set of webinars a report covers.
type Scope struct {
	IDs      []uuid.UUID
	Webinars map[uuid.UUID]models.WebinarSummary
}

// Empty reports whether no webinar is in scope.
func (s Scope) Empty() bool { return len(s.IDs) == 0 }

// Title returns the webinar title for id, or id itself when unknown.
func (s Scope) Title(id string) string {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	if w, ok := s.Webinars[parsed]; ok {
		return w.Title
	}
	return id
}

// resolveScope intersects the creator's webinars with the optional filter.
// A filter that is malformed or not owned by the creator yields an empty scope.
func resolveScope(owned []models.WebinarSummary, filter string) Scope {
	all := make(map[uuid.UUID]models.WebinarSummary, len(owned))
	var ids []uuid.UUID
	for _, w := range owned {
		if _, dup := all[w.ID]; !dup {
			ids = append(ids, w.ID)
		}
		all[w.ID] = w
	}
	scope := Scope{Webinars: all}
	if filter == "" {
		scope.IDs = ids
		return scope
	}
	id, err := uuid.Parse(filter)
	if err != nil {
		return scope
	}
	if _, ok := all[id]; ok {
		scope.IDs = []uuid.UUID{id}
	}
	return scope
}
