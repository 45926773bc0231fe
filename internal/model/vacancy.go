package model

import (
	"context"
	"sort"
)

// KnownSet is the set of vacancy identifiers already observed.
// Identifiers are opaque strings compared by exact equality.
type KnownSet map[string]struct{}

// NewKnownSet returns a set holding the given identifiers.
func NewKnownSet(ids ...string) KnownSet {
	s := make(KnownSet, len(ids))
	s.Add(ids...)
	return s
}

// Has reports whether id is a member of the set.
func (s KnownSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts ids into the set.
func (s KnownSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Len returns the number of members.
func (s KnownSet) Len() int { return len(s) }

// Clone returns an independent copy of the set.
func (s KnownSet) Clone() KnownSet {
	c := make(KnownSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Missing returns the identifiers from ids that are not in the set, in
// first-seen order and without repeats.
func (s KnownSet) Missing(ids []string) []string {
	var out []string
	picked := make(map[string]struct{})
	for _, id := range ids {
		if s.Has(id) {
			continue
		}
		if _, dup := picked[id]; dup {
			continue
		}
		picked[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Sorted returns the members in lexical order. Only for display; the set
// itself carries no ordering.
func (s KnownSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Extraction is the outcome of parsing one page.
type Extraction struct {
	IDs     []string // vacancy identifiers in document order, may repeat
	Skipped int      // containers that yielded no identifier
}

// PageFetcher retrieves the raw content of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// VacancyExtractor turns page content into vacancy identifiers.
type VacancyExtractor interface {
	Extract(content string) (Extraction, error)
}

// KnownSetStore loads and persists the known set.
type KnownSetStore interface {
	Load(ctx context.Context) (KnownSet, error)
	Save(ctx context.Context, set KnownSet) error
	Close() error
}

// Notifier sends an alert for newly found vacancies. ids is never empty when
// called from the poller.
type Notifier interface {
	Notify(ctx context.Context, ids []string) error
}
