// Package dedupe tracks the identifiers already emitted during one
// scraping session so repeated pages never duplicate output rows.
package dedupe

import "sort"

// Set is an insertion-ordered set of record identifiers. It is not
// safe for concurrent use; a session runs on one control flow.
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet creates a set, optionally seeded from a prior session's
// checkpoint. Duplicate seeds collapse.
func NewSet(seed []string) *Set {
	s := &Set{index: make(map[string]struct{}, len(seed))}
	for _, id := range seed {
		s.Add(id)
	}
	return s
}

// Seen reports whether id was already recorded.
func (s *Set) Seen(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add records id and reports whether it was newly added.
func (s *Set) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Len returns the number of distinct identifiers recorded.
func (s *Set) Len() int {
	return len(s.order)
}

// IDs returns a copy of the identifiers in insertion order, suitable
// for persisting in a checkpoint.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SortedIDs returns a sorted copy, for stable comparison in tests and
// state summaries.
func (s *Set) SortedIDs() []string {
	out := s.IDs()
	sort.Strings(out)
	return out
}
