// Package session carries the per-request view state: which user the
// operations act for, plus the period selection and search query the caller
// is looking at. State is an explicit value handed to the service layer, so
// nothing in the module reads ambient globals.
package session

import (
	"moneta/internal/core"
	"moneta/internal/period"
)

// State identifies a user and their current view selection.
type State struct {
	UserID      string             `json:"userId"`
	Granularity period.Granularity `json:"granularity"`
	Anchor      core.Date          `json:"anchor"`
	Search      string             `json:"search"`
}

// New starts a session at the current monthly period. The user id is opaque
// here; whoever hands it in owns authentication.
func New(userID string, today core.Date) State {
	return State{
		UserID:      userID,
		Granularity: period.Monthly,
		Anchor:      period.StartOf(period.Monthly, today),
	}
}

// WithGranularity switches the view granularity, re-anchoring so the new
// period still contains the old anchor day.
func (s State) WithGranularity(g period.Granularity) State {
	s.Granularity = g
	s.Anchor = period.StartOf(g, s.Anchor)
	return s
}

// Prev moves one period back.
func (s State) Prev() State {
	s.Anchor = period.Shift(s.Granularity, s.Anchor, -1)
	return s
}

// Next moves one period forward.
func (s State) Next() State {
	s.Anchor = period.Shift(s.Granularity, s.Anchor, 1)
	return s
}

// WithSearch sets the free-text filter applied to period views.
func (s State) WithSearch(query string) State {
	s.Search = query
	return s
}

// Label renders the human-readable name of the selected period.
func (s State) Label() string {
	return period.Label(s.Granularity, s.Anchor)
}
