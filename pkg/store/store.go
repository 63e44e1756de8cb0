// Package store persists per-category edit state and the accepted identity set.
//
// Each category has its own namespace holding three sub-maps keyed by the
// row's source index (Row.Origin): field edits, user acceptance flags and
// derived roster-acceptance flags. Save merges into what is already stored;
// Replace swaps whole sub-maps, which is how legacy clients write.
package store

import (
	"context"
	"maps"
	"slices"
)

// State is the persisted edit state of one category.
type State struct {
	EditedData       map[int]map[int]string `json:"edited_data"`
	Accepted         map[int]bool           `json:"accepted"`
	LinkedInAccepted map[int]bool           `json:"linkedin_accepted"`
}

// NewState returns an empty state with allocated maps.
func NewState() *State {
	return &State{
		EditedData:       make(map[int]map[int]string),
		Accepted:         make(map[int]bool),
		LinkedInAccepted: make(map[int]bool),
	}
}

// Change is a set of updates for one category; it has the same shape as State.
type Change = State

// SetCell records a field edit.
func (s *State) SetCell(row, col int, value string) {
	s.ensure()
	cells, ok := s.EditedData[row]
	if !ok {
		cells = make(map[int]string)
		s.EditedData[row] = cells
	}
	cells[col] = value
}

// Cell returns a recorded field edit.
func (s *State) Cell(row, col int) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.EditedData[row][col]
	return v, ok
}

// Empty reports whether the state carries no entries.
func (s *State) Empty() bool {
	return s == nil || (len(s.EditedData) == 0 && len(s.Accepted) == 0 && len(s.LinkedInAccepted) == 0)
}

// Len returns the number of recorded cells and flags.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	n := len(s.Accepted) + len(s.LinkedInAccepted)
	for _, cells := range s.EditedData {
		n += len(cells)
	}
	return n
}

// Merge folds other into s. Entries in other win.
func (s *State) Merge(other *State) {
	if other == nil {
		return
	}
	s.ensure()
	for row, cells := range other.EditedData {
		for col, v := range cells {
			s.SetCell(row, col, v)
		}
	}
	maps.Copy(s.Accepted, other.Accepted)
	maps.Copy(s.LinkedInAccepted, other.LinkedInAccepted)
}

// Overlay replaces each sub-map of s for which other has entries. Sub-maps
// that are empty in other are left alone.
func (s *State) Overlay(other *State) {
	if other == nil {
		return
	}
	s.ensure()
	if len(other.EditedData) > 0 {
		s.EditedData = make(map[int]map[int]string, len(other.EditedData))
		for row, cells := range other.EditedData {
			s.EditedData[row] = maps.Clone(cells)
		}
	}
	if len(other.Accepted) > 0 {
		s.Accepted = maps.Clone(other.Accepted)
	}
	if len(other.LinkedInAccepted) > 0 {
		s.LinkedInAccepted = maps.Clone(other.LinkedInAccepted)
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := NewState()
	out.Merge(s)
	return out
}

func (s *State) ensure() {
	if s.EditedData == nil {
		s.EditedData = make(map[int]map[int]string)
	}
	if s.Accepted == nil {
		s.Accepted = make(map[int]bool)
	}
	if s.LinkedInAccepted == nil {
		s.LinkedInAccepted = make(map[int]bool)
	}
}

// Repository is the persistence boundary of the engine.
type Repository interface {
	// Load returns the stored state of a category; unknown categories yield an empty state.
	Load(ctx context.Context, category string) (*State, error)
	// Save merges change into the category's stored state.
	Save(ctx context.Context, category string, change *Change) error
	// Replace overlays change onto the category's stored state (see State.Overlay).
	Replace(ctx context.Context, category string, change *Change) error
	// AcceptedIdentities returns the accepted identity set, sorted.
	AcceptedIdentities(ctx context.Context) ([]string, error)
	// SetAcceptedIdentities replaces the accepted identity set.
	SetAcceptedIdentities(ctx context.Context, ids []string) error
	// Close releases resources held by the repository.
	Close() error
}

func sortedSet(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
