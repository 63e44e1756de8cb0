// Package session implements the edit session over a lead workbook.
//
// Cell edits are staged in a pending set and only reach the categories on
// Commit; Cancel drops them. Structural edits (add, delete, paste) apply
// immediately and are recorded in an undo log. Committing an acceptance
// toggle syncs the roster and re-sorts the category.
package session

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/roster"
	"github.com/cofina/leads/pkg/store"
)

// State is the session's edit state.
type State string

// Session states.
const (
	// StateClean means there are no pending edits.
	StateClean State = "clean"
	// StateDirty means at least one edit is staged.
	StateDirty State = "dirty"
)

// pendingSet is category -> row ID -> column -> value.
type pendingSet map[string]map[uint64]map[int]string

// Session is a single-writer edit session. It holds no locks; callers
// serialize access.
type Session struct {
	id     string
	wb     *categories.Workbook
	repo   store.Repository
	sync   *roster.Synchronizer
	logger *zerolog.Logger

	pending pendingSet
	undo    []operation

	editMode  bool
	active    string
	selection map[int]struct{}
	anchor    int

	hooksMu  sync.RWMutex
	onCommit []CommitHook
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithID sets the session ID. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithEditMode sets the initial edit mode.
func WithEditMode(on bool) Option {
	return func(s *Session) {
		s.editMode = on
	}
}

// New starts a clean session over wb persisting commits to repo.
func New(wb *categories.Workbook, repo store.Repository, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		wb:        wb,
		repo:      repo,
		pending:   make(pendingSet),
		selection: make(map[int]struct{}),
		anchor:    -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	l := s.logger.With().Str("session_id", s.id).Logger()
	s.logger = &l
	s.sync = roster.New(wb, repo, roster.WithLogger(s.logger))

	wb.EnsureIDs()
	if names := wb.Names(); len(names) > 0 {
		s.active = names[0]
	}
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Workbook returns the canonical workbook.
func (s *Session) Workbook() *categories.Workbook { return s.wb }

// Synchronizer returns the roster synchronizer used on commit.
func (s *Session) Synchronizer() *roster.Synchronizer { return s.sync }

// State returns StateDirty when edits are staged.
func (s *Session) State() State {
	if s.Dirty() {
		return StateDirty
	}
	return StateClean
}

// Dirty reports whether any edit is staged.
func (s *Session) Dirty() bool {
	for _, rows := range s.pending {
		if len(rows) > 0 {
			return true
		}
	}
	return false
}

// StageEdit stages value for (category, row, col). The latest value wins.
func (s *Session) StageEdit(category string, row, col int, value string) error {
	c, err := s.wb.Get(category)
	if err != nil {
		return err
	}
	if !c.InRange(row) {
		return errors.NewValidationError("row", row, "row index out of range")
	}
	if col < 0 || col >= c.Width() {
		return errors.NewValidationError("column", col, "column index out of range")
	}

	rows, ok := s.pending[category]
	if !ok {
		rows = make(map[uint64]map[int]string)
		s.pending[category] = rows
	}
	id := c.Rows[row].ID
	cols, ok := rows[id]
	if !ok {
		cols = make(map[int]string)
		rows[id] = cols
	}
	cols[col] = value
	return nil
}

// Pending returns the staged edits as category -> row index -> column -> value.
func (s *Session) Pending() map[string]map[int]map[int]string {
	out := make(map[string]map[int]map[int]string)
	for name, rows := range s.pending {
		c, err := s.wb.Get(name)
		if err != nil {
			continue
		}
		for id, cols := range rows {
			i := c.IndexOf(id)
			if i < 0 {
				continue
			}
			if out[name] == nil {
				out[name] = make(map[int]map[int]string)
			}
			out[name][i] = maps.Clone(cols)
		}
	}
	return out
}

// Cancel drops every staged edit.
func (s *Session) Cancel() {
	n := len(s.Pending())
	s.pending = make(pendingSet)
	s.logger.Debug().Int("categories", n).Msg("Pending edits discarded")
}

// Display returns a copy of a category with staged edits overlaid.
func (s *Session) Display(category string) (*categories.Category, error) {
	c, err := s.wb.Get(category)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	for id, cols := range s.pending[category] {
		i := out.IndexOf(id)
		if i < 0 {
			continue
		}
		for col, v := range cols {
			out.SetCell(i, col, v)
		}
	}
	return out, nil
}

// dropPending forgets staged edits on the given rows.
func (s *Session) dropPending(category string, ids []uint64) {
	rows := s.pending[category]
	for _, id := range ids {
		delete(rows, id)
	}
}

// touched returns category names with staged edits in workbook order.
func (s *Session) touched() []string {
	return slices.DeleteFunc(s.wb.Names(), func(n string) bool {
		return len(s.pending[n]) == 0
	})
}
