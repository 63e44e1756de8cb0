// Package roster keeps the accepted roster category and the persisted
// accepted identity set in step with acceptance toggles.
package roster

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/identity"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/store"
)

// Action is what a sync did to the roster.
type Action string

// Sync actions.
const (
	ActionNone     Action = "none"
	ActionAdded    Action = "added"
	ActionMarked   Action = "marked"
	ActionRemoved  Action = "removed"
	ActionNotFound Action = "not_found"
)

// Outcome describes the effect of one Sync call.
type Outcome struct {
	Action   Action `json:"action"`
	Identity string `json:"identity"`
	// Source is the category the new roster row was copied from.
	Source string `json:"source,omitempty"`
	// Rows is the number of roster rows added or removed.
	Rows int `json:"rows"`
}

// Synchronizer applies acceptance toggles to the roster of a workbook.
type Synchronizer struct {
	wb     *categories.Workbook
	repo   store.Repository
	logger *zerolog.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a synchronizer over wb persisting the identity set to repo.
func New(wb *categories.Workbook, repo store.Repository, opts ...Option) *Synchronizer {
	s := &Synchronizer{wb: wb, repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

// Sync records that the person identified by value is (or is no longer)
// accepted. The roster is updated in memory first; an error means only that
// the identity set could not be persisted.
func (s *Synchronizer) Sync(ctx context.Context, value string, accepted bool) (Outcome, error) {
	id := setEntry(value)
	if id == "" {
		return Outcome{Action: ActionNone}, nil
	}

	out := Outcome{Action: ActionNone, Identity: id}
	if r := s.wb.Roster(); r != nil {
		if accepted {
			out = s.accept(r, value, id)
		} else if n := s.remove(r, value); n > 0 {
			out.Action, out.Rows = ActionRemoved, n
		}
	}

	s.logger.Debug().
		Str("identity", id).
		Bool("accepted", accepted).
		Str("action", string(out.Action)).
		Msg("Roster synced")

	return out, s.updateSet(ctx, id, accepted)
}

// Restore re-adds roster rows for persisted identities that the roster does
// not contain, copying them from the other categories. It returns the number
// of rows added.
func (s *Synchronizer) Restore(ctx context.Context) (int, error) {
	ids, err := s.repo.AcceptedIdentities(ctx)
	if err != nil {
		return 0, errors.WrapResource("load", "identities", "", err)
	}
	r := s.wb.Roster()
	if r == nil {
		return 0, nil
	}
	added := 0
	for _, id := range ids {
		if find(r, id) >= 0 {
			continue
		}
		if out := s.accept(r, id, id); out.Action == ActionAdded {
			added++
		}
	}
	if added > 0 {
		s.logger.Info().Int("rows", added).Msg("Restored accepted identities into roster")
	}
	return added, nil
}

func (s *Synchronizer) accept(r *categories.Category, value, id string) Outcome {
	if i := find(r, value); i >= 0 {
		if col := marker(r); col >= 0 {
			r.SetCell(i, col, categories.Glyph(true))
		}
		return Outcome{Action: ActionMarked, Identity: id}
	}

	for _, c := range s.wb.Others() {
		i := find(c, value)
		if i < 0 {
			continue
		}
		if r.Width() == 0 {
			r.Schema = dataSchema(c)
		}
		ensureIdentityColumn(r)
		r.Rows = append(r.Rows, copyRow(r, c, i, value))
		return Outcome{Action: ActionAdded, Identity: id, Source: c.Name, Rows: 1}
	}
	return Outcome{Action: ActionNotFound, Identity: id}
}

func (s *Synchronizer) remove(r *categories.Category, value string) int {
	before := len(r.Rows)
	kept := r.Rows[:0]
	for i, row := range r.Rows {
		if matches(r, i, value) {
			continue
		}
		kept = append(kept, row)
	}
	r.Rows = kept
	return before - len(kept)
}

func (s *Synchronizer) updateSet(ctx context.Context, id string, accepted bool) error {
	ids, err := s.repo.AcceptedIdentities(ctx)
	if err != nil {
		return errors.WrapResource("load", "identities", id, err)
	}
	has := slices.Contains(ids, id)
	switch {
	case accepted && !has:
		ids = append(ids, id)
	case !accepted && has:
		ids = slices.DeleteFunc(ids, func(v string) bool { return v == id })
	default:
		return nil
	}
	if err := s.repo.SetAcceptedIdentities(ctx, ids); err != nil {
		return errors.WrapResource("save", "identities", id, err)
	}
	return nil
}

// setEntry is the form an identity takes in the persisted set: its key, or
// the trimmed raw value when it does not normalize.
func setEntry(value string) string {
	if k := identity.Normalize(value); k != "" {
		return k
	}
	return strings.TrimSpace(value)
}

// matches reports whether any identity column of row i refers to value.
func matches(c *categories.Category, i int, value string) bool {
	key := identity.Normalize(value)
	raw := strings.TrimSpace(value)
	for _, col := range c.Schema.Identities() {
		cell := c.Cell(i, col)
		if key != "" && identity.Normalize(cell) == key {
			return true
		}
		if key == "" && raw != "" && strings.TrimSpace(cell) == raw {
			return true
		}
	}
	return false
}

func find(c *categories.Category, value string) int {
	for i := range c.Rows {
		if matches(c, i, value) {
			return i
		}
	}
	return -1
}

// marker is the roster column set affirmative on accepted rows.
func marker(r *categories.Category) int {
	if col := r.AcceptanceColumn(); col >= 0 {
		return col
	}
	return r.DerivedColumn()
}

// ensureIdentityColumn appends an identity column to a roster that has none.
func ensureIdentityColumn(r *categories.Category) {
	if len(r.Schema.Identities()) > 0 {
		return
	}
	r.Schema = append(r.Schema, categories.Column{Name: "LinkedIn", Role: identity.RoleIdentity})
	for i := range r.Rows {
		r.Rows[i].Cells = append(r.Rows[i].Cells, "")
	}
}

// dataSchema is c's schema without acceptance columns.
func dataSchema(c *categories.Category) categories.Schema {
	var s categories.Schema
	for _, col := range c.Schema {
		if col.Role == identity.RoleData || col.Role == identity.RoleIdentity {
			s = append(s, col)
		}
	}
	return s
}

// copyRow builds a roster row from row i of src by column name. When no
// roster identity column received a matching value, the first identity
// column is set to value so the row can be found again.
func copyRow(r, src *categories.Category, i int, value string) categories.Row {
	row := r.BlankRow()
	for j, col := range r.Schema {
		if k := src.Schema.Index(col.Name); k >= 0 && src.Schema[k].Role != identity.RoleDerivedAcceptance && src.Schema[k].Role != identity.RoleAcceptance {
			row.Cells[j] = src.Cell(i, k)
		}
	}
	if col := marker(r); col >= 0 {
		row.Cells[col] = categories.Glyph(true)
	}

	tmp := &categories.Category{Schema: r.Schema, Rows: []categories.Row{row}}
	if !matches(tmp, 0, value) {
		if ids := r.Schema.Identities(); len(ids) > 0 {
			row.Cells[ids[0]] = strings.TrimSpace(value)
		}
	}
	return row
}
