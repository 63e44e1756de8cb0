package session

import (
	"slices"

	"github.com/cofina/leads/pkg/categories"
)

// Operation kinds recorded in the undo log.
const (
	OpRowAdded    = "row_added"
	OpRowsDeleted = "rows_deleted"
	OpRowsPasted  = "rows_pasted"
)

// operation is an immutable undo log entry. invert returns the rows of its
// category with the operation reversed and never modifies its input.
type operation interface {
	kind() string
	category() string
	size() int
	invert(rows []categories.Row) []categories.Row
}

type rowAdded struct {
	cat string
	id  uint64
}

func (o rowAdded) kind() string     { return OpRowAdded }
func (o rowAdded) category() string { return o.cat }
func (o rowAdded) size() int        { return 1 }

func (o rowAdded) invert(rows []categories.Row) []categories.Row {
	return withoutIDs(rows, o.id)
}

type deletedRow struct {
	index int
	row   categories.Row
}

// rowsDeleted holds removed rows ascending by their original index.
type rowsDeleted struct {
	cat  string
	rows []deletedRow
}

func (o rowsDeleted) kind() string     { return OpRowsDeleted }
func (o rowsDeleted) category() string { return o.cat }
func (o rowsDeleted) size() int        { return len(o.rows) }

func (o rowsDeleted) invert(rows []categories.Row) []categories.Row {
	out := slices.Clone(rows)
	for _, d := range o.rows {
		at := min(d.index, len(out))
		out = slices.Insert(out, at, d.row.Clone())
	}
	return out
}

type rowsPasted struct {
	cat string
	ids []uint64
}

func (o rowsPasted) kind() string     { return OpRowsPasted }
func (o rowsPasted) category() string { return o.cat }
func (o rowsPasted) size() int        { return len(o.ids) }

func (o rowsPasted) invert(rows []categories.Row) []categories.Row {
	return withoutIDs(rows, o.ids...)
}

func withoutIDs(rows []categories.Row, ids ...uint64) []categories.Row {
	return slices.DeleteFunc(slices.Clone(rows), func(r categories.Row) bool {
		return slices.Contains(ids, r.ID)
	})
}

// Entry describes one undo log entry.
type Entry struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Rows     int    `json:"rows"`
}

// History returns the undo log, oldest first.
func (s *Session) History() []Entry {
	out := make([]Entry, len(s.undo))
	for i, op := range s.undo {
		out[i] = Entry{Kind: op.kind(), Category: op.category(), Rows: op.size()}
	}
	return out
}

// Undo reverts the most recent structural operation. It returns false when
// the log is empty.
func (s *Session) Undo() (bool, error) {
	if len(s.undo) == 0 {
		return false, nil
	}
	op := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	c, err := s.wb.Get(op.category())
	if err != nil {
		return false, err
	}
	before := c.Rows
	c.Rows = op.invert(c.Rows)
	s.dropPending(op.category(), removedIDs(before, c.Rows))
	s.clearSelection()

	s.logger.Debug().Str("category", op.category()).Str("kind", op.kind()).Msg("Undid operation")
	return true, nil
}

func removedIDs(before, after []categories.Row) []uint64 {
	var ids []uint64
	for _, r := range before {
		if !slices.ContainsFunc(after, func(a categories.Row) bool { return a.ID == r.ID }) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
