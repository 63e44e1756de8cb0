package session

import (
	"slices"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/errors"
)

// NoAnchor pastes at the end of the category.
const NoAnchor = -1

// Clipboard is a snapshot of copied rows.
type Clipboard struct {
	Category string     `json:"category"`
	Rows     [][]string `json:"rows"`
}

// Empty reports whether the clipboard holds no rows.
func (c Clipboard) Empty() bool { return len(c.Rows) == 0 }

// AddRow appends a blank row and returns its index.
func (s *Session) AddRow(category string) (int, error) {
	c, err := s.wb.Get(category)
	if err != nil {
		return 0, err
	}
	row := c.BlankRow()
	c.Rows = append(c.Rows, row)
	s.undo = append(s.undo, rowAdded{cat: category, id: row.ID})
	return len(c.Rows) - 1, nil
}

// DeleteRows removes the rows at indices. Duplicates are ignored; any index
// out of range rejects the whole call.
func (s *Session) DeleteRows(category string, indices []int) (int, error) {
	c, err := s.wb.Get(category)
	if err != nil {
		return 0, err
	}
	idx, err := validIndices(c, indices)
	if err != nil || len(idx) == 0 {
		return 0, err
	}

	op := rowsDeleted{cat: category, rows: make([]deletedRow, len(idx))}
	ids := make([]uint64, len(idx))
	for i, at := range idx {
		op.rows[i] = deletedRow{index: at, row: c.Rows[at].Clone()}
		ids[i] = c.Rows[at].ID
	}

	// Highest index first keeps the remaining indices valid.
	for i := len(idx) - 1; i >= 0; i-- {
		c.Rows = slices.Delete(c.Rows, idx[i], idx[i]+1)
	}
	s.dropPending(category, ids)
	s.undo = append(s.undo, op)
	s.clearSelection()
	return len(idx), nil
}

// CopyRows snapshots the rows at indices in index order, with staged edits
// overlaid.
func (s *Session) CopyRows(category string, indices []int) (Clipboard, error) {
	c, err := s.Display(category)
	if err != nil {
		return Clipboard{}, err
	}
	idx, err := validIndices(c, indices)
	if err != nil {
		return Clipboard{}, err
	}
	clip := Clipboard{Category: category, Rows: make([][]string, len(idx))}
	for i, at := range idx {
		clip.Rows[i] = slices.Clone(c.Rows[at].Cells)
	}
	return clip, nil
}

// PasteRows inserts the clipboard rows, in order, right after the row at
// after, or at the end when after is NoAnchor. Rows are fitted to the
// category's width. It returns the index of the first inserted row.
func (s *Session) PasteRows(category string, clip Clipboard, after int) (int, error) {
	c, err := s.wb.Get(category)
	if err != nil {
		return 0, err
	}
	if after != NoAnchor && !c.InRange(after) {
		return 0, errors.NewValidationError("after", after, "anchor row out of range")
	}
	at := len(c.Rows)
	if after != NoAnchor {
		at = after + 1
	}
	if clip.Empty() {
		return at, nil
	}

	rows := make([]categories.Row, len(clip.Rows))
	ids := make([]uint64, len(clip.Rows))
	for i, cells := range clip.Rows {
		rows[i] = categories.NewRow(categories.NoOrigin, c.Fit(cells))
		ids[i] = rows[i].ID
	}
	c.Rows = slices.Insert(c.Rows, at, rows...)
	s.undo = append(s.undo, rowsPasted{cat: category, ids: ids})
	s.clearSelection()
	return at, nil
}

// validIndices returns the distinct indices ascending, or a validation error.
func validIndices(c *categories.Category, indices []int) ([]int, error) {
	out := slices.Clone(indices)
	slices.Sort(out)
	out = slices.Compact(out)
	for _, i := range out {
		if !c.InRange(i) {
			return nil, errors.NewValidationError("rows", i, "row index out of range")
		}
	}
	return out, nil
}
