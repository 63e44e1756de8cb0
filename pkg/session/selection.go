package session

import (
	"slices"

	"github.com/cofina/leads/pkg/errors"
)

// Gesture is how a row was clicked.
type Gesture string

// Selection gestures.
const (
	// GesturePlain selects only the row, or clears it if it was the sole selection.
	GesturePlain Gesture = "plain"
	// GestureToggle flips the row's membership.
	GestureToggle Gesture = "toggle"
	// GestureRange adds the span from the last selected row to this one.
	GestureRange Gesture = "range"
)

// EditMode reports whether edit mode is on.
func (s *Session) EditMode() bool { return s.editMode }

// SetEditMode turns edit mode on or off. Turning it off clears the
// selection and the undo log.
func (s *Session) SetEditMode(on bool) {
	if s.editMode == on {
		return
	}
	s.editMode = on
	if !on {
		s.clearSelection()
		s.undo = nil
	}
}

// ActiveCategory returns the category selections apply to.
func (s *Session) ActiveCategory() string { return s.active }

// SetActiveCategory switches the active category, clearing the selection on change.
func (s *Session) SetActiveCategory(name string) error {
	if _, err := s.wb.Get(name); err != nil {
		return err
	}
	if name != s.active {
		s.active = name
		s.clearSelection()
	}
	return nil
}

// Select applies a gesture to row of the active category. Gestures are
// ignored while edit mode is off.
func (s *Session) Select(row int, gesture Gesture) error {
	if !s.editMode {
		return nil
	}
	c, err := s.wb.Get(s.active)
	if err != nil {
		return err
	}
	if !c.InRange(row) {
		return errors.NewValidationError("row", row, "row index out of range")
	}

	switch gesture {
	case GesturePlain, "":
		_, selected := s.selection[row]
		sole := selected && len(s.selection) == 1
		s.clearSelection()
		if sole {
			return nil
		}
		s.selection[row] = struct{}{}
	case GestureToggle:
		if _, ok := s.selection[row]; ok {
			delete(s.selection, row)
		} else {
			s.selection[row] = struct{}{}
		}
	case GestureRange:
		from := s.anchor
		if from < 0 || !c.InRange(from) {
			from = row
		}
		for i := min(from, row); i <= max(from, row); i++ {
			s.selection[i] = struct{}{}
		}
	default:
		return errors.NewValidationError("gesture", gesture, "unknown selection gesture")
	}
	s.anchor = row
	return nil
}

// Selected returns the selected row indices ascending.
func (s *Session) Selected() []int {
	out := make([]int, 0, len(s.selection))
	for i := range s.selection {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

func (s *Session) clearSelection() {
	clear(s.selection)
	s.anchor = -1
}
