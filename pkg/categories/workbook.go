package categories

import (
	"fmt"
	"slices"
	"sync"

	"github.com/cofina/leads/pkg/errors"
)

// Workbook is an ordered set of categories with one roster.
// Iteration order is insertion order.
type Workbook struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*Category
	roster string
}

// NewWorkbook creates an empty workbook whose roster is named roster.
func NewWorkbook(roster string) *Workbook {
	return &Workbook{
		byName: make(map[string]*Category),
		roster: roster,
	}
}

// Add appends a category. Returns an error if the name is taken.
func (w *Workbook) Add(c *Category) error {
	if c == nil {
		return fmt.Errorf("category cannot be nil")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.byName[c.Name]; exists {
		return fmt.Errorf("category %q: %w", c.Name, errors.ErrAlreadyExists)
	}
	c.Roster = c.Name == w.roster
	w.byName[c.Name] = c
	w.order = append(w.order, c.Name)
	return nil
}

// Replace swaps in a category of the same name, or appends it.
func (w *Workbook) Replace(c *Category) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c.Roster = c.Name == w.roster
	if _, exists := w.byName[c.Name]; !exists {
		w.order = append(w.order, c.Name)
	}
	w.byName[c.Name] = c
}

// Get returns a category by name.
func (w *Workbook) Get(name string) (*Category, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	c, ok := w.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("category", name)
	}
	return c, nil
}

// RosterName returns the name of the roster category.
func (w *Workbook) RosterName() string {
	return w.roster
}

// Roster returns the roster category, or nil when it was never added.
func (w *Workbook) Roster() *Category {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.byName[w.roster]
}

// Names returns category names in workbook order.
func (w *Workbook) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.order)
}

// All returns categories in workbook order.
func (w *Workbook) All() []*Category {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Category, 0, len(w.order))
	for _, n := range w.order {
		out = append(out, w.byName[n])
	}
	return out
}

// Others returns every non-roster category in workbook order.
func (w *Workbook) Others() []*Category {
	var out []*Category
	for _, c := range w.All() {
		if !c.Roster {
			out = append(out, c)
		}
	}
	return out
}

// EnsureIDs assigns row IDs across every category.
func (w *Workbook) EnsureIDs() {
	for _, c := range w.All() {
		c.EnsureIDs()
	}
}

// Len returns the number of categories.
func (w *Workbook) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Clone returns a deep copy of the workbook.
func (w *Workbook) Clone() *Workbook {
	out := NewWorkbook(w.roster)
	for _, c := range w.All() {
		out.Replace(c.Clone())
	}
	return out
}
