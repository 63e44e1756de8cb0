// Package loader maps raw category tables and persisted state into the
// typed categories the engine works on.
package loader

import (
	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/identity"
	"github.com/cofina/leads/pkg/sources"
	"github.com/cofina/leads/pkg/store"
)

// SyntheticSchema returns the two leading columns carried by every
// non-roster category.
func SyntheticSchema() categories.Schema {
	return categories.Schema{
		{Name: constants.DerivedAcceptedColumn, Role: identity.RoleDerivedAcceptance},
		{Name: constants.AcceptedColumn, Role: identity.RoleAcceptance},
	}
}

// Empty returns the category used when a source cannot be read.
func Empty(name string, roster bool) *categories.Category {
	return categories.New(name, roster, categories.Schema{})
}

// Build produces a category from raw input and applies persisted field
// edits and user acceptance flags. Derived flags are applied separately by
// ApplyDerived, before roster matching runs.
func Build(name string, roster bool, raw *sources.Table, st *store.State) *categories.Category {
	if raw == nil {
		return Empty(name, roster)
	}

	schema := categories.NewSchema(raw.Columns...)
	offset := 0
	if !roster {
		schema = append(SyntheticSchema(), schema...)
		offset = constants.SyntheticColumns
	}

	c := categories.New(name, roster, schema)
	c.Rows = make([]categories.Row, len(raw.Rows))
	for i, src := range raw.Rows {
		cells := make([]string, len(schema))
		copy(cells[offset:], src)
		c.Rows[i] = categories.NewRow(i, cells)
	}

	if st.Empty() {
		return c
	}

	index := originIndex(c)
	for origin, cols := range st.EditedData {
		row, ok := index[origin]
		if !ok {
			continue
		}
		for col, v := range cols {
			c.SetCell(row, col, v)
		}
	}

	if col := c.AcceptanceColumn(); col >= 0 && !roster {
		for origin, accepted := range st.Accepted {
			if row, ok := index[origin]; ok {
				c.SetCell(row, col, categories.Glyph(accepted))
			}
		}
	}
	return c
}

// ApplyDerived writes persisted roster-acceptance flags into the derived
// column and returns how many rows it touched. Matching runs afterwards and
// may only add flags, so roster membership wins over a stored false.
func ApplyDerived(c *categories.Category, st *store.State) int {
	col := c.DerivedColumn()
	if c.Roster || col < 0 || st == nil {
		return 0
	}
	index := originIndex(c)
	n := 0
	for origin, accepted := range st.LinkedInAccepted {
		if row, ok := index[origin]; ok {
			c.SetCell(row, col, categories.Glyph(accepted))
			n++
		}
	}
	return n
}

func originIndex(c *categories.Category) map[int]int {
	index := make(map[int]int, len(c.Rows))
	for i, r := range c.Rows {
		if r.Origin != categories.NoOrigin {
			index[r.Origin] = i
		}
	}
	return index
}
