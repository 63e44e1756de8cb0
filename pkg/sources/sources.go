// Package sources reads the raw tabular input of each lead category.
package sources

import (
	"context"
	"slices"
)

// Table is raw category input: one header row plus data rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Columns: slices.Clone(t.Columns), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// Source provides raw tables by category name.
type Source interface {
	// Categories returns the category names in display order.
	Categories() []string
	// Read returns the raw table of a category.
	Read(ctx context.Context, name string) (*Table, error)
}

// Entry maps a category name to its backing file.
type Entry struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultEntries is the stock category layout of a lead workbook.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "LinkedIn Accepted", File: "linkedin_accepted.csv"},
		{Name: "a16z-gaming", File: "a16z_gaming.csv"},
		{Name: "recent raised series B", File: "series_b.csv"},
		{Name: "Seed Stage VC", File: "seed_stage_vc.csv"},
		{Name: "Series A", File: "series_a.csv"},
		{Name: "Series Seed", File: "series_seed.csv"},
	}
}
