// Package table converts lead data into rows for tabular CLI output.
package table

import (
	"strconv"
	"strings"

	"github.com/cofina/leads"
	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/records"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault leaves alignment to the renderer.
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a rendered table: headers plus string rows.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// maxCell bounds cell width in category views.
const maxCell = 48

// StatsToTableData lists one line per category.
func StatsToTableData(stats []leads.CategoryStats) Data {
	d := Data{
		Headers:         []string{"Category", "Roster", "Rows", "Columns", "Accepted", "Error"},
		ColumnAlignment: []Align{AlignLeft, AlignCenter, AlignRight, AlignRight, AlignRight, AlignLeft},
	}
	for _, s := range stats {
		d.Rows = append(d.Rows, []string{
			s.Name,
			categories.Glyph(s.Roster),
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.Columns),
			strconv.Itoa(s.Accepted),
			s.Error,
		})
	}
	return d
}

// CategoryToTableData renders the rows of c at indices, or every row when
// indices is nil. The first column is the row position.
func CategoryToTableData(c *categories.Category, indices []int) Data {
	d := Data{Headers: append([]string{"#"}, c.Schema.Names()...)}
	d.ColumnAlignment = make([]Align, len(d.Headers))
	d.ColumnAlignment[0] = AlignRight
	if indices == nil {
		indices = make([]int, c.Len())
		for i := range indices {
			indices[i] = i
		}
	}
	for _, i := range indices {
		row := []string{strconv.Itoa(i)}
		for col := range c.Schema {
			row = append(row, truncate(c.Cell(i, col)))
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// ReportToTableData summarizes a load report.
func ReportToTableData(r *leads.LoadReport) Data {
	d := Data{Headers: []string{"Property", "Value"}}
	d.Rows = [][]string{
		{"Session", r.SessionID},
		{"Categories", strconv.Itoa(len(r.Categories))},
		{"Matched", strconv.Itoa(r.Matched)},
		{"Restored", strconv.Itoa(r.Restored)},
		{"Loaded", r.LoadedAt.Format("2006-01-02 15:04:05")},
	}
	for _, w := range r.Warnings {
		d.Rows = append(d.Rows, []string{"Warning", w})
	}
	return d
}

// MarkToTableData summarizes a bulk mark.
func MarkToTableData(r *leads.MarkReport) Data {
	d := Data{Headers: []string{"Property", "Value"}}
	d.Rows = [][]string{{"Rows", strconv.Itoa(r.Rows)}}
	if r.Commit != nil {
		d.Rows = append(d.Rows,
			[]string{"Cells", strconv.Itoa(r.Commit.Cells)},
			[]string{"Categories", strings.Join(r.Commit.Categories, ", ")},
		)
		for _, w := range r.Commit.WarningMessages() {
			d.Rows = append(d.Rows, []string{"Warning", w})
		}
	}
	for _, u := range r.Unmatched {
		d.Rows = append(d.Rows, []string{"Unmatched", u})
	}
	for _, v := range r.Invalid {
		d.Rows = append(d.Rows, []string{"Invalid", v})
	}
	return d
}

// LeadsToTableData lists exported records without their raw data.
func LeadsToTableData(ls []records.Lead) Data {
	d := Data{
		Headers: []string{"Category", "Company", "CEO", "LinkedIn", "Website", "Accepted"},
	}
	for _, l := range ls {
		linkedin := l.LinkedIn
		if linkedin == "" {
			linkedin = l.CEOLinkedIn
		}
		d.Rows = append(d.Rows, []string{
			l.Category,
			truncate(l.CompanyName),
			truncate(l.CEO),
			truncate(linkedin),
			truncate(l.Website),
			categories.Glyph(l.Accepted || l.LinkedInAccepted),
		})
	}
	return d
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-1]) + "…"
}
