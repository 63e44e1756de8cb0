package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads"
	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/records"
)

func TestStatsToTableData(t *testing.T) {
	d := StatsToTableData([]leads.CategoryStats{
		{Name: "LinkedIn Accepted", Roster: true, Rows: 2, Columns: 3},
		{Name: "Series A", Rows: 5, Columns: 6, Accepted: 1},
	})
	require.Len(t, d.Rows, 2)
	assert.Equal(t, []string{"LinkedIn Accepted", "✓", "2", "3", "0", ""}, d.Rows[0])
	assert.Equal(t, "", d.Rows[1][1])
	assert.Len(t, d.ColumnAlignment, len(d.Headers))
}

func TestCategoryToTableData(t *testing.T) {
	c := categories.New("Series A", false, categories.NewSchema("Company Name", "Website"))
	c.Rows = []categories.Row{
		categories.NewRow(0, []string{"Acme", "acme.io"}),
		categories.NewRow(1, []string{strings.Repeat("x", 80), ""}),
	}

	all := CategoryToTableData(c, nil)
	assert.Equal(t, []string{"#", "Company Name", "Website"}, all.Headers)
	require.Len(t, all.Rows, 2)
	assert.Equal(t, "0", all.Rows[0][0])
	assert.LessOrEqual(t, len([]rune(all.Rows[1][1])), maxCell)

	some := CategoryToTableData(c, []int{1})
	require.Len(t, some.Rows, 1)
	assert.Equal(t, "1", some.Rows[0][0])
}

func TestMarkToTableData(t *testing.T) {
	d := MarkToTableData(&leads.MarkReport{Rows: 1, Unmatched: []string{"https://x"}, Invalid: []string{"nope"}})
	assert.Contains(t, d.Rows, []string{"Unmatched", "https://x"})
	assert.Contains(t, d.Rows, []string{"Invalid", "nope"})
}

func TestLeadsToTableData(t *testing.T) {
	d := LeadsToTableData([]records.Lead{{Category: "Seed", CompanyName: "Acme", CEOLinkedIn: "https://li/ceo", LinkedInAccepted: true}})
	require.Len(t, d.Rows, 1)
	assert.Equal(t, "https://li/ceo", d.Rows[0][3])
	assert.Equal(t, "✓", d.Rows[0][5])
}
