package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads/pkg/categories"
)

func roster(urls ...string) *categories.Category {
	c := categories.New("LinkedIn Accepted", true, categories.NewSchema("Name", "LinkedIn"))
	for _, u := range urls {
		c.Rows = append(c.Rows, categories.Row{Origin: len(c.Rows), Cells: []string{"x", u}})
	}
	return c
}

func category(name string, rows ...[]string) *categories.Category {
	c := categories.New(name, false, categories.NewSchema("linkedin accepted?", "Accepted", "Company", "CEO LinkedIn", "COO Linkedin"))
	for i, r := range rows {
		c.Rows = append(c.Rows, categories.Row{Origin: i, Cells: r})
	}
	return c
}

func TestReconcile(t *testing.T) {
	r := roster("https://www.linkedin.com/in/alice", "https://www.linkedin.com/in/bob/", "", "not a url")
	a := category("Series A",
		[]string{"", "", "Acme", "https://www.linkedin.com/in/alice/?trk=1", ""},
		[]string{"", "", "Globex", "https://www.linkedin.com/in/carol", "https://www.linkedin.com/in/bob"},
		[]string{"", "", "Initech", "https://www.linkedin.com/in/dave", ""},
		[]string{"", "", "Umbrella", "", ""},
	)
	b := category("Series Seed",
		[]string{"", "", "Hooli", "https://www.linkedin.com/in/Alice", ""},
	)

	res := Reconcile(r, []*categories.Category{a, b, r})

	assert.Equal(t, "✓", a.Cell(0, 0))
	assert.Equal(t, "✓", a.Cell(1, 0), "any identity column may match")
	assert.Equal(t, "", a.Cell(2, 0))
	assert.Equal(t, "", a.Cell(3, 0))
	assert.Equal(t, "", b.Cell(0, 0), "matching is case-sensitive")

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Categories())
	require.Len(t, res.Matches["Series A"], 2)
	assert.Equal(t, Match{Row: 1, Origin: 1, Column: 4, Key: "https://www.linkedin.com/in/bob"}, res.Matches["Series A"][1])
}

func TestReconcileFirstMatchWins(t *testing.T) {
	r := roster("https://x.com/in/a", "https://x.com/in/b")
	a := category("Series A", []string{"", "", "Co", "https://x.com/in/a", "https://x.com/in/b"})

	res := Reconcile(r, []*categories.Category{a})

	require.Len(t, res.Matches["Series A"], 1)
	assert.Equal(t, 3, res.Matches["Series A"][0].Column)
}

func TestReconcileNeverClears(t *testing.T) {
	a := category("Series A", []string{"✓", "", "Co", "https://x.com/in/z", ""})
	res := Reconcile(roster("https://x.com/in/a"), []*categories.Category{a})

	assert.Zero(t, res.Total)
	assert.Equal(t, "✓", a.Cell(0, 0))
}

func TestReconcileEmptyRoster(t *testing.T) {
	a := category("Series A", []string{"", "", "Co", "https://x.com/in/a", ""})
	res := Reconcile(nil, []*categories.Category{a})
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Matches)
}

func TestMatchKeys(t *testing.T) {
	a := category("Series A",
		[]string{"", "", "Co", "https://x.com/in/a/", ""},
		[]string{"", "", "Co2", "https://x.com/in/b", ""},
	)
	keys := Keys("https://x.com/in/a?utm=1", "garbage", "")
	assert.Len(t, keys, 1)

	res := MatchKeys(keys, []*categories.Category{a, nil})
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "✓", a.Cell(0, 0))
	assert.Equal(t, "", a.Cell(1, 0))
}
