package ordering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/cofina/leads/pkg/categories"
)

func category(flags ...string) *categories.Category {
	c := categories.New("Series A", false, categories.NewSchema("linkedin accepted?", "Accepted", "Company"))
	for i, f := range flags {
		c.Rows = append(c.Rows, categories.Row{Origin: i, Cells: []string{f, "", string(rune('a' + i))}})
	}
	return c
}

func origins(c *categories.Category) []int {
	out := make([]int, len(c.Rows))
	for i, r := range c.Rows {
		out[i] = r.Origin
	}
	return out
}

func TestSortStablePartition(t *testing.T) {
	c := category("", "✓", "no", "YES", "", "1", "0")

	assert.True(t, Sort(c))
	if diff := cmp.Diff([]int{1, 3, 5, 0, 2, 4, 6}, origins(c)); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, Sorted(c))

	assert.False(t, Sort(c), "sorting a sorted category is a no-op")
}

func TestSortedProperty(t *testing.T) {
	c := category("✓", "", "✓", "", "yes")
	Sort(c)
	for i := range c.Rows {
		for j := i + 1; j < len(c.Rows); j++ {
			assert.False(t, !c.Accepted(i) && c.Accepted(j), "row %d before %d", i, j)
		}
	}
}

func TestSortSkipsRoster(t *testing.T) {
	c := category("", "✓")
	c.Roster = true
	assert.False(t, Sort(c))
	assert.Equal(t, []int{0, 1}, origins(c))

	assert.False(t, Sort(nil))
	assert.False(t, Sort(categories.New("x", false, categories.NewSchema("Company"))))
}

func TestPartition(t *testing.T) {
	accepted := map[int]bool{2: true, 5: true}
	got := Partition([]int{1, 2, 4, 5, 6}, func(i int) bool { return accepted[i] })
	assert.Equal(t, []int{2, 5, 1, 4, 6}, got)
}
