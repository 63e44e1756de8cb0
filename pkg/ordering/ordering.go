// Package ordering partitions category rows so accepted rows come first.
package ordering

import (
	"slices"

	"github.com/cofina/leads/pkg/categories"
)

// Sort moves rows whose derived-acceptance flag is affirmative ahead of all
// other rows, keeping relative order within each group. The roster and
// categories without a derived column are left alone. Sort reports whether
// any row moved.
func Sort(c *categories.Category) bool {
	if c == nil || c.Roster {
		return false
	}
	col := c.DerivedColumn()
	if col < 0 || Sorted(c) {
		return false
	}
	slices.SortStableFunc(c.Rows, func(a, b categories.Row) int {
		return rank(a, col) - rank(b, col)
	})
	return true
}

// Sorted reports whether no non-accepted row precedes an accepted one.
func Sorted(c *categories.Category) bool {
	col := c.DerivedColumn()
	if c.Roster || col < 0 {
		return true
	}
	seenOther := false
	for _, r := range c.Rows {
		if rank(r, col) == 0 {
			if seenOther {
				return false
			}
			continue
		}
		seenOther = true
	}
	return true
}

// Partition returns the indices of rows, accepted first, each group in input order.
func Partition(rows []int, accepted func(int) bool) []int {
	out := make([]int, 0, len(rows))
	var rest []int
	for _, i := range rows {
		if accepted(i) {
			out = append(out, i)
		} else {
			rest = append(rest, i)
		}
	}
	return append(out, rest...)
}

func rank(r categories.Row, col int) int {
	if categories.IsAffirmative(r.Cell(col)) {
		return 0
	}
	return 1
}
