package session

import (
	"strings"

	"github.com/cofina/leads/pkg/ordering"
)

// Search returns the indices of rows of the displayed category containing
// term in any cell, case-insensitively. Accepted rows come first in
// non-roster categories. An empty term matches every row.
func (s *Session) Search(category, term string) ([]int, error) {
	c, err := s.Display(category)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))

	var hits []int
	for i, r := range c.Rows {
		if term == "" || rowContains(r.Cells, term) {
			hits = append(hits, i)
		}
	}
	if c.Roster {
		return hits, nil
	}
	return ordering.Partition(hits, c.Accepted), nil
}

func rowContains(cells []string, term string) bool {
	for _, v := range cells {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
