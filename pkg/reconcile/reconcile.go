// Package reconcile flags rows of every category whose identity matches a
// member of the accepted roster.
package reconcile

import (
	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/identity"
)

// Match is one row flagged as accepted.
type Match struct {
	Row    int    `json:"row"`
	Origin int    `json:"origin"`
	Column int    `json:"column"`
	Key    string `json:"key"`
}

// Result lists the rows flagged per category.
type Result struct {
	Matches map[string][]Match `json:"matches"`
	Total   int                `json:"total"`
}

// Categories returns the number of categories with at least one match.
func (r Result) Categories() int {
	return len(r.Matches)
}

// KeySet is a set of identity keys.
type KeySet map[string]struct{}

// Has reports membership.
func (k KeySet) Has(key string) bool {
	_, ok := k[key]
	return ok
}

// RosterKeys collects the identity keys of every identity value in the roster.
func RosterKeys(roster *categories.Category) KeySet {
	keys := make(KeySet)
	if roster == nil {
		return keys
	}
	ids := roster.Schema.Identities()
	for i := range roster.Rows {
		for _, col := range ids {
			if k := identity.Normalize(roster.Cell(i, col)); k != "" {
				keys[k] = struct{}{}
			}
		}
	}
	return keys
}

// Keys builds a key set from raw values, dropping those that do not normalize.
func Keys(values ...string) KeySet {
	keys := make(KeySet, len(values))
	for _, v := range values {
		if k := identity.Normalize(v); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// Reconcile marks the derived-acceptance column of every row in others whose
// identity matches a roster member. Rows are only ever flagged, never cleared.
func Reconcile(roster *categories.Category, others []*categories.Category) Result {
	return MatchKeys(RosterKeys(roster), others)
}

// MatchKeys marks rows whose identity is in keys. Identity columns are tried
// in column order and the first match wins.
func MatchKeys(keys KeySet, others []*categories.Category) Result {
	res := Result{Matches: make(map[string][]Match)}
	if len(keys) == 0 {
		return res
	}

	for _, c := range others {
		if c == nil || c.Roster {
			continue
		}
		derived := c.DerivedColumn()
		if derived < 0 {
			continue
		}
		ids := c.Schema.Identities()
		for i := range c.Rows {
			for _, col := range ids {
				k := identity.Normalize(c.Cell(i, col))
				if k == "" || !keys.Has(k) {
					continue
				}
				c.SetCell(i, derived, categories.Glyph(true))
				res.Matches[c.Name] = append(res.Matches[c.Name], Match{
					Row:    i,
					Origin: c.Rows[i].Origin,
					Column: col,
					Key:    k,
				})
				res.Total++
				break
			}
		}
	}
	return res
}
