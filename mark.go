package leads

import (
	"context"
	"sort"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/identity"
	"github.com/cofina/leads/pkg/reconcile"
	"github.com/cofina/leads/pkg/session"
)

// MarkReport describes a bulk mark.
type MarkReport struct {
	Commit *session.CommitResult `json:"commit"`
	// Rows is the number of rows staged as accepted.
	Rows int `json:"rows"`
	// Unmatched lists identity keys no row carried.
	Unmatched []string `json:"unmatched,omitempty"`
	// Invalid lists values that are not profile URLs.
	Invalid []string `json:"invalid,omitempty"`
}

// Mark stages the derived acceptance flag on every row matching one of
// values and commits. It refuses to run while other edits are pending.
func (l *leads) Mark(ctx context.Context, values []string) (*MarkReport, error) {
	report := &MarkReport{}
	keys := reconcile.KeySet{}
	for _, v := range values {
		k := identity.Normalize(v)
		if k == "" {
			report.Invalid = append(report.Invalid, v)
			continue
		}
		keys[k] = struct{}{}
	}

	err := l.Update(func(s *session.Session) error {
		if s.Dirty() {
			return errors.NewValidationError("session", nil, "commit or cancel pending edits before marking")
		}
		seen := map[string]bool{}
		for _, c := range s.Workbook().Others() {
			col := c.DerivedColumn()
			if col < 0 {
				continue
			}
			for i := range c.Rows {
				k := matchKey(c, i, keys)
				if k == "" {
					continue
				}
				seen[k] = true
				if err := s.StageEdit(c.Name, i, col, categories.Glyph(true)); err != nil {
					return err
				}
				report.Rows++
			}
		}
		for k := range keys {
			if !seen[k] {
				report.Unmatched = append(report.Unmatched, k)
			}
		}
		sort.Strings(report.Unmatched)

		res, err := s.Commit(ctx)
		report.Commit = res
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// matchKey returns the first identity key of row i present in keys.
func matchKey(c *categories.Category, i int, keys reconcile.KeySet) string {
	for _, col := range c.Schema.Identities() {
		if k := identity.Normalize(c.Cell(i, col)); k != "" && keys.Has(k) {
			return k
		}
	}
	return ""
}
