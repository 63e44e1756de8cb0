package session

import (
	"context"
	"slices"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/identity"
	"github.com/cofina/leads/pkg/ordering"
	"github.com/cofina/leads/pkg/roster"
	"github.com/cofina/leads/pkg/store"
)

// CommitResult summarizes a commit.
type CommitResult struct {
	// Cells is the number of staged values applied.
	Cells int `json:"cells"`
	// Categories lists the categories that received edits.
	Categories []string `json:"categories"`
	// Toggles holds one outcome per committed acceptance toggle.
	Toggles []roster.Outcome `json:"toggles,omitempty"`
	// Resorted lists categories whose rows were re-partitioned.
	Resorted []string `json:"resorted,omitempty"`
	// Unpersisted counts edits on rows created in-session, which have no
	// source index to persist under.
	Unpersisted int `json:"unpersisted,omitempty"`
	// Warnings holds persistence failures. The in-memory commit stands.
	Warnings []error `json:"-"`
}

// WarningMessages returns the warnings as strings.
func (r CommitResult) WarningMessages() []string {
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.Error()
	}
	return out
}

type toggle struct {
	category string
	id       uint64
	accepted bool
}

// Commit applies every staged edit, syncs the roster for acceptance toggles,
// re-sorts toggled categories and persists one change per touched category.
// Persistence failures never undo the in-memory commit; they are logged and
// returned as warnings. The returned error is non-nil only when ctx is done
// before anything was applied.
func (s *Session) Commit(ctx context.Context) (*CommitResult, error) {
	res := &CommitResult{}
	if !s.Dirty() {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changes := make(map[string]*store.Change)
	var toggles []toggle

	for _, name := range s.touched() {
		c, err := s.wb.Get(name)
		if err != nil {
			continue
		}
		change := store.NewState()
		derived, accept := c.DerivedColumn(), c.AcceptanceColumn()

		rows := s.pending[name]
		ids := make([]uint64, 0, len(rows))
		for id := range rows {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b uint64) int { return c.IndexOf(a) - c.IndexOf(b) })

		for _, id := range ids {
			i := c.IndexOf(id)
			if i < 0 {
				continue
			}
			cols := rows[id]
			keys := make([]int, 0, len(cols))
			for col := range cols {
				keys = append(keys, col)
			}
			slices.Sort(keys)

			origin := c.Rows[i].Origin
			for _, col := range keys {
				v := cols[col]
				if !c.SetCell(i, col, v) {
					continue
				}
				res.Cells++

				if !c.Roster && col == derived {
					toggles = append(toggles, toggle{category: name, id: id, accepted: categories.IsAffirmative(v)})
				}

				if origin == categories.NoOrigin {
					res.Unpersisted++
					continue
				}
				switch {
				case !c.Roster && col == derived:
					change.LinkedInAccepted[origin] = categories.IsAffirmative(v)
				case !c.Roster && col == accept:
					change.Accepted[origin] = categories.IsAffirmative(v)
				default:
					change.SetCell(origin, col, v)
				}
			}
		}
		res.Categories = append(res.Categories, name)
		changes[name] = change
	}
	s.pending = make(pendingSet)

	s.applyToggles(ctx, toggles, res)

	for _, name := range res.Categories {
		c, err := s.wb.Get(name)
		if err != nil || !slices.ContainsFunc(toggles, func(t toggle) bool { return t.category == name }) {
			continue
		}
		if ordering.Sort(c) {
			res.Resorted = append(res.Resorted, name)
		}
	}

	s.persist(ctx, changes, res)

	s.logger.Info().
		Int("cells", res.Cells).
		Strs("categories", res.Categories).
		Int("toggles", len(res.Toggles)).
		Int("warnings", len(res.Warnings)).
		Msg("Edits committed")

	if res.Cells > 0 {
		s.runCommitHooks(*res)
	}
	return res, nil
}

func (s *Session) applyToggles(ctx context.Context, toggles []toggle, res *CommitResult) {
	for _, t := range toggles {
		c, err := s.wb.Get(t.category)
		if err != nil {
			continue
		}
		i := c.IndexOf(t.id)
		var values []string
		if i >= 0 {
			values = c.IdentityValues(i)
		}
		if len(values) == 0 {
			s.logger.Debug().Str("category", t.category).Int("row", i).Msg("Acceptance toggled on a row without identity")
			continue
		}
		out, err := s.sync.Sync(ctx, syncValue(values), t.accepted)
		res.Toggles = append(res.Toggles, out)
		if err != nil {
			s.logger.Warn().Err(err).Str("identity", out.Identity).Msg("Failed to persist accepted identities")
			res.Warnings = append(res.Warnings, errors.NewPersistError(t.category, 1, err))
		}
	}
}

// syncValue picks the identity cell the roster is keyed on: the first one
// holding a profile URL, else the first non-empty one.
func syncValue(values []string) string {
	for _, v := range values {
		if identity.Normalize(v) != "" {
			return v
		}
	}
	return values[0]
}

func (s *Session) persist(ctx context.Context, changes map[string]*store.Change, res *CommitResult) {
	ctx, cancel := context.WithTimeout(ctx, constants.PersistTimeout)
	defer cancel()

	for _, name := range res.Categories {
		change := changes[name]
		if change.Empty() {
			continue
		}
		if err := s.repo.Save(ctx, name, change); err != nil {
			s.logger.Warn().Err(err).Str("category", name).Msg("Failed to persist committed edits")
			res.Warnings = append(res.Warnings, errors.NewPersistError(name, change.Len(), err))
		}
	}
}
