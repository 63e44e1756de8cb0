package leads

import (
	"context"
	"time"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/loader"
	"github.com/cofina/leads/pkg/ordering"
	"github.com/cofina/leads/pkg/reconcile"
	"github.com/cofina/leads/pkg/session"
	"github.com/cofina/leads/pkg/store"
)

// CategoryStats summarizes one loaded category.
type CategoryStats struct {
	Name     string `json:"name" yaml:"name"`
	Roster   bool   `json:"roster" yaml:"roster"`
	Rows     int    `json:"rows" yaml:"rows"`
	Columns  int    `json:"columns" yaml:"columns"`
	Accepted int    `json:"accepted" yaml:"accepted"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// LoadReport describes a completed load.
type LoadReport struct {
	SessionID  string          `json:"session_id" yaml:"session_id"`
	Categories []CategoryStats `json:"categories" yaml:"categories"`
	// Matched is the number of rows flagged by roster matching.
	Matched int `json:"matched" yaml:"matched"`
	// Restored is the number of roster rows re-added from the accepted identity set.
	Restored int       `json:"restored" yaml:"restored"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	LoadedAt time.Time `json:"loaded_at" yaml:"loaded_at"`
}

// reloadAttempts is how many times Reload loads without the session lock
// before it loads once more while holding it.
const reloadAttempts = 3

// Reload reads every category, restores persisted state, reconciles against
// the roster, sorts, and replaces the session. Pending edits of the old
// session are discarded.
//
// Loading runs without the session lock. When an Update lands meanwhile the
// result may miss it, so the load is repeated; the last attempt holds the
// lock throughout.
func (l *leads) Reload(ctx context.Context) (*LoadReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LoadTimeout)
	defer cancel()

	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()

	log := l.config.logger
	var (
		s      *session.Session
		report *LoadReport
		err    error
	)
	for attempt := 1; ; attempt++ {
		l.mu.RLock()
		gen := l.gen
		l.mu.RUnlock()

		if attempt == reloadAttempts {
			l.mu.Lock()
			s, report, err = l.load(ctx)
			break
		}
		if s, report, err = l.load(ctx); err != nil {
			return nil, err
		}
		l.mu.Lock()
		if l.gen == gen {
			break
		}
		l.mu.Unlock()
		log.Debug().Int("attempt", attempt).Msg("Session changed during reload, loading again")
	}
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}

	if l.session != nil && l.session.Dirty() {
		log.Warn().Str("session_id", l.session.ID()).Msg("Reload discarded pending edits")
		report.Warnings = append(report.Warnings, "pending edits of the previous session were discarded")
	}
	l.hooks.attach(s)
	l.session = s
	l.report = report
	l.mu.Unlock()

	log.Info().
		Str("session_id", s.ID()).
		Int("categories", s.Workbook().Len()).
		Int("matched", report.Matched).
		Int("restored", report.Restored).
		Msg("Workbook loaded")

	l.hooks.triggerReload(report)
	return report, nil
}

// load runs the load pipeline into a new, unattached session.
func (l *leads) load(ctx context.Context) (*session.Session, *LoadReport, error) {
	log := l.config.logger
	res, err := loader.New(l.config.source, l.config.repo,
		loader.WithRoster(l.config.roster),
		loader.WithLogger(log),
	).Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	wb := res.Workbook
	for _, c := range wb.Others() {
		loader.ApplyDerived(c, res.States[c.Name])
	}

	s := session.New(wb, l.config.repo, session.WithLogger(log))
	report := &LoadReport{SessionID: s.ID(), LoadedAt: time.Now().UTC()}

	restored, err := s.Synchronizer().Restore(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to restore accepted identities")
		report.Warnings = append(report.Warnings, err.Error())
	}
	report.Restored = restored

	matches := reconcile.Reconcile(wb.Roster(), wb.Others())
	report.Matched = matches.Total
	report.Warnings = append(report.Warnings, l.persistMatches(ctx, matches, res.States)...)

	for _, c := range wb.Others() {
		ordering.Sort(c)
	}

	for _, c := range wb.All() {
		report.Categories = append(report.Categories, stats(c, res.Failed[c.Name]))
	}
	return s, report, nil
}

// persistMatches stores derived flags raised by matching that were not
// already stored, so they survive a reload.
func (l *leads) persistMatches(ctx context.Context, res reconcile.Result, states map[string]*store.State) []string {
	var warnings []string
	for name, matches := range res.Matches {
		change := store.NewState()
		for _, m := range matches {
			if m.Origin == categories.NoOrigin {
				continue
			}
			if st := states[name]; st != nil && st.LinkedInAccepted[m.Origin] {
				continue
			}
			change.LinkedInAccepted[m.Origin] = true
		}
		if change.Empty() {
			continue
		}
		if err := l.config.repo.Save(ctx, name, change); err != nil {
			l.config.logger.Warn().Err(err).Str("category", name).Msg("Failed to persist roster matches")
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

func stats(c *categories.Category, failed error) CategoryStats {
	st := CategoryStats{Name: c.Name, Roster: c.Roster, Rows: c.Len(), Columns: c.Width()}
	for i := range c.Rows {
		if c.Accepted(i) {
			st.Accepted++
		}
	}
	if failed != nil {
		st.Error = failed.Error()
	}
	return st
}
