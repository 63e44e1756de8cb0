package loader

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/sources"
	"github.com/cofina/leads/pkg/store"
)

// Loader reads every category of a source and restores persisted state.
type Loader struct {
	source sources.Source
	repo   store.Repository
	roster string
	logger *zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithRoster sets the roster category name.
func WithRoster(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.roster = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader over src with state from repo.
func New(src sources.Source, repo store.Repository, opts ...Option) *Loader {
	l := &Loader{
		source: src,
		repo:   repo,
		roster: constants.RosterCategory,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Default()
	}
	return l
}

// Result is the outcome of a full load.
type Result struct {
	Workbook *categories.Workbook
	// States holds the persisted state read for each category.
	States map[string]*store.State
	// Failed lists categories that could not be read and were loaded empty.
	Failed map[string]error
}

// Load builds the workbook. A category whose source or state cannot be read
// is loaded empty; other categories are unaffected. Load only fails when ctx
// is done.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	res := &Result{
		Workbook: categories.NewWorkbook(l.roster),
		States:   make(map[string]*store.State),
		Failed:   make(map[string]error),
	}

	for _, name := range l.source.Categories() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		roster := name == l.roster
		log := l.logger.With().Str("category", name).Logger()

		st, err := l.repo.Load(ctx, name)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load persisted state, continuing without it")
			st = store.NewState()
		}
		res.States[name] = st

		raw, err := l.source.Read(ctx, name)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read category, loading it empty")
			res.Failed[name] = err
			raw = nil
		}

		c := Build(name, roster, raw, st)
		if err := res.Workbook.Add(c); err != nil {
			log.Warn().Err(err).Msg("Skipping duplicate category")
			continue
		}
		log.Debug().Int("rows", c.Len()).Int("columns", c.Width()).Msg("Category loaded")
	}

	if res.Workbook.Roster() == nil {
		l.logger.Warn().Str("roster", l.roster).Msg("Roster category not found in source, using an empty one")
		_ = res.Workbook.Add(Empty(l.roster, true))
	}
	return res, nil
}
