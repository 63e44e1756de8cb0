// Package app wires configuration, logging and the lead engine together
// for the leads CLI.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cofina/leads"
	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/server"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/sources"
	"github.com/cofina/leads/pkg/store"
)

var _ application.Application = (*App)(nil)

// App holds the CLI's configuration, logger and the lazily built engine.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	mu    sync.Mutex
	leads leads.Leads
	pool  *pgxpool.Pool
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return errors.NewValidationError("config", nil, "config cannot be nil")
		}
		a.config = cfg
		logger := NewLogger(cfg)
		a.logger = &logger
		return nil
	}
}

// WithLogger replaces the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = &logger
		return nil
	}
}

// WithLeads injects a ready engine instead of building one from config.
func WithLeads(l leads.Leads) Option {
	return func(a *App) error {
		a.leads = l
		return nil
	}
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// New loads configuration and creates the App.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	a.config = cfg
	logger := NewLogger(cfg)
	a.logger = &logger

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// DatabaseURL returns the configured postgres connection string.
func (a *App) DatabaseURL() string { return a.config.DatabaseURL }

// ServerConfig returns the HTTP server settings.
func (a *App) ServerConfig() server.Config { return a.config.Server }

// Watch reports whether serve reloads on file changes.
func (a *App) Watch() bool {
	return a.config.Watch && a.config.Source == SourceCSV
}

// CSVSource returns the category directory as a CSV source.
func (a *App) CSVSource() *sources.CSV {
	return sources.NewCSV(a.config.DataDir, a.config.Categories)
}

// Leads returns the engine, building and loading it on first use.
func (a *App) Leads(ctx context.Context) (leads.Leads, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.leads != nil {
		return a.leads, nil
	}

	src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := a.repository(ctx)
	if err != nil {
		return nil, err
	}
	l, err := leads.New(ctx,
		leads.WithSource(src),
		leads.WithRepository(repo),
		leads.WithRoster(a.config.Roster),
		leads.WithLogger(a.logger),
	)
	if err != nil {
		_ = repo.Close()
		return nil, errors.WrapResource("create", "leads", "", err)
	}
	a.leads = l
	return l, nil
}

// source builds the configured source. Must be called with a.mu held.
func (a *App) source(ctx context.Context) (sources.Source, error) {
	if a.config.Source != SourcePostgres {
		return a.CSVSource(), nil
	}
	pool, err := pgxpool.New(ctx, a.config.DatabaseURL)
	if err != nil {
		return nil, errors.NewConfigError("source", "invalid database_url", err)
	}
	src, err := sources.NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.pool = pool
	return src, nil
}

func (a *App) repository(ctx context.Context) (store.Repository, error) {
	switch a.config.StateBackend {
	case StateMemory:
		return store.NewMemory(), nil
	case StatePostgres:
		return store.OpenPostgres(ctx, a.config.DatabaseURL, store.WithPostgresLogger(a.logger))
	default:
		return store.NewFile(a.config.StateFile, store.WithFileLogger(a.logger)), nil
	}
}

// Shutdown releases the engine and any database pool.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	if a.leads != nil {
		err = a.leads.Close()
		a.leads = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return err
}
