package leads

import (
	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/sources"
	"github.com/cofina/leads/pkg/store"
)

// Option is a function that configures a Leads instance.
type Option func(*config) error

func defaultConfig() *config {
	return &config{
		roster: constants.RosterCategory,
	}
}

// WithSource sets where raw category tables are read from. Required.
func WithSource(src sources.Source) Option {
	return func(c *config) error {
		if src == nil {
			return errors.NewValidationError("source", nil, "source cannot be nil")
		}
		c.source = src
		return nil
	}
}

// WithRepository sets the state repository. Defaults to an in-memory store.
func WithRepository(repo store.Repository) Option {
	return func(c *config) error {
		if repo == nil {
			return errors.NewValidationError("repository", nil, "repository cannot be nil")
		}
		c.repo = repo
		return nil
	}
}

// WithRoster sets the name of the roster category.
func WithRoster(name string) Option {
	return func(c *config) error {
		if name == "" {
			return errors.NewValidationError("roster", name, "roster name cannot be empty")
		}
		c.roster = name
		return nil
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// options applies the options and fills defaults.
func (l *leads) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(l.config); err != nil {
			return err
		}
	}
	if l.config.repo == nil {
		l.config.repo = store.NewMemory()
	}
	if l.config.logger == nil {
		l.config.logger = logging.Default()
	}
	return nil
}
