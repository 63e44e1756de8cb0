// Package leads loads categorized lead lists, reconciles them against the
// accepted roster and exposes a single edit session over the result.
//
// A Leads value owns the workbook and its session. Reload replaces both;
// Update and View serialize access to the session.
package leads

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/session"
	"github.com/cofina/leads/pkg/sources"
	"github.com/cofina/leads/pkg/store"
)

// Leads manages a reconciled lead workbook and its edit session.
type Leads interface {
	// Reload reads every category again and starts a fresh session.
	Reload(ctx context.Context) (*LoadReport, error)

	// Report returns the report of the last load.
	Report() *LoadReport

	// Update runs fn with exclusive access to the session.
	Update(fn func(*session.Session) error) error

	// View runs fn with shared access to the session. fn must not mutate it.
	View(fn func(*session.Session) error) error

	// Mark flags every row whose identity matches one of values as accepted
	// and commits the result.
	Mark(ctx context.Context, values []string) (*MarkReport, error)

	// OnReload registers a callback run after each successful load.
	OnReload(ReloadHook)

	// OnCommit registers a callback run after each non-empty commit.
	// Callbacks run while the session lock is held and must not call
	// Update or View.
	OnCommit(session.CommitHook)

	// Repository returns the state repository edits are persisted to.
	Repository() store.Repository

	// Close releases the state repository.
	Close() error
}

// leads is the implementation of Leads.
type leads struct {
	mu sync.RWMutex
	// gen counts Update calls; Reload compares it to detect a session
	// changed while it was loading.
	gen      uint64
	reloadMu sync.Mutex
	config   *config
	session  *session.Session
	report   *LoadReport
	hooks    *hooks
}

// New creates a Leads instance and performs the initial load.
func New(ctx context.Context, opts ...Option) (Leads, error) {
	l := &leads{
		config: defaultConfig(),
		hooks:  newHooks(),
	}
	if err := l.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	if l.config.source == nil {
		return nil, errors.NewConfigError("leads", "a source is required", nil)
	}
	if _, err := l.Reload(ctx); err != nil {
		return nil, fmt.Errorf("loading workbook: %w", err)
	}
	return l, nil
}

// Report returns the report of the last load.
func (l *leads) Report() *LoadReport {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.report
}

// Update runs fn with exclusive access to the session.
func (l *leads) Update(fn func(*session.Session) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return fn(l.session)
}

// View runs fn with shared access to the session.
func (l *leads) View(fn func(*session.Session) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.session)
}

// OnReload registers a callback run after each successful load.
func (l *leads) OnReload(fn ReloadHook) {
	l.hooks.OnReload(fn)
}

// OnCommit registers a callback run after each non-empty commit.
// It applies to the current session and every session started by Reload.
func (l *leads) OnCommit(fn session.CommitHook) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks.OnCommit(fn)
	if l.session != nil {
		l.session.OnCommit(fn)
	}
}

// Repository returns the state repository.
func (l *leads) Repository() store.Repository {
	return l.config.repo
}

// Close releases the state repository.
func (l *leads) Close() error {
	return l.config.repo.Close()
}

type config struct {
	source sources.Source
	repo   store.Repository
	roster string
	logger *zerolog.Logger
}
