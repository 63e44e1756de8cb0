package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/logging"
)

// Schema creates the tables used by Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS lead_state (
	category   TEXT PRIMARY KEY,
	state      JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS accepted_identities (
	identity TEXT PRIMARY KEY
);`

// DB is the part of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// Postgres is a Repository backed by a PostgreSQL database.
type Postgres struct {
	db     DB
	close  func()
	logger *zerolog.Logger
}

// PostgresOption configures a Postgres repository.
type PostgresOption func(*Postgres)

// WithPostgresLogger sets the logger used by the repository.
func WithPostgresLogger(l *zerolog.Logger) PostgresOption {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}

// OpenPostgres connects to databaseURL and ensures the schema exists.
// The returned repository owns the pool and closes it on Close.
func OpenPostgres(ctx context.Context, databaseURL string, opts ...PostgresOption) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.NewConfigError("store", "database_url is required for the postgres backend", nil)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.NewConfigError("store", "invalid database_url", err)
	}
	p, err := NewPostgres(ctx, pool, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	p.close = pool.Close
	return p, nil
}

// NewPostgres wraps an existing connection pool and ensures the schema
// exists. Close leaves db open.
func NewPostgres(ctx context.Context, db DB, opts ...PostgresOption) (*Postgres, error) {
	p := &Postgres{db: db}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Default()
	}
	if _, err := db.Exec(ctx, Schema); err != nil {
		return nil, errors.WrapResource("create", "schema", "lead_state", err)
	}
	return p, nil
}

// Load implements Repository.
func (p *Postgres) Load(ctx context.Context, category string) (*State, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT state FROM lead_state WHERE category=$1`, category).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewState(), nil
	}
	if err != nil {
		return nil, errors.WrapResource("load", "state", category, err)
	}
	return decodeState(raw, category)
}

// Save implements Repository.
func (p *Postgres) Save(ctx context.Context, category string, change *Change) error {
	return p.modify(ctx, category, change, (*State).Merge)
}

// Replace implements Repository.
func (p *Postgres) Replace(ctx context.Context, category string, change *Change) error {
	return p.modify(ctx, category, change, (*State).Overlay)
}

// modify runs read, apply and write in one transaction holding a row lock
// on the category.
func (p *Postgres) modify(ctx context.Context, category string, change *Change, apply func(*State, *State)) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return errors.WrapResource("save", "state", category, fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	st := NewState()
	var raw []byte
	err = tx.QueryRow(ctx, `SELECT state FROM lead_state WHERE category=$1 FOR UPDATE`, category).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return errors.WrapResource("save", "state", category, err)
	default:
		if st, err = decodeState(raw, category); err != nil {
			return err
		}
	}
	apply(st, change)

	data, err := json.Marshal(st)
	if err != nil {
		return errors.WrapParse("json", category, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_state (category, state, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (category) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		category, data,
	); err != nil {
		return errors.WrapResource("save", "state", category, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.WrapResource("save", "state", category, fmt.Errorf("commit tx: %w", err))
	}

	p.logger.Debug().Str("category", category).Int("entries", change.Len()).Msg("Saved category state")
	return nil
}

// AcceptedIdentities implements Repository.
func (p *Postgres) AcceptedIdentities(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT identity FROM accepted_identities ORDER BY identity`)
	if err != nil {
		return nil, errors.WrapResource("load", "identities", "", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.WrapResource("load", "identities", "", err)
	}
	return ids, nil
}

// SetAcceptedIdentities implements Repository.
func (p *Postgres) SetAcceptedIdentities(ctx context.Context, ids []string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return errors.WrapResource("save", "identities", "", fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM accepted_identities`); err != nil {
		return errors.WrapResource("save", "identities", "", err)
	}
	for _, id := range sortedSet(ids) {
		if _, err := tx.Exec(ctx, `INSERT INTO accepted_identities (identity) VALUES ($1)`, id); err != nil {
			return errors.WrapResource("save", "identities", id, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.WrapResource("save", "identities", "", fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// Close implements Repository.
func (p *Postgres) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}

func decodeState(raw []byte, category string) (*State, error) {
	st := NewState()
	if len(raw) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, errors.WrapParse("json", category, err)
	}
	st.ensure()
	return st, nil
}
