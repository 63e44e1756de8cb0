package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cofina/leads/pkg/errors"
)

// Schema creates the tables read by Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS lead_sheets (
	name     TEXT PRIMARY KEY,
	columns  JSONB NOT NULL,
	position INT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS leads (
	sheet_name TEXT NOT NULL REFERENCES lead_sheets(name) ON DELETE CASCADE,
	row_index  INT NOT NULL,
	raw_data   JSONB NOT NULL,
	PRIMARY KEY (sheet_name, row_index)
);`

// DB is the part of *pgxpool.Pool the source and Import use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// Postgres reads categories from the lead_sheets and leads tables.
type Postgres struct {
	db    DB
	names []string
}

// NewPostgres returns a source over db. Category order follows
// lead_sheets.position and is fixed at construction.
func NewPostgres(ctx context.Context, db DB) (*Postgres, error) {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return nil, errors.WrapResource("create", "schema", "leads", err)
	}
	rows, err := db.Query(ctx, `SELECT name FROM lead_sheets ORDER BY position, name`)
	if err != nil {
		return nil, errors.WrapResource("load", "categories", "", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.WrapResource("load", "categories", "", err)
	}
	return &Postgres{db: db, names: names}, nil
}

// Categories implements Source.
func (p *Postgres) Categories() []string { return p.names }

// Read implements Source.
func (p *Postgres) Read(ctx context.Context, name string) (*Table, error) {
	var rawCols []byte
	err := p.db.QueryRow(ctx, `SELECT columns FROM lead_sheets WHERE name=$1`, name).Scan(&rawCols)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NewNotFoundError("category", name)
	}
	if err != nil {
		return nil, errors.WrapResource("read", "category", name, err)
	}

	t := &Table{}
	if err := json.Unmarshal(rawCols, &t.Columns); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}

	rows, err := p.db.Query(ctx, `SELECT raw_data FROM leads WHERE sheet_name=$1 ORDER BY row_index`, name)
	if err != nil {
		return nil, errors.WrapResource("read", "category", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.WrapResource("read", "category", name, err)
		}
		var values map[string]string
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, errors.WrapParse("json", name, err)
		}
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = values[col]
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("read", "category", name, err)
	}
	return t, nil
}

// ImportStats counts what Import wrote.
type ImportStats struct {
	Categories int `json:"categories" yaml:"categories"`
	Rows       int `json:"rows" yaml:"rows"`
}

// Import copies every category of src into the database, replacing any
// existing rows of the same category. It runs in one transaction; rows are
// written with COPY.
func Import(ctx context.Context, db DB, src Source) (ImportStats, error) {
	var stats ImportStats
	if _, err := db.Exec(ctx, Schema); err != nil {
		return stats, errors.WrapResource("create", "schema", "leads", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for pos, name := range src.Categories() {
		t, err := src.Read(ctx, name)
		if err != nil {
			return stats, errors.WrapResource("import", "category", name, err)
		}
		cols, err := json.Marshal(t.Columns)
		if err != nil {
			return stats, errors.WrapParse("json", name, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_sheets (name, columns, position) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET columns = EXCLUDED.columns, position = EXCLUDED.position`,
			name, cols, pos,
		); err != nil {
			return stats, fmt.Errorf("insert lead_sheets(%s): %w", name, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE sheet_name=$1`, name); err != nil {
			return stats, fmt.Errorf("clear leads(%s): %w", name, err)
		}

		rows, err := rowValues(name, t)
		if err != nil {
			return stats, err
		}
		if len(rows) > 0 {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"leads"}, leadColumns, pgx.CopyFromRows(rows)); err != nil {
				return stats, fmt.Errorf("copy leads(%s): %w", name, err)
			}
		}
		stats.Categories++
		stats.Rows += len(t.Rows)
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("commit tx: %w", err)
	}
	return stats, nil
}

var leadColumns = []string{"sheet_name", "row_index", "raw_data"}

// rowValues turns each row of t into a leads tuple whose raw_data maps
// column name to cell. Short rows leave the missing columns out.
func rowValues(name string, t *Table) ([][]any, error) {
	out := make([][]any, 0, len(t.Rows))
	for i, row := range t.Rows {
		values := make(map[string]string, len(t.Columns))
		for c, col := range t.Columns {
			if c < len(row) {
				values[col] = row[c]
			}
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, errors.WrapParse("json", name, err)
		}
		out = append(out, []any{name, i, raw})
	}
	return out, nil
}
