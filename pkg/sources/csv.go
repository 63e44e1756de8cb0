package sources

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cofina/leads/pkg/errors"
)

// CSV reads categories from CSV files in one directory.
type CSV struct {
	dir     string
	entries []Entry
}

// NewCSV returns a CSV source for dir. Entries fix the category order.
func NewCSV(dir string, entries []Entry) *CSV {
	return &CSV{dir: dir, entries: entries}
}

// Dir returns the directory holding the CSV files.
func (c *CSV) Dir() string { return c.dir }

// Categories implements Source.
func (c *CSV) Categories() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Path returns the file backing a category.
func (c *CSV) Path(name string) (string, error) {
	for _, e := range c.entries {
		if e.Name == name {
			if filepath.IsAbs(e.File) {
				return e.File, nil
			}
			return filepath.Join(c.dir, e.File), nil
		}
	}
	return "", errors.NewNotFoundError("category", name)
}

// Read implements Source.
func (c *CSV) Read(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := c.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := ParseCSV(f)
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	return t, nil
}

// ParseCSV reads a header row followed by data rows. Blank lines are skipped,
// ragged rows are allowed and a UTF-8 byte order mark is stripped.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		if t.Columns == nil {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			t.Columns = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteCSV writes t with its header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
