package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cofina/leads"
	"github.com/cofina/leads/pkg/logging"
	"github.com/cofina/leads/pkg/sources"
	"github.com/cofina/leads/pkg/store"
)

// TestEntries is the category layout written by WriteTestWorkbook.
var TestEntries = []sources.Entry{
	{Name: "LinkedIn Accepted", File: "roster.csv"},
	{Name: "Series A", File: "series_a.csv"},
}

// WriteTestWorkbook writes a roster with one accepted contact (carol) and
// a Series A list of three companies into a temporary directory.
func WriteTestWorkbook(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"roster.csv": "Company,CEO LinkedIn,Accepted\n" +
			"Globex,https://www.linkedin.com/in/carol/,✓\n",
		"series_a.csv": "Company,CEO LinkedIn,Website\n" +
			"Acme,https://www.linkedin.com/in/bob,acme.io\n" +
			"Globex,https://www.linkedin.com/in/carol,globex.com\n" +
			"Initech,https://www.linkedin.com/in/alice/,initech.com\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

// NewTestLeads loads the test workbook with an in-memory state store.
func NewTestLeads(t testing.TB) (leads.Leads, *sources.CSV) {
	t.Helper()
	src := sources.NewCSV(WriteTestWorkbook(t), TestEntries)
	l, err := leads.New(context.Background(),
		leads.WithSource(src),
		leads.WithRepository(store.NewMemory()),
		leads.WithLogger(logging.NewNopLogger()),
	)
	if err != nil {
		t.Fatalf("loading test workbook: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, src
}

// NewTestMock returns a Mock serving l and src with the given output format.
func NewTestMock(l leads.Leads, src *sources.CSV, format string) *Mock {
	return &Mock{
		LeadsFunc:        func(context.Context) (leads.Leads, error) { return l, nil },
		CSVSourceFunc:    func() *sources.CSV { return src },
		OutputFormatFunc: func() string { return format },
	}
}
