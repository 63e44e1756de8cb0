package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cofina/leads/cmd/leads/app"
	"github.com/cofina/leads/cmd/leads/cmd/show"
	"github.com/cofina/leads/internal/cmd/application"
	"github.com/cofina/leads/pkg/records"
)

// run executes one CLI invocation against a fresh App, as separate
// processes would.
func run(t *testing.T, cfg app.Config, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	a, err := app.New("test", "none", "today", "test", app.WithConfig(&cfg), app.WithOutput(&out))
	if err != nil {
		t.Fatalf("app.New() failed: %v", err)
	}
	defer func() { _ = a.Shutdown(context.Background()) }()
	if err := a.Execute(context.Background(), append(args, "-o", "json")); err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out.Bytes()
}

func testConfig(t *testing.T) app.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := application.WriteTestWorkbook(t)
	return app.Config{
		DataDir:      dir,
		Roster:       "LinkedIn Accepted",
		Categories:   application.TestEntries,
		Source:       app.SourceCSV,
		StateBackend: app.StateFile,
		StateFile:    filepath.Join(dir, "data_storage.json"),
		LogOutput:    "discard",
		LogLevel:     "error",
	}
}

func TestMarkPersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)

	run(t, cfg, "mark", "https://www.linkedin.com/in/alice")
	if _, err := os.Stat(cfg.StateFile); err != nil {
		t.Fatalf("state file not written: %v", err)
	}

	var v show.View
	if err := json.Unmarshal(run(t, cfg, "show", "Series A"), &v); err != nil {
		t.Fatalf("decoding show output: %v", err)
	}
	accepted := 0
	for _, r := range v.Rows[:2] {
		if r.Cells["linkedin accepted?"] == "✓" {
			accepted++
		}
	}
	if accepted != 2 {
		t.Errorf("want Globex and Initech accepted first, got rows %+v", v.Rows)
	}
}

func TestExportAfterReconcile(t *testing.T) {
	cfg := testConfig(t)
	run(t, cfg, "reconcile")

	var got []records.Lead
	if err := json.Unmarshal(run(t, cfg, "export", "--category", "Series A"), &got); err != nil {
		t.Fatalf("decoding export output: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("exported %d leads, want 3", len(got))
	}
	byCompany := map[string]records.Lead{}
	for _, l := range got {
		byCompany[l.CompanyName] = l
	}
	if !byCompany["Globex"].LinkedInAccepted {
		t.Error("Globex should be accepted through the roster")
	}
	if byCompany["Acme"].LinkedInAccepted {
		t.Error("Acme should not be accepted")
	}
	if byCompany["Acme"].Website != "acme.io" {
		t.Errorf("Acme website = %q", byCompany["Acme"].Website)
	}
}
