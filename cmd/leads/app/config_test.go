package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// TestLoadConfig_Defaults verifies defaults when no file is given.
func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Source != SourceCSV || cfg.StateBackend != StateFile {
		t.Errorf("backends = %s/%s, want csv/file", cfg.Source, cfg.StateBackend)
	}
	if cfg.Roster != constants.RosterCategory {
		t.Errorf("Roster = %q", cfg.Roster)
	}
	if len(cfg.Categories) == 0 {
		t.Error("Categories not defaulted")
	}
	if cfg.StateFile != filepath.Join(".", constants.DefaultStateFile) {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestLoadConfig_File verifies values and the category list from YAML.
func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/leads
roster: Roster
state_backend: memory
categories:
  - name: Roster
    file: roster.csv
  - name: Seed
    file: seed.csv
server:
  port: 9999
  api_key: secret
watch: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.DataDir != "/srv/leads" || cfg.Roster != "Roster" {
		t.Errorf("DataDir/Roster = %q/%q", cfg.DataDir, cfg.Roster)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[1].File != "seed.csv" {
		t.Errorf("Categories = %+v", cfg.Categories)
	}
	if cfg.StateFile != filepath.Join("/srv/leads", constants.DefaultStateFile) {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
	if cfg.Server.Port != 9999 || !cfg.Server.AuthEnabled || cfg.Server.APIKey != "secret" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Watch {
		t.Error("Watch not loaded")
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

// TestLoadConfig_Environment verifies LEADS_ variables and DATABASE_URL.
func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LEADS_STATE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("LEADS_SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.StateBackend != StatePostgres {
		t.Errorf("StateBackend = %q", cfg.StateBackend)
	}
	if cfg.DatabaseURL != "postgres://localhost/leads" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.BaseLogLevel != "debug" || cfg.LogLevel != "" {
		t.Errorf("log levels = %q/%q", cfg.BaseLogLevel, cfg.LogLevel)
	}
}

// TestLoadConfig_Invalid verifies backend validation.
func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown source", "source: sheets\n"},
		{"unknown state backend", "state_backend: redis\n"},
		{"postgres without url", "source: postgres\n"},
		{"empty roster", "roster: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			_, err := LoadConfig(writeConfig(t, tt.body))
			var cfgErr *errors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("LoadConfig() error = %v, want ConfigError", err)
			}
		})
	}
}

// TestLoadConfig_MissingFile verifies that an explicit file must exist.
func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig() succeeded for a missing file")
	}
}

// TestConfig_UpdateFromFlags verifies flag values override loaded ones.
func TestConfig_UpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "yaml", BaseLogLevel: "warn"}
	cfg.UpdateFromFlags(true, false, true, "", "error")
	if !cfg.Verbose || !cfg.NoColor {
		t.Error("bool flags not applied")
	}
	if cfg.Format != "yaml" {
		t.Errorf("empty format flag replaced %q", cfg.Format)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}
