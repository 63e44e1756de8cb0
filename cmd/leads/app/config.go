package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cofina/leads/internal/server"
	"github.com/cofina/leads/pkg/constants"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/sources"
)

// Source backends.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// State backends.
const (
	StateFile     = "file"
	StatePostgres = "postgres"
	StateMemory   = "memory"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Workbook
	DataDir    string
	Roster     string
	Categories []sources.Entry

	// Backends
	Source       string
	StateBackend string
	StateFile    string
	DatabaseURL  string

	// Serve
	Server server.Config
	Watch  bool

	// Logging configuration. LogLevel is set by the --log-level flag only;
	// BaseLogLevel comes from the environment or config file and loses to
	// -v and -q.
	LogLevel     string
	BaseLogLevel string
	LogFormat    string
	LogOutput    string
}

// LoadConfig loads configuration in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (LEADS_ prefix, plus DATABASE_URL and LOG_*)
// 3. .env and .env.local files
// 4. Config file (configFile, or .leads.yaml in $HOME or .)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("leads")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"database_url": "DATABASE_URL",
		"log_level":    "LOG_LEVEL",
		"log_format":   "LOG_FORMAT",
		"log_output":   "LOG_OUTPUT",
	} {
		if err := v.BindEnv(key, "LEADS_"+env, env); err != nil {
			return nil, errors.NewConfigError("config", "binding "+env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	}

	cfg := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		DataDir: v.GetString("data_dir"),
		Roster:  v.GetString("roster"),

		Source:       strings.ToLower(v.GetString("source")),
		StateBackend: strings.ToLower(v.GetString("state_backend")),
		StateFile:    v.GetString("state_file"),
		DatabaseURL:  v.GetString("database_url"),

		Server: server.DefaultConfig(),
		Watch:  v.GetBool("watch"),

		BaseLogLevel: v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
		LogOutput:    v.GetString("log_output"),
	}
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.CORSEnabled = v.GetBool("server.cors")
	cfg.Server.CORSOrigins = v.GetStringSlice("server.cors_origins")
	cfg.Server.APIKey = v.GetString("server.api_key")
	cfg.Server.AuthEnabled = cfg.Server.APIKey != ""
	cfg.Server.EventJournal = v.GetInt("server.event_journal")

	if err := v.UnmarshalKey("categories", &cfg.Categories); err != nil {
		return nil, errors.NewConfigError("config", "invalid categories", err)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = sources.DefaultEntries()
	}
	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(cfg.DataDir, constants.DefaultStateFile)
	}

	return cfg, cfg.Validate()
}

// Validate checks backend names and their required settings.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.NewConfigError("config", "source postgres requires database_url", nil)
		}
	default:
		return errors.NewConfigError("config", "unknown source "+c.Source, nil)
	}
	switch c.StateBackend {
	case StateFile, StateMemory:
	case StatePostgres:
		if c.DatabaseURL == "" {
			return errors.NewConfigError("config", "state backend postgres requires database_url", nil)
		}
	default:
		return errors.NewConfigError("config", "unknown state backend "+c.StateBackend, nil)
	}
	if c.Roster == "" {
		return errors.NewConfigError("config", "roster cannot be empty", nil)
	}
	return nil
}

// UpdateFromFlags applies parsed command flags over the loaded values.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

func setDefaults(v *viper.Viper) {
	def := server.DefaultConfig()
	v.SetDefault("data_dir", ".")
	v.SetDefault("roster", constants.RosterCategory)
	v.SetDefault("source", SourceCSV)
	v.SetDefault("state_backend", StateFile)
	v.SetDefault("server.host", def.Host)
	v.SetDefault("server.port", def.Port)
	v.SetDefault("server.cors", def.CORSEnabled)
	v.SetDefault("server.event_journal", def.EventJournal)
	v.SetDefault("watch", false)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// loadEnvFiles loads .env then .env.local. Variables already set win.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}
