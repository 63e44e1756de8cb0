// Package logging configures the zerolog loggers shared by the lead engine,
// the HTTP server and the CLI. Console output is used when stderr is a
// terminal, JSON otherwise.
//
//	log := logging.Default()
//	log.Info().Str("category", "Series A").Int("rows", 42).Msg("Category loaded")
//
//	ctx := logging.WithCategory(context.Background(), "Series A")
//	logging.FromContext(ctx).Debug().Msg("Matching rows against roster")
package logging

import (
	"io"
	"os"

	goisatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

func init() {
	defaultLogger = NewLoggerFromConfig(ConfigFromEnv())
}

// Default returns the process-wide logger. Components given a nil logger
// fall back to it.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global
// one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New returns a JSON logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func stderrIsTerminal() bool {
	return goisatty.IsTerminal(os.Stderr.Fd())
}
