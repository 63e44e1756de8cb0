// Package application defines what leads commands need from the CLI
// application. The App in cmd/leads/app implements it; tests use
// internal/cmd/application.Mock.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cofina/leads"
	"github.com/cofina/leads/internal/server"
	"github.com/cofina/leads/pkg/sources"
)

// Application provides the dependencies of leads commands.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Leads returns the shared engine, loading the workbook on first use.
	Leads(ctx context.Context) (leads.Leads, error)

	// CSVSource returns the configured category directory as a CSV source,
	// regardless of the configured source backend.
	CSVSource() *sources.CSV

	// DatabaseURL returns the configured postgres connection string.
	DatabaseURL() string

	// ServerConfig returns the HTTP server settings.
	ServerConfig() server.Config

	// Watch reports whether serve should reload on file changes.
	Watch() bool

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
