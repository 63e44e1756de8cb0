// Package application provides a test double for the command
// application interface.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cofina/leads"
	"github.com/cofina/leads/internal/server"
	"github.com/cofina/leads/pkg/sources"
)

// Mock implements cmd/application.Application. Each method calls the
// matching function field, or returns a zero value when the field is nil.
//
//	mock := &application.Mock{
//	    LeadsFunc: func(context.Context) (leads.Leads, error) {
//	        return testLeads, nil
//	    },
//	}
//	cmd := list.NewCommand(mock)
type Mock struct {
	LeadsFunc        func(ctx context.Context) (leads.Leads, error)
	CSVSourceFunc    func() *sources.CSV
	DatabaseURLFunc  func() string
	ServerConfigFunc func() server.Config
	WatchFunc        func() bool
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Leads returns the engine from LeadsFunc or nil.
func (m *Mock) Leads(ctx context.Context) (leads.Leads, error) {
	if m.LeadsFunc != nil {
		return m.LeadsFunc(ctx)
	}
	return nil, nil
}

// CSVSource returns the source from CSVSourceFunc or nil.
func (m *Mock) CSVSource() *sources.CSV {
	if m.CSVSourceFunc != nil {
		return m.CSVSourceFunc()
	}
	return nil
}

// DatabaseURL returns the URL from DatabaseURLFunc or "".
func (m *Mock) DatabaseURL() string {
	if m.DatabaseURLFunc != nil {
		return m.DatabaseURLFunc()
	}
	return ""
}

// ServerConfig returns the config from ServerConfigFunc or the defaults.
func (m *Mock) ServerConfig() server.Config {
	if m.ServerConfigFunc != nil {
		return m.ServerConfigFunc()
	}
	return server.DefaultConfig()
}

// Watch returns WatchFunc or false.
func (m *Mock) Watch() bool {
	if m.WatchFunc != nil {
		return m.WatchFunc()
	}
	return false
}

// Logger returns the logger from LoggerFunc or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format from OutputFormatFunc or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns the version from VersionFunc or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
