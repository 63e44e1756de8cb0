// Package constants provides shared constants used throughout the leads codebase.
// This includes the roster name, synthetic column headers, glyph vocabulary,
// timeouts and file permissions that must stay consistent across packages.
package constants

import "time"

// Category constants
const (
	// RosterCategory is the default name of the canonical accepted roster
	RosterCategory = "LinkedIn Accepted"

	// DerivedAcceptedColumn is the synthetic leading column synced from the roster
	DerivedAcceptedColumn = "linkedin accepted?"

	// AcceptedColumn is the synthetic user-controlled acceptance column
	AcceptedColumn = "Accepted"

	// SyntheticColumns is the number of columns prepended to every non-roster category
	SyntheticColumns = 2
)

// Glyph constants define the textual acceptance vocabulary
const (
	// Checkmark is the canonical "true" value written back for acceptance flags
	Checkmark = "✓"

	// One is accepted as "true" when reading acceptance flags
	One = "1"

	// Yes is accepted, case-insensitively, as "true" when reading acceptance flags
	Yes = "yes"
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// LoadTimeout bounds a full workspace load from the configured source
	LoadTimeout = 2 * time.Minute

	// PersistTimeout bounds a single commit's writes to the state repository
	PersistTimeout = 15 * time.Second

	// WatchDebounce is how long the directory watcher waits for more changes before reloading
	WatchDebounce = 500 * time.Millisecond

	// ShutdownTimeout is the grace period for the HTTP server on exit
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default file names
const (
	// DefaultStateFile is the JSON blob holding edits and acceptance flags
	DefaultStateFile = "data_storage.json"

	// DefaultConfigName is the config file base name searched in $HOME and .
	DefaultConfigName = ".leads"
)
