package app

import "testing"

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{"default", &Config{}, "info"},
		{"verbose", &Config{Verbose: true}, "debug"},
		{"quiet", &Config{Quiet: true}, "warn"},
		{"both flags prefer quiet", &Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit level wins", &Config{LogLevel: "error", Verbose: true}, "error"},
		{"invalid explicit level", &Config{LogLevel: "loud"}, "info"},
		{"environment level", &Config{BaseLogLevel: "trace"}, "trace"},
		{"verbose beats environment", &Config{BaseLogLevel: "error", Verbose: true}, "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(tt.config); got != tt.expected {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.expected)
			}
		})
	}
}
