package server

import (
	"net"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	PathPrefix string

	CORSEnabled bool
	CORSOrigins []string

	AuthEnabled bool
	AuthHeader  string
	APIKey      string

	CacheTTL time.Duration

	// EventJournal is how many recent events reconnecting clients can replay.
	EventJournal int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		PathPrefix:   "/api/v1",
		CORSEnabled:  true,
		CORSOrigins:  []string{},
		AuthHeader:   "X-API-Key",
		CacheTTL:     5 * time.Minute,
		EventJournal: 512,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
