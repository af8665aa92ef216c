package sqlite

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds connection pragmas.
type ClientConfig struct {
	BusyTimeout time.Duration
	WAL         bool
	ForeignKeys bool
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.BusyTimeout = d
	}
}

// WithWAL toggles write-ahead logging. Ignored for in-memory databases.
func WithWAL(enabled bool) ClientOption {
	return func(c *ClientConfig) {
		c.WAL = enabled
	}
}

// WithForeignKeys toggles foreign key enforcement.
func WithForeignKeys(enabled bool) ClientOption {
	return func(c *ClientConfig) {
		c.ForeignKeys = enabled
	}
}
