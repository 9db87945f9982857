package postgres

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds Postgres pool configuration.
type ClientConfig struct {
	DSN              string
	MaxConns         int
	MinConns         int
	ConnMaxLifetime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// WithDSN sets the connection string.
func WithDSN(dsn string) ClientOption {
	return func(c *ClientConfig) {
		c.DSN = dsn
	}
}

// WithPoolSize sets max and warm-minimum pool connections.
func WithPoolSize(maxConns, minConns int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxConns = maxConns
		c.MinConns = minConns
	}
}

// WithConnMaxLifetime sets connection max lifetime.
func WithConnMaxLifetime(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.ConnMaxLifetime = d
	}
}

// WithDialTimeout sets the connect timeout.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.DialTimeout = d
	}
}

// WithStatementTimeout sets the per-statement timeout enforced server-side,
// so a slow query cannot hold a pool session indefinitely.
func WithStatementTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.StatementTimeout = d
	}
}
