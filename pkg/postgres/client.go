package postgres

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client manages the Postgres connection pool and its readiness state.
// Readiness starts false and flips to true on the first successful probe;
// it is consulted, never cleared, by the query path.
type Client struct {
	pool    *pgxpool.Pool
	ready   atomic.Bool
	onReady func()
}

// NewClient creates a Postgres client with a bounded connection pool. The
// client is returned even when the store is unreachable; readiness stays
// false until a ping succeeds (here or via Probe).
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		MaxConns:         10,
		MinConns:         2,
		ConnMaxLifetime:  30 * time.Minute,
		DialTimeout:      5 * time.Second,
		StatementTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres parse config: %w", err)
	}
	pcfg.MaxConns = int32(cfg.MaxConns)
	pcfg.MinConns = int32(cfg.MinConns)
	pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	pcfg.ConnConfig.ConnectTimeout = cfg.DialTimeout
	if cfg.StatementTimeout > 0 {
		if pcfg.ConnConfig.RuntimeParams == nil {
			pcfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		pcfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}

	c := &Client{pool: pool}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err == nil {
		c.ready.Store(true)
	}

	return c, nil
}

// Ready reports whether the initial store connection has succeeded.
func (c *Client) Ready() bool { return c.ready.Load() }

// SetReadyHook installs a callback invoked once, when readiness first flips
// to true. Set it before starting Probe.
func (c *Client) SetReadyHook(fn func()) { c.onReady = fn }

// markReady flips the readiness flag and fires the hook on the first
// transition only.
func (c *Client) markReady() {
	if c.ready.CompareAndSwap(false, true) && c.onReady != nil {
		c.onReady()
	}
}

// Probe pings the store at the given interval until the first success flips
// the readiness flag, or ctx is cancelled. Run in a goroutine at startup.
func (c *Client) Probe(ctx context.Context, interval time.Duration) {
	if c.ready.Load() {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := c.pool.Ping(pingCtx)
			cancel()
			if err == nil {
				c.markReady()
				return
			}
		}
	}
}

// Health performs a live round-trip check.
func (c *Client) Health(ctx context.Context) error {
	var one int
	if err := c.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}
	c.markReady()
	return nil
}

// Pool returns the underlying pgx pool for direct use.
func (c *Client) Pool() *pgxpool.Pool { return c.pool }

// Close closes the connection pool.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// InitSchema ensures relations exist (idempotent).
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
