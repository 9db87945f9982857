package postgres

import (
	"context"
	"errors"
	"time"

	applogger "CandlePull/pkg/logger"
)

// ErrNotReady is returned before the initial store connection has been
// established; callers fail fast instead of attempting a query.
var ErrNotReady = errors.New("postgres: connection not established")

// Executor runs store operations with a fail-fast readiness check and
// bounded retry on transient connectivity failures. Backoff delays block
// only the requesting call.
type Executor struct {
	client  *Client
	policy  RetryPolicy
	l       *applogger.Logger
	onRetry func(op string)
}

// NewExecutor creates an executor over the client's pool.
func NewExecutor(client *Client, policy RetryPolicy, l *applogger.Logger) *Executor {
	return &Executor{client: client, policy: policy, l: l}
}

// SetRetryHook installs a callback invoked once per retry, for telemetry.
func (e *Executor) SetRetryHook(fn func(op string)) { e.onRetry = fn }

// Do runs op, retrying per the policy. The last error is returned unwrapped
// so callers keep the original driver code and message.
func (e *Executor) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	if !e.client.Ready() {
		return ErrNotReady
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		d := e.policy.Decide(attempt, IsTransient(err))
		if !d.Retry {
			return err
		}

		if e.l != nil {
			e.l.Warn("store operation retrying",
				applogger.String("op", name),
				applogger.Int("attempt", attempt),
				applogger.Duration("delay_ms", d.Delay),
				applogger.Error(err),
			)
		}
		if e.onRetry != nil {
			e.onRetry(name)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.Delay):
		}
	}
}
