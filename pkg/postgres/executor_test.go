package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func readyClient() *Client {
	c := &Client{}
	c.ready.Store(true)
	return c
}

func TestDoFailsFastWhenNotReady(t *testing.T) {
	exec := NewExecutor(&Client{}, DefaultRetryPolicy(), nil)

	called := false
	err := exec.Do(context.Background(), "read", func(ctx context.Context) error {
		called = true
		return nil
	})

	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
	if called {
		t.Fatal("op must not run before readiness")
	}
}

func TestDoRetriesTransientFailure(t *testing.T) {
	exec := NewExecutor(readyClient(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil)

	var retried []string
	exec.SetRetryHook(func(op string) { retried = append(retried, op) })

	attempts := 0
	err := exec.Do(context.Background(), "flaky", func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: "08006", Message: "connection failure"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if len(retried) != 1 || retried[0] != "flaky" {
		t.Errorf("retry hook calls = %v, want one for flaky", retried)
	}
}

func TestDoTransientExhaustsBudget(t *testing.T) {
	exec := NewExecutor(readyClient(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil)

	pgErr := &pgconn.PgError{Code: "08003", Message: "connection does not exist"}
	attempts := 0
	err := exec.Do(context.Background(), "down", func(ctx context.Context) error {
		attempts++
		return pgErr
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !errors.Is(err, pgErr) {
		t.Fatalf("got %v, want the last driver error", err)
	}
}

func TestDoNonTransientPropagatesUnwrapped(t *testing.T) {
	exec := NewExecutor(readyClient(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil)

	retries := 0
	exec.SetRetryHook(func(string) { retries++ })

	pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	attempts := 0
	err := exec.Do(context.Background(), "bad_query", func(ctx context.Context) error {
		attempts++
		return pgErr
	})

	if err != pgErr {
		t.Fatalf("got %v, want the original error unwrapped", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if retries != 0 {
		t.Errorf("retry hook fired %d times, want 0", retries)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	exec := NewExecutor(readyClient(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Minute}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Do(ctx, "slow", func(ctx context.Context) error {
		return &pgconn.PgError{Code: "08006", Message: "connection failure"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
