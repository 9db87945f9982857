package postgres

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Transient SQLSTATEs: the connection-exception class plus operator
// shutdown and statement timeout.
//
//	08000 connection_exception
//	08001 sqlclient_unable_to_establish_sqlconnection
//	08003 connection_does_not_exist
//	08004 sqlserver_rejected_establishment_of_sqlconnection
//	08006 connection_failure
//	57P01 admin_shutdown (connection terminated)
//	57P02 crash_shutdown
//	57P03 cannot_connect_now
//	57014 query_canceled (statement_timeout)
var transientCodes = map[string]bool{
	"08000": true,
	"08001": true,
	"08003": true,
	"08004": true,
	"08006": true,
	"57P01": true,
	"57P02": true,
	"57P03": true,
	"57014": true,
}

// IsTransient classifies an error as a retryable connectivity failure:
// refused or unreachable sockets, timeouts, and terminated or missing
// connections. Anything else (constraint violations, syntax errors, missing
// relations) propagates immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCodes[pgErr.Code]
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// RetryPolicy decides whether a failed attempt is retried and after how
// long. It is a pure function of (attempt, classification) so the policy is
// testable without a database.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy allows three attempts with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Decision is the outcome of evaluating a failed attempt.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Decide evaluates failed attempt i (1-based). A transient failure with
// budget left waits BaseDelay * 2^i; everything else stops retrying.
func (p RetryPolicy) Decide(attempt int, transient bool) Decision {
	if !transient || attempt >= p.MaxAttempts {
		return Decision{}
	}
	return Decision{Retry: true, Delay: p.BaseDelay << uint(attempt)}
}
