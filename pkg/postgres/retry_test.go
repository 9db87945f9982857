package postgres

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsTransientPgCodes(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"08001", true}, // unable to establish connection
		{"08003", true}, // connection does not exist
		{"08006", true}, // connection failure
		{"57P01", true}, // connection terminated
		{"57014", true}, // statement timeout
		{"23505", false}, // unique violation
		{"42P01", false}, // undefined table
	}
	for _, tc := range cases {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: tc.code, Message: "boom"})
		if got := IsTransient(err); got != tc.want {
			t.Errorf("code %s: IsTransient = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsTransientNetworkErrors(t *testing.T) {
	refused := &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	if !IsTransient(refused) {
		t.Errorf("connection refused should be transient")
	}

	unreachable := &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}
	if !IsTransient(unreachable) {
		t.Errorf("host unreachable should be transient")
	}

	if !IsTransient(timeoutErr{}) {
		t.Errorf("timeout should be transient")
	}

	if IsTransient(errors.New("some application error")) {
		t.Errorf("plain error should not be transient")
	}
	if IsTransient(nil) {
		t.Errorf("nil should not be transient")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestDecideBackoffSchedule(t *testing.T) {
	p := DefaultRetryPolicy()

	d1 := p.Decide(1, true)
	if !d1.Retry || d1.Delay != 2*time.Second {
		t.Fatalf("attempt 1: got %+v, want retry after 2s", d1)
	}

	d2 := p.Decide(2, true)
	if !d2.Retry || d2.Delay != 4*time.Second {
		t.Fatalf("attempt 2: got %+v, want retry after 4s", d2)
	}

	// budget spent
	if d := p.Decide(3, true); d.Retry {
		t.Fatalf("attempt 3: got %+v, want no retry", d)
	}
}

func TestDecideNonTransient(t *testing.T) {
	p := DefaultRetryPolicy()
	if d := p.Decide(1, false); d.Retry {
		t.Fatalf("non-transient failures must propagate immediately, got %+v", d)
	}
}
