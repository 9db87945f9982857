package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData marks an empty query result for a symbol. It is distinct from a
// query execution failure.
var ErrNoData = errors.New("no data found")

// QueryError wraps a database failure that survived retrying, keeping the
// original driver code and message.
type QueryError struct {
	Code    string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("query failed (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("query failed: %s", e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

// UpstreamError reports a non-success response from the market-data API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream unavailable: status %d: %s", e.Status, e.Body)
}

// MalformedKlineError reports an upstream kline element that could not be
// decoded. It fails the whole ingestion run.
type MalformedKlineError struct {
	Index  int
	Reason string
}

func (e *MalformedKlineError) Error() string {
	return fmt.Sprintf("malformed kline[%d]: %s", e.Index, e.Reason)
}

// InvalidResolutionError reports an unsupported resolution together with the
// supported set.
type InvalidResolutionError struct {
	Resolution string
	Valid      []string
}

func (e *InvalidResolutionError) Error() string {
	return fmt.Sprintf("invalid resolution %q, valid: %s", e.Resolution, strings.Join(e.Valid, ", "))
}

// InvalidLimitError reports a limit that is unparseable or out of bounds.
type InvalidLimitError struct {
	Raw string
	Min int
	Max int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid limit %q, must be an integer in [%d, %d]", e.Raw, e.Min, e.Max)
}
