package repository

import "time"

// Resolution is the bucket width of candles served by the read API.
type Resolution string

const (
	Res1m  Resolution = "1m"
	Res15m Resolution = "15m"
	Res1h  Resolution = "1h"
)

// IsValidResolution returns true if r is a supported resolution.
func IsValidResolution(r Resolution) bool {
	switch r {
	case Res1m, Res15m, Res1h:
		return true
	default:
		return false
	}
}

// DefaultResolution returns the default resolution.
func DefaultResolution() Resolution { return Res1m }

// Resolutions lists the supported set, for error responses.
func Resolutions() []string {
	return []string{string(Res1m), string(Res15m), string(Res1h)}
}

// Relation maps the resolution to its backing relation and time column.
func (r Resolution) Relation() (table, timeColumn string) {
	switch r {
	case Res15m:
		return "ohlc_15m", "bucket_time"
	case Res1h:
		return "ohlc_1h", "bucket_time"
	default:
		return "ohlc_1m", "open_time"
	}
}

// Duration returns the bucket width.
func (r Resolution) Duration() time.Duration {
	switch r {
	case Res15m:
		return 15 * time.Minute
	case Res1h:
		return time.Hour
	default:
		return time.Minute
	}
}
