package repository

import (
	"testing"
	"time"
)

func TestIsValidResolution(t *testing.T) {
	for _, r := range []Resolution{Res1m, Res15m, Res1h} {
		if !IsValidResolution(r) {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []Resolution{"5m", "1d", "2h", "", "60"} {
		if IsValidResolution(r) {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestResolutionRelation(t *testing.T) {
	tests := []struct {
		res     Resolution
		table   string
		timeCol string
	}{
		{Res1m, "ohlc_1m", "open_time"},
		{Res15m, "ohlc_15m", "bucket_time"},
		{Res1h, "ohlc_1h", "bucket_time"},
	}
	for _, tt := range tests {
		table, col := tt.res.Relation()
		if table != tt.table || col != tt.timeCol {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tt.res, table, col, tt.table, tt.timeCol)
		}
	}
}

func TestResolutionDuration(t *testing.T) {
	if Res1m.Duration() != time.Minute {
		t.Errorf("1m duration = %v", Res1m.Duration())
	}
	if Res15m.Duration() != 15*time.Minute {
		t.Errorf("15m duration = %v", Res15m.Duration())
	}
	if Res1h.Duration() != time.Hour {
		t.Errorf("1h duration = %v", Res1h.Duration())
	}
}

func TestDefaultResolution(t *testing.T) {
	if DefaultResolution() != Res1m {
		t.Errorf("default = %s", DefaultResolution())
	}
}
