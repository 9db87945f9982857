package models

import (
	"fmt"
	"testing"
	"time"
)

func TestMergeWidensRange(t *testing.T) {
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	existing := Candle{Symbol: "BTCUSDT", OpenTime: ts, Open: 100, High: 110, Low: 95, Close: 105, BaseVolume: 10}
	incoming := Candle{Symbol: "BTCUSDT", OpenTime: ts, Open: 999, High: 120, Low: 90, Close: 108, BaseVolume: 12}

	out := Merge(existing, incoming)

	if out.Open != 100 {
		t.Errorf("open = %v, want first-write 100", out.Open)
	}
	if out.High != 120 {
		t.Errorf("high = %v, want widened 120", out.High)
	}
	if out.Low != 90 {
		t.Errorf("low = %v, want widened 90", out.Low)
	}
	if out.Close != 108 {
		t.Errorf("close = %v, want incoming 108", out.Close)
	}
	if out.BaseVolume != 12 {
		t.Errorf("volume = %v, want replaced 12", out.BaseVolume)
	}
}

func TestMergeNarrowerIncomingKeepsRange(t *testing.T) {
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	existing := Candle{OpenTime: ts, Open: 100, High: 120, Low: 90, Close: 105, BaseVolume: 10}
	incoming := Candle{OpenTime: ts, Open: 100, High: 110, Low: 95, Close: 106, BaseVolume: 11}

	out := Merge(existing, incoming)

	if out.High != 120 || out.Low != 90 {
		t.Errorf("range = [%v, %v], want unchanged [90, 120]", out.Low, out.High)
	}
	if out.Close != 106 || out.BaseVolume != 11 {
		t.Errorf("close=%v vol=%v, want 106/11", out.Close, out.BaseVolume)
	}
}

func TestMergeIdenticalIsStable(t *testing.T) {
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c := Candle{OpenTime: ts, Open: 100, High: 110, Low: 95, Close: 105, BaseVolume: 10}

	out := Merge(c, c)

	if out.Open != c.Open || out.High != c.High || out.Low != c.Low || out.Close != c.Close || out.BaseVolume != c.BaseVolume {
		t.Errorf("identical merge changed OHLCV: %+v", out)
	}
}

func TestMergePreservesAuxiliaryFields(t *testing.T) {
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	existing := Candle{OpenTime: ts, Close: 100, NumTrades: 50, QuoteAssetVolume: 1000}
	incoming := Candle{OpenTime: ts, Close: 101, NumTrades: 60, QuoteAssetVolume: 1100}

	out := Merge(existing, incoming)

	if out.NumTrades != 50 || out.QuoteAssetVolume != 1000 {
		t.Errorf("auxiliary fields replaced: trades=%d quoteVol=%v", out.NumTrades, out.QuoteAssetVolume)
	}
}

func TestToCandlestickLabel(t *testing.T) {
	ts := time.Date(2026, 8, 28, 14, 7, 0, 0, time.UTC)
	c := Candle{OpenTime: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, BaseVolume: 3}

	cs := c.ToCandlestick()

	local := ts.Local()
	want := fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute())
	if cs.Time != want {
		t.Errorf("time label = %q, want %q", cs.Time, want)
	}
	if cs.Open != 1 || cs.High != 2 || cs.Low != 0.5 || cs.Close != 1.5 || cs.Volume != 3 {
		t.Errorf("projection mismatch: %+v", cs)
	}
}
