package repository

import (
	"context"
	"testing"
	"time"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
)

func minuteCandle(symbol string, t time.Time, open, high, low, close, vol float64) models.Candle {
	return models.Candle{
		Symbol:     symbol,
		OpenTime:   t,
		Open:       open,
		High:       high,
		Low:        low,
		Close:      close,
		BaseVolume: vol,
		CloseTime:  t.Add(time.Minute - time.Millisecond),
	}
}

func TestMemoryStoreLatestOpenTime(t *testing.T) {
	s := NewMemoryCandleStore()
	ctx := context.Background()

	if _, found, err := s.LatestOpenTime(ctx, "BTCUSDT"); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := s.Upsert(ctx, minuteCandle("BTCUSDT", ts, 1, 2, 0.5, 1.5, 10)); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	latest, found, err := s.LatestOpenTime(ctx, "BTCUSDT")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if want := base.Add(2 * time.Minute); !latest.Equal(want) {
		t.Fatalf("latest = %v, want %v", latest, want)
	}
}

func TestMemoryStoreUpsertMerges(t *testing.T) {
	s := NewMemoryCandleStore()
	ctx := context.Background()
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	if err := s.Upsert(ctx, minuteCandle("BTCUSDT", ts, 100, 110, 95, 105, 10)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// Revision of the same minute: wider range, new close, replaced volume.
	if err := s.Upsert(ctx, minuteCandle("BTCUSDT", ts, 999, 120, 90, 108, 12)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rows, err := s.LatestCandles(ctx, "BTCUSDT", domrepo.Res1m, 10)
	if err != nil {
		t.Fatalf("LatestCandles: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	c := rows[0]
	if c.Open != 100 {
		t.Errorf("open = %v, want first-write 100", c.Open)
	}
	if c.High != 120 || c.Low != 90 {
		t.Errorf("range = [%v, %v], want [90, 120]", c.Low, c.High)
	}
	if c.Close != 108 || c.BaseVolume != 12 {
		t.Errorf("close=%v vol=%v, want 108/12", c.Close, c.BaseVolume)
	}
}

func TestMemoryStoreAggregates15m(t *testing.T) {
	s := NewMemoryCandleStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// 20 minutes spanning two 15m buckets.
	for i := 0; i < 20; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		c := minuteCandle("BTCUSDT", ts, float64(100+i), float64(110+i), float64(90+i), float64(105+i), 1)
		if err := s.Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	rows, err := s.LatestCandles(ctx, "BTCUSDT", domrepo.Res15m, 10)
	if err != nil {
		t.Fatalf("LatestCandles: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d buckets, want 2", len(rows))
	}

	// Newest first: second bucket covers minutes 15..19.
	newest := rows[0]
	if !newest.OpenTime.Equal(base.Add(15 * time.Minute)) {
		t.Errorf("newest bucket time = %v", newest.OpenTime)
	}
	if newest.Open != 115 || newest.Close != 124 {
		t.Errorf("newest open/close = %v/%v, want 115/124", newest.Open, newest.Close)
	}
	if newest.High != 129 || newest.Low != 105 {
		t.Errorf("newest range = [%v, %v], want [105, 129]", newest.Low, newest.High)
	}
	if newest.BaseVolume != 5 {
		t.Errorf("newest volume = %v, want 5", newest.BaseVolume)
	}

	oldest := rows[1]
	if oldest.BaseVolume != 15 {
		t.Errorf("oldest volume = %v, want 15", oldest.BaseVolume)
	}
	if oldest.Open != 100 || oldest.Close != 119 {
		t.Errorf("oldest open/close = %v/%v, want 100/119", oldest.Open, oldest.Close)
	}
}

func TestMemoryStoreLimit(t *testing.T) {
	s := NewMemoryCandleStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := s.Upsert(ctx, minuteCandle("BTCUSDT", ts, 1, 2, 0.5, 1.5, 1)); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	rows, err := s.LatestCandles(ctx, "BTCUSDT", domrepo.Res1m, 3)
	if err != nil {
		t.Fatalf("LatestCandles: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !rows[0].OpenTime.After(rows[1].OpenTime) || !rows[1].OpenTime.After(rows[2].OpenTime) {
		t.Errorf("rows not newest first: %v %v %v", rows[0].OpenTime, rows[1].OpenTime, rows[2].OpenTime)
	}
}
