package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	"CandlePull/internal/repository"
	"CandlePull/pkg/cache"
	pgdb "CandlePull/pkg/postgres"
)

// erroringStore fails every operation with a fixed error.
type erroringStore struct {
	err error
}

func (s *erroringStore) LatestOpenTime(_ context.Context, _ string) (time.Time, bool, error) {
	return time.Time{}, false, s.err
}

func (s *erroringStore) Upsert(_ context.Context, _ models.Candle) error {
	return s.err
}

func (s *erroringStore) LatestCandles(_ context.Context, _ string, _ domrepo.Resolution, _ int) ([]models.Candle, error) {
	return nil, s.err
}

func seededStore(t *testing.T, n int) *repository.MemoryCandleStore {
	t.Helper()
	store := repository.NewMemoryCandleStore()
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		c := testCandle(ts, float64(110+i), float64(90+i), float64(100+i), 1)
		if err := store.Upsert(context.Background(), c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func newCandlesUC(t *testing.T, store *repository.MemoryCandleStore, c cache.Service) *CandlesUseCase {
	t.Helper()
	return NewCandlesUseCase(store, c, newFakeMetrics(), newTestLogger(t))
}

func TestGetCandlesInvalidResolution(t *testing.T) {
	uc := newCandlesUC(t, seededStore(t, 5), nil)

	for _, res := range []string{"5m", "2h", "1d", "bogus"} {
		_, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT", Resolution: res})
		var ire *models.InvalidResolutionError
		if !errors.As(err, &ire) {
			t.Fatalf("resolution %q: got %v, want InvalidResolutionError", res, err)
		}
		if len(ire.Valid) != 3 {
			t.Errorf("valid set = %v", ire.Valid)
		}
	}
}

func TestGetCandlesInvalidLimit(t *testing.T) {
	uc := newCandlesUC(t, seededStore(t, 5), nil)

	for _, raw := range []string{"0", "-1", "10001", "abc", "1.5"} {
		_, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT", RawLimit: raw})
		var ile *models.InvalidLimitError
		if !errors.As(err, &ile) {
			t.Fatalf("limit %q: got %v, want InvalidLimitError", raw, err)
		}
	}
}

func TestGetCandlesDefaultLimit(t *testing.T) {
	uc := newCandlesUC(t, seededStore(t, 50), nil)

	out, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	if len(out) != DefaultLimit {
		t.Fatalf("got %d candles, want default %d", len(out), DefaultLimit)
	}
}

func TestGetCandlesNoData(t *testing.T) {
	uc := newCandlesUC(t, repository.NewMemoryCandleStore(), nil)

	_, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "ETHUSDT"})
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("got %v, want ErrNoData", err)
	}
}

func TestGetCandlesNewestFirst(t *testing.T) {
	uc := newCandlesUC(t, seededStore(t, 5), nil)

	out, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT", RawLimit: "5"})
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("got %d candles", len(out))
	}
	// Close prices were seeded ascending over time, so newest first means
	// descending closes.
	for i := 1; i < len(out); i++ {
		if out[i-1].Close <= out[i].Close {
			t.Fatalf("not newest first: closes %v then %v", out[i-1].Close, out[i].Close)
		}
	}
}

func TestGetCandlesResolution15m(t *testing.T) {
	uc := newCandlesUC(t, seededStore(t, 30), nil)

	out, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT", Resolution: string(domrepo.Res15m), RawLimit: "10"})
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d buckets, want 2", len(out))
	}
}

func TestGetCandlesNotReadyMetric(t *testing.T) {
	m := newFakeMetrics()
	uc := NewCandlesUseCase(&erroringStore{err: pgdb.ErrNotReady}, nil, m, newTestLogger(t))

	_, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT"})
	if !errors.Is(err, pgdb.ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
	if m.errors["not_ready"] != 1 {
		t.Errorf("not_ready counter = %d, want 1", m.errors["not_ready"])
	}
	if m.errors["query_failed"] != 0 {
		t.Errorf("query_failed counter = %d, want 0", m.errors["query_failed"])
	}
}

func TestGetCandlesQueryFailedMetric(t *testing.T) {
	m := newFakeMetrics()
	uc := NewCandlesUseCase(&erroringStore{err: &models.QueryError{Code: "08006", Message: "connection failure"}}, nil, m, newTestLogger(t))

	_, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT"})
	var qe *models.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("got %v, want QueryError", err)
	}
	if m.errors["query_failed"] != 1 {
		t.Errorf("query_failed counter = %d, want 1", m.errors["query_failed"])
	}
}

func TestGetCandlesCacheHit(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	store := seededStore(t, 5)
	uc := newCandlesUC(t, store, mc)

	first, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT", RawLimit: "5"})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Mutate the store; a cached response must not see the change.
	newer := testCandle(time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC), 500, 400, 450, 9)
	if err := store.Upsert(context.Background(), newer); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTCUSDT", RawLimit: "5"})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(second) != len(first) || second[0] != first[0] {
		t.Fatalf("expected cached response, got %+v vs %+v", second[0], first[0])
	}
}
