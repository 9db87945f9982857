package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
)

// MemoryCandleStore is an in-memory repository.CandleStore used for local
// development and tests. Coarser resolutions are aggregated on read, the way
// the SQL views do.
type MemoryCandleStore struct {
	mu      sync.RWMutex
	candles map[string]map[int64]models.Candle // symbol -> unix minute -> candle
}

// NewMemoryCandleStore creates an empty store.
func NewMemoryCandleStore() *MemoryCandleStore {
	return &MemoryCandleStore{candles: make(map[string]map[int64]models.Candle)}
}

func (s *MemoryCandleStore) LatestOpenTime(_ context.Context, symbol string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySymbol, ok := s.candles[symbol]
	if !ok || len(bySymbol) == 0 {
		return time.Time{}, false, nil
	}

	var latest int64
	for minute := range bySymbol {
		if minute > latest {
			latest = minute
		}
	}
	return time.Unix(latest*60, 0).UTC(), true, nil
}

func (s *MemoryCandleStore) Upsert(_ context.Context, c models.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySymbol, ok := s.candles[c.Symbol]
	if !ok {
		bySymbol = make(map[int64]models.Candle)
		s.candles[c.Symbol] = bySymbol
	}

	key := c.OpenTime.Unix() / 60
	if existing, ok := bySymbol[key]; ok {
		bySymbol[key] = models.Merge(existing, c)
	} else {
		bySymbol[key] = c
	}
	return nil
}

func (s *MemoryCandleStore) LatestCandles(_ context.Context, symbol string, res domrepo.Resolution, limit int) ([]models.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySymbol := s.candles[symbol]
	if len(bySymbol) == 0 {
		return nil, nil
	}

	minutes := make([]int64, 0, len(bySymbol))
	for minute := range bySymbol {
		minutes = append(minutes, minute)
	}
	sort.Slice(minutes, func(i, j int) bool { return minutes[i] < minutes[j] })

	bucketSecs := int64(res.Duration() / time.Second)

	type bucket struct {
		start  int64
		candle models.Candle
	}
	buckets := make([]bucket, 0)

	// Oldest first, so the first candle in a bucket sets open and the last
	// sets close.
	for _, minute := range minutes {
		c := bySymbol[minute]
		start := (minute * 60) / bucketSecs * bucketSecs

		if len(buckets) > 0 && buckets[len(buckets)-1].start == start {
			agg := &buckets[len(buckets)-1].candle
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Close = c.Close
			agg.BaseVolume += c.BaseVolume
			continue
		}

		agg := c
		agg.OpenTime = time.Unix(start, 0).UTC()
		buckets = append(buckets, bucket{start: start, candle: agg})
	}

	// Newest first.
	out := make([]models.Candle, 0, limit)
	for i := len(buckets) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, buckets[i].candle)
	}
	return out, nil
}
