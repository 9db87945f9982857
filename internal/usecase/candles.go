package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"CandlePull/internal/domain/models"
	"CandlePull/internal/domain/repository"
	"CandlePull/pkg/cache"
	"CandlePull/pkg/logger"
	"CandlePull/pkg/postgres"
)

// Query limit bounds for the read API.
const (
	MinLimit     = 1
	MaxLimit     = 10000
	DefaultLimit = 24
)

// CandlesUseCase serves the latest candles for a symbol and resolution.
type CandlesUseCase struct {
	store   repository.CandleStore
	cache   cache.Service
	metrics repository.Metrics
	l       *logger.Logger
}

// NewCandlesUseCase creates the read-path use case. cache may be nil.
func NewCandlesUseCase(store repository.CandleStore, c cache.Service, metrics repository.Metrics, l *logger.Logger) *CandlesUseCase {
	return &CandlesUseCase{store: store, cache: c, metrics: metrics, l: l}
}

// GetCandlesParams carries the raw request inputs; validation happens here
// so the handler only maps errors to status codes.
type GetCandlesParams struct {
	Symbol     string
	Resolution string
	RawLimit   string
}

// GetCandles validates the request, consults the cache, queries the store
// and projects rows for transport, newest first.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) ([]models.Candlestick, error) {
	res := repository.DefaultResolution()
	if p.Resolution != "" {
		res = repository.Resolution(p.Resolution)
		if !repository.IsValidResolution(res) {
			return nil, &models.InvalidResolutionError{Resolution: p.Resolution, Valid: repository.Resolutions()}
		}
	}

	limit := DefaultLimit
	if p.RawLimit != "" {
		n, err := strconv.Atoi(p.RawLimit)
		if err != nil || n < MinLimit || n > MaxLimit {
			return nil, &models.InvalidLimitError{Raw: p.RawLimit, Min: MinLimit, Max: MaxLimit}
		}
		limit = n
	}

	start := time.Now()
	key := cacheKey(p.Symbol, res, limit)

	if uc.cache != nil {
		var cached []models.Candlestick
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := uc.store.LatestCandles(ctx, p.Symbol, res, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrNotReady) {
			uc.metrics.RecordError("not_ready")
		} else {
			uc.metrics.RecordError("query_failed")
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.ErrNoData
	}

	out := make([]models.Candlestick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToCandlestick())
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, out, cacheTTL(res)); err != nil {
			uc.l.Debug("cache set failed", logger.Error(err))
		}
	}

	uc.metrics.RecordLatency("get_candles", time.Since(start).Seconds())
	return out, nil
}

func cacheKey(symbol string, res repository.Resolution, limit int) string {
	return fmt.Sprintf("candles:%s:%s:%d", symbol, res, limit)
}

// cacheTTL keeps minute data nearly live while letting the coarser
// resolutions ride out a full refresh interval.
func cacheTTL(res repository.Resolution) time.Duration {
	if res == repository.Res1m {
		return 5 * time.Second
	}
	return 60 * time.Second
}
