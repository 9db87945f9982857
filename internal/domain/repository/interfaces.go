package repository

import (
	"context"
	"time"

	"CandlePull/internal/domain/models"
)

// CandleStore is the persistence boundary for minute candles and the
// pre-aggregated resolutions consumed read-only by the query path.
type CandleStore interface {
	// LatestOpenTime returns the most recent stored open_time for symbol.
	// The bool is false when the store holds no rows for the symbol.
	LatestOpenTime(ctx context.Context, symbol string) (time.Time, bool, error)

	// Upsert writes one candle, merging on (symbol, open_time) conflict per
	// models.Merge. Safe to repeat with identical input.
	Upsert(ctx context.Context, c models.Candle) error

	// LatestCandles returns up to limit candles for the resolution,
	// newest first.
	LatestCandles(ctx context.Context, symbol string, res Resolution, limit int) ([]models.Candle, error)
}

// KlineSource fetches an ordered sequence of raw minute candles from the
// upstream market-data API, oldest first.
type KlineSource interface {
	FetchKlines(ctx context.Context, symbol string, minutes int) ([]models.Candle, error)
}

// CandlePublisher emits upserted candles for downstream consumers, e.g. the
// mechanism maintaining the aggregate relations.
type CandlePublisher interface {
	PublishUpserts(ctx context.Context, candles []models.Candle) error
	Close() error
}

// Metrics records operational telemetry.
type Metrics interface {
	RecordCandleUpserted(symbol string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordQueryRetry(op string)
}
