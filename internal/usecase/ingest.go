package usecase

import (
	"context"
	"fmt"
	"time"

	"CandlePull/internal/domain/models"
	"CandlePull/internal/domain/repository"
	"CandlePull/pkg/logger"
)

// bootstrapLookbackMinutes is the window fetched when the store holds no
// rows for the symbol: seven days of minute candles.
const bootstrapLookbackMinutes = 7 * 24 * 60

// LookbackMinutes computes how many minutes of klines a run must fetch.
// With no prior data it is the bootstrap window; otherwise the whole-minute
// distance from the latest stored candle to now, at least 1 so the current
// minute is always re-fetched. A stored candle in the future (clock skew)
// also yields 1.
func LookbackMinutes(last time.Time, hasLast bool, now time.Time) int {
	if !hasLast {
		return bootstrapLookbackMinutes
	}
	minutes := int(now.Sub(last) / time.Minute)
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Ingester runs one pull-and-upsert cycle against the upstream API.
type Ingester struct {
	store     repository.CandleStore
	source    repository.KlineSource
	publisher repository.CandlePublisher
	metrics   repository.Metrics
	l         *logger.Logger
	symbol    string
	now       func() time.Time
}

// NewIngester creates an ingester for one symbol.
func NewIngester(store repository.CandleStore, source repository.KlineSource, metrics repository.Metrics, l *logger.Logger, symbol string) *Ingester {
	return &Ingester{
		store:   store,
		source:  source,
		metrics: metrics,
		l:       l,
		symbol:  symbol,
		now:     time.Now,
	}
}

// SetPublisher installs an optional downstream publisher for upserted
// candles. Publishing is best effort and never fails the run.
func (i *Ingester) SetPublisher(p repository.CandlePublisher) { i.publisher = p }

// Run executes one ingestion cycle: compute the lookback window, fetch
// klines, upsert them oldest first. Any upsert failure stops the run; writes
// already made stay, so the next run resumes from the new latest candle.
func (i *Ingester) Run(ctx context.Context) error {
	start := i.now()

	last, hasLast, err := i.store.LatestOpenTime(ctx, i.symbol)
	if err != nil {
		i.metrics.RecordError("query_failed")
		return fmt.Errorf("latest open time: %w", err)
	}

	minutes := LookbackMinutes(last, hasLast, i.now())
	i.l.Info("ingestion window computed",
		logger.String("symbol", i.symbol),
		logger.Bool("bootstrap", !hasLast),
		logger.Int("minutes", minutes),
	)

	candles, err := i.source.FetchKlines(ctx, i.symbol, minutes)
	if err != nil {
		i.metrics.RecordError(classifyFetchError(err))
		return fmt.Errorf("fetch klines: %w", err)
	}
	if len(candles) == 0 {
		i.l.Warn("upstream returned no klines", logger.String("symbol", i.symbol))
		return nil
	}

	for n, c := range candles {
		if err := i.store.Upsert(ctx, c); err != nil {
			i.metrics.RecordError("query_failed")
			return fmt.Errorf("upsert candle %d of %d (open %s): %w", n+1, len(candles), c.OpenTime.Format(time.RFC3339), err)
		}
		i.metrics.RecordCandleUpserted(i.symbol)
	}

	i.metrics.RecordLastClose(i.symbol, candles[len(candles)-1].Close)

	if i.publisher != nil {
		if err := i.publisher.PublishUpserts(ctx, candles); err != nil {
			i.l.Warn("publish upserts failed", logger.Error(err))
			i.metrics.RecordError("publish_failed")
		}
	}

	elapsed := i.now().Sub(start)
	i.metrics.RecordLatency("ingest_run", elapsed.Seconds())
	i.l.Info("ingestion run complete",
		logger.String("symbol", i.symbol),
		logger.Int("candles", len(candles)),
		logger.Duration("elapsed_ms", elapsed),
	)
	return nil
}

func classifyFetchError(err error) string {
	switch err.(type) {
	case *models.UpstreamError:
		return "upstream_unavailable"
	case *models.MalformedKlineError:
		return "malformed_upstream_data"
	default:
		return "fetch_failed"
	}
}
