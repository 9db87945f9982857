package di

import (
	"context"
	"fmt"
	"time"

	"CandlePull/internal/domain/repository"
	"CandlePull/internal/handler/api"
	internalrepo "CandlePull/internal/repository"
	"CandlePull/internal/service/binance"
	"CandlePull/internal/usecase"
	"CandlePull/pkg/cache"
	"CandlePull/pkg/config"
	xhttp "CandlePull/pkg/http"
	pkgkafka "CandlePull/pkg/kafka"
	"CandlePull/pkg/logger"
	"CandlePull/pkg/metrics"
	"CandlePull/pkg/postgres"
	"CandlePull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvidePostgresClient creates the Postgres client and ensures the candle
// relations exist. An unreachable store is not fatal; the service starts,
// probes until the store comes up and runs schema init on the first
// successful probe.
func ProvidePostgresClient(cfg *config.Config, l *logger.Logger) (*postgres.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := postgres.NewClient(ctx,
		postgres.WithDSN(cfg.Postgres.DSN),
		postgres.WithPoolSize(cfg.Postgres.MaxConns, cfg.Postgres.MinConns),
		postgres.WithDialTimeout(cfg.Postgres.DialTimeout),
		postgres.WithStatementTimeout(cfg.Postgres.StatementTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	if client.Ready() {
		if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
			client.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return client, nil
	}

	client.SetReadyHook(func() {
		initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer initCancel()
		if err := client.InitSchema(initCtx, internalrepo.Schema()); err != nil {
			l.Error("postgres schema init after probe", logger.Error(err))
		}
	})
	return client, nil
}

// ProvideExecutor creates the retrying query executor.
func ProvideExecutor(client *postgres.Client, l *logger.Logger, m repository.Metrics) *postgres.Executor {
	exec := postgres.NewExecutor(client, postgres.DefaultRetryPolicy(), l)
	exec.SetRetryHook(m.RecordQueryRetry)
	return exec
}

// ProvideCandleStore creates the Postgres-backed candle store.
func ProvideCandleStore(client *postgres.Client, exec *postgres.Executor, l *logger.Logger) repository.CandleStore {
	return internalrepo.NewPostgresCandleStore(client, exec, l)
}

// ProvideCache creates the response cache: Redis when configured, in-memory
// otherwise.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.Service, error) {
	if cfg.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix("candlepull"),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		l.Info("cache backend: redis", logger.String("addr", cfg.Redis.Addr))
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBinanceClient creates the upstream kline source.
func ProvideBinanceClient(cfg *config.Config, l *logger.Logger) repository.KlineSource {
	return binance.NewClient(l,
		binance.WithBaseURL(cfg.Binance.BaseURL),
		binance.WithRequestTimeout(cfg.Binance.RequestTimeout),
		binance.WithRateLimit(cfg.Binance.RatePerSec, cfg.Binance.Burst),
	)
}

// ProvideCandlesUseCase creates the read-path use case.
func ProvideCandlesUseCase(store repository.CandleStore, c cache.Service, m repository.Metrics, l *logger.Logger) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store, c, m, l)
}

// ProvideCandlesHandler creates the HTTP handler.
func ProvideCandlesHandler(l *logger.Logger, uc *usecase.CandlesUseCase, pg *postgres.Client) xhttp.Handler {
	return api.NewCandlesHandler(l, uc, pg)
}

// ProvideApp creates the long-running service.
func ProvideApp(cfg *config.Config, l *logger.Logger, pg *postgres.Client, c cache.Service, handler xhttp.Handler) *server.App {
	return server.NewApp(cfg, l, pg, c, handler)
}

// ProvideKafkaPublisher creates the candle publisher when Kafka is enabled,
// nil otherwise.
func ProvideKafkaPublisher(cfg *config.Config) (repository.CandlePublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaCandlePublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideIngester creates the one-shot ingester.
func ProvideIngester(cfg *config.Config, store repository.CandleStore, source repository.KlineSource, publisher repository.CandlePublisher, m repository.Metrics, l *logger.Logger) *usecase.Ingester {
	ing := usecase.NewIngester(store, source, m, l, cfg.Binance.Symbol)
	if publisher != nil {
		ing.SetPublisher(publisher)
	}
	return ing
}

// ProvideIngestApp creates the ingester application.
func ProvideIngestApp(cfg *config.Config, l *logger.Logger, pg *postgres.Client, ing *usecase.Ingester, publisher repository.CandlePublisher) *server.IngestApp {
	return server.NewIngestApp(cfg, l, pg, ing, publisher)
}
