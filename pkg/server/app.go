package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CandlePull/internal/domain/repository"
	"CandlePull/internal/usecase"
	"CandlePull/pkg/cache"
	"CandlePull/pkg/config"
	xhttp "CandlePull/pkg/http"
	"CandlePull/pkg/logger"
	"CandlePull/pkg/postgres"
)

// App is the long-running read-path service: HTTP API plus the store
// readiness probe.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	pg      *postgres.Client
	cache   cache.Service
	handler xhttp.Handler
}

// NewApp assembles the service from its wired components.
func NewApp(cfg *config.Config, log *logger.Logger, pg *postgres.Client, c cache.Service, handler xhttp.Handler) *App {
	return &App{cfg: cfg, log: log, pg: pg, cache: c, handler: handler}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep probing until the store comes up; readiness gates the query path.
	go a.pg.Probe(ctx, a.cfg.Postgres.ProbeInterval)

	srv := xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := srv.Start(); err != nil {
		return err
	}
	a.log.Info("service started",
		logger.Int("port", a.cfg.Server.Port),
		logger.String("environment", a.cfg.Environment),
		logger.Bool("store_ready", a.pg.Ready()),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		a.log.Error("http server shutdown", logger.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close", logger.Error(err))
		}
	}
	a.pg.Close()
	a.log.Info("service stopped")
	return nil
}

// IngestApp is the one-shot scheduled ingester: a single pull-and-upsert run
// against the upstream API, then exit.
type IngestApp struct {
	cfg       *config.Config
	log       *logger.Logger
	pg        *postgres.Client
	ingester  *usecase.Ingester
	publisher repository.CandlePublisher
}

// NewIngestApp assembles the ingester. publisher may be nil.
func NewIngestApp(cfg *config.Config, log *logger.Logger, pg *postgres.Client, ingester *usecase.Ingester, publisher repository.CandlePublisher) *IngestApp {
	return &IngestApp{cfg: cfg, log: log, pg: pg, ingester: ingester, publisher: publisher}
}

// Run executes one ingestion cycle under the configured timeout.
func (a *IngestApp) Run(ctx context.Context) error {
	defer a.pg.Close()
	if a.publisher != nil {
		defer func() {
			if err := a.publisher.Close(); err != nil {
				a.log.Warn("publisher close", logger.Error(err))
			}
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, a.cfg.Ingest.RunTimeout)
	defer cancel()

	return a.ingester.Run(runCtx)
}
