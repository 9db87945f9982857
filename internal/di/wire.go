//go:build wireinject
// +build wireinject

package di

import (
	"CandlePull/pkg/config"
	"CandlePull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the read-path service.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideExecutor,
		ProvideCache,

		// Repositories
		ProvideCandleStore,

		// Use cases and transport
		ProvideCandlesUseCase,
		ProvideCandlesHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeIngester wires up the one-shot ingestion application.
func InitializeIngester(cfg *config.Config) (*server.IngestApp, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideExecutor,
		ProvideKafkaPublisher,

		// Repositories
		ProvideCandleStore,
		ProvideBinanceClient,

		// Use case
		ProvideIngester,

		// Application
		ProvideIngestApp,
	)
	return &server.IngestApp{}, nil
}
