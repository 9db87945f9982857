package main

import (
	"context"
	"flag"
	"log"
	"os"

	"CandlePull/internal/di"
	"CandlePull/pkg/config"
)

// One ingestion cycle per invocation; an external scheduler (cron,
// Kubernetes CronJob) drives the cadence.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbol=%s", cfg.Environment, cfg.Binance.Symbol)

	app, err := di.InitializeIngester(cfg)
	if err != nil {
		log.Fatalf("ingester initialization failed: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("ingestion run failed: %v", err)
		os.Exit(1)
	}
}
