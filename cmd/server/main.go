package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"tunegrab/config"
	"tunegrab/internal/pipeline"
	"tunegrab/internal/progress"
	"tunegrab/internal/server"
	"tunegrab/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")
	port := flag.String("port", "", "Server port (overrides the configured port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	publisher, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		slog.Error("Failed to set up storage", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	tracker := progress.NewStore()
	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	runner := pipeline.NewRunner(cfg, tracker, publisher, metrics)
	runner.StartCleanupWorker()

	if *port == "" {
		*port = cfg.Server.Port
	}

	srv := server.New(runner, tracker)
	slog.Info("Starting tunegrab API server", "port", *port)
	if err := srv.Start(*port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
