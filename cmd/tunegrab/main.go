package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/k0kubun/go-ansi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"

	"tunegrab/config"
	"tunegrab/internal/pipeline"
	"tunegrab/internal/progress"
	"tunegrab/internal/storage"
)

const pollInterval = time.Second

func main() {
	url := flag.String("url", "", "Media URL to resolve and download (required)")
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *url == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	// Keep the bar readable: only warnings and errors reach the terminal.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	publisher, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to set up storage:", err)
		os.Exit(1)
	}
	defer publisher.Close()

	tracker := progress.NewStore()
	metrics := pipeline.NewMetrics(prometheus.NewRegistry())
	runner := pipeline.NewRunner(cfg, tracker, publisher, metrics)

	jobID := uuid.New().String()
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), jobID, *url)
	}()

	bar := progressbar.NewOptions(
		100,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription("Starting..."),
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				_ = bar.Clear()
				if snap, readErr := tracker.Read(jobID); readErr == nil && snap.Message != "" {
					fmt.Fprintln(os.Stderr, "Job failed:", snap.Message)
				}
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			_ = bar.Finish()
			fmt.Println()
			if snap, readErr := tracker.Read(jobID); readErr == nil {
				fmt.Println(snap.Message)
			}
			return
		case <-ticker.C:
			snap, err := tracker.Read(jobID)
			if err != nil {
				continue
			}
			_ = bar.Set(int(snap.Percent))
			bar.Describe(string(snap.Phase) + ": " + snap.Message)
		}
	}
}
