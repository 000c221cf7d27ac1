package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"salesetl/internal/app"
	"salesetl/internal/config"
	"salesetl/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to config.yaml or configs/config.yaml)")
	inDir := flag.String("in", "", "input folder, overrides input_folder")
	outDir := flag.String("out", "", "output folder, overrides output_folder")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *inDir != "" {
		cfg.InputFolder = *inDir
	}
	if *outDir != "" {
		cfg.OutputFolder = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.Any("error", err))
		os.Exit(1)
	}

	code := run(cfg, logger)
	infrastructure.CloseLogFile()
	os.Exit(code)
}

func run(cfg *config.Config, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := application.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	summary, err := application.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "ETL run failed", slog.Any("error", err))
		return 1
	}

	logger.InfoContext(ctx, "ETL run complete",
		slog.String("run_id", summary.RunID),
		slog.String("status", summary.Status),
		slog.String("cleaned_file", summary.CleanFile),
		slog.String("dashboard_file", summary.DashboardFile))
	return 0
}
