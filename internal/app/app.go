package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesetl/internal/config"
	"salesetl/internal/dataprocessing"
	"salesetl/internal/exporter"
	"salesetl/internal/files"
	"salesetl/internal/infrastructure"
	"salesetl/internal/ingest"
	"salesetl/pkg/contracts/domain"
)

const (
	VERSION = "1.0.0"
	AppName = "salesetl"
)

// Run statuses recorded on the run_duration histogram
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Application wires one ETL run from discovery to export
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	discovery *files.Discovery
	reader    *ingest.Reader
	pipeline  *dataprocessing.Pipeline
	exporter  *exporter.Exporter
	tracer    trace.Tracer
}

// Summary describes a finished run
type Summary struct {
	RunID             string
	Status            string
	FilesRead         int
	FilesFailed       int
	RowsIngested      int
	RowsCleaned       int
	DuplicatesRemoved int
	CleanFile         string
	DashboardFile     string
	KPIs              domain.KPISet
}

// NewApplication prepares directories and telemetry for a run
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths := cfg.Paths()
	if err := paths.EnsureDirectories(logger); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: VERSION,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		TraceFile:      paths.TraceFile,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	tracer := providers.Tracer
	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		discovery:     files.NewDiscovery(""),
		reader:        ingest.NewReader(logger, tracer),
		pipeline: dataprocessing.NewPipeline(cfg.Pipeline(),
			dataprocessing.WithLogger(logger),
			dataprocessing.WithTracer(tracer)),
		exporter: exporter.NewExporter(logger, exporter.WithTracer(tracer)),
		tracer:   tracer,
	}, nil
}

// Run discovers the input files, processes them and writes both outputs.
// No input files, or no rows across them, ends the run early without error.
func (a *Application) Run(ctx context.Context) (summary *Summary, err error) {
	start := time.Now()
	ctx = infrastructure.EnsureRunID(ctx)
	ctx, span := a.tracer.Start(ctx, "etl.run")

	summary = &Summary{RunID: infrastructure.GetRunID(ctx), Status: StatusOK}
	defer func() {
		if err != nil {
			summary.Status = StatusError
			infrastructure.RecordError(ctx, err)
		}
		span.SetAttributes(attribute.String("status", summary.Status))
		span.End()

		elapsed := time.Since(start)
		a.OTelProviders.Metrics.RecordRun(ctx, elapsed, summary.Status)
		a.Logger.InfoContext(ctx, "etl finished",
			slog.String("status", summary.Status),
			slog.Duration("elapsed", elapsed))
	}()

	a.Logger.InfoContext(ctx, "etl starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("input_dir", a.Paths.InputDir),
		slog.String("output_dir", a.Paths.OutputDir))

	inputs, err := a.discovery.FindInputFiles(a.Paths.InputDir)
	if err != nil {
		return summary, fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputs) == 0 {
		a.Logger.WarnContext(ctx, "no input files found", slog.String("folder", a.Paths.InputDir))
		summary.Status = StatusSkipped
		return summary, nil
	}

	ingested := a.reader.ReadAll(ctx, inputs)
	summary.FilesFailed = ingested.Failed()
	summary.FilesRead = len(ingested.Files) - summary.FilesFailed
	summary.RowsIngested = ingested.Table.Len()
	a.recordIngest(ctx, summary)

	result, err := a.pipeline.Run(ctx, ingested.Table)
	if errors.Is(err, dataprocessing.ErrEmptyInput) {
		a.Logger.WarnContext(ctx, "no rows read from input files, nothing to export",
			slog.Int("files", len(inputs)))
		summary.Status = StatusSkipped
		return summary, nil
	}
	if err != nil {
		return summary, err
	}
	summary.RowsCleaned = result.Cleaned.Len()
	summary.DuplicatesRemoved = result.Stats.DuplicatesRemoved
	summary.KPIs = result.Report.KPIs
	if m := a.OTelProviders.Metrics; m != nil {
		m.RowsCleaned.Add(ctx, int64(summary.RowsCleaned))
		m.DuplicatesRemoved.Add(ctx, int64(summary.DuplicatesRemoved))
	}

	if err := a.exporter.WriteCleaned(ctx, a.Paths.CleanFile, result.Cleaned); err != nil {
		return summary, err
	}
	summary.CleanFile = a.Paths.CleanFile

	if err := a.exporter.WriteDashboard(ctx, a.Paths.DashboardFile, result.Cleaned, result.Report); err != nil {
		return summary, err
	}
	summary.DashboardFile = a.Paths.DashboardFile

	return summary, nil
}

func (a *Application) recordIngest(ctx context.Context, s *Summary) {
	m := a.OTelProviders.Metrics
	if m == nil {
		return
	}
	m.FilesRead.Add(ctx, int64(s.FilesRead))
	m.FilesFailed.Add(ctx, int64(s.FilesFailed))
	m.RowsIngested.Add(ctx, int64(s.RowsIngested))
}

// Shutdown writes the metrics textfile, if configured, and flushes telemetry
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Paths.MetricsFile != "" {
		if err := a.OTelProviders.WriteMetrics(a.Paths.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			a.Logger.DebugContext(ctx, "wrote metrics textfile", slog.String("path", a.Paths.MetricsFile))
		}
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
