package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ServiceVersion = "1.0.0"
	MeterName      = "salesetl"
	// MetricsNamespace prefixes every exported metric name
	MetricsNamespace = "salesetl"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string // "stdout", "file", "none"
	TraceFile      string
	// Console receives stdout trace output; defaults to os.Stdout
	Console io.Writer
}

// OTelProviders holds the OpenTelemetry providers of one run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *RunMetrics
	// Registry is gathered when the metrics textfile is written
	Registry *promclient.Registry
	Logger   *slog.Logger

	traceFile *os.File
}

// InitializeOTel sets up tracing and run metrics. Nothing is installed
// globally; callers hand the tracer to the components that need it.
func InitializeOTel(cfg OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = ServiceVersion
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}

	res := createResource(cfg)
	providers := &OTelProviders{Logger: logger}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := initializeMetrics(cfg, res, providers); err != nil {
		providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter))
	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(cfg OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(cfg.Console),
			stdouttrace.WithPrettyPrint(),
		)
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, ferr := os.Create(cfg.TraceFile)
		if ferr != nil {
			return fmt.Errorf("failed to create trace file: %w", ferr)
		}
		providers.traceFile = f
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(f))
	case "none", "":
		providers.Tracer = noop.NewTracerProvider().Tracer(MeterName)
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	return nil
}

// initializeMetrics wires an OTel meter to a private Prometheus registry
func initializeMetrics(cfg OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithNamespace(MetricsNamespace),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	providers.Metrics, err = CreateRunMetrics(providers.Meter)
	return err
}

// RunMetrics holds the counters recorded by one ETL run
type RunMetrics struct {
	FilesRead         metric.Int64Counter
	FilesFailed       metric.Int64Counter
	RowsIngested      metric.Int64Counter
	RowsCleaned       metric.Int64Counter
	DuplicatesRemoved metric.Int64Counter
	RunDuration       metric.Float64Histogram
}

// CreateRunMetrics creates the ETL run instruments
func CreateRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	filesRead, err := meter.Int64Counter(
		"files_read",
		metric.WithDescription("Input files read successfully"),
	)
	if err != nil {
		return nil, err
	}

	filesFailed, err := meter.Int64Counter(
		"files_failed",
		metric.WithDescription("Input files skipped because they could not be read"),
	)
	if err != nil {
		return nil, err
	}

	rowsIngested, err := meter.Int64Counter(
		"rows_ingested",
		metric.WithDescription("Rows read from all input files"),
	)
	if err != nil {
		return nil, err
	}

	rowsCleaned, err := meter.Int64Counter(
		"rows_cleaned",
		metric.WithDescription("Rows in the cleaned dataset"),
	)
	if err != nil {
		return nil, err
	}

	duplicates, err := meter.Int64Counter(
		"duplicates_removed",
		metric.WithDescription("Exact duplicate rows dropped during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"run_duration",
		metric.WithDescription("Wall time of an ETL run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		FilesRead:         filesRead,
		FilesFailed:       filesFailed,
		RowsIngested:      rowsIngested,
		RowsCleaned:       rowsCleaned,
		DuplicatesRemoved: duplicates,
		RunDuration:       runDuration,
	}, nil
}

// RecordRun records the outcome of a finished run. A nil receiver is a no-op.
func (m *RunMetrics) RecordRun(ctx context.Context, duration time.Duration, status string) {
	if m == nil {
		return
	}
	m.RunDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", status)))
}

// WriteMetrics writes the registry in the Prometheus text format, for
// node_exporter's textfile collector
func (p *OTelProviders) WriteMetrics(path string) error {
	if p.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Shutdown flushes pending spans and closes the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if p.traceFile != nil {
		if err := p.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		p.traceFile = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
