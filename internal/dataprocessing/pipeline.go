package dataprocessing

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesetl/pkg/contracts/domain"
)

// ErrEmptyInput signals that there is nothing to process. No stage runs on
// an empty table; callers skip the rest of the run.
var ErrEmptyInput = errors.New("input table is empty")

// Result is the output of one pipeline run
type Result struct {
	Cleaned *domain.Table
	Report  *domain.Report
	Stats   CleanStats
}

// Pipeline chains normalization, cleaning and aggregation
type Pipeline struct {
	config Config
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for stage summaries
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer sets the tracer used for stage spans
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// NewPipeline creates a pipeline over the given mappings
func NewPipeline(config Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: config,
		logger: slog.Default(),
		tracer: otel.Tracer("salesetl/dataprocessing"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes a raw table. It returns ErrEmptyInput for a table with no
// rows; otherwise it always succeeds.
func (p *Pipeline) Run(ctx context.Context, raw *domain.Table) (*Result, error) {
	if raw == nil || raw.Len() == 0 {
		p.logger.WarnContext(ctx, "no rows to process, skipping pipeline")
		return nil, ErrEmptyInput
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int("rows.raw", raw.Len())))
	defer span.End()

	normalized := p.normalize(ctx, raw)
	cleaned, stats := p.clean(ctx, normalized)
	report := p.aggregate(ctx, cleaned)

	span.SetAttributes(
		attribute.Int("rows.cleaned", cleaned.Len()),
		attribute.Int("rows.duplicates", stats.DuplicatesRemoved))

	return &Result{Cleaned: cleaned, Report: report, Stats: stats}, nil
}

func (p *Pipeline) normalize(ctx context.Context, raw *domain.Table) *domain.Table {
	_, span := p.tracer.Start(ctx, "pipeline.normalize")
	defer span.End()

	out := NormalizeWith(raw, NewColumnResolver(p.config.ColumnMap.Layers()...))
	p.logger.DebugContext(ctx, "normalized columns",
		slog.Any("source_columns", raw.Columns()),
		slog.Any("columns", out.Columns()))
	return out
}

func (p *Pipeline) clean(ctx context.Context, normalized *domain.Table) (*domain.Table, CleanStats) {
	_, span := p.tracer.Start(ctx, "pipeline.clean")
	defer span.End()

	cleaned, stats := Clean(normalized, p.config.CategoryMap.Resolve())
	p.logger.InfoContext(ctx, "cleaned records",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("unparsed_dates", stats.UnparsedDates),
		slog.Int("unparsed_times", stats.UnparsedTimes),
		slog.Int("unparsed_numbers", stats.UnparsedNumbers),
		slog.Int("products_filled", stats.ProductsFilled),
		slog.Int("categories_remapped", stats.CategoriesRemapped))
	return cleaned, stats
}

func (p *Pipeline) aggregate(ctx context.Context, cleaned *domain.Table) *domain.Report {
	_, span := p.tracer.Start(ctx, "pipeline.aggregate")
	defer span.End()

	report := Aggregate(cleaned)
	for _, tbl := range report.Tables() {
		if tbl.Outcome == domain.GroupMissingColumns {
			p.logger.InfoContext(ctx, "aggregate skipped, columns absent",
				slog.String("table", string(tbl.Name)),
				slog.Any("missing_columns", tbl.MissingColumns))
		}
	}
	p.logger.InfoContext(ctx, "computed aggregates",
		slog.Float64("total_sales", report.KPIs.TotalSales),
		slog.Int("total_transactions", report.KPIs.TotalTransactions),
		slog.Float64("avg_ticket", report.KPIs.AvgTicket),
		slog.Int("unique_products", report.KPIs.UniqueProducts),
		slog.String("top_product", report.KPIs.TopProduct),
		slog.Int64("total_units", report.KPIs.TotalUnits))
	return report
}
