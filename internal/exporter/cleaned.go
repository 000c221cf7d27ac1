package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// Exporter writes the cleaned dataset and the dashboard workbook
type Exporter struct {
	logger *slog.Logger
	tracer trace.Tracer
	csv    *CSVWriter
	opts   DashboardOptions
}

// Option configures an Exporter
type Option func(*Exporter)

// WithTracer sets the tracer used for export spans
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Exporter) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithDashboardOptions overrides the dashboard defaults
func WithDashboardOptions(opts DashboardOptions) Option {
	return func(e *Exporter) {
		e.opts = opts.withDefaults()
	}
}

// NewExporter creates an exporter
func NewExporter(logger *slog.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	e := &Exporter{
		logger: logger,
		tracer: otel.Tracer("salesetl/exporter"),
		csv:    NewCSVWriter(logger),
		opts:   DashboardOptions{}.withDefaults(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteCleaned writes the cleaned table to path, as CSV when the extension
// is .csv and as a single-sheet workbook otherwise
func (e *Exporter) WriteCleaned(ctx context.Context, path string, t *domain.Table) error {
	_, span := e.tracer.Start(ctx, "export.cleaned",
		trace.WithAttributes(
			attribute.String("path", path),
			attribute.Int("rows", t.Len())))
	defer span.End()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = e.writeCleanedCSV(path, t)
	} else {
		err = e.writeCleanedXLSX(path, t)
	}
	if err != nil {
		return apperrors.NewExportError("failed to write cleaned data", err).WithContext("path", path)
	}

	e.logger.InfoContext(ctx, "wrote cleaned data",
		slog.String("path", path),
		slog.Int("rows", t.Len()))
	return nil
}

func (e *Exporter) writeCleanedCSV(path string, t *domain.Table) error {
	sw, err := e.csv.CreateStreamWriter(path, t.Columns())
	if err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := sw.WriteRow(t.Row(i)); err != nil {
			sw.Close()
			return err
		}
	}
	return sw.Close()
}

func (e *Exporter) writeCleanedXLSX(path string, t *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(numFmtDate)})
	if err != nil {
		return err
	}
	if err := writeTableSheet(f, "Sheet1", t, dateStyle); err != nil {
		return err
	}
	return saveWorkbook(f, path)
}

// writeTableSheet streams a header row and every table row into sheet.
// Dates get dateStyle; missing cells are left blank.
func writeTableSheet(f *excelize.File, sheet string, t *domain.Table, dateStyle int) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if d, ok := v.Date(); ok {
				cells[j] = excelize.Cell{StyleID: dateStyle, Value: d}
				continue
			}
			cells[j] = v.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// setTableSheet writes the table through the cell API. Sheets that are
// restyled or hidden after writing use this instead of writeTableSheet.
func setTableSheet(f *excelize.File, sheet string, t *domain.Table, dateStyle int) error {
	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
		for j, v := range row {
			if _, ok := v.Date(); !ok {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, ref, ref, dateStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func saveWorkbook(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return f.SaveAs(path)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
