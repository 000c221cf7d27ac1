package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// Sheet names in the dashboard workbook
const (
	SheetCleaned   = "CleanedData"
	SheetMonthly   = "Monthly"
	SheetDaily     = "Daily"
	SheetProduct   = "ProductRank"
	SheetCategory  = "Category"
	SheetLocation  = "Location"
	SheetDashboard = "Dashboard"
)

// chartTopN caps the bars drawn for ranked tables
const chartTopN = 10

// seriesNameCol holds each helper sheet's series label, clear of the table
const seriesNameCol = 5

// DashboardOptions controls the dashboard text and formats
type DashboardOptions struct {
	Title          string
	Subtitle       string
	CurrencySymbol string
	// Now stamps the footer; defaults to time.Now
	Now func() time.Time
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.Title == "" {
		o.Title = "Sales Dashboard"
	}
	if o.Subtitle == "" {
		o.Subtitle = "Automated ETL output. Drop files into input/ and run salesetl."
	}
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = "₹"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// dashboardStyles are the style ids registered in one workbook
type dashboardStyles struct {
	date, title, subtitle, kpiLabel, kpiNumber, kpiMoney, kpiText, section, footer int
}

// chartSpec places one chart on the dashboard
type chartSpec struct {
	name   string
	table  domain.AggregateTable
	sheet  string
	anchor string
	kind   excelize.ChartType
	topN   int
	scaleX float64
	scaleY float64
}

// WriteDashboard writes the dashboard workbook: hidden helper sheets with
// the cleaned data and each aggregate, plus a visible Dashboard sheet with
// KPI tiles and charts. Charts over empty tables are left out.
func (e *Exporter) WriteDashboard(ctx context.Context, path string, cleaned *domain.Table, report *domain.Report) error {
	_, span := e.tracer.Start(ctx, "export.dashboard",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	charts, err := e.buildDashboard(path, cleaned, report)
	if err != nil {
		return apperrors.NewExportError("failed to write dashboard", err).WithContext("path", path)
	}

	span.SetAttributes(attribute.Int("charts", charts))
	e.logger.InfoContext(ctx, "wrote dashboard",
		slog.String("path", path),
		slog.Int("charts", charts))
	return nil
}

func (e *Exporter) buildDashboard(path string, cleaned *domain.Table, report *domain.Report) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newDashboardStyles(f, e.opts.CurrencySymbol)
	if err != nil {
		return 0, fmt.Errorf("failed to create styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetCleaned); err != nil {
		return 0, err
	}
	if err := setTableSheet(f, SheetCleaned, cleaned, styles.date); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", SheetCleaned, err)
	}

	helpers := []struct {
		sheet string
		table domain.AggregateTable
	}{
		{SheetMonthly, report.Monthly},
		{SheetDaily, report.Daily},
		{SheetProduct, report.Product},
		{SheetCategory, report.Category},
		{SheetLocation, report.Location},
	}
	for _, h := range helpers {
		if err := writeAggregateSheet(f, h.sheet, h.table, styles.date); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", h.sheet, err)
		}
	}

	idx, err := f.NewSheet(SheetDashboard)
	if err != nil {
		return 0, err
	}
	f.SetActiveSheet(idx)

	if err := e.layoutDashboard(f, styles, report.KPIs); err != nil {
		return 0, err
	}

	specs := []chartSpec{
		{"Monthly Sales", report.Monthly, SheetMonthly, "A12", excelize.Col, 0, 1.4, 1.1},
		{"Daily Sales", report.Daily, SheetDaily, "E12", excelize.Line, 0, 1.4, 1.1},
		{"Category Sales", report.Category, SheetCategory, "A28", excelize.Bar, chartTopN, 1.2, 0.9},
		{"Sales by Store", report.Location, SheetLocation, "E28", excelize.Col, chartTopN, 1.2, 0.9},
		{"Top Products", report.Product, SheetProduct, "A44", excelize.Bar, chartTopN, 1.4, 1.0},
	}
	charts := 0
	for _, spec := range specs {
		added, err := addChart(f, spec)
		if err != nil {
			return 0, fmt.Errorf("failed to add %s chart: %w", spec.sheet, err)
		}
		if added {
			charts++
		}
	}

	for _, h := range helpers {
		if err := f.SetSheetVisible(h.sheet, false); err != nil {
			return 0, err
		}
	}
	if err := f.SetSheetVisible(SheetCleaned, false); err != nil {
		return 0, err
	}

	if err := saveWorkbook(f, path); err != nil {
		return 0, err
	}
	return charts, nil
}

func newDashboardStyles(f *excelize.File, currency string) (dashboardStyles, error) {
	const muted = "666666"
	var s dashboardStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.date, &excelize.Style{CustomNumFmt: strPtr(numFmtDate)}},
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}}},
		{&s.subtitle, &excelize.Style{Font: &excelize.Font{Italic: true, Size: 10, Color: muted}}},
		{&s.kpiLabel, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 9}}},
		{&s.kpiNumber, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}, CustomNumFmt: strPtr(numFmtInteger)}},
		{&s.kpiMoney, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}, CustomNumFmt: strPtr(moneyFormat(currency))}},
		{&s.kpiText, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.section, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
		{&s.footer, &excelize.Style{Font: &excelize.Font{Italic: true, Size: 9, Color: muted}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, err
		}
		*d.dst = id
	}
	return s, nil
}

// writeAggregateSheet writes key, total_sales and, when present, units
func writeAggregateSheet(f *excelize.File, sheet string, a domain.AggregateTable, dateStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := a.Headers()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range a.Rows {
		row := []interface{}{r.Key.Interface(), r.TotalSales}
		if a.HasUnits {
			row = append(row, r.Units)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		if _, ok := r.Key.Date(); ok {
			if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Exporter) layoutDashboard(f *excelize.File, s dashboardStyles, k domain.KPISet) error {
	sh := SheetDashboard

	if err := f.SetSheetView(sh, 0, &excelize.ViewOptions{
		ShowGridLines: boolPtr(false),
		ZoomScale:     floatPtr(110),
	}); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "A", "L", 16); err != nil {
		return err
	}
	for r := 1; r <= 60; r++ {
		if err := f.SetRowHeight(sh, r, 20); err != nil {
			return err
		}
	}

	write := func(cell string, value interface{}, style int) error {
		if err := f.SetCellValue(sh, cell, value); err != nil {
			return err
		}
		return f.SetCellStyle(sh, cell, cell, style)
	}

	if err := f.MergeCell(sh, "A1", "F1"); err != nil {
		return err
	}
	if err := f.MergeCell(sh, "A2", "F2"); err != nil {
		return err
	}
	if err := write("A1", e.opts.Title, s.title); err != nil {
		return err
	}
	if err := write("A2", e.opts.Subtitle, s.subtitle); err != nil {
		return err
	}

	// tiles follow KPISet.Entries order
	tiles := []struct {
		label, value, title string
		style               int
	}{
		{"A4", "A5", "Total Sales", s.kpiMoney},
		{"C4", "C5", "Transactions", s.kpiNumber},
		{"E4", "E5", "Avg Ticket", s.kpiMoney},
		{"A7", "A8", "Unique Products", s.kpiNumber},
		{"E7", "E8", "Top Product", s.kpiText},
		{"C7", "C8", "Total Units", s.kpiNumber},
	}
	for i, entry := range k.Entries() {
		t := tiles[i]
		if err := write(t.label, t.title, s.kpiLabel); err != nil {
			return err
		}
		if err := write(t.value, entry.Value, t.style); err != nil {
			return err
		}
	}

	sections := []struct{ cell, text string }{
		{"A10", "Monthly Sales"},
		{"E10", "Daily Trend"},
		{"A26", "Sales by Category"},
		{"E26", "Sales by Store"},
		{"A42", "Top Products"},
	}
	for _, sec := range sections {
		if err := write(sec.cell, sec.text, s.section); err != nil {
			return err
		}
	}

	footer := fmt.Sprintf("Generated on %s • salesetl", e.opts.Now().Format("2006-01-02 15:04:05"))
	return write("A58", footer, s.footer)
}

// addChart draws spec's table; an empty table adds nothing. The series
// name is written beside the table and referenced from the chart.
func addChart(f *excelize.File, spec chartSpec) (bool, error) {
	n := len(spec.table.Rows)
	if n == 0 {
		return false, nil
	}
	if spec.topN > 0 && n > spec.topN {
		n = spec.topN
	}

	nameCell, err := excelize.CoordinatesToCellName(seriesNameCol, 1)
	if err != nil {
		return false, err
	}
	if err := f.SetCellValue(spec.sheet, nameCell, spec.name); err != nil {
		return false, err
	}

	err = f.AddChart(SheetDashboard, spec.anchor, &excelize.Chart{
		Type: spec.kind,
		Series: []excelize.ChartSeries{{
			Name:       cellRef(spec.sheet, seriesNameCol, 1),
			Categories: columnRange(spec.sheet, 1, 2, n+1),
			Values:     columnRange(spec.sheet, 2, 2, n+1),
		}},
		Legend: excelize.ChartLegend{Position: "none"},
		Format: excelize.GraphicOptions{ScaleX: spec.scaleX, ScaleY: spec.scaleY},
	})
	return err == nil, err
}
