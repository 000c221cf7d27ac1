package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "salesetl/internal/errors"
	"salesetl/internal/files"
	"salesetl/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileResult describes how one input file was read
type FileResult struct {
	Name string
	Rows int
	// Err is set when the file was skipped
	Err error
}

// Result is the concatenation of every readable input file
type Result struct {
	Table *domain.Table
	Files []FileResult
}

// Failed returns how many files were skipped
func (r *Result) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Reader loads input files into raw tables
type Reader struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewReader creates a reader. A nil logger uses slog.Default and a nil
// tracer uses the global provider.
func NewReader(logger *slog.Logger, tracer trace.Tracer) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("salesetl/ingest")
	}
	return &Reader{
		logger: logger.With(slog.String("component", "ingest")),
		tracer: tracer,
	}
}

// ReadAll reads every file and concatenates the results. A file that
// cannot be read is logged and skipped; the others are still returned.
// Every row carries the base name of its file in __source_file.
func (r *Reader) ReadAll(ctx context.Context, inputs []files.FileInfo) *Result {
	ctx, span := r.tracer.Start(ctx, "ingest.read_all",
		trace.WithAttributes(attribute.Int("files", len(inputs))))
	defer span.End()

	result := &Result{Files: make([]FileResult, 0, len(inputs))}
	var tables []*domain.Table
	for _, f := range inputs {
		t, err := ReadFile(f.Path)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to read input file",
				slog.String("file", f.Name),
				slog.Any("error", err))
			result.Files = append(result.Files, FileResult{Name: f.Name, Err: err})
			continue
		}

		source := make([]domain.Value, t.Len())
		for i := range source {
			source[i] = domain.StringValue(f.Name)
		}
		t.SetColumn(domain.ColSourceFile, source)

		r.logger.InfoContext(ctx, "read input file",
			slog.String("file", f.Name),
			slog.Int("rows", t.Len()))
		result.Files = append(result.Files, FileResult{Name: f.Name, Rows: t.Len()})
		tables = append(tables, t)
	}

	result.Table = Concat(tables)
	span.SetAttributes(
		attribute.Int("rows", result.Table.Len()),
		attribute.Int("files.failed", result.Failed()))
	return result
}

// ReadFile reads one CSV or Excel file, choosing by extension
func ReadFile(path string) (*domain.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to open file", err).WithContext("path", path)
		}
		defer f.Close()
		return ReadCSV(f)
	}
	return ReadExcel(path)
}

// ReadCSV reads delimited text with a header row. A UTF-8 byte order mark
// is dropped; input that is not valid UTF-8 is decoded as Windows-1252,
// the usual encoding of spreadsheet exports.
func ReadCSV(r io.Reader) (*domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read csv", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed csv", err)
	}
	return buildTable(records)
}

// ReadExcel reads the first sheet of a workbook. Cells are read unformatted
// so dates arrive as serial numbers, which the date parser understands.
func ReadExcel(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	return buildTable(rows)
}

// buildTable turns a header row plus records into a table of string cells.
// Empty cells are missing and fully blank lines are dropped.
func buildTable(records [][]string) (*domain.Table, error) {
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("file has no header row", nil)
	}

	t := domain.NewTable(uniqueHeaders(records[0]))
	width := t.Width()
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		cells := make([]domain.Value, width)
		for i := 0; i < width && i < len(rec); i++ {
			if rec[i] != "" {
				cells[i] = domain.StringValue(rec[i])
			}
		}
		t.AppendRow(cells)
	}
	return t, nil
}

// uniqueHeaders names blank headers by position and suffixes repeats with
// .1, .2 so no column is lost
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "unnamed_" + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Concat stacks tables vertically. The result has the union of all columns
// in first-seen order; cells a table does not have are missing.
func Concat(tables []*domain.Table) *domain.Table {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns() {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := domain.NewTable(columns)
	for _, t := range tables {
		cols := t.Columns()
		for i := 0; i < t.Len(); i++ {
			cells := make([]domain.Value, out.Width())
			for j, v := range t.Row(i) {
				idx, _ := out.Index(cols[j])
				cells[idx] = v
			}
			out.AppendRow(cells)
		}
	}
	return out
}
