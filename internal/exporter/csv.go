package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salesetl/pkg/contracts/domain"
)

// utf8BOM lets Excel detect UTF-8 when it opens the file
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter opens CSV outputs
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// StreamWriter writes table rows one at a time
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// CreateStreamWriter truncates filePath, writes the BOM and the header row
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	sw := &StreamWriter{file: file, writer: csv.NewWriter(file)}
	if err := sw.writer.Write(headers); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	w.logger.Debug("opened csv output",
		slog.String("file_path", filePath),
		slog.Int("columns", len(headers)))
	return sw, nil
}

// WriteRow writes one table row; missing cells are left empty
func (s *StreamWriter) WriteRow(row []domain.Value) error {
	if err := s.writer.Write(formatRecord(row)); err != nil {
		return fmt.Errorf("failed to write row %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

// Rows returns how many rows were written after the header
func (s *StreamWriter) Rows() int { return s.rows }

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
