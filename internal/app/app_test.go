package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesetl/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputFolder = filepath.Join(dir, "input")
	cfg.OutputFolder = filepath.Join(dir, "output")
	cfg.CategoryMap = map[string]string{"Coffee beans": "Coffee"}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	application, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	return application, &logs
}

func TestApplication_Run(t *testing.T) {
	cfg := testConfig(t)
	application, logs := newTestApp(t, cfg)

	csv := "Transaction_Date,transaction_qty,Unit_Price,product_detail,Product_Category,Store_Location\n" +
		"15/01/2024,2,$3.50,Latte,Coffee beans,Astoria\n" +
		"15/01/2024,2,$3.50,Latte,Coffee beans,Astoria\n" +
		"16/01/2024,1,4.00,Mocha,Coffee,Lower Manhattan\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputFolder, "jan.csv"), []byte(csv), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputFolder, "old.xls"), []byte("binary"), 0644))

	summary, err := application.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, application.Shutdown(context.Background()))

	assert.Equal(t, StatusOK, summary.Status)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.FilesRead)
	assert.Equal(t, 1, summary.FilesFailed)
	assert.Equal(t, 3, summary.RowsIngested)
	assert.Equal(t, 2, summary.RowsCleaned)
	assert.Equal(t, 1, summary.DuplicatesRemoved)
	assert.InDelta(t, 11.0, summary.KPIs.TotalSales, 1e-9)
	assert.Equal(t, "Latte", summary.KPIs.TopProduct)

	assert.Equal(t, filepath.Join(cfg.OutputFolder, "cleaned_data.xlsx"), summary.CleanFile)
	assert.True(t, config.FileExists(summary.CleanFile))

	f, err := excelize.OpenFile(summary.DashboardFile)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Category")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Coffee", rows[1][0])

	metrics, err := os.ReadFile(filepath.Join(cfg.OutputFolder, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "salesetl_files_failed_total")
	assert.Contains(t, string(metrics), `status="ok"`)

	out := logs.String()
	assert.Contains(t, out, `"msg":"etl finished"`)
	assert.Contains(t, out, `"file":"old.xls"`)
}

func TestApplication_Run_NoInputFiles(t *testing.T) {
	cfg := testConfig(t)
	application, logs := newTestApp(t, cfg)
	defer application.Shutdown(context.Background())

	summary, err := application.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, summary.Status)
	assert.Empty(t, summary.DashboardFile)
	assert.False(t, config.FileExists(filepath.Join(cfg.OutputFolder, "dashboard.xlsx")))
	assert.Contains(t, logs.String(), `"msg":"no input files found"`)
}

func TestApplication_Run_NoRows(t *testing.T) {
	cfg := testConfig(t)
	application, _ := newTestApp(t, cfg)
	defer application.Shutdown(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputFolder, "empty.csv"), []byte("product,qty\n"), 0644))

	summary, err := application.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, summary.Status)
	assert.Equal(t, 1, summary.FilesRead)
	assert.Zero(t, summary.RowsIngested)
	assert.Empty(t, summary.CleanFile)
}

func TestApplication_Run_CSVOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputCleanFile = "cleaned_data.csv"
	cfg.Telemetry.MetricsFile = ""
	application, _ := newTestApp(t, cfg)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputFolder, "a.csv"), []byte("product,qty,unit_price\nChai,1,2\n"), 0644))

	summary, err := application.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, application.Shutdown(context.Background()))

	data, err := os.ReadFile(summary.CleanFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimPrefix(string(data), "\xEF\xBB\xBF"), "\n")
	assert.Equal(t, "product,qty,unit_price,__source_file,sale_amt", lines[0])
	assert.False(t, config.FileExists(filepath.Join(cfg.OutputFolder, "metrics.prom")))
}
