package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesetl/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "input", cfg.InputFolder)
				assert.Equal(t, "output", cfg.OutputFolder)
				assert.Equal(t, "cleaned_data.xlsx", cfg.OutputCleanFile)
				assert.Equal(t, "dashboard.xlsx", cfg.OutputDashboardFile)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Empty(t, cfg.ColMap)
			},
		},
		{
			name: "file overrides only the keys it names",
			file: `
input_folder: raw
output_clean_file: cleaned.csv
logging:
  level: debug
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "raw", cfg.InputFolder)
				assert.Equal(t, "output", cfg.OutputFolder)
				assert.Equal(t, "cleaned.csv", cfg.OutputCleanFile)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "env wins over file",
			file: "input_folder: raw\n",
			env: map[string]string{
				"SALESETL_INPUT_FOLDER":            "from-env",
				"SALESETL_TELEMETRY_TRACE_EXPORTER": "stdout",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env", cfg.InputFolder)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "maps merge key by key across layers",
			file: `
col_map:
  Qty Sold: qty
  Price Each: unit_price
category_map:
  Coffee beans: Coffee
`,
			env: map[string]string{"SALESETL_COL_MAP": "Price Each:price_each,Store:store_location"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, map[string]string{
					"Qty Sold":   "qty",
					"Price Each": "price_each",
					"Store":      "store_location",
				}, cfg.ColMap)
				assert.Equal(t, map[string]string{"Coffee beans": "Coffee"}, cfg.CategoryMap)
			},
		},
		{
			name:    "invalid yaml",
			file:    "input_folder: [unclosed\n",
			wantErr: true,
		},
		{
			name:    "dashboard must be xlsx",
			file:    "output_dashboard_file: dashboard.csv\n",
			wantErr: true,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"SALESETL_LOGGING_LEVEL": "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.InputFolder = ""
	cfg.OutputCleanFile = "cleaned.json"
	cfg.Telemetry.TraceExporter = "file"
	cfg.Telemetry.TraceFile = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "input_folder is required")
	assert.Contains(t, err.Error(), "output_clean_file must end in .xlsx or .csv")
	assert.Contains(t, err.Error(), "telemetry.trace_file is required")
}

func TestValidate_CaseInsensitiveExtensions(t *testing.T) {
	cfg := Default()
	cfg.OutputCleanFile = "Cleaned.CSV"
	cfg.OutputDashboardFile = "Dash.XLSX"

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Pipeline(t *testing.T) {
	cfg := Default()
	cfg.ColMap = map[string]string{"Qty Sold": "qty", "product_detail": "product_detail"}
	cfg.CategoryMap = map[string]string{"Coffee beans": "Coffee"}

	pipeline := cfg.Pipeline()
	colMap := pipeline.ColumnMap.Resolve()

	assert.Equal(t, "qty", colMap["Qty Sold"])
	assert.Equal(t, "qty", colMap["transaction_qty"], "built-in aliases survive")
	assert.Equal(t, "product_detail", colMap["product_detail"], "configured keys win")
	assert.Equal(t, "Coffee", pipeline.CategoryMap.Resolve()["Coffee beans"])
}

func TestRegisterExtensionRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []extensionRule
		wantErr string
	}{
		{name: "built-in rules", rules: extensionRules},
		{name: "empty tag", rules: []extensionRule{{tag: "", exts: []string{".xlsx"}}}, wantErr: `register ""`},
		{name: "reserved tag", rules: []extensionRule{{tag: "omitempty", exts: []string{".csv"}}}, wantErr: `register "omitempty"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registerExtensionRules(validator.New(), tt.rules)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	v, err := newValidator()
	require.NoError(t, err)
	assert.NotNil(t, v)
}
