package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"salesetl/internal/dataprocessing"
	apperrors "salesetl/internal/errors"
)

// EnvPrefix is the prefix of every environment override, e.g. SALESETL_INPUT_FOLDER
const EnvPrefix = "SALESETL"

// Config represents the complete application configuration
type Config struct {
	InputFolder         string            `yaml:"input_folder" envconfig:"INPUT_FOLDER" validate:"required"`
	OutputFolder        string            `yaml:"output_folder" envconfig:"OUTPUT_FOLDER" validate:"required"`
	OutputCleanFile     string            `yaml:"output_clean_file" envconfig:"OUTPUT_CLEAN_FILE" validate:"required,cleanfile"`
	OutputDashboardFile string            `yaml:"output_dashboard_file" envconfig:"OUTPUT_DASHBOARD_FILE" validate:"required,xlsxfile"`
	ColMap              map[string]string `yaml:"col_map" envconfig:"COL_MAP"`
	CategoryMap         map[string]string `yaml:"category_map" envconfig:"CATEGORY_MAP"`
	Logging             LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Telemetry           TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig controls trace export and the metrics textfile
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE" validate:"required_if=TraceExporter file"`
	// MetricsFile is written after each run; empty disables it
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		InputFolder:         "input",
		OutputFolder:        "output",
		OutputCleanFile:     "cleaned_data.xlsx",
		OutputDashboardFile: "dashboard.xlsx",
		ColMap:              map[string]string{},
		CategoryMap:         map[string]string{},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/salesetl.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "salesetl",
			TraceExporter: "none",
			TraceFile:     "traces.json",
			MetricsFile:   "metrics.prom",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file, then
// SALESETL_* environment variables. An empty path searches the usual
// locations and runs on defaults when none exists. The column and category
// maps are merged key by key across layers.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewConfigError("config file not readable", err).
			WithContext("path", path)
	}

	if path != "" {
		fileConfig, err := loadFromFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
		cfg = mergeConfigs(cfg, fileConfig)
	}

	// envconfig replaces maps wholesale, so hold the file layer aside
	colMap, categoryMap := cfg.ColMap, cfg.CategoryMap
	cfg.ColMap, cfg.CategoryMap = nil, nil
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}
	cfg.ColMap = mergeMaps(colMap, cfg.ColMap)
	cfg.CategoryMap = mergeMaps(categoryMap, cfg.CategoryMap)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// fileConfig mirrors Config with pointers so absent keys can be told apart
// from empty ones
type fileConfig struct {
	InputFolder         *string           `yaml:"input_folder"`
	OutputFolder        *string           `yaml:"output_folder"`
	OutputCleanFile     *string           `yaml:"output_clean_file"`
	OutputDashboardFile *string           `yaml:"output_dashboard_file"`
	ColMap              map[string]string `yaml:"col_map"`
	CategoryMap         map[string]string `yaml:"category_map"`
	Logging             struct {
		Level    *string `yaml:"level"`
		Format   *string `yaml:"format"`
		Output   *string `yaml:"output"`
		FilePath *string `yaml:"file_path"`
	} `yaml:"logging"`
	Telemetry struct {
		ServiceName   *string `yaml:"service_name"`
		TraceExporter *string `yaml:"trace_exporter"`
		TraceFile     *string `yaml:"trace_file"`
		MetricsFile   *string `yaml:"metrics_file"`
	} `yaml:"telemetry"`
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*fileConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// mergeConfigs lays the file values over base; keys absent from the file
// keep their base value
func mergeConfigs(base *Config, fc *fileConfig) *Config {
	out := *base
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&out.InputFolder, fc.InputFolder)
	set(&out.OutputFolder, fc.OutputFolder)
	set(&out.OutputCleanFile, fc.OutputCleanFile)
	set(&out.OutputDashboardFile, fc.OutputDashboardFile)
	set(&out.Logging.Level, fc.Logging.Level)
	set(&out.Logging.Format, fc.Logging.Format)
	set(&out.Logging.Output, fc.Logging.Output)
	set(&out.Logging.FilePath, fc.Logging.FilePath)
	set(&out.Telemetry.ServiceName, fc.Telemetry.ServiceName)
	set(&out.Telemetry.TraceExporter, fc.Telemetry.TraceExporter)
	set(&out.Telemetry.TraceFile, fc.Telemetry.TraceFile)
	set(&out.Telemetry.MetricsFile, fc.Telemetry.MetricsFile)

	out.ColMap = mergeMaps(base.ColMap, fc.ColMap)
	out.CategoryMap = mergeMaps(base.CategoryMap, fc.CategoryMap)
	return &out
}

func mergeMaps(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use defaults and env only
}

// Pipeline returns the mappings for the cleaning pipeline, with the
// configured maps layered over the built-in defaults
func (c *Config) Pipeline() dataprocessing.Config {
	return dataprocessing.DefaultConfig().WithOverrides(c.ColMap, c.CategoryMap)
}

// Validate checks the configuration and reports every failed field
func (c *Config) Validate() error {
	v, err := newValidator()
	if err != nil {
		return apperrors.NewConfigError("validator setup failed", err)
	}
	err = v.Struct(c)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewConfigError("validation could not run", err)
	}
	fields := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(fields)
}

// extensionRule is a custom validate tag accepting the listed extensions
type extensionRule struct {
	tag  string
	exts []string
}

var extensionRules = []extensionRule{
	{tag: "cleanfile", exts: []string{".xlsx", ".csv"}},
	{tag: "xlsxfile", exts: []string{".xlsx"}},
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()

	if err := registerExtensionRules(v, extensionRules); err != nil {
		return nil, err
	}

	// Use YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v, nil
}

func registerExtensionRules(v *validator.Validate, rules []extensionRule) error {
	for _, r := range rules {
		if err := v.RegisterValidation(r.tag, hasExtension(r.exts...)); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", r.tag, err)
		}
	}
	return nil
}

func hasExtension(exts ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

// formatValidationError formats validation error messages
func formatValidationError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "cleanfile":
		return fmt.Sprintf("%s must end in .xlsx or .csv", field)
	case "xlsxfile":
		return fmt.Sprintf("%s must end in .xlsx", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
