package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file system location a run touches
type Paths struct {
	InputDir      string
	OutputDir     string
	CleanFile     string
	DashboardFile string
	// MetricsFile is empty when the metrics textfile is disabled
	MetricsFile string
	TraceFile   string
	LogFile     string
}

// Paths resolves the configured locations. Output file names are joined
// to the output folder unless they are absolute.
func (c *Config) Paths() *Paths {
	p := &Paths{
		InputDir:  filepath.Clean(c.InputFolder),
		OutputDir: filepath.Clean(c.OutputFolder),
		LogFile:   c.Logging.FilePath,
		TraceFile: c.Telemetry.TraceFile,
	}
	p.CleanFile = p.inOutput(c.OutputCleanFile)
	p.DashboardFile = p.inOutput(c.OutputDashboardFile)
	if c.Telemetry.MetricsFile != "" {
		p.MetricsFile = p.inOutput(c.Telemetry.MetricsFile)
	}
	if p.TraceFile != "" {
		p.TraceFile = p.inOutput(p.TraceFile)
	}
	return p
}

func (p *Paths) inOutput(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.OutputDir, name)
}

// EnsureDirectories creates the input and output folders if they don't exist
func (p *Paths) EnsureDirectories(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	directories := []string{p.InputDir, p.OutputDir}
	for _, f := range []string{p.CleanFile, p.DashboardFile, p.MetricsFile} {
		if f != "" {
			directories = append(directories, filepath.Dir(f))
		}
	}

	seen := make(map[string]bool, len(directories))
	for _, dir := range directories {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
