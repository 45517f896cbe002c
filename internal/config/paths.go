package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains every file system location a run touches.
// Relative configured paths are resolved against the working directory.
type Paths struct {
	WorkingDir  string
	InputFile   string
	ChartsDir   string
	TablesDir   string
	LogFile     string
	TraceFile   string
	MetricsFile string

	chartExt string
}

// ResolvePaths turns the configured locations into absolute paths.
func ResolvePaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(wd, p)
	}

	ext := strings.ToLower(cfg.Output.Format)
	if ext == "" {
		ext = DefaultChartFormat
	}

	return &Paths{
		WorkingDir:  wd,
		InputFile:   abs(cfg.Input.Path),
		ChartsDir:   abs(cfg.Output.ChartsDir),
		TablesDir:   abs(cfg.Output.TablesDir),
		LogFile:     abs(cfg.Logging.FilePath),
		TraceFile:   abs(cfg.Telemetry.TraceFile),
		MetricsFile: abs(cfg.Telemetry.MetricsFile),
		chartExt:    "." + ext,
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.ChartsDir}
	if p.TablesDir != "" {
		directories = append(directories, p.TablesDir)
	}
	for _, f := range []string{p.LogFile, p.TraceFile, p.MetricsFile} {
		if f != "" {
			directories = append(directories, filepath.Dir(f))
		}
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// ChartPath returns the output path for the named chart, e.g. "top_products".
func (p *Paths) ChartPath(name string) string {
	ext := p.chartExt
	if ext == "" {
		ext = "." + DefaultChartFormat
	}
	return filepath.Join(p.ChartsDir, name+ext)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("charts", p.ChartsDir),
		),
		slog.Group("files",
			slog.String("input", p.InputFile),
			slog.Bool("input_exists", FileExists(p.InputFile)),
			slog.String("log", p.LogFile),
			slog.String("trace", p.TraceFile),
			slog.String("metrics", p.MetricsFile),
		))
}
