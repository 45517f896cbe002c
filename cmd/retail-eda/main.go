package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retaileda/internal/config"
	"retaileda/internal/exporter"
	"retaileda/internal/infrastructure"
	"retaileda/internal/operations"
	"retaileda/internal/report"
	"retaileda/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "retail-eda:", err)
		}
		stop()
		os.Exit(1)
	}
}

// options are the command line overrides of the configuration
type options struct {
	configPath string
	input      string
	output     string
	sheet      string
	tables     string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("retail-eda", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file (optional)")
	fs.StringVar(&opts.input, "in", "", "input spreadsheet (.xlsx or .csv); overrides input.path")
	fs.StringVar(&opts.output, "out", "", "directory for chart images; overrides output.charts_dir")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet to read from a workbook (default first sheet)")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.StringVar(&opts.tables, "tables", "", "directory for CSV copies of the report tables; overrides output.tables_dir")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// loadConfig applies the flag overrides on top of file and env configuration
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.input != "" {
		cfg.Input.Path = opts.input
	}
	if opts.output != "" {
		cfg.Output.ChartsDir = opts.output
	}
	if opts.sheet != "" {
		cfg.Input.Sheet = opts.sheet
	}
	if opts.tables != "" {
		cfg.Output.TablesDir = opts.tables
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	start := time.Now()

	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString(config.AppName))
		return nil
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	logCfg := cfg.Logging
	logCfg.FilePath = paths.LogFile
	logger, logFile, err := infrastructure.NewLogger(logCfg, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	paths.LogPathResolution(logger)

	telemetryCfg := cfg.Telemetry
	telemetryCfg.TraceFile = paths.TraceFile
	telemetryCfg.MetricsFile = paths.MetricsFile
	telemetry, err := infrastructure.InitializeTelemetry(telemetryCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := telemetry.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
			if err == nil {
				err = shutdownErr
			}
		}
	}()

	stageOptions := &operations.StageOptions{
		Config:   cfg,
		Paths:    paths,
		Reporter: report.NewReporter(paths, cfg.Output, cfg.Analysis, logger),
		Console:  report.NewConsole(stdout),
		Metrics:  telemetry.Metrics,
		Logger:   logger,
	}
	if paths.TablesDir != "" {
		stageOptions.Exporter = exporter.NewTableExporter(paths.TablesDir, logger)
	}
	registry, err := operations.NewAnalysisRegistry(stageOptions)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "Pipeline configured",
		slog.Any("steps", registry.ListIDs()),
		slog.Bool("tables", stageOptions.Exporter != nil))

	manager := operations.NewManager(registry, operations.NewConfig(), operations.NewOperationTracer(telemetry), logger)
	state, runErr := manager.Execute(ctx, "")

	stats := telemetry.Runtime.Collect(ctx, start)
	logger.InfoContext(ctx, "Run finished",
		slog.String("run_id", state.ID),
		slog.String("status", string(state.Response().Status)),
		slog.Int("charts", len(state.Charts)),
		slog.Duration("duration", stats.RunDuration),
		slog.Int64("memory_allocated", stats.MemoryAllocated))
	return runErr
}
