package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaileda/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInitializeTelemetry_Disabled(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{Enabled: false, ServiceName: "test"}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	assert.Nil(t, tel.Registry)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Metrics)

	ctx, span := tel.Tracer.Start(context.Background(), "noop")
	RecordStepMetrics(ctx, tel.Metrics, "run", "load", time.Millisecond, nil)
	span.End()

	assert.Equal(t, "", TraceIDFromContext(ctx))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitializeTelemetry_WritesTraceAndMetrics(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "retail-eda-test",
		TraceFile:   filepath.Join(dir, "trace.json"),
		MetricsFile: filepath.Join(dir, "eda.prom"),
	}

	tel, err := InitializeTelemetry(cfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.NotNil(t, tel.Registry)

	ctx, span := tel.Tracer.Start(context.Background(), "step.load")
	assert.Len(t, TraceIDFromContext(ctx), 32)

	SetSpanAttributes(ctx, map[string]interface{}{"rows": 3, "path": "in.xlsx", "ok": true, "ratio": 0.5, "n": int64(2), "other": time.Second})
	tel.Metrics.RowsLoaded.Add(ctx, 3)
	RecordStepMetrics(ctx, tel.Metrics, "run-1", "load", 25*time.Millisecond, nil)
	RecordStepMetrics(ctx, tel.Metrics, "run-1", "report", time.Millisecond, errors.New("boom"))
	RecordError(ctx, errors.New("boom"))
	span.End()

	stats := tel.Runtime.Collect(ctx, time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, stats.RunDuration, time.Second)

	require.NoError(t, tel.Shutdown(context.Background()))

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	text := string(metrics)
	assert.Contains(t, text, "retail_rows_loaded_total")
	assert.Contains(t, text, "retail_step_duration_seconds_bucket")
	assert.Contains(t, text, "retail_step_errors_total")
	assert.Contains(t, text, "retail_runtime_goroutines")

	traces, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), "step.load")
}

func TestInitializeTelemetry_BadTraceFile(t *testing.T) {
	cfg := config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "test",
		TraceFile:   filepath.Join(t.TempDir(), "missing", "trace.json"),
	}

	_, err := InitializeTelemetry(cfg, quietLogger())
	assert.Error(t, err)
}

func TestRecordStepMetrics_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordStepMetrics(context.Background(), nil, "run", "load", time.Second, nil)
	})
}

func TestRuntimeMetrics_NilCollector(t *testing.T) {
	var rm *RuntimeMetrics
	stats := rm.Collect(context.Background(), time.Now())
	assert.Positive(t, stats.GoRoutines)
}
