package operations_test

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"retaileda/internal/config"
	"retaileda/internal/dataprocessing"
	apperrors "retaileda/internal/errors"
	"retaileda/internal/exporter"
	"retaileda/internal/infrastructure"
	"retaileda/internal/operations"
	"retaileda/internal/report"
	"retaileda/internal/shared/testutil"
)

type analysisFixture struct {
	options *operations.StageOptions
	console *bytes.Buffer
	reader  *sdkmetric.ManualReader
	handler *testutil.BufferedSlogHandler
}

func newAnalysisFixture(t *testing.T, input string) *analysisFixture {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Output.ChartsDir = filepath.Join(t.TempDir(), "charts")
	cfg.Logging.FilePath = ""

	paths, err := config.ResolvePaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })
	metrics, err := infrastructure.NewPipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	console := &bytes.Buffer{}
	return &analysisFixture{
		options: &operations.StageOptions{
			Config:   cfg,
			Paths:    paths,
			Reporter: report.NewReporter(paths, cfg.Output, cfg.Analysis, logger),
			Console:  report.NewConsole(console),
			Metrics:  metrics,
			Logger:   logger,
		},
		console: console,
		reader:  reader,
		handler: handler,
	}
}

func (f *analysisFixture) run(t *testing.T) (*operations.OperationState, error) {
	t.Helper()
	registry, err := operations.NewAnalysisRegistry(f.options)
	require.NoError(t, err)
	return operations.NewManager(registry, nil, nil, f.options.Logger).Execute(context.Background(), "test-run")
}

// counter returns the summed value of an int64 counter
func (f *analysisFixture) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestAnalysisRegistryOrder(t *testing.T) {
	registry, err := operations.NewAnalysisRegistry(&operations.StageOptions{})
	require.NoError(t, err)

	ordered, err := registry.GetDependencyOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{
		operations.StepIDLoad,
		operations.StepIDClean,
		operations.StepIDDerive,
		operations.StepIDAggregate,
		operations.StepIDReport,
	}, stepIDs(ordered))
}

func TestAnalysisEndToEnd(t *testing.T) {
	input := testutil.WriteWorkbook(t, "", testutil.Header(), testutil.SampleRecords())
	f := newAnalysisFixture(t, input)

	state, err := f.run(t)
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, state.Status)

	require.NotNil(t, state.Raw)
	assert.Equal(t, 10, state.Raw.Len())
	assert.Equal(t, dataprocessing.CleaningStats{Before: 10, After: 8, Dropped: 2, MissingDescription: 1, MissingCustomerID: 2}, state.Cleaning)
	assert.True(t, state.Table.Derived())
	require.NotNil(t, state.Summary)
	require.Len(t, state.Charts, len(report.ChartNames))

	assert.Equal(t, 10, state.GetStage(operations.StepIDLoad).Metadata[operations.MetadataKeyRows])
	assert.Equal(t, 2, state.GetStage(operations.StepIDClean).Metadata[operations.MetadataKeyDropped])
	assert.Equal(t, len(report.ChartNames), state.GetStage(operations.StepIDReport).Metadata[operations.MetadataKeyCharts])
	assert.Equal(t, 0, state.GetStage(operations.StepIDReport).Metadata[operations.MetadataKeyEmptyPanels])

	out := f.console.String()
	assert.Contains(t, out, "Top selling products")
	assert.Contains(t, out, "FAIRY CAKE FLANNEL ASSORTED COLOUR")
	assert.Contains(t, out, "Sales by hour")
	assert.Contains(t, out, state.Charts[0].Path)

	assert.Equal(t, int64(10), f.counter(t, "retail_rows_loaded"))
	assert.Equal(t, int64(2), f.counter(t, "retail_rows_dropped"))
	assert.Equal(t, int64(len(report.ChartNames)), f.counter(t, "retail_charts_rendered"))
}

func TestAnalysisAllRowsDropped(t *testing.T) {
	records := testutil.SampleRecords()
	for i := range records {
		records[i].CustomerID = sql.NullString{}
	}
	input := testutil.WriteRecordsCSV(t, records)
	f := newAnalysisFixture(t, input)

	state, err := f.run(t)
	require.NoError(t, err)

	assert.Zero(t, state.Table.Len())
	assert.Equal(t, 10, state.Cleaning.Dropped)
	assert.Positive(t, state.GetStage(operations.StepIDReport).Metadata[operations.MetadataKeyEmptyPanels])
	testutil.AssertLogContains(t, f.handler, slog.LevelWarn, "Chart panel has no data")
}

func TestAnalysisLoadFailureSkipsLaterSteps(t *testing.T) {
	f := newAnalysisFixture(t, filepath.Join(t.TempDir(), "missing.xlsx"))

	state, err := f.run(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLoad)
	assert.Equal(t, operations.StepIDLoad, operations.FailedStep(err))

	assert.Equal(t, operations.StepStatusFailed, state.GetStage(operations.StepIDLoad).GetStatus())
	for _, id := range []string{operations.StepIDClean, operations.StepIDDerive, operations.StepIDAggregate, operations.StepIDReport} {
		assert.Equal(t, operations.StepStatusSkipped, state.GetStage(id).GetStatus(), id)
	}
	assert.Empty(t, f.console.String())
	assert.Empty(t, state.Charts)
}

func TestAnalysisMissingChartsDir(t *testing.T) {
	input := testutil.WriteRecordsCSV(t, testutil.SampleRecords())
	f := newAnalysisFixture(t, input)
	f.options.Paths.ChartsDir = filepath.Join(t.TempDir(), "absent", "charts")

	state, err := f.run(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRender)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.Equal(t, operations.StepIDReport, operations.FailedStep(err))
	assert.Equal(t, operations.StepStatusCompleted, state.GetStage(operations.StepIDAggregate).GetStatus())
	assert.Empty(t, f.console.String())
}

func TestAnalysisUnknownValueColumn(t *testing.T) {
	input := testutil.WriteRecordsCSV(t, testutil.SampleRecords())
	f := newAnalysisFixture(t, input)
	f.options.Config.Analysis.ValueColumn = "Discount"

	state, err := f.run(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataprocessing.ErrUnknownColumn)
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	assert.Equal(t, operations.StepIDAggregate, operations.FailedStep(err))
	assert.Nil(t, state.Summary)
	assert.Equal(t, operations.StepStatusSkipped, state.GetStage(operations.StepIDReport).GetStatus())
	assert.Empty(t, f.console.String())
}

func TestAnalysisExportsTables(t *testing.T) {
	input := testutil.WriteRecordsCSV(t, testutil.SampleRecords())
	f := newAnalysisFixture(t, input)
	tablesDir := t.TempDir()
	f.options.Exporter = exporter.NewTableExporter(tablesDir, f.options.Logger)

	state, err := f.run(t)
	require.NoError(t, err)

	require.Len(t, state.Tables, 8)
	assert.Equal(t, filepath.Join(tablesDir, exporter.FileSummaryStatistics), state.Tables[0])
	assert.FileExists(t, filepath.Join(tablesDir, exporter.FileCleanedRecords))
	assert.Equal(t, 8, state.GetStage(operations.StepIDReport).Metadata[operations.MetadataKeyTables])
}

func TestAnalysisRejectsUnsupportedInput(t *testing.T) {
	input := filepath.Join(t.TempDir(), "retail.json")
	require.NoError(t, os.WriteFile(input, []byte("{}"), 0644))
	f := newAnalysisFixture(t, input)

	_, err := f.run(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLoad)
	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
}

func TestStepValidation(t *testing.T) {
	empty := operations.NewOperationState("run")

	tests := []struct {
		name string
		step operations.Step
	}{
		{"load without options", operations.NewLoadStep(nil)},
		{"load without input", operations.NewLoadStep(&operations.StageOptions{Config: config.Default(), Paths: &config.Paths{}})},
		{"clean without table", operations.NewCleanStep(nil)},
		{"derive without table", operations.NewDeriveStep()},
		{"aggregate without table", operations.NewAggregateStep(&operations.StageOptions{Config: config.Default()})},
		{"report without reporter", operations.NewReportStep(&operations.StageOptions{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.step.Validate(empty))
		})
	}

	t.Run("aggregate requires derived table", func(t *testing.T) {
		state := operations.NewOperationState("run")
		state.Table = dataprocessing.NewTable(testutil.SampleRecords())
		step := operations.NewAggregateStep(&operations.StageOptions{Config: config.Default()})
		assert.Error(t, step.Validate(state))

		dataprocessing.Derive(state.Table)
		assert.NoError(t, step.Validate(state))
	})
}
