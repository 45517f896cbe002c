package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "retaileda/internal/errors"
	"retaileda/internal/exporter"
	"retaileda/internal/operations"
	"retaileda/internal/report"
	"retaileda/internal/shared/testutil"
	"retaileda/pkg/contracts"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *options
		wantErr bool
	}{
		{name: "defaults", args: nil, want: &options{}},
		{
			name: "all flags",
			args: []string{"-in", "data.xlsx", "-out", "charts", "-sheet", "Online Retail", "-config", "eda.yaml", "-tables", "tables"},
			want: &options{configPath: "eda.yaml", input: "data.xlsx", output: "charts", sheet: "Online Retail", tables: "tables"},
		},
		{name: "unknown flag", args: []string{"-format", "svg"}, wantErr: true},
		{name: "positional argument", args: []string{"data.xlsx"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &stderr)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, stderr.String(), "-sheet")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(&options{input: "retail.csv", output: "out", sheet: "Sheet2", tables: "tables"})
	require.NoError(t, err)
	assert.Equal(t, "tables", cfg.Output.TablesDir)
	assert.Equal(t, "retail.csv", cfg.Input.Path)
	assert.Equal(t, "out", cfg.Output.ChartsDir)
	assert.Equal(t, "Sheet2", cfg.Input.Sheet)

	_, err = loadConfig(&options{configPath: "missing.yaml"})
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := testutil.WriteWorkbook(t, "", testutil.Header(), testutil.SampleRecords())
	charts := filepath.Join(dir, "charts")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-in", input, "-out", charts, "-tables", "tables"}, &stdout, &stderr)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "tables", exporter.FileTopProducts))

	for _, name := range report.ChartNames {
		_, err := os.Stat(filepath.Join(charts, name+".png"))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, stdout.String(), "Summary statistics")
	assert.Contains(t, stdout.String(), "Sales by year")
	assert.Contains(t, stderr.String(), `"msg":"Run finished"`)
	assert.Contains(t, stderr.String(), `"trace_id"`)
	assert.NotContains(t, stdout.String(), `"level"`)
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "retail-eda v"+contracts.Version)
	assert.Empty(t, stderr.String())
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-in", filepath.Join(dir, "absent.xlsx")}, &stdout, &stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLoad)
	assert.Equal(t, operations.StepIDLoad, operations.FailedStep(err))
	assert.Contains(t, stderr.String(), `"msg":"Step skipped"`)
	assert.Empty(t, stdout.String())
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := testutil.WriteRecordsCSV(t, testutil.SampleRecords())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"-in", input}, &stdout, &stderr)
	require.Error(t, err)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
}
