package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	abs := filepath.Join(t.TempDir(), "in.xlsx")

	cfg := Default()
	cfg.Input.Path = abs
	cfg.Output.ChartsDir = "out/charts"
	cfg.Output.Format = "jpg"
	cfg.Telemetry.MetricsFile = "out/eda.prom"

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, wd, paths.WorkingDir)
	assert.Equal(t, abs, paths.InputFile, "absolute paths are kept")
	assert.Equal(t, filepath.Join(wd, "out", "charts"), paths.ChartsDir)
	assert.Equal(t, filepath.Join(wd, "out", "eda.prom"), paths.MetricsFile)
	assert.Equal(t, "", paths.TraceFile, "unset optional files stay empty")
	assert.Equal(t, "", paths.TablesDir)
	assert.Equal(t, filepath.Join(wd, "out", "charts", "top_products.jpg"), paths.ChartPath("top_products"))
}

func TestPaths_ChartPathDefaultsToPNG(t *testing.T) {
	p := &Paths{ChartsDir: "charts"}
	assert.Equal(t, filepath.Join("charts", "sales_over_time.png"), p.ChartPath("sales_over_time"))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	root := t.TempDir()
	p := &Paths{
		ChartsDir:   filepath.Join(root, "charts", "nested"),
		TablesDir:   filepath.Join(root, "tables"),
		LogFile:     filepath.Join(root, "logs", "eda.log"),
		MetricsFile: filepath.Join(root, "metrics", "eda.prom"),
	}

	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.ChartsDir, p.TablesDir, filepath.Dir(p.LogFile), filepath.Dir(p.MetricsFile)} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.False(t, FileExists(filepath.Join(root, "trace")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))

	assert.True(t, FileExists(f))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
}
