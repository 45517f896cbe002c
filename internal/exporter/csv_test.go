package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readCSV reads a written file, checking and stripping the BOM
func readCSV(t *testing.T, path string, wantBOM bool) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantBOM, bytes.HasPrefix(data, utf8BOM), "BOM prefix")

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    [][]string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Country", "Quantity"},
				Records: [][]string{{"United Kingdom", "4263829"}, {"Netherlands", "200128"}},
			},
			want: [][]string{{"Country", "Quantity"}, {"United Kingdom", "4263829"}, {"Netherlands", "200128"}},
		},
		{
			name:    "quoting",
			options: WriteOptions{Records: [][]string{{`SET 2 TEA TOWELS I LOVE LONDON, "RED"`, "1"}}},
			want:    [][]string{{`SET 2 TEA TOWELS I LOVE LONDON, "RED"`, "1"}},
		},
		{
			name:    "bom",
			options: WriteOptions{Headers: []string{"Hour"}, BOMPrefix: true},
			want:    [][]string{{"Hour"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewCSVWriter(filepath.Join(dir, "nested"), nil)

			path, err := w.WriteCSV("out.csv", tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "nested", "out.csv"), path)
			assert.Equal(t, tt.want, readCSV(t, path, tt.options.BOMPrefix))
		})
	}
}

func TestCSVWriter_ReplacesExistingFile(t *testing.T) {
	w := NewCSVWriter(t.TempDir(), nil)

	_, err := w.WriteSimpleCSV("t.csv", []string{"A"}, [][]string{{"1"}, {"2"}, {"3"}})
	require.NoError(t, err)
	path, err := w.WriteSimpleCSV("t.csv", []string{"A"}, [][]string{{"9"}})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A"}, {"9"}}, readCSV(t, path, true))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	w := NewCSVWriter("ignored", nil)
	target := filepath.Join(t.TempDir(), "abs.csv")

	path, err := w.WriteSimpleCSV(target, nil, [][]string{{"x"}})
	require.NoError(t, err)
	assert.Equal(t, target, path)
}

func TestCSVWriter_Errors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	w := NewCSVWriter(filepath.Join(blocker, "sub"), nil)
	_, err := w.WriteSimpleCSV("t.csv", []string{"A"}, nil)
	assert.ErrorContains(t, err, "failed to create directory")

	_, err = w.CreateStreamWriter("t.csv", []string{"A"})
	assert.ErrorContains(t, err, "failed to create directory")
}

func TestStreamWriter(t *testing.T) {
	w := NewCSVWriter(t.TempDir(), nil)

	stream, err := w.CreateStreamWriter("rows.csv", []string{"InvoiceNo", "Quantity"})
	require.NoError(t, err)
	for _, r := range [][]string{{"536365", "6"}, {"C536379", "-1"}} {
		require.NoError(t, stream.WriteRecord(r))
	}
	require.NoError(t, stream.Close())

	assert.Equal(t, [][]string{{"InvoiceNo", "Quantity"}, {"536365", "6"}, {"C536379", "-1"}},
		readCSV(t, stream.Path(), true))
}
