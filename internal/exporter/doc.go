// Package exporter writes the analysis tables as CSV files.
//
// CSVWriter is the low level writer: whole files or a StreamWriter, both
// prefixed with a UTF-8 BOM so Excel opens product descriptions correctly.
// TableExporter writes the summary statistics, missing value counts,
// rankings and calendar totals, one file per table, and streams the cleaned
// rows with their derived calendar columns.
//
// Example usage:
//
//	exp := exporter.NewTableExporter("tables", logger)
//	paths, err := exp.Export(ctx, summary, cleaned)
package exporter
