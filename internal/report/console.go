package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"retaileda/internal/dataprocessing"
	"retaileda/pkg/contracts/domain"
)

// Console prints the tabular part of the report.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w, usually stdout.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) section(title string) {
	fmt.Fprintf(c.w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

// table writes tab-separated lines aligned into columns.
func (c *Console) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Head prints the leading rows of the raw table.
func (c *Console) Head(records []domain.Record) error {
	c.section(fmt.Sprintf("First %d rows", len(records)))
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.InvoiceNo,
			r.StockCode,
			formatNullable(r.Description),
			formatRaw(r.Quantity),
			r.InvoiceDate.Format("2006-01-02 15:04:05"),
			r.UnitPrice.String(),
			formatNullable(r.CustomerID),
			r.Country,
		}
	}
	return c.table(domain.Columns, rows)
}

// Missing prints per-column missing value counts.
func (c *Console) Missing(title string, counts []dataprocessing.ColumnCount) error {
	c.section(title)
	rows := make([][]string, len(counts))
	for i, cc := range counts {
		rows[i] = []string{cc.Column, formatInt(int64(cc.Missing))}
	}
	return c.table([]string{"Column", "Missing"}, rows)
}

// Cleaning prints what the cleaner removed.
func (c *Console) Cleaning(stats dataprocessing.CleaningStats) error {
	c.section("Cleaning")
	return c.table([]string{"Rows before", "Rows after", "Dropped"}, [][]string{{
		formatInt(int64(stats.Before)),
		formatInt(int64(stats.After)),
		formatInt(int64(stats.Dropped)),
	}})
}

// Describe prints summary statistics with one column per variable.
func (c *Console) Describe(stats []dataprocessing.ColumnStats) error {
	c.section("Summary statistics")
	header := []string{""}
	for _, s := range stats {
		header = append(header, s.Column)
	}

	lines := []struct {
		name  string
		value func(dataprocessing.ColumnStats) string
	}{
		{"count", func(s dataprocessing.ColumnStats) string { return formatInt(int64(s.Count)) }},
		{"mean", func(s dataprocessing.ColumnStats) string { return formatFloat(s.Mean) }},
		{"std", func(s dataprocessing.ColumnStats) string { return formatFloat(s.Std) }},
		{"min", func(s dataprocessing.ColumnStats) string { return formatFloat(s.Min) }},
		{"25%", func(s dataprocessing.ColumnStats) string { return formatFloat(s.P25) }},
		{"50%", func(s dataprocessing.ColumnStats) string { return formatFloat(s.P50) }},
		{"75%", func(s dataprocessing.ColumnStats) string { return formatFloat(s.P75) }},
		{"max", func(s dataprocessing.ColumnStats) string { return formatFloat(s.Max) }},
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		row := []string{line.name}
		for _, s := range stats {
			row = append(row, line.value(s))
		}
		rows[i] = row
	}
	return c.table(header, rows)
}

// Totals prints groups as key/total rows in the order given.
func Totals[K comparable](c *Console, title, keyHeader, valueHeader string, groups []dataprocessing.Group[K], label func(K) string) error {
	c.section(title)
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{label(g.Key), formatTotal(g.Total)}
	}
	return c.table([]string{keyHeader, valueHeader}, rows)
}

// Charts lists the written chart files and their empty panels.
func (c *Console) Charts(charts []Chart) error {
	c.section("Charts")
	rows := make([][]string, len(charts))
	for i, chart := range charts {
		empty := "-"
		if len(chart.EmptyPanels) > 0 {
			empty = strings.Join(chart.EmptyPanels, "; ")
		}
		rows[i] = []string{chart.Name, chart.Path, empty}
	}
	return c.table([]string{"Chart", "Path", "Empty panels"}, rows)
}
