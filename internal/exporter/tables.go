package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"retaileda/internal/dataprocessing"
	apperrors "retaileda/internal/errors"
	"retaileda/internal/report"
	"retaileda/pkg/contracts/domain"
)

// Exported file names
const (
	FileSummaryStatistics = "summary_statistics.csv"
	FileMissingValues     = "missing_values.csv"
	FileTopProducts       = "top_products.csv"
	FileTopCountries      = "top_countries.csv"
	FileSalesByMonth      = "sales_by_month.csv"
	FileSalesByYear       = "sales_by_year.csv"
	FileSalesByHour       = "sales_by_hour.csv"
	FileCleanedRecords    = "cleaned_records.csv"
)

// TableExporter writes the console tables and the cleaned rows as CSV.
// Values are written unformatted so the files load back into a spreadsheet
// as numbers.
type TableExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewTableExporter creates an exporter writing into dir
func NewTableExporter(dir string, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{
		writer: NewCSVWriter(dir, logger),
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Dir returns the output directory
func (e *TableExporter) Dir() string {
	return e.writer.Dir()
}

// Export writes every summary table and the cleaned rows. It returns the
// written paths in write order and stops at the first failure.
func (e *TableExporter) Export(ctx context.Context, s *report.Summary, cleaned *dataprocessing.Table) ([]string, error) {
	value := s.ValueColumn
	if value == "" {
		value = domain.ColumnQuantity
	}
	writes := []func() (string, error){
		func() (string, error) { return e.writeStatistics(s.Statistics) },
		func() (string, error) { return e.writeMissing(s.MissingBefore, s.MissingAfter) },
		func() (string, error) { return e.writeRanking(FileTopProducts, "Description", value, s.TopProducts) },
		func() (string, error) { return e.writeRanking(FileTopCountries, "Country", value, s.TopCountries) },
		func() (string, error) { return e.writeTotals(FileSalesByMonth, "Month", value, s.Monthly) },
		func() (string, error) { return e.writeTotals(FileSalesByYear, "Year", value, s.Yearly) },
		func() (string, error) { return e.writeTotals(FileSalesByHour, "Hour", value, s.Hourly) },
		func() (string, error) { return e.writeRecords(cleaned) },
	}

	paths := make([]string, 0, len(writes))
	for _, write := range writes {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := write()
		if err != nil {
			return paths, apperrors.NewRenderError("failed to export tables", err).
				WithContext("dir", e.writer.Dir())
		}
		paths = append(paths, path)
	}

	e.logger.InfoContext(ctx, "Tables exported",
		slog.String("dir", e.writer.Dir()),
		slog.Int("files", len(paths)))
	return paths, nil
}

func (e *TableExporter) writeStatistics(stats []dataprocessing.ColumnStats) (string, error) {
	rows := make([][]string, len(stats))
	for i, cs := range stats {
		rows[i] = []string{
			cs.Column,
			strconv.Itoa(cs.Count),
			formatFloat(cs.Mean),
			formatFloat(cs.Std),
			formatFloat(cs.Min),
			formatFloat(cs.P25),
			formatFloat(cs.P50),
			formatFloat(cs.P75),
			formatFloat(cs.Max),
		}
	}
	return e.writer.WriteSimpleCSV(FileSummaryStatistics,
		[]string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}, rows)
}

// writeMissing joins the before and after counts, which share schema order
func (e *TableExporter) writeMissing(before, after []dataprocessing.ColumnCount) (string, error) {
	afterByColumn := make(map[string]int, len(after))
	for _, cc := range after {
		afterByColumn[cc.Column] = cc.Missing
	}
	rows := make([][]string, len(before))
	for i, cc := range before {
		rows[i] = []string{cc.Column, strconv.Itoa(cc.Missing), strconv.Itoa(afterByColumn[cc.Column])}
	}
	return e.writer.WriteSimpleCSV(FileMissingValues, []string{"Column", "MissingBefore", "MissingAfter"}, rows)
}

func (e *TableExporter) writeRanking(name, keyHeader, valueHeader string, groups []dataprocessing.Group[string]) (string, error) {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{strconv.Itoa(i + 1), g.Key, g.Total.String(), strconv.Itoa(g.Rows)}
	}
	return e.writer.WriteSimpleCSV(name, []string{"Rank", keyHeader, valueHeader, "Rows"}, rows)
}

func (e *TableExporter) writeTotals(name, keyHeader, valueHeader string, groups []dataprocessing.Group[int]) (string, error) {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{strconv.Itoa(g.Key), g.Total.String(), strconv.Itoa(g.Rows)}
	}
	return e.writer.WriteSimpleCSV(name, []string{keyHeader, valueHeader, "Rows"}, rows)
}

// writeRecords streams the cleaned rows with their calendar fields
func (e *TableExporter) writeRecords(t *dataprocessing.Table) (string, error) {
	headers := append(append([]string(nil), domain.Columns...), "Month", "Date", "Year", "Hour")
	stream, err := e.writer.CreateStreamWriter(FileCleanedRecords, headers)
	if err != nil {
		return "", err
	}

	if t != nil {
		for i, r := range t.Records {
			cal := r.Calendar
			if cal.IsZero() {
				cal = domain.CalendarOf(r.InvoiceDate)
			}
			record := []string{
				r.InvoiceNo,
				r.StockCode,
				r.Description.String,
				strconv.FormatInt(r.Quantity, 10),
				r.InvoiceDate.Format("2006-01-02 15:04:05"),
				r.UnitPrice.String(),
				r.CustomerID.String,
				r.Country,
				strconv.Itoa(cal.Month),
				cal.Date.String(),
				strconv.Itoa(cal.Year),
				strconv.Itoa(cal.Hour),
			}
			if err := stream.WriteRecord(record); err != nil {
				stream.Close()
				return "", fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}
	if err := stream.Close(); err != nil {
		return "", err
	}
	return stream.Path(), nil
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
