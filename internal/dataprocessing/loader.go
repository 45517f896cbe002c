package dataprocessing

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "retaileda/internal/errors"
	"retaileda/pkg/contracts/domain"
)

// LoadOptions tunes LoadFile.
type LoadOptions struct {
	// Sheet selects the worksheet of a workbook; empty means the first sheet.
	Sheet  string
	Logger *slog.Logger
}

// timestampLayouts are tried in order for text timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
}

// LoadFile reads an Online Retail export into a Table. Workbooks (.xlsx,
// .xlsm) are read with excelize, .csv files with encoding/csv. The first row
// is the header and must name all eight columns. Any failure is a LOAD
// AppError and no partial table is returned.
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewLoadError("cannot open input file", err).
			WithContext("path", path)
	}

	var (
		rows  [][]string
		sheet string
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		rows, sheet, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, apperrors.NewLoadError(fmt.Sprintf("unsupported file type %q", ext), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	table, err := buildTable(rows)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	table.Source = path
	table.Sheet = sheet

	logger.Info("Input loaded",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()))
	return table, nil
}

// readWorkbook returns the raw cell values of one sheet. Raw values keep
// timestamps as Excel serial numbers regardless of the cell's number format.
func readWorkbook(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", apperrors.NewLoadError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, "", apperrors.NewLoadError("workbook has no sheets", nil).
				WithContext("path", path)
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, "", apperrors.NewLoadError("cannot select sheet", apperrors.NewNotFoundError("sheet "+strconv.Quote(sheet))).
			WithContext("path", path).
			WithContext("sheets", sheets)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", apperrors.NewLoadError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	return rows, sheet, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open csv", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewLoadError("malformed csv", err).
			WithContext("path", path)
	}
	return rows, nil
}

// buildTable maps the header to the schema and coerces every data row.
func buildTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewLoadError("input has no header row", nil)
	}

	columnMap := make(map[string]int, len(domain.Columns))
	for i, header := range rows[0] {
		name := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if _, seen := columnMap[name]; !seen {
			columnMap[name] = i
		}
	}

	var missing []string
	for _, col := range domain.Columns {
		if _, ok := columnMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewLoadError("missing required column(s): "+strings.Join(missing, ", "), nil).
			WithContext("missing", missing)
	}

	table := &Table{Records: make([]domain.Record, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// Spreadsheet row numbers are 1-based and include the header.
		record, err := parseRecord(row, columnMap, i+2)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, record)
	}
	return table, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRecord coerces one data row. Text columns are kept verbatim and only
// an empty cell counts as absent; cells read as numbers or dates are trimmed.
func parseRecord(row []string, columnMap map[string]int, rowNum int) (domain.Record, error) {
	raw := func(col string) string {
		if idx := columnMap[col]; idx < len(row) {
			return row[idx]
		}
		return ""
	}
	num := func(col string) string {
		return strings.TrimSpace(raw(col))
	}
	fail := func(col string, cause error) error {
		return apperrors.NewLoadError(fmt.Sprintf("invalid %s at row %d", col, rowNum), cause).
			WithContext("row", rowNum).
			WithContext("column", col).
			WithContext("value", raw(col))
	}

	quantity, err := parseQuantity(num(domain.ColumnQuantity))
	if err != nil {
		return domain.Record{}, fail(domain.ColumnQuantity, err)
	}
	invoiceDate, err := parseTimestamp(num(domain.ColumnInvoiceDate))
	if err != nil {
		return domain.Record{}, fail(domain.ColumnInvoiceDate, err)
	}
	unitPrice, err := parseUnitPrice(num(domain.ColumnUnitPrice))
	if err != nil {
		return domain.Record{}, fail(domain.ColumnUnitPrice, err)
	}

	return domain.Record{
		InvoiceNo:   identifier(raw(domain.ColumnInvoiceNo)),
		StockCode:   identifier(raw(domain.ColumnStockCode)),
		Description: optional(raw(domain.ColumnDescription)),
		Quantity:    quantity,
		InvoiceDate: invoiceDate,
		UnitPrice:   unitPrice,
		CustomerID:  optional(identifier(raw(domain.ColumnCustomerID))),
		Country:     raw(domain.ColumnCountry),
	}, nil
}

// identifier normalises a cell holding a number ("17850.0" becomes
// "17850") and returns any other text unchanged.
func identifier(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return s
	}
	return normalizeID(trimmed)
}

// parseQuantity accepts integers and integral floats such as "6.0".
func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %s", s)
	}
	return int64(f), nil
}

// parseUnitPrice reads a decimal. Values carrying binary float noise from
// the workbook ("2.5499999999999998") collapse to their shortest form.
func parseUnitPrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Exponent() < -10 {
		return decimal.NewFromFloat(d.InexactFloat64()), nil
	}
	return d, nil
}

// parseTimestamp reads an Excel serial number or one of timestampLayouts.
// Serial numbers are rounded to the second to absorb float error.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t.Round(time.Second), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// normalizeID strips the ".0" a numeric identifier picks up in a spreadsheet.
func normalizeID(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

func optional(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return domain.NullString(s)
}
