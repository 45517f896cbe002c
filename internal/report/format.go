package report

import (
	"database/sql"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with fixed grouping and decimal separators so
// output does not depend on the host locale.
var printer = message.NewPrinter(language.English)

// formatFloat formats with exactly 2 decimal places; NaN prints as NaN.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return printer.Sprintf("%.2f", f)
}

func formatInt(i int64) string {
	return printer.Sprintf("%d", i)
}

// formatTotal keeps integral totals exact and rounds the rest to cents.
func formatTotal(d decimal.Decimal) string {
	if d.IsInteger() {
		return formatInt(d.IntPart())
	}
	return formatFloat(d.Round(2).InexactFloat64())
}

// formatNullable renders an absent value the way dataframes do.
func formatNullable(s sql.NullString) string {
	if !s.Valid {
		return "NaN"
	}
	return s.String
}

// formatRaw renders a cell value without grouping, for row previews.
func formatRaw(i int64) string {
	return strconv.FormatInt(i, 10)
}
