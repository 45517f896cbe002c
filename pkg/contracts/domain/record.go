package domain

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Column names of the Online Retail feed, in file order.
const (
	ColumnInvoiceNo   = "InvoiceNo"
	ColumnStockCode   = "StockCode"
	ColumnDescription = "Description"
	ColumnQuantity    = "Quantity"
	ColumnInvoiceDate = "InvoiceDate"
	ColumnUnitPrice   = "UnitPrice"
	ColumnCustomerID  = "CustomerID"
	ColumnCountry     = "Country"
)

// Derived column names, populated from InvoiceDate.
const (
	ColumnMonth = "Month"
	ColumnDate  = "Date"
	ColumnYear  = "Year"
	ColumnHour  = "Hour"
)

// Columns lists the columns every input file must carry.
var Columns = []string{
	ColumnInvoiceNo,
	ColumnStockCode,
	ColumnDescription,
	ColumnQuantity,
	ColumnInvoiceDate,
	ColumnUnitPrice,
	ColumnCustomerID,
	ColumnCountry,
}

// Record is one line item of the Online Retail feed.
// Several records may share an InvoiceNo.
type Record struct {
	InvoiceNo   string          `json:"invoice_no" validate:"required"`
	StockCode   string          `json:"stock_code"`
	Description sql.NullString  `json:"description"`
	Quantity    int64           `json:"quantity"` // negative for returns and cancellations
	InvoiceDate time.Time       `json:"invoice_date" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CustomerID  sql.NullString  `json:"customer_id"`
	Country     string          `json:"country"`

	// Calendar is zero until the table has been derived.
	Calendar Calendar `json:"calendar"`
}

// Complete reports whether the fields the cleaner requires are present.
func (r Record) Complete() bool {
	return r.Description.Valid && r.CustomerID.Valid
}

// Revenue is Quantity times UnitPrice.
func (r Record) Revenue() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(r.Quantity))
}

// Calendar holds the calendar parts of an invoice timestamp.
type Calendar struct {
	Month int        `json:"month"`
	Date  civil.Date `json:"date"`
	Year  int        `json:"year"`
	Hour  int        `json:"hour"`
}

// CalendarOf projects a timestamp onto its calendar parts using the
// timestamp's own wall clock.
func CalendarOf(t time.Time) Calendar {
	return Calendar{
		Month: int(t.Month()),
		Date:  civil.DateOf(t),
		Year:  t.Year(),
		Hour:  t.Hour(),
	}
}

// IsZero reports whether the calendar has not been derived.
func (c Calendar) IsZero() bool {
	return c.Year == 0 && c.Month == 0
}

// NullString wraps a present value.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
