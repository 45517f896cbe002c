package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"retaileda/pkg/contracts/domain"
)

// RecordBuilder builds domain records with sensible defaults
type RecordBuilder struct {
	r domain.Record
}

// NewRecord starts a complete record for a white hanging heart sold in the UK
func NewRecord() *RecordBuilder {
	return &RecordBuilder{r: domain.Record{
		InvoiceNo:   "536365",
		StockCode:   "85123A",
		Description: domain.NullString("WHITE HANGING HEART T-LIGHT HOLDER"),
		Quantity:    6,
		InvoiceDate: time.Date(2010, time.December, 1, 8, 26, 0, 0, time.UTC),
		UnitPrice:   decimal.RequireFromString("2.55"),
		CustomerID:  domain.NullString("17850"),
		Country:     "United Kingdom",
	}}
}

func (b *RecordBuilder) Invoice(no string) *RecordBuilder { b.r.InvoiceNo = no; return b }
func (b *RecordBuilder) Stock(code string) *RecordBuilder { b.r.StockCode = code; return b }
func (b *RecordBuilder) Country(c string) *RecordBuilder  { b.r.Country = c; return b }
func (b *RecordBuilder) Quantity(q int64) *RecordBuilder  { b.r.Quantity = q; return b }
func (b *RecordBuilder) At(t time.Time) *RecordBuilder    { b.r.InvoiceDate = t; return b }

// Description sets the description; an empty string makes it absent
func (b *RecordBuilder) Description(d string) *RecordBuilder {
	if d == "" {
		b.r.Description = domain.Record{}.Description
	} else {
		b.r.Description = domain.NullString(d)
	}
	return b
}

// Customer sets the customer id; an empty string makes it absent
func (b *RecordBuilder) Customer(id string) *RecordBuilder {
	if id == "" {
		b.r.CustomerID = domain.Record{}.CustomerID
	} else {
		b.r.CustomerID = domain.NullString(id)
	}
	return b
}

// Price sets the unit price from its decimal text
func (b *RecordBuilder) Price(p string) *RecordBuilder {
	b.r.UnitPrice = decimal.RequireFromString(p)
	return b
}

// Build returns the record
func (b *RecordBuilder) Build() domain.Record {
	return b.r
}

// SampleRecords is a small dataset covering returns, missing values,
// outliers and several months, hours and countries.
func SampleRecords() []domain.Record {
	at := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, time.UTC)
	}
	return []domain.Record{
		NewRecord().Build(),
		NewRecord().Stock("71053").Description("WHITE METAL LANTERN").Quantity(6).Price("3.39").Build(),
		NewRecord().Invoice("536366").Stock("22633").Description("HAND WARMER UNION JACK").Quantity(6).Price("1.85").At(at(2010, time.December, 1, 8, 28)).Build(),
		NewRecord().Invoice("C536379").Stock("D").Description("Discount").Quantity(-1).Price("27.50").Customer("14527").At(at(2010, time.December, 1, 9, 41)).Build(),
		NewRecord().Invoice("536414").Stock("22139").Description("").Quantity(56).Price("0").Customer("").At(at(2010, time.December, 1, 11, 52)).Build(),
		NewRecord().Invoice("536544").Stock("21773").Description("DECORATIVE ROSE BATHROOM BOTTLE").Quantity(1).Price("2.51").Customer("").At(at(2010, time.December, 1, 14, 32)).Build(),
		NewRecord().Invoice("540815").Stock("21108").Description("FAIRY CAKE FLANNEL ASSORTED COLOUR").Quantity(3114).Price("2.10").Customer("15749").At(at(2011, time.January, 11, 12, 55)).Build(),
		NewRecord().Invoice("556444").Stock("22502").Description("PICNIC BASKET WICKER 60 PIECES").Quantity(60).Price("649.50").Customer("15098").At(at(2011, time.June, 10, 15, 28)).Build(),
		NewRecord().Invoice("562439").Stock("84879").Description("ASSORTED COLOUR BIRD ORNAMENT").Quantity(8).Price("1.69").Customer("12471").Country("Germany").At(at(2011, time.August, 4, 13, 8)).Build(),
		NewRecord().Invoice("581587").Stock("22613").Description("PACK OF 20 SPACEBOY NAPKINS").Quantity(12).Price("0.85").Customer("12680").Country("France").At(at(2011, time.December, 9, 12, 50)).Build(),
	}
}

// Header returns the eight input columns in file order
func Header() []string {
	return append([]string(nil), domain.Columns...)
}

// Row renders a record as the text cells of an export row
func Row(r domain.Record) []string {
	return []string{
		r.InvoiceNo,
		r.StockCode,
		r.Description.String,
		fmt.Sprint(r.Quantity),
		r.InvoiceDate.Format("2006-01-02 15:04:05"),
		r.UnitPrice.String(),
		r.CustomerID.String,
		r.Country,
	}
}

// WriteCSV writes header and rows to a CSV file in a temp dir and returns its path
func WriteCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retail.csv")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		t.Fatalf("write csv header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv rows: %v", err)
	}
	return path
}

// WriteRecordsCSV writes records as a CSV export
func WriteRecordsCSV(t *testing.T, records []domain.Record) string {
	t.Helper()
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = Row(r)
	}
	return WriteCSV(t, Header(), rows)
}

// WriteWorkbook writes records to an .xlsx file the way Excel stores them:
// numbers as numbers, InvoiceDate as a date-formatted serial, CustomerID as
// a float and missing values as empty cells.
func WriteWorkbook(t *testing.T, sheet string, header []string, records []domain.Record) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet == "" {
		sheet = "Online Retail"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		t.Fatalf("date style: %v", err)
	}

	for i, r := range records {
		rowNum := i + 2
		for col, name := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			var value interface{}
			switch name {
			case domain.ColumnInvoiceNo:
				value = r.InvoiceNo
			case domain.ColumnStockCode:
				value = r.StockCode
			case domain.ColumnDescription:
				if r.Description.Valid {
					value = r.Description.String
				}
			case domain.ColumnQuantity:
				value = r.Quantity
			case domain.ColumnInvoiceDate:
				value = r.InvoiceDate
				f.SetCellStyle(sheet, cell, cell, dateStyle)
			case domain.ColumnUnitPrice:
				value = r.UnitPrice.InexactFloat64()
			case domain.ColumnCustomerID:
				if r.CustomerID.Valid {
					id, err := decimal.NewFromString(r.CustomerID.String)
					if err != nil {
						value = r.CustomerID.String
					} else {
						value = id.InexactFloat64()
					}
				}
			case domain.ColumnCountry:
				value = r.Country
			}
			if value != nil {
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					t.Fatalf("set %s: %v", cell, err)
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "Online Retail.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
