package dataprocessing

import (
	"retaileda/pkg/contracts/domain"
)

// Table is the in-memory dataset the pipeline works on. It is created once
// by the loader, replaced by the cleaner, enriched in place by Derive and
// read-only afterwards.
type Table struct {
	Source  string // file the rows were read from
	Sheet   string // worksheet name, empty for CSV
	Records []domain.Record

	derived bool
}

// NewTable wraps records without copying them.
func NewTable(records []domain.Record) *Table {
	return &Table{Records: records}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Head returns up to n leading rows.
func (t *Table) Head(n int) []domain.Record {
	if n <= 0 || t.Len() == 0 {
		return nil
	}
	if n > len(t.Records) {
		n = len(t.Records)
	}
	return t.Records[:n]
}

// Filter returns a new table holding the rows for which keep is true, in order.
func (t *Table) Filter(keep func(domain.Record) bool) *Table {
	out := &Table{Source: t.Source, Sheet: t.Sheet, derived: t.derived}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Derived reports whether the calendar fields have been populated.
func (t *Table) Derived() bool {
	return t != nil && t.derived
}

// Quantities returns the Quantity column as float64.
func (t *Table) Quantities() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = float64(r.Quantity)
	}
	return out
}

// UnitPrices returns the UnitPrice column as float64.
func (t *Table) UnitPrices() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.UnitPrice.InexactFloat64()
	}
	return out
}
