package dataprocessing

import (
	"retaileda/pkg/contracts/domain"
)

// CleaningStats summarises what DropMissing removed.
type CleaningStats struct {
	Before             int `json:"before"`
	After              int `json:"after"`
	Dropped            int `json:"dropped"`
	MissingDescription int `json:"missing_description"`
	MissingCustomerID  int `json:"missing_customer_id"`
}

// DropMissing returns a table without the rows that lack a Description or a
// CustomerID. Surviving rows keep their values and order. Negative
// quantities and extreme prices are kept.
func DropMissing(t *Table) *Table {
	cleaned, _ := DropMissingWithStats(t)
	return cleaned
}

// DropMissingWithStats is DropMissing that also reports counts. A row missing
// both fields counts toward both Missing totals but is dropped once.
func DropMissingWithStats(t *Table) (*Table, CleaningStats) {
	stats := CleaningStats{Before: t.Len()}
	if t == nil {
		return NewTable(nil), stats
	}

	cleaned := &Table{
		Source:  t.Source,
		Sheet:   t.Sheet,
		Records: make([]domain.Record, 0, len(t.Records)),
		derived: t.derived,
	}
	for _, r := range t.Records {
		if !r.Description.Valid {
			stats.MissingDescription++
		}
		if !r.CustomerID.Valid {
			stats.MissingCustomerID++
		}
		if r.Complete() {
			cleaned.Records = append(cleaned.Records, r)
		}
	}

	stats.After = cleaned.Len()
	stats.Dropped = stats.Before - stats.After
	return cleaned, stats
}
