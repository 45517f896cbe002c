package dataprocessing

import (
	"retaileda/pkg/contracts/domain"
)

// Derive populates Month, Date, Year and Hour on every row from InvoiceDate.
// It mutates t in place and returns it. Deriving twice is a no-op.
func Derive(t *Table) *Table {
	if t == nil || t.derived {
		return t
	}
	for i := range t.Records {
		t.Records[i].Calendar = domain.CalendarOf(t.Records[i].InvoiceDate)
	}
	t.derived = true
	return t
}

// calendarOf returns the row's derived fields, computing them when the table
// has not been derived yet.
func calendarOf(r domain.Record) domain.Calendar {
	if r.Calendar.IsZero() {
		return domain.CalendarOf(r.InvoiceDate)
	}
	return r.Calendar
}
