package dataprocessing

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"retaileda/pkg/contracts/domain"
)

// KeyFunc extracts the grouping key of a row.
type KeyFunc[K comparable] func(domain.Record) K

// ValueFunc extracts the value summed per group.
type ValueFunc func(domain.Record) decimal.Decimal

// Group is one key of an Aggregate with its total.
type Group[K comparable] struct {
	Key   K
	Total decimal.Decimal
	Rows  int

	firstRow int // index of the first row carrying Key
}

// Aggregate maps each distinct key to the sum of its values. Totals are
// exact decimals, so they do not depend on row order.
type Aggregate[K comparable] struct {
	groups []Group[K] // natural key order
	index  map[K]int
}

// GroupSum groups t by key and sums value per group. Groups are kept in
// ascending key order.
func GroupSum[K cmp.Ordered](t *Table, key KeyFunc[K], value ValueFunc) *Aggregate[K] {
	return GroupSumFunc(t, key, value, cmp.Compare[K])
}

// GroupSumFunc is GroupSum for keys that are not cmp.Ordered, such as civil.Date.
func GroupSumFunc[K comparable](t *Table, key KeyFunc[K], value ValueFunc, compare func(a, b K) int) *Aggregate[K] {
	agg := &Aggregate[K]{index: make(map[K]int)}
	if t != nil {
		for i, r := range t.Records {
			k := key(r)
			pos, ok := agg.index[k]
			if !ok {
				pos = len(agg.groups)
				agg.index[k] = pos
				agg.groups = append(agg.groups, Group[K]{Key: k, firstRow: i})
			}
			g := &agg.groups[pos]
			g.Total = g.Total.Add(value(r))
			g.Rows++
		}
	}

	slices.SortFunc(agg.groups, func(a, b Group[K]) int { return compare(a.Key, b.Key) })
	for i, g := range agg.groups {
		agg.index[g.Key] = i
	}
	return agg
}

// Len returns the number of distinct keys.
func (a *Aggregate[K]) Len() int {
	if a == nil {
		return 0
	}
	return len(a.groups)
}

// Groups returns a copy of the groups in natural key order.
func (a *Aggregate[K]) Groups() []Group[K] {
	if a == nil {
		return nil
	}
	return slices.Clone(a.groups)
}

// Keys returns the keys in natural order.
func (a *Aggregate[K]) Keys() []K {
	keys := make([]K, 0, a.Len())
	for _, g := range a.Groups() {
		keys = append(keys, g.Key)
	}
	return keys
}

// Total returns the total of key.
func (a *Aggregate[K]) Total(key K) (decimal.Decimal, bool) {
	if a == nil {
		return decimal.Zero, false
	}
	pos, ok := a.index[key]
	if !ok {
		return decimal.Zero, false
	}
	return a.groups[pos].Total, true
}

// TopN returns the min(n, Len) groups with the largest totals, descending.
// Equal totals keep the order in which their keys first appeared in the table.
func TopN[K comparable](a *Aggregate[K], n int) []Group[K] {
	if n <= 0 || a.Len() == 0 {
		return []Group[K]{}
	}

	ranked := a.Groups()
	slices.SortStableFunc(ranked, func(x, y Group[K]) int {
		if c := y.Total.Cmp(x.Total); c != 0 {
			return c
		}
		return cmp.Compare(x.firstRow, y.firstRow)
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// CompareDates orders civil dates chronologically.
func CompareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// Key extractors. Calendar keys fall back to InvoiceDate on underived tables.
var (
	ByDescription KeyFunc[string]     = func(r domain.Record) string { return r.Description.String }
	ByCountry     KeyFunc[string]     = func(r domain.Record) string { return r.Country }
	ByStockCode   KeyFunc[string]     = func(r domain.Record) string { return r.StockCode }
	ByInvoice     KeyFunc[string]     = func(r domain.Record) string { return r.InvoiceNo }
	ByCustomer    KeyFunc[string]     = func(r domain.Record) string { return r.CustomerID.String }
	ByMonth       KeyFunc[int]        = func(r domain.Record) int { return calendarOf(r).Month }
	ByYear        KeyFunc[int]        = func(r domain.Record) int { return calendarOf(r).Year }
	ByHour        KeyFunc[int]        = func(r domain.Record) int { return calendarOf(r).Hour }
	ByDate        KeyFunc[civil.Date] = func(r domain.Record) civil.Date { return calendarOf(r).Date }
)

// Value extractors.
var (
	Quantity  ValueFunc = func(r domain.Record) decimal.Decimal { return decimal.NewFromInt(r.Quantity) }
	UnitPrice ValueFunc = func(r domain.Record) decimal.Decimal { return r.UnitPrice }
	Revenue   ValueFunc = func(r domain.Record) decimal.Decimal { return r.Revenue() }
)

// GroupSumByDate groups by calendar date in chronological order.
func GroupSumByDate(t *Table, value ValueFunc) *Aggregate[civil.Date] {
	return GroupSumFunc(t, ByDate, value, CompareDates)
}
