package dataprocessing

import (
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "retaileda/internal/errors"
	"retaileda/pkg/contracts/domain"
)

// ColumnCount is the number of absent values in one column.
type ColumnCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// CountMissing reports absent values per input column, in schema order.
// Only Description and CustomerID can be absent after a successful load.
func CountMissing(t *Table) []ColumnCount {
	counts := make([]ColumnCount, len(domain.Columns))
	for i, col := range domain.Columns {
		counts[i].Column = col
	}
	if t == nil {
		return counts
	}

	descIdx := slices.Index(domain.Columns, domain.ColumnDescription)
	custIdx := slices.Index(domain.Columns, domain.ColumnCustomerID)
	for _, r := range t.Records {
		if !r.Description.Valid {
			counts[descIdx].Missing++
		}
		if !r.CustomerID.Valid {
			counts[custIdx].Missing++
		}
	}
	return counts
}

// ColumnStats are the describe() statistics of one numeric column.
// Std is the sample standard deviation; quartiles interpolate linearly
// between closest ranks. Statistics of an empty column are NaN.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// Describe computes summary statistics for Quantity and UnitPrice.
func Describe(t *Table) ([]ColumnStats, error) {
	if t == nil {
		t = NewTable(nil)
	}
	df := dataframe.New(
		series.New(t.Quantities(), series.Float, domain.ColumnQuantity),
		series.New(t.UnitPrices(), series.Float, domain.ColumnUnitPrice),
	)
	if df.Err != nil {
		return nil, apperrors.NewParsingError("failed to build describe frame", df.Err)
	}

	names := df.Names()
	stats := make([]ColumnStats, 0, len(names))
	for _, name := range names {
		stats = append(stats, describeSeries(df.Col(name)))
	}
	return stats, nil
}

func describeSeries(s series.Series) ColumnStats {
	cs := ColumnStats{Column: s.Name, Count: s.Len()}
	if cs.Count == 0 {
		nan := math.NaN()
		cs.Mean, cs.Std, cs.Min, cs.P25, cs.P50, cs.P75, cs.Max = nan, nan, nan, nan, nan, nan, nan
		return cs
	}

	sorted := s.Float()
	slices.Sort(sorted)

	cs.Mean = s.Mean()
	cs.Std = math.NaN()
	if cs.Count > 1 {
		cs.Std = s.StdDev()
	}
	cs.Min = sorted[0]
	cs.Max = sorted[len(sorted)-1]
	cs.P25 = LinearQuantile(sorted, 0.25)
	cs.P50 = LinearQuantile(sorted, 0.50)
	cs.P75 = LinearQuantile(sorted, 0.75)
	return cs
}

// LinearQuantile returns the p-quantile of ascending data, interpolating
// between the closest ranks at position p*(n-1). It returns NaN for empty data.
func LinearQuantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := p * float64(n-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
