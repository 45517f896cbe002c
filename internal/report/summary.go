package report

import (
	"strconv"

	"cloud.google.com/go/civil"

	"retaileda/internal/config"
	"retaileda/internal/dataprocessing"
	"retaileda/pkg/contracts/domain"
)

// Summary holds every table the console report prints. The charts draw
// their rankings and time series from the same groups.
type Summary struct {
	ValueColumn   string
	Head          []domain.Record
	MissingBefore []dataprocessing.ColumnCount
	MissingAfter  []dataprocessing.ColumnCount
	Cleaning      dataprocessing.CleaningStats
	Statistics    []dataprocessing.ColumnStats

	TopProducts  []dataprocessing.Group[string] // ranking of the bar chart
	TopNProducts []dataprocessing.Group[string]
	TopCountries []dataprocessing.Group[string]

	Monthly []dataprocessing.Group[int]
	Daily   []dataprocessing.Group[civil.Date]
	Yearly  []dataprocessing.Group[int]
	Hourly  []dataprocessing.Group[int]
}

// Summarize computes the console tables. raw is the table as loaded and
// cleaned the table after DropMissing and Derive. Columns are resolved by
// name, so an unknown analysis.ValueColumn fails with ErrUnknownColumn
// before anything is summed.
func Summarize(raw, cleaned *dataprocessing.Table, stats dataprocessing.CleaningStats, analysis config.AnalysisConfig) (*Summary, error) {
	value, err := dataprocessing.ValueColumn(analysis.ValueColumn)
	if err != nil {
		return nil, err
	}
	byDescription, err := dataprocessing.StringKeyColumn(domain.ColumnDescription)
	if err != nil {
		return nil, err
	}
	byCountry, err := dataprocessing.StringKeyColumn(domain.ColumnCountry)
	if err != nil {
		return nil, err
	}
	calendar := make(map[string]dataprocessing.KeyFunc[int], 3)
	for _, name := range []string{domain.ColumnMonth, domain.ColumnYear, domain.ColumnHour} {
		key, err := dataprocessing.IntKeyColumn(name)
		if err != nil {
			return nil, err
		}
		calendar[name] = key
	}

	statistics, err := dataprocessing.Describe(cleaned)
	if err != nil {
		return nil, err
	}

	products := dataprocessing.GroupSum(cleaned, byDescription, value)
	countries := dataprocessing.GroupSum(cleaned, byCountry, value)
	totals := func(name string) []dataprocessing.Group[int] {
		return dataprocessing.GroupSum(cleaned, calendar[name], value).Groups()
	}

	return &Summary{
		ValueColumn:   analysis.ValueColumn,
		Head:          raw.Head(analysis.HeadRows),
		MissingBefore: dataprocessing.CountMissing(raw),
		MissingAfter:  dataprocessing.CountMissing(cleaned),
		Cleaning:      stats,
		Statistics:    statistics,
		TopProducts:   dataprocessing.TopN(products, analysis.TopProducts),
		TopNProducts:  dataprocessing.TopN(products, analysis.TopN),
		TopCountries:  dataprocessing.TopN(countries, analysis.TopN),
		Monthly:       totals(domain.ColumnMonth),
		Daily:         dataprocessing.GroupSumByDate(cleaned, value).Groups(),
		Yearly:        totals(domain.ColumnYear),
		Hourly:        totals(domain.ColumnHour),
	}, nil
}

// Print writes the sections of s in notebook order.
func (c *Console) Print(s *Summary) error {
	identity := func(k string) string { return k }
	v := s.ValueColumn
	if v == "" {
		v = domain.ColumnQuantity
	}

	steps := []func() error{
		func() error { return c.Head(s.Head) },
		func() error { return c.Missing("Missing values", s.MissingBefore) },
		func() error { return c.Cleaning(s.Cleaning) },
		func() error { return c.Missing("Missing values after cleaning", s.MissingAfter) },
		func() error { return c.Describe(s.Statistics) },
		func() error {
			return Totals(c, "Top selling products", "Description", v, s.TopProducts, identity)
		},
		func() error {
			return Totals(c, "Top products by quantity", "Description", v, s.TopNProducts, identity)
		},
		func() error {
			return Totals(c, "Top countries by quantity", "Country", v, s.TopCountries, identity)
		},
		func() error { return Totals(c, "Sales by month", "Month", v, s.Monthly, strconv.Itoa) },
		func() error { return Totals(c, "Sales by year", "Year", v, s.Yearly, strconv.Itoa) },
		func() error { return Totals(c, "Sales by hour", "Hour", v, s.Hourly, strconv.Itoa) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
