package dataprocessing

import (
	"errors"
	"fmt"
	"slices"

	apperrors "retaileda/internal/errors"
	"retaileda/pkg/contracts/domain"
)

var (
	// ErrUnknownColumn is returned for a column name outside the schema.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrColumnKind is returned when a column cannot play the requested role.
	ErrColumnKind = errors.New("column cannot be used here")
)

var knownColumns = append(slices.Clone(domain.Columns),
	domain.ColumnMonth, domain.ColumnDate, domain.ColumnYear, domain.ColumnHour)

// ValueColumn resolves a numeric column name for summing.
func ValueColumn(name string) (ValueFunc, error) {
	switch name {
	case domain.ColumnQuantity:
		return Quantity, nil
	case domain.ColumnUnitPrice:
		return UnitPrice, nil
	case "Revenue":
		return Revenue, nil
	}
	return nil, columnError(name, "value")
}

// StringKeyColumn resolves a categorical column name for grouping.
func StringKeyColumn(name string) (KeyFunc[string], error) {
	switch name {
	case domain.ColumnDescription:
		return ByDescription, nil
	case domain.ColumnCountry:
		return ByCountry, nil
	case domain.ColumnStockCode:
		return ByStockCode, nil
	case domain.ColumnInvoiceNo:
		return ByInvoice, nil
	case domain.ColumnCustomerID:
		return ByCustomer, nil
	}
	return nil, columnError(name, "string key")
}

// IntKeyColumn resolves a derived calendar column name for grouping.
func IntKeyColumn(name string) (KeyFunc[int], error) {
	switch name {
	case domain.ColumnMonth:
		return ByMonth, nil
	case domain.ColumnYear:
		return ByYear, nil
	case domain.ColumnHour:
		return ByHour, nil
	}
	return nil, columnError(name, "integer key")
}

func columnError(name, role string) error {
	cause := ErrColumnKind
	if !slices.Contains(knownColumns, name) && name != "Revenue" {
		cause = ErrUnknownColumn
	}
	return apperrors.NewAppError(apperrors.ErrTypeValidation,
		fmt.Sprintf("column %q is not usable as a %s", name, role), cause).
		WithContext("column", name)
}
