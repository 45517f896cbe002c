// Package dataprocessing turns an Online Retail export into the tables and
// aggregates the report is drawn from.
//
// # Data Flow
//
//	Excel/CSV file → LoadFile → Table → DropMissing → Derive → GroupSum / TopN
//
// LoadFile reads a workbook with excelize (or a CSV file) and coerces the
// eight schema columns. DropMissing removes rows without a description or a
// customer. Derive adds the calendar fields of InvoiceDate. GroupSum sums a
// value column per key with exact decimals, and TopN ranks the result.
//
// # Usage
//
//	table, err := dataprocessing.LoadFile("Online Retail.xlsx", dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	table = dataprocessing.Derive(dataprocessing.DropMissing(table))
//	byProduct := dataprocessing.GroupSum(table, dataprocessing.ByDescription, dataprocessing.Quantity)
//	top := dataprocessing.TopN(byProduct, 10)
//
// # Error Handling
//
// Load failures are LOAD AppErrors carrying the path and, for bad cells, the
// row and column. Column lookups by name fail with ErrUnknownColumn.
package dataprocessing
