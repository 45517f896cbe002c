// Package shared holds helpers used by more than one package.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - RecordBuilder and SampleRecords, a small Online Retail dataset with
//     returns, missing values and outliers
//   - WriteCSV and WriteWorkbook, which write fixtures the way an export
//     or Excel stores them
//   - BufferedSlogHandler and assertions on captured log records
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteWorkbook(t, "", testutil.Header(), testutil.SampleRecords())
//	    // ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "Input loaded")
//	}
package shared
