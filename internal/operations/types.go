package operations

import (
	"time"
)

// Step identifiers, in execution order
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDDerive    = "derive"
	StepIDAggregate = "aggregate"
	StepIDReport    = "report"
)

// Step names
const (
	StepNameLoad      = "Load Input"
	StepNameClean     = "Clean Missing Values"
	StepNameDerive    = "Derive Calendar Fields"
	StepNameAggregate = "Aggregate Sales"
	StepNameReport    = "Render Report"
)

// Metadata keys recorded on step states
const (
	MetadataKeyRows        = "rows"
	MetadataKeyDropped     = "dropped"
	MetadataKeyCharts      = "charts"
	MetadataKeyEmptyPanels = "empty_panels"
	MetadataKeyTables      = "tables"
)

// Default timeouts
const (
	DefaultStageTimeout  = 10 * time.Minute
	DefaultLoadTimeout   = 15 * time.Minute
	DefaultReportTimeout = 15 * time.Minute
)

// OperationResponse summarises a finished run
type OperationResponse struct {
	ID       string               `json:"id"`
	Status   OperationStatusValue `json:"status"`
	Duration time.Duration        `json:"duration"`
	Steps    []*StepState         `json:"steps"`
	Error    string               `json:"error,omitempty"`
}
