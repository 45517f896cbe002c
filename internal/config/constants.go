package config

// Application constants
const (
	AppName = "retail-eda"

	// EnvPrefix namespaces every environment override, e.g. RETAIL_ANALYSIS_TOP_N.
	EnvPrefix = "RETAIL"

	// DefaultEnvFile is read before the environment is consulted, if present.
	DefaultEnvFile = ".env"
)

// Input defaults
const (
	DefaultInputPath = "Online Retail.xlsx"
)

// Output defaults
const (
	DefaultChartsDir   = "charts"
	DefaultChartFormat = "png"
	DefaultLogsDir     = "logs"
)

// Analysis defaults, matching the notebook literals.
const (
	DefaultHistogramBins       = 10
	DefaultTopProducts         = 10
	DefaultTopN                = 5
	DefaultOutlierMaxQuantity  = 1000
	DefaultOutlierMaxUnitPrice = 100.0
	DefaultHeadRows            = 5
	DefaultValueColumn         = "Quantity"
)

// Log settings
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogOutput   = "console"
	DefaultLogFilePath = "logs/retail-eda.log"
)

// Telemetry settings
const (
	DefaultServiceName = "retail-eda"
)
