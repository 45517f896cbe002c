package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "retaileda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig names the spreadsheet to analyse
type InputConfig struct {
	Path  string `yaml:"path" split_words:"true" validate:"required"`
	Sheet string `yaml:"sheet" split_words:"true"` // empty selects the first sheet
}

// OutputConfig controls where rendered charts and exported tables go
type OutputConfig struct {
	ChartsDir string `yaml:"charts_dir" split_words:"true" validate:"required"`
	Format    string `yaml:"format" split_words:"true" validate:"oneof=png jpg jpeg tiff"`
	TablesDir string `yaml:"tables_dir" split_words:"true"` // CSV copies of the console tables, empty disables
}

// AnalysisConfig holds the literal parameters of the analysis
type AnalysisConfig struct {
	HistogramBins       int     `yaml:"histogram_bins" split_words:"true" validate:"gt=0"`
	TopProducts         int     `yaml:"top_products" split_words:"true" validate:"gt=0"`
	TopN                int     `yaml:"top_n" split_words:"true" validate:"gt=0"`
	OutlierMaxQuantity  int64   `yaml:"outlier_max_quantity" split_words:"true" validate:"gt=0"`
	OutlierMaxUnitPrice float64 `yaml:"outlier_max_unit_price" split_words:"true" validate:"gt=0"`
	HeadRows            int     `yaml:"head_rows" split_words:"true" validate:"gte=0"`
	ValueColumn         string  `yaml:"value_column" split_words:"true" validate:"required"` // summed by every aggregate
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" split_words:"true"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" split_words:"true"`
	ServiceName string `yaml:"service_name" split_words:"true" validate:"required"`
	TraceFile   string `yaml:"trace_file" split_words:"true"`     // stdouttrace JSON, empty disables
	MetricsFile string `yaml:"metrics_file" split_words:"true"` // Prometheus textfile, empty disables
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file and RETAIL_* environment variables, in increasing
// order of precedence.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, DefaultEnvFile)
}

// LoadWithEnvFile is Load with an explicit dotenv location.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	// godotenv never overrides variables already set in the process.
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, apperrors.NewConfigError("failed to load env file", err).
					WithContext("path", envFile)
			}
		}
	}

	// No default tags: unset variables leave the file and default values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks every section. The log format is always forced to JSON.
func (c *Config) Validate() error {
	c.Logging.Format = DefaultLogFormat
	c.Output.Format = strings.ToLower(c.Output.Format)
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	if err := validate.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
		}
		return apperrors.NewConfigError("config validation failed", err).
			WithContext("fields", strings.Join(fields, ", "))
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path: DefaultInputPath,
		},
		Output: OutputConfig{
			ChartsDir: DefaultChartsDir,
			Format:    DefaultChartFormat,
		},
		Analysis: AnalysisConfig{
			HistogramBins:       DefaultHistogramBins,
			TopProducts:         DefaultTopProducts,
			TopN:                DefaultTopN,
			OutlierMaxQuantity:  DefaultOutlierMaxQuantity,
			OutlierMaxUnitPrice: DefaultOutlierMaxUnitPrice,
			HeadRows:            DefaultHeadRows,
			ValueColumn:         DefaultValueColumn,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: DefaultServiceName,
		},
	}
}
