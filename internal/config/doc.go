// Package config provides configuration management for retail-eda.
// It loads configuration from multiple sources, validates it, and resolves
// the file system locations a run reads from and writes to.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables, including a .env file (highest priority)
//	2. A YAML configuration file
//	3. Default values matching the original analysis (lowest priority)
//
// Variables already set in the process win over the .env file.
//
// # Environment Variables
//
// All environment variables follow the pattern RETAIL_<SECTION>_<FIELD>:
//
//	RETAIL_INPUT_PATH="Online Retail.xlsx"
//	RETAIL_OUTPUT_CHARTS_DIR=charts
//	RETAIL_ANALYSIS_HISTOGRAM_BINS=10
//	RETAIL_ANALYSIS_TOP_N=5
//	RETAIL_LOGGING_LEVEL=debug
//	RETAIL_TELEMETRY_METRICS_FILE=metrics/retail-eda.prom
//
// # Validation
//
// Every section is validated with go-playground/validator at load time.
// Failures are returned as CONFIG AppErrors naming the offending fields.
//
// # Usage
//
//	cfg, err := config.Load("retail-eda.yaml")
//	if err != nil {
//	    return err
//	}
//	paths, err := config.ResolvePaths(cfg)
package config
