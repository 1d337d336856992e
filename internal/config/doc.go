// Package config provides configuration loading for the aqiclean batch job.
// Configuration only tunes operational concerns (where to read, where to
// write, logging, retry and telemetry); the cleaning algorithm itself has no
// knobs beyond the opt-in daily reindex.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. aqiclean.yaml in the working directory or configs/
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AQI_<SECTION>_<FIELD>:
//
//	AQI_PIPELINE_ROOT_DIR=/data/aqi
//	AQI_PIPELINE_OUTPUT_FILE=out/AQI_Data_Cleaned.csv
//	AQI_PIPELINE_REINDEX_DAILY=true
//	AQI_RETRY_ATTEMPTS=5
//	AQI_RETRY_DELAY=500ms
//	AQI_LOGGING_LEVEL=debug
//	AQI_METRICS_TEXTFILE=/var/lib/node_exporter/aqiclean.prom
//	AQI_STORE_SQLITE_PATH=aqi.db
//
// # Validation
//
// Struct tags are checked with go-playground/validator after all sources
// are merged; an invalid level, exporter or retry bound fails the load.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg = cfg.WithOutput(cli.Output)
package config
