package config

import "time"

// Application constants
const (
	AppName = "aqiclean"

	// EnvPrefix namespaces every environment variable (AQI_PIPELINE_ROOT_DIR, ...)
	EnvPrefix = "AQI"

	// ConfigFileName is looked up in the working directory, then configs/
	ConfigFileName = "aqiclean.yaml"

	// Pipeline defaults
	DefaultRootDir        = "."
	DefaultOutputFile     = "AQI_Data_Cleaned.csv"
	DefaultSheetExtension = ".xlsx"
	DefaultLockFilePrefix = "~$" // office lock files next to open workbooks

	// Locked output retry
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 2 * time.Second

	DefaultLogFile = "logs/aqiclean.log"
)
