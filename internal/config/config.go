package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "aqiclean/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Retry    RetryConfig    `yaml:"retry" envconfig:"RETRY"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
	Store    StoreConfig    `yaml:"store" envconfig:"STORE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PipelineConfig controls where the job reads from and writes to
type PipelineConfig struct {
	RootDir        string `yaml:"root_dir" envconfig:"ROOT_DIR" validate:"required"`
	OutputFile     string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	SheetExtension string `yaml:"sheet_extension" envconfig:"SHEET_EXTENSION" validate:"required,startswith=."`
	LockFilePrefix string `yaml:"lock_file_prefix" envconfig:"LOCK_FILE_PREFIX"`
	ReindexDaily   bool   `yaml:"reindex_daily" envconfig:"REINDEX_DAILY"`
	SkipBadFiles   bool   `yaml:"skip_bad_files" envconfig:"SKIP_BAD_FILES"`
	WriteBOM       bool   `yaml:"write_bom" envconfig:"WRITE_BOM"`
}

// RetryConfig bounds the wait on a locked output file
type RetryConfig struct {
	Attempts int           `yaml:"attempts" envconfig:"ATTEMPTS" validate:"min=1,max=50"`
	Delay    time.Duration `yaml:"delay" envconfig:"DELAY" validate:"gte=0s"`
}

// MetricsConfig enables the node_exporter textfile dump
type MetricsConfig struct {
	Textfile string `yaml:"textfile" envconfig:"TEXTFILE"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	Exporter string `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=none stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// StoreConfig configures the optional SQLite mirror of the output table
type StoreConfig struct {
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// Load loads configuration from the first config file found and
// environment variables
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile layers defaults, the YAML file at filePath (if non-empty) and
// environment variables, in that order of increasing precedence.
func LoadFile(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", filePath)
		}
	}

	// Fields without a matching variable are left untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
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

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Tracing.Exporter = strings.ToLower(strings.TrimSpace(c.Tracing.Exporter))
	c.Pipeline.SheetExtension = strings.ToLower(c.Pipeline.SheetExtension)

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	if !c.Tracing.Enabled {
		c.Tracing.Exporter = "none"
	}
}

// Validate checks struct tag constraints
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}

// WithOutput returns a copy of the configuration writing to path.
// An empty path keeps the configured output file.
func (c Config) WithOutput(path string) *Config {
	if path != "" {
		c.Pipeline.OutputFile = path
	}
	return &c
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		ConfigFileName,
		"configs/" + ConfigFileName,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Pipeline: PipelineConfig{
			RootDir:        DefaultRootDir,
			OutputFile:     DefaultOutputFile,
			SheetExtension: DefaultSheetExtension,
			LockFilePrefix: DefaultLockFilePrefix,
		},
		Retry: RetryConfig{
			Attempts: DefaultRetryAttempts,
			Delay:    DefaultRetryDelay,
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "none",
		},
	}
}
