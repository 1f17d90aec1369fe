package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	PanelsDir    string `yaml:"panels_dir" envconfig:"PANELS_DIR"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	ScenariosDir string `yaml:"scenarios_dir" envconfig:"SCENARIOS_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// AnalysisConfig contains estimation defaults applied when a command does
// not override them on its own flags.
type AnalysisConfig struct {
	ConfidenceLevel     float64 `yaml:"confidence_level" envconfig:"CONFIDENCE_LEVEL"`
	HACLags             int     `yaml:"hac_lags" envconfig:"HAC_LAGS"`
	IncludeSlopeChange  bool    `yaml:"include_slope_change" envconfig:"INCLUDE_SLOPE_CHANGE"`
	IncludeMonthDummies bool    `yaml:"include_month_dummies" envconfig:"INCLUDE_MONTH_DUMMIES"`
	MaxConcurrency      int     `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: filepath.Join(DefaultLogsDir, "transitimpact.log"),
		},
		Paths: PathsConfig{
			DataDir:      DefaultDataDir,
			PanelsDir:    DefaultPanelsDir,
			ReportsDir:   DefaultReportsDir,
			ScenariosDir: DefaultScenariosDir,
			LogsDir:      DefaultLogsDir,
		},
		Analysis: AnalysisConfig{
			ConfidenceLevel: DefaultConfidenceLevel,
			MaxConcurrency:  DefaultMaxConcurrency,
		},
	}
}

// Load loads configuration by layering, lowest precedence first: built-in
// defaults, the optional config file, then TI_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration using an explicit config file path. A
// missing file is not an error; the defaults and environment still apply.
func LoadFrom(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(cfg, *fileCfg)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays non-zero file values on the base configuration.
func mergeConfigs(base, file Config) Config {
	// Logging
	if file.Logging.Level != "" {
		base.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		base.Logging.Format = file.Logging.Format
	}
	if file.Logging.Output != "" {
		base.Logging.Output = file.Logging.Output
	}
	if file.Logging.FilePath != "" {
		base.Logging.FilePath = file.Logging.FilePath
	}

	// Paths
	if file.Paths.DataDir != "" {
		base.Paths.DataDir = file.Paths.DataDir
	}
	if file.Paths.PanelsDir != "" {
		base.Paths.PanelsDir = file.Paths.PanelsDir
	}
	if file.Paths.ReportsDir != "" {
		base.Paths.ReportsDir = file.Paths.ReportsDir
	}
	if file.Paths.ScenariosDir != "" {
		base.Paths.ScenariosDir = file.Paths.ScenariosDir
	}
	if file.Paths.LogsDir != "" {
		base.Paths.LogsDir = file.Paths.LogsDir
	}

	// Analysis
	if file.Analysis.ConfidenceLevel != 0 {
		base.Analysis.ConfidenceLevel = file.Analysis.ConfidenceLevel
	}
	if file.Analysis.HACLags != 0 {
		base.Analysis.HACLags = file.Analysis.HACLags
	}
	if file.Analysis.IncludeSlopeChange {
		base.Analysis.IncludeSlopeChange = true
	}
	if file.Analysis.IncludeMonthDummies {
		base.Analysis.IncludeMonthDummies = true
	}
	if file.Analysis.MaxConcurrency != 0 {
		base.Analysis.MaxConcurrency = file.Analysis.MaxConcurrency
	}

	return base
}

// validate checks configuration values
func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.Analysis.ConfidenceLevel <= 0 || c.Analysis.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level must be in (0, 1): %v", c.Analysis.ConfidenceLevel)
	}
	if c.Analysis.HACLags < 0 {
		return fmt.Errorf("hac lags must be non-negative: %d", c.Analysis.HACLags)
	}
	if c.Analysis.MaxConcurrency < 1 {
		return fmt.Errorf("max concurrency must be at least 1: %d", c.Analysis.MaxConcurrency)
	}

	return nil
}

// configFilePath returns the config file location: the TI_CONFIG
// environment variable when set, otherwise config.yaml in the working
// directory.
func configFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}
