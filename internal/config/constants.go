package config

// Application constants for the transit impact analysis tooling.
const (
	// Application Info
	AppName    = "Transit Impact"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces all environment variables (TI_LOGGING_LEVEL,
	// TI_PATHS_DATA_DIR, ...).
	EnvPrefix = "TI"

	// File Paths (relative to the working directory unless absolute)
	DefaultDataDir      = "data"
	DefaultPanelsDir    = "data/panels"
	DefaultReportsDir   = "data/reports"
	DefaultScenariosDir = "scenarios"
	DefaultLogsDir      = "logs"
	DefaultConfigFile   = "config.yaml"

	// Well-known output files
	PanelCSVName          = "panel.csv"
	CoefficientsCSVName   = "coefficients.csv"
	CounterfactualCSVName = "counterfactual.csv"
	RobustnessCSVName     = "robustness.csv"
	RobustnessJSONName    = "robustness.json"
	WorkbookName          = "impact_report.xlsx"

	// Analysis defaults
	DefaultConfidenceLevel = 0.95
	DefaultMaxConcurrency  = 4

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10
)
