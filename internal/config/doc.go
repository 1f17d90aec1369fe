// Package config provides centralized configuration management for the
// transit impact analysis tooling. It handles loading configuration from
// multiple sources, validation, and path resolution for generated files.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TI_* for namespacing:
//
//	TI_LOGGING_LEVEL=debug
//	TI_LOGGING_FORMAT=json
//	TI_PATHS_REPORTS_DIR=/srv/reports
//	TI_ANALYSIS_CONFIDENCE_LEVEL=0.99
//	TI_ANALYSIS_MAX_CONCURRENCY=8
//
// The config file location itself can be overridden with TI_CONFIG;
// otherwise config.yaml in the working directory is used when present.
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which resolves all configured directories against the working directory:
//
//	paths, err := cfg.ResolvePaths()
//	panelPath := paths.GetPanelPath("baseline_panel.csv")
//	reportPath := paths.GetReportPath("impact_report.xlsx")
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
