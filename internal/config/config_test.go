package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, filepath.Join("logs", "transitimpact.log"), cfg.Logging.FilePath)

	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "data/panels", cfg.Paths.PanelsDir)
	assert.Equal(t, "data/reports", cfg.Paths.ReportsDir)
	assert.Equal(t, "scenarios", cfg.Paths.ScenariosDir)
	assert.Equal(t, "logs", cfg.Paths.LogsDir)

	assert.Equal(t, 0.95, cfg.Analysis.ConfidenceLevel)
	assert.Equal(t, 0, cfg.Analysis.HACLags)
	assert.False(t, cfg.Analysis.IncludeSlopeChange)
	assert.False(t, cfg.Analysis.IncludeMonthDummies)
	assert.Equal(t, 4, cfg.Analysis.MaxConcurrency)

	assert.NoError(t, cfg.validate())
}

func TestLoadFromMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadFromFileOverlay(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: debug\nanalysis:\n  hac_lags: 6\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 6, cfg.Analysis.HACLags)

	// Everything the file does not mention keeps its default.
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, 0.95, cfg.Analysis.ConfidenceLevel)
	assert.Equal(t, "data", cfg.Paths.DataDir)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: debug\n")
	t.Setenv("TI_LOGGING_LEVEL", "warn")
	t.Setenv("TI_ANALYSIS_MAX_CONCURRENCY", "8")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Analysis.MaxConcurrency)
}

func TestLoadFromValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown log level", "logging:\n  level: verbose\n", "invalid log level"},
		{"unknown log format", "logging:\n  format: xml\n", "invalid log format"},
		{"unknown log output", "logging:\n  output: syslog\n", "invalid log output"},
		{"confidence level out of range", "analysis:\n  confidence_level: 1.5\n", "confidence level"},
		{"negative hac lags", "analysis:\n  hac_lags: -2\n", "hac lags"},
		{"negative concurrency", "analysis:\n  max_concurrency: -1\n", "max concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)

			_, err := LoadFrom(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromUnparseableEnvValue(t *testing.T) {
	t.Setenv("TI_ANALYSIS_HAC_LAGS", "abc")

	_, err := LoadFrom("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from env")
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "logging: notamap\n")

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestLoadHonorsConfigEnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644))
	t.Setenv("TI_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestConfigFilePath(t *testing.T) {
	t.Setenv("TI_CONFIG", "/etc/transitimpact/config.yaml")
	assert.Equal(t, "/etc/transitimpact/config.yaml", configFilePath())

	t.Setenv("TI_CONFIG", "")
	assert.Equal(t, "config.yaml", configFilePath())
}

func TestMergeConfigs(t *testing.T) {
	base := DefaultConfig()

	t.Run("zero overlay changes nothing", func(t *testing.T) {
		assert.Equal(t, base, mergeConfigs(base, Config{}))
	})

	t.Run("non-zero fields win", func(t *testing.T) {
		overlay := Config{
			Logging:  LoggingConfig{Level: "debug"},
			Paths:    PathsConfig{ReportsDir: "/var/reports"},
			Analysis: AnalysisConfig{HACLags: 12, IncludeMonthDummies: true},
		}
		merged := mergeConfigs(base, overlay)

		assert.Equal(t, "debug", merged.Logging.Level)
		assert.Equal(t, "text", merged.Logging.Format)
		assert.Equal(t, "/var/reports", merged.Paths.ReportsDir)
		assert.Equal(t, "data/panels", merged.Paths.PanelsDir)
		assert.Equal(t, 12, merged.Analysis.HACLags)
		assert.True(t, merged.Analysis.IncludeMonthDummies)
		assert.Equal(t, 4, merged.Analysis.MaxConcurrency)
	})

	t.Run("booleans only overlay true", func(t *testing.T) {
		enabled := base
		enabled.Analysis.IncludeSlopeChange = true

		merged := mergeConfigs(enabled, Config{})
		assert.True(t, merged.Analysis.IncludeSlopeChange)
	})
}
