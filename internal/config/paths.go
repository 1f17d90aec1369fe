package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved output locations for the application.
// This is the single source of truth for generated file paths: panels,
// reports, scenario configs, and logs all live under these directories.
type Paths struct {
	BaseDir      string
	DataDir      string
	PanelsDir    string
	ReportsDir   string
	ScenariosDir string
	LogsDir      string
}

// ResolvePaths resolves the configured paths against the working
// directory. Absolute configured paths are kept as given.
func (c *Config) ResolvePaths() (*Paths, error) {
	base, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return c.resolvePathsFrom(base), nil
}

func (c *Config) resolvePathsFrom(base string) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	return &Paths{
		BaseDir:      base,
		DataDir:      resolve(c.Paths.DataDir),
		PanelsDir:    resolve(c.Paths.PanelsDir),
		ReportsDir:   resolve(c.Paths.ReportsDir),
		ScenariosDir: resolve(c.Paths.ScenariosDir),
		LogsDir:      resolve(c.Paths.LogsDir),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.PanelsDir,
		p.ReportsDir,
		p.ScenariosDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetPanelPath returns the full path for a panel CSV file.
func (p *Paths) GetPanelPath(filename string) string {
	return filepath.Join(p.PanelsDir, filename)
}

// GetReportPath returns the full path for a generated report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetScenarioPath returns the full path for a scenario config file.
func (p *Paths) GetScenarioPath(filename string) string {
	return filepath.Join(p.ScenariosDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
