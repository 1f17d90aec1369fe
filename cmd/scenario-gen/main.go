package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"transitimpact/internal/config"
	"transitimpact/internal/infrastructure"
	"transitimpact/internal/scenario"
)

func main() {
	presetName := flag.String("preset", "baseline", "built-in scenario preset (baseline or realistic)")
	scenarioPath := flag.String("scenario", "", "scenario YAML file (overrides -preset)")
	seed := flag.Uint64("seed", 0, "override the scenario seed (0 keeps the scenario's own)")
	outputPath := flag.String("out", "", "output panel CSV path (defaults to data/panels/panel.csv)")
	dumpConfig := flag.String("dump-config", "", "optional path to write the resolved scenario YAML")
	flag.Parse()

	// Load application configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(context.Background())

	// Initialize paths
	paths, err := cfg.ResolvePaths()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.ErrorContext(ctx, "Failed to create directories", "error", err)
		os.Exit(1)
	}

	// Resolve the scenario: explicit YAML wins over the named preset
	scenarioCfg, err := resolveScenario(*scenarioPath, *presetName)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve scenario", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		scenarioCfg.Seed = *seed
	}

	logger.InfoContext(ctx, "Generating synthetic panel",
		"scenario", scenarioCfg.Name,
		"segments", len(scenarioCfg.Segments),
		"weeks", scenarioCfg.NumWeeks(),
		"seed", scenarioCfg.Seed)

	generator := scenario.NewGenerator(logger)
	panel, err := generator.GeneratePanel(ctx, scenarioCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate panel", "error", err)
		os.Exit(1)
	}

	// Use default output path if not specified
	if *outputPath == "" {
		*outputPath = paths.GetPanelPath(config.PanelCSVName)
	}

	if err := panel.WriteCSV(*outputPath); err != nil {
		logger.ErrorContext(ctx, "Failed to write panel CSV", "error", err, "path", *outputPath)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Panel written",
		"path", *outputPath,
		"rows", panel.NumRows())

	// The true effects travel with the panel so validation runs can
	// compare recovered estimates against them.
	truthPath := strings.TrimSuffix(*outputPath, ".csv") + "_truth.json"
	if err := scenario.WriteGroundTruth(scenarioCfg, truthPath); err != nil {
		logger.ErrorContext(ctx, "Failed to write ground truth", "error", err, "path", truthPath)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Ground truth written", "path", truthPath)

	// Optionally persist the resolved scenario for reproducibility
	if *dumpConfig != "" {
		if err := scenario.WriteConfig(scenarioCfg, *dumpConfig); err != nil {
			logger.ErrorContext(ctx, "Failed to write scenario YAML", "error", err, "path", *dumpConfig)
			os.Exit(1)
		}
		logger.InfoContext(ctx, "Scenario written", "path", *dumpConfig)
	}

	printPanelSummary(scenarioCfg, *outputPath)
}

// resolveScenario loads the scenario YAML when given, otherwise looks up
// the named preset.
func resolveScenario(scenarioPath, presetName string) (scenario.Config, error) {
	if scenarioPath != "" {
		return scenario.LoadConfig(scenarioPath)
	}
	cfg, ok := scenario.Preset(presetName)
	if !ok {
		return scenario.Config{}, fmt.Errorf("unknown preset %q (expected baseline or realistic)", presetName)
	}
	return cfg, nil
}

func printPanelSummary(cfg scenario.Config, outputPath string) {
	fmt.Println("\n=== SYNTHETIC PANEL GENERATED ===")
	fmt.Printf("Scenario:     %s\n", cfg.Name)
	fmt.Printf("Horizon:      %s to %s (%d weeks)\n", cfg.HorizonStart, cfg.HorizonEnd, cfg.NumWeeks())
	fmt.Printf("Intervention: %s\n", cfg.Intervention)
	fmt.Printf("Seed:         %d\n", cfg.Seed)
	fmt.Printf("Output:       %s\n", filepath.Clean(outputPath))

	fmt.Println("\nSegment    | Base Level | Weekly Trend | Step Effect | Noise SD")
	fmt.Println("-----------|------------|--------------|-------------|---------")
	for _, seg := range cfg.Segments {
		fmt.Printf("%-10s | %10.1f | %12.3f | %11.1f | %8.1f\n",
			seg.ID, seg.BaseLevel, seg.WeeklyTrend, seg.StepEffect, seg.NoiseStd)
	}
}
