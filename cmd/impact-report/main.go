package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"transitimpact/internal/config"
	"transitimpact/internal/exporter"
	"transitimpact/internal/infrastructure"
	"transitimpact/internal/its"
	"transitimpact/internal/scenario"
)

func main() {
	panelPath := flag.String("panel", "", "existing panel CSV to analyze (requires -intervention)")
	interventionStr := flag.String("intervention", "", "intervention date for -panel, format 2006-01-02")
	presetName := flag.String("preset", "baseline", "scenario preset used when no -panel is given")
	scenarioPath := flag.String("scenario", "", "scenario YAML used when no -panel is given (overrides -preset)")
	outputDir := flag.String("out", "", "output directory for report artifacts (defaults to data/reports)")
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
	if *outputDir == "" {
		*outputDir = paths.ReportsDir
	}

	// Acquire the panel: load from CSV, or generate from a scenario. In
	// the synthetic case the scenario's true effects come back too.
	panel, truth, err := acquirePanel(ctx, logger, *panelPath, *interventionStr, *scenarioPath, *presetName)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to acquire panel", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Panel ready",
		"segments", len(panel.SegmentIDs()),
		"rows", panel.NumRows(),
		"intervention", panel.InterventionDate().Format("2006-01-02"))

	spec := buildFitSpec(cfg)
	estimator := its.NewEstimator(logger)

	opts := its.DefaultSuiteOptions()
	opts.MaxConcurrency = cfg.Analysis.MaxConcurrency
	suite, err := its.NewSuite(estimator, opts, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to configure robustness suite", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Fitting models and running robustness sweeps")
	report, err := suite.RunAll(ctx, panel, spec)
	if err != nil {
		logger.ErrorContext(ctx, "Analysis failed", "error", err)
		os.Exit(1)
	}

	projector := its.NewProjector(0, logger)
	projections, err := projector.ProjectAll(report.BaseFits, panel)
	if err != nil {
		logger.ErrorContext(ctx, "Counterfactual projection failed", "error", err)
		os.Exit(1)
	}

	if err := exportArtifacts(ctx, paths, logger, *outputDir, report, projections); err != nil {
		logger.ErrorContext(ctx, "Failed to export artifacts", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Impact report generated",
		"run_id", report.RunID,
		"output", *outputDir,
		"all_checks_passed", report.AllPassed)

	printEffects(projections)
	if truth != nil {
		printRecovery(*truth, projections)
	}
	printRobustness(report)
}

// acquirePanel loads an existing panel CSV or generates one from the
// configured scenario. The returned ground truth is nil in CSV mode.
func acquirePanel(ctx context.Context, logger *slog.Logger, panelPath, interventionStr, scenarioPath, presetName string) (*its.Panel, *scenario.GroundTruth, error) {
	if panelPath != "" {
		if interventionStr == "" {
			return nil, nil, fmt.Errorf("-intervention is required when loading a panel CSV")
		}
		interventionDate, err := time.Parse("2006-01-02", interventionStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid intervention date %q: %w", interventionStr, err)
		}
		logger.InfoContext(ctx, "Loading panel", "path", panelPath)
		panel, err := its.LoadPanelCSV(panelPath, interventionDate)
		return panel, nil, err
	}

	var scenarioCfg scenario.Config
	if scenarioPath != "" {
		cfg, err := scenario.LoadConfig(scenarioPath)
		if err != nil {
			return nil, nil, err
		}
		scenarioCfg = cfg
	} else {
		cfg, ok := scenario.Preset(presetName)
		if !ok {
			return nil, nil, fmt.Errorf("unknown preset %q (expected baseline or realistic)", presetName)
		}
		scenarioCfg = cfg
	}

	logger.InfoContext(ctx, "Generating panel from scenario", "scenario", scenarioCfg.Name)
	panel, err := scenario.NewGenerator(logger).GeneratePanel(ctx, scenarioCfg)
	if err != nil {
		return nil, nil, err
	}
	truth := scenarioCfg.Truth()
	return panel, &truth, nil
}

// buildFitSpec applies the configured analysis defaults.
func buildFitSpec(cfg *config.Config) its.FitSpec {
	spec := its.DefaultFitSpec()
	spec.ConfidenceLevel = cfg.Analysis.ConfidenceLevel
	spec.HACLags = cfg.Analysis.HACLags
	spec.IncludeSlopeChange = cfg.Analysis.IncludeSlopeChange
	spec.IncludeMonthDummies = cfg.Analysis.IncludeMonthDummies
	return spec
}

// exportArtifacts writes all report files concurrently; each artifact is
// an independent file so the writes do not contend.
func exportArtifacts(ctx context.Context, paths *config.Paths, logger *slog.Logger, outputDir string, report *its.RobustnessReport, projections []*its.Projection) error {
	exp := exporter.NewReportExporter(paths, logger)

	outPath := func(name string) (string, error) {
		return filepath.Abs(filepath.Join(outputDir, name))
	}

	g, _ := errgroup.WithContext(ctx)
	artifacts := []struct {
		name  string
		write func(path string) error
	}{
		{config.CoefficientsCSVName, func(path string) error {
			return exp.ExportCoefficientsCSV(report.BaseFits, path)
		}},
		{config.CounterfactualCSVName, func(path string) error {
			return exp.ExportCounterfactualCSV(projections, path)
		}},
		{config.RobustnessCSVName, func(path string) error {
			return exp.ExportRobustnessCSV(report, path)
		}},
		{config.RobustnessJSONName, func(path string) error {
			return exp.ExportRobustnessJSON(report, path)
		}},
		{config.WorkbookName, func(path string) error {
			return exp.ExportWorkbook(report, projections, path)
		}},
	}
	for _, artifact := range artifacts {
		path, err := outPath(artifact.name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", artifact.name, err)
		}
		write := artifact.write
		g.Go(func() error {
			return write(path)
		})
	}
	return g.Wait()
}

func printEffects(projections []*its.Projection) {
	fmt.Println("\n=== ESTIMATED INTERVENTION EFFECTS ===")
	fmt.Println("Segment    | Level Change | 95% CI Low | 95% CI High | P-Value | Naive Diff | Stable")
	fmt.Println("-----------|--------------|------------|-------------|---------|------------|-------")
	for _, proj := range projections {
		fmt.Printf("%-10s | %12.2f | %10.2f | %11.2f | %7.4f | %10.2f | %v\n",
			proj.Segment,
			proj.Effect.Estimate,
			proj.Effect.CILow,
			proj.Effect.CIHigh,
			proj.Effect.PValue,
			proj.NaiveDifference,
			proj.Stable)
	}
}

// printRecovery compares recovered estimates against the scenario's true
// effects. Informational; acceptance thresholds live in the test suite.
func printRecovery(truth scenario.GroundTruth, projections []*its.Projection) {
	fmt.Println("\n=== RECOVERY VS GROUND TRUTH ===")
	fmt.Println("Segment    | True Step | Estimated | Rel Error | Truth in CI")
	fmt.Println("-----------|-----------|-----------|-----------|------------")
	for _, proj := range projections {
		segTruth, ok := truth.Segment(proj.Segment)
		if !ok {
			continue
		}
		relErr := math.Abs(proj.Effect.Estimate - segTruth.StepEffect)
		if segTruth.StepEffect != 0 {
			relErr /= math.Abs(segTruth.StepEffect)
		}
		inCI := proj.Effect.CILow <= segTruth.StepEffect && segTruth.StepEffect <= proj.Effect.CIHigh
		fmt.Printf("%-10s | %9.2f | %9.2f | %8.1f%% | %v\n",
			proj.Segment, segTruth.StepEffect, proj.Effect.Estimate, relErr*100, inCI)
	}
}

func printRobustness(report *its.RobustnessReport) {
	fmt.Println("\n=== ROBUSTNESS CHECKS ===")
	fmt.Println("Family               | Check                          | Value   | Threshold | Status")
	fmt.Println("---------------------|--------------------------------|---------|-----------|-------")
	for _, result := range report.Results() {
		for _, check := range result.Summary.Checks {
			status := "PASS"
			if !check.Passed {
				status = "FAIL"
			}
			fmt.Printf("%-20s | %-30s | %7.4f | %9.4f | %s\n",
				result.Kind, check.Name, check.Value, check.Threshold, status)
		}
	}
	if report.AllPassed {
		fmt.Println("\nAll robustness checks passed.")
	} else {
		fmt.Println("\nOne or more robustness checks FAILED; treat the headline estimates with caution.")
	}
}
