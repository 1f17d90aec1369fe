package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"transitimpact/internal/config"
	"transitimpact/internal/its"
)

// ReportExporter generates the analysis output files: coefficient tables,
// counterfactual series, and robustness reports.
type ReportExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths),
		paths:     paths,
		logger:    logger,
	}
}

// coefficientHeaders is the column layout of the coefficient table. Fit
// diagnostics repeat on every coefficient row so the table stays flat.
var coefficientHeaders = []string{
	"segment", "term", "estimate", "std_error", "ci_low", "ci_high", "p_value",
	"r_squared", "adj_r_squared", "durbin_watson", "observations", "hac_lags",
}

// ExportCoefficientsCSV writes one row per fitted coefficient across all
// segments.
func (e *ReportExporter) ExportCoefficientsCSV(fits []*its.ModelFit, outputPath string) error {
	var records [][]string
	for _, fit := range fits {
		for _, coef := range fit.Coefficients {
			records = append(records, []string{
				fit.Segment,
				coef.Term,
				formatFloat(coef.Estimate),
				formatFloat(coef.StdError),
				formatFloat(coef.CILow),
				formatFloat(coef.CIHigh),
				formatPValue(coef.PValue),
				formatFloat(fit.RSquared),
				formatFloat(fit.AdjRSquared),
				formatFloat(fit.DurbinWatson),
				formatInt(fit.Observations),
				formatInt(fit.HACLagsUsed),
			})
		}
	}

	if err := e.csvWriter.WriteSimpleCSV(outputPath, coefficientHeaders, records); err != nil {
		return fmt.Errorf("failed to write coefficients: %w", err)
	}
	e.logger.Debug("exported coefficient table",
		slog.String("path", outputPath),
		slog.Int("rows", len(records)))
	return nil
}

// counterfactualHeaders is the column layout of the counterfactual series.
var counterfactualHeaders = []string{
	"segment", "date", "week_index", "observed", "counterfactual", "gap",
	"rolling_gap", "within_ci",
}

// ExportCounterfactualCSV streams every post-intervention projection point
// across all segments.
func (e *ReportExporter) ExportCounterfactualCSV(projections []*its.Projection, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, counterfactualHeaders)
	if err != nil {
		return fmt.Errorf("failed to open counterfactual stream: %w", err)
	}

	for _, proj := range projections {
		for _, point := range proj.Points {
			record := []string{
				proj.Segment,
				formatDate(point.Date),
				formatInt(point.WeekIndex),
				formatFloat(point.Observed),
				formatFloat(point.Counterfactual),
				formatFloat(point.Gap),
				formatFloat(point.RollingGap),
				formatBool(point.WithinCI),
			}
			if err := stream.WriteRecord(record); err != nil {
				stream.Close()
				return fmt.Errorf("failed to write counterfactual row for %s: %w", proj.Segment, err)
			}
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close counterfactual stream: %w", err)
	}
	e.logger.Debug("exported counterfactual series",
		slog.String("path", outputPath),
		slog.Int("segments", len(projections)))
	return nil
}

// robustnessHeaders is the column layout of the flat robustness table.
var robustnessHeaders = []string{
	"kind", "key", "segment", "estimate", "std_error", "ci_low", "ci_high",
	"significant", "error",
}

// ExportRobustnessCSV writes every perturbation entry from all four
// families as one flat table.
func (e *ReportExporter) ExportRobustnessCSV(report *its.RobustnessReport, outputPath string) error {
	var records [][]string
	for _, result := range report.Results() {
		for _, entry := range result.Entries {
			records = append(records, []string{
				string(result.Kind),
				entry.Key,
				entry.Segment,
				formatFloat(entry.Estimate),
				formatFloat(entry.StdError),
				formatFloat(entry.CILow),
				formatFloat(entry.CIHigh),
				formatBool(entry.Significant),
				entry.Err,
			})
		}
	}

	if err := e.csvWriter.WriteSimpleCSV(outputPath, robustnessHeaders, records); err != nil {
		return fmt.Errorf("failed to write robustness table: %w", err)
	}
	e.logger.Debug("exported robustness table",
		slog.String("path", outputPath),
		slog.Int("rows", len(records)))
	return nil
}

// ExportRobustnessJSON writes the full robustness report, including
// summaries and tolerances, as indented JSON.
func (e *ReportExporter) ExportRobustnessJSON(report *its.RobustnessReport, outputPath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal robustness report: %w", err)
	}

	fullPath := e.csvWriter.resolvePath(outputPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write robustness report: %w", err)
	}

	e.logger.Debug("exported robustness report",
		slog.String("path", fullPath),
		slog.String("run_id", report.RunID))
	return nil
}
