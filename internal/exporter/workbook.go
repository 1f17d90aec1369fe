package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"transitimpact/internal/config"
	"transitimpact/internal/its"
)

// Workbook sheet names, in tab order.
const (
	sheetSummary        = "Summary"
	sheetCoefficients   = "Coefficients"
	sheetCounterfactual = "Counterfactual"
	sheetPlacebo        = "Placebo"
	sheetWindows        = "Windows"
	sheetLeaveOneOut    = "LeaveOneOut"
	sheetSpecGrid       = "SpecGrid"
)

// ExportWorkbook writes the full analysis into a single Excel workbook:
// a summary sheet with headline effects and tolerance checks, the
// coefficient table, the counterfactual series, and one sheet per
// robustness family.
func (e *ReportExporter) ExportWorkbook(report *its.RobustnessReport, projections []*its.Projection, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummarySheet(f, report, projections); err != nil {
		return fmt.Errorf("failed to build summary sheet: %w", err)
	}
	if err := e.writeCoefficientSheet(f, report.BaseFits); err != nil {
		return fmt.Errorf("failed to build coefficient sheet: %w", err)
	}
	if err := e.writeCounterfactualSheet(f, projections); err != nil {
		return fmt.Errorf("failed to build counterfactual sheet: %w", err)
	}

	familySheets := []struct {
		name   string
		result *its.RobustnessResult
	}{
		{sheetPlacebo, report.Placebo},
		{sheetWindows, report.Window},
		{sheetLeaveOneOut, report.LeaveOneOut},
		{sheetSpecGrid, report.SpecGrid},
	}
	for _, fs := range familySheets {
		if fs.result == nil {
			continue
		}
		if err := e.writeFamilySheet(f, fs.name, fs.result); err != nil {
			return fmt.Errorf("failed to build %s sheet: %w", fs.name, err)
		}
	}

	// The default sheet was replaced by Summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return fmt.Errorf("failed to locate summary sheet: %w", err)
	}
	f.SetActiveSheet(index)

	fullPath := e.csvWriter.resolvePath(outputPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("exported analysis workbook",
		slog.String("path", fullPath),
		slog.String("run_id", report.RunID))
	return nil
}

func (e *ReportExporter) writeSummarySheet(f *excelize.File, report *its.RobustnessReport, projections []*its.Projection) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	row := 1
	header := [][]interface{}{
		{config.AppName, config.AppVersion},
		{"Run ID", report.RunID},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"All checks passed", report.AllPassed},
	}
	for _, values := range header {
		if err := setRow(f, sheetSummary, row, values); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, sheetSummary, row, []interface{}{
		"Segment", "Level Change", "CI Low", "CI High", "P-Value", "Stability Share", "Stable",
	}); err != nil {
		return err
	}
	row++
	for _, proj := range projections {
		if err := setRow(f, sheetSummary, row, []interface{}{
			proj.Segment,
			proj.Effect.Estimate,
			proj.Effect.CILow,
			proj.Effect.CIHigh,
			proj.Effect.PValue,
			proj.StabilityShare,
			proj.Stable,
		}); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, sheetSummary, row, []interface{}{
		"Family", "Check", "Value", "Threshold", "Passed",
	}); err != nil {
		return err
	}
	row++
	for _, result := range report.Results() {
		for _, check := range result.Summary.Checks {
			if err := setRow(f, sheetSummary, row, []interface{}{
				string(result.Kind),
				check.Name,
				check.Value,
				check.Threshold,
				check.Passed,
			}); err != nil {
				return err
			}
			row++
		}
	}

	return f.SetColWidth(sheetSummary, "A", "B", 24)
}

func (e *ReportExporter) writeCoefficientSheet(f *excelize.File, fits []*its.ModelFit) error {
	if _, err := f.NewSheet(sheetCoefficients); err != nil {
		return err
	}

	if err := setRow(f, sheetCoefficients, 1, toInterfaces(coefficientHeaders)); err != nil {
		return err
	}
	row := 2
	for _, fit := range fits {
		for _, coef := range fit.Coefficients {
			if err := setRow(f, sheetCoefficients, row, []interface{}{
				fit.Segment,
				coef.Term,
				coef.Estimate,
				coef.StdError,
				coef.CILow,
				coef.CIHigh,
				coef.PValue,
				fit.RSquared,
				fit.AdjRSquared,
				fit.DurbinWatson,
				fit.Observations,
				fit.HACLagsUsed,
			}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (e *ReportExporter) writeCounterfactualSheet(f *excelize.File, projections []*its.Projection) error {
	if _, err := f.NewSheet(sheetCounterfactual); err != nil {
		return err
	}

	if err := setRow(f, sheetCounterfactual, 1, toInterfaces(counterfactualHeaders)); err != nil {
		return err
	}
	row := 2
	for _, proj := range projections {
		for _, point := range proj.Points {
			if err := setRow(f, sheetCounterfactual, row, []interface{}{
				proj.Segment,
				formatDate(point.Date),
				point.WeekIndex,
				point.Observed,
				point.Counterfactual,
				point.Gap,
				point.RollingGap,
				point.WithinCI,
			}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (e *ReportExporter) writeFamilySheet(f *excelize.File, sheet string, result *its.RobustnessResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := setRow(f, sheet, 1, []interface{}{
		"key", "segment", "estimate", "std_error", "ci_low", "ci_high", "significant", "error",
	}); err != nil {
		return err
	}
	row := 2
	for _, entry := range result.Entries {
		if err := setRow(f, sheet, row, []interface{}{
			entry.Key,
			entry.Segment,
			entry.Estimate,
			entry.StdError,
			entry.CILow,
			entry.CIHigh,
			entry.Significant,
			entry.Err,
		}); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, sheet, row, []interface{}{"entries", result.Summary.Entries}); err != nil {
		return err
	}
	row++
	if err := setRow(f, sheet, row, []interface{}{"failures", result.Summary.Failures}); err != nil {
		return err
	}
	row++
	if err := setRow(f, sheet, row, []interface{}{"passed", result.Summary.Passed}); err != nil {
		return err
	}
	return nil
}

// setRow writes one row of values starting at column A.
func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
