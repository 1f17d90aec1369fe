// Package exporter writes analysis artifacts to disk in CSV, JSON, and
// Excel workbook formats.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Turns model fits, counterfactual projections, and
// robustness reports into the flat files consumed downstream: one CSV
// per artifact, a machine-readable robustness JSON, and a multi-sheet
// workbook for analysts.
//
// StreamWriter: Row-at-a-time CSV writing for long series such as the
// weekly counterfactual table.
//
// Example usage:
//
//	paths, _ := cfg.ResolvePaths()
//	exp := exporter.NewReportExporter(paths, logger)
//
//	// Flat files
//	err := exp.ExportCoefficientsCSV(report.BaseFits, "coefficients.csv")
//	err = exp.ExportCounterfactualCSV(projections, "counterfactual.csv")
//	err = exp.ExportRobustnessCSV(report, "robustness.csv")
//	err = exp.ExportRobustnessJSON(report, "robustness.json")
//
//	// Everything in one workbook
//	err = exp.ExportWorkbook(report, projections, "impact_report.xlsx")
package exporter
