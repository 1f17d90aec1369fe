// Package its implements interrupted time series analysis for weekly panel
// data.
//
// This package provides segmented regression estimation of intervention
// effects on weekly outcome series, with heteroskedasticity and
// autocorrelation consistent (HAC) inference, counterfactual projection,
// and a robustness suite that stress-tests every estimate before it is
// reported.
//
// # Core Components
//
// The analysis pipeline has four stages:
//
//  1. Panel: an immutable weekly panel of observations, one gapless series
//     per segment, validated on construction.
//  2. Estimator: per-segment segmented regression with Newey-West standard
//     errors, fitted independently for each segment.
//  3. Projector: extrapolation of the pre-intervention level and trend over
//     the post period, yielding the counterfactual and the realized gap.
//  4. Suite: placebo dates, window sensitivity, leave-one-segment-out, and
//     specification-grid perturbations, each re-driving the estimator.
//
// # Architecture
//
// The package is organized by stage:
//
//   - types.go: panel, fit specification, and result structures
//   - panel.go: panel construction, CSV loading and writing
//   - design.go: regression design matrix and collinearity guards
//   - estimator.go: least squares fitting and inference
//   - hac.go: Newey-West covariance estimation
//   - counterfactual.go: counterfactual projection and gap tracking
//   - robustness.go: perturbation families and tolerance checks
//   - errors.go: typed error taxonomy
//
// # Usage Example
//
//	panel, err := its.LoadPanelCSV("data/ridership.csv", intervention)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	estimator := its.NewEstimator(slog.Default())
//	fits, err := estimator.FitAll(ctx, panel, its.DefaultFitSpec())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	projector := its.NewProjector(0, slog.Default())
//	for _, fit := range fits {
//	    proj, err := projector.Project(fit, panel.Segment(fit.Segment))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("%s: effect %.1f [%.1f, %.1f]\n",
//	        proj.Segment, proj.Effect.Estimate, proj.Effect.CILow, proj.Effect.CIHigh)
//	}
//
//	suite, err := its.NewSuite(estimator, its.DefaultSuiteOptions(), slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := suite.RunAll(ctx, panel, its.DefaultFitSpec())
//
// # Statistical Model
//
// Each segment is fitted separately by ordinary least squares:
//
//	outcome_t = b0 + b1*t + b2*post_t + b3*weeks_since_t [+ month terms] + e_t
//
// Where:
//   - t is the week index over the full horizon
//   - post_t indicates weeks on or after the intervention date
//   - weeks_since_t counts weeks elapsed since the intervention (optional)
//   - month terms are eleven calendar-month indicators (optional)
//
// The level-change coefficient b2 is the headline intervention effect. The
// coefficient covariance uses the Newey-West estimator with Bartlett
// weights, so standard errors stay valid under serial correlation of
// bounded order. Confidence intervals are symmetric normal-approximation
// intervals at the configured coverage.
//
// Segments are always estimated independently. Pre-intervention trends are
// not required to be parallel across segments, so no pooled or shared-slope
// model exists in this package, and the leave-one-segment-out check
// verifies that isolation holds exactly.
//
// # Failure Modes
//
// Estimation refuses rather than degrades:
//   - DataIntegrityError: gaps or duplicates in the weekly index
//   - UnderdeterminedModelError: too few observations for the regressors
//   - CollinearSpecificationError: month indicators aligned with the
//     intervention date, or a near-singular design matrix
//   - ConfigurationError: invalid specification or scenario parameters
//
// Robustness perturbations that fail individually are recorded as failed
// entries in their RobustnessResult instead of aborting the suite.
//
// # References
//
// This implementation follows standard interrupted time series practice:
//   - Newey, W.K. and West, K.D. (1987). A simple positive semi-definite
//     heteroskedasticity and autocorrelation consistent covariance matrix
//   - Bernal, J.L., Cummins, S. and Gasparrini, A. (2017). Interrupted time
//     series regression for the evaluation of public health interventions
//   - Wagner, A.K. et al. (2002). Segmented regression analysis of
//     interrupted time series studies in medication use research
package its
