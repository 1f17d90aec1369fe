package its

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// RobustnessKind labels one family of perturbation checks.
type RobustnessKind string

const (
	RobustnessPlacebo         RobustnessKind = "placebo"
	RobustnessWindow          RobustnessKind = "window"
	RobustnessLeaveOneSegment RobustnessKind = "leave_one_segment_out"
	RobustnessSpecGrid        RobustnessKind = "spec_grid"
)

// SuiteOptions configures the robustness suite. Zero values select the
// documented defaults; DefaultSuiteOptions returns them explicitly.
type SuiteOptions struct {
	// PlaceboDates are fabricated intervention dates to test. When empty,
	// NumPlacebos dates are spaced evenly across the buffered pre period.
	PlaceboDates       []time.Time `yaml:"placebo_dates" json:"placebo_dates,omitempty"`
	NumPlacebos        int         `yaml:"num_placebos" json:"num_placebos"`
	PlaceboBufferWeeks int         `yaml:"placebo_buffer_weeks" json:"placebo_buffer_weeks"`

	// WindowYears are the pre-period lengths swept by the window check.
	WindowYears []int `yaml:"window_years" json:"window_years"`

	// TrimWeeks and HACLagGrid span the specification grid together with
	// the slope-change toggle.
	TrimWeeks  []int `yaml:"trim_weeks" json:"trim_weeks"`
	HACLagGrid []int `yaml:"hac_lag_grid" json:"hac_lag_grid"`

	// Tolerances. A family passes when its metric stays inside these.
	MaxPlaceboSignificantShare float64 `yaml:"max_placebo_significant_share" json:"max_placebo_significant_share"`
	MaxPlaceboMagnitudeRatio   float64 `yaml:"max_placebo_magnitude_ratio" json:"max_placebo_magnitude_ratio"`
	MaxWindowCV                float64 `yaml:"max_window_cv" json:"max_window_cv"`
	MaxSpecDeviation           float64 `yaml:"max_spec_deviation" json:"max_spec_deviation"`

	// MaxConcurrency bounds the number of refits running at once.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency"`
}

// DefaultSuiteOptions returns the documented default sweep configuration.
func DefaultSuiteOptions() SuiteOptions {
	return SuiteOptions{
		NumPlacebos:                6,
		PlaceboBufferWeeks:         26,
		WindowYears:                []int{1, 2, 3, 4},
		TrimWeeks:                  []int{0, 4, 8},
		HACLagGrid:                 []int{2, 4, 8, 12},
		MaxPlaceboSignificantShare: 0.30,
		MaxPlaceboMagnitudeRatio:   0.50,
		MaxWindowCV:                0.20,
		MaxSpecDeviation:           0.15,
		MaxConcurrency:             4,
	}
}

// normalize fills unset fields with defaults so a partially specified
// options struct still drives a full sweep.
func (o SuiteOptions) normalize() SuiteOptions {
	def := DefaultSuiteOptions()
	if o.NumPlacebos <= 0 {
		o.NumPlacebos = def.NumPlacebos
	}
	if o.PlaceboBufferWeeks <= 0 {
		o.PlaceboBufferWeeks = def.PlaceboBufferWeeks
	}
	if len(o.WindowYears) == 0 {
		o.WindowYears = def.WindowYears
	}
	if len(o.TrimWeeks) == 0 {
		o.TrimWeeks = def.TrimWeeks
	}
	if len(o.HACLagGrid) == 0 {
		o.HACLagGrid = def.HACLagGrid
	}
	if o.MaxPlaceboSignificantShare <= 0 {
		o.MaxPlaceboSignificantShare = def.MaxPlaceboSignificantShare
	}
	if o.MaxPlaceboMagnitudeRatio <= 0 {
		o.MaxPlaceboMagnitudeRatio = def.MaxPlaceboMagnitudeRatio
	}
	if o.MaxWindowCV <= 0 {
		o.MaxWindowCV = def.MaxWindowCV
	}
	if o.MaxSpecDeviation <= 0 {
		o.MaxSpecDeviation = def.MaxSpecDeviation
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = def.MaxConcurrency
	}
	return o
}

// Validate checks the sweep configuration for logical errors.
func (o SuiteOptions) Validate() error {
	for _, y := range o.WindowYears {
		if y <= 0 {
			return &ConfigurationError{Field: "window_years", Message: "window lengths must be positive years", Value: y}
		}
	}
	for _, t := range o.TrimWeeks {
		if t < 0 {
			return &ConfigurationError{Field: "trim_weeks", Message: "trim amounts must be non-negative", Value: t}
		}
	}
	for _, l := range o.HACLagGrid {
		if l <= 0 {
			return &ConfigurationError{Field: "hac_lag_grid", Message: "lag truncation values must be positive", Value: l}
		}
	}
	return nil
}

// RobustnessEntry is the outcome of a single perturbed refit. A refit that
// errored carries the error text and zero-valued statistics.
type RobustnessEntry struct {
	Key         string  `json:"key"`
	Segment     string  `json:"segment"`
	Estimate    float64 `json:"estimate"`
	StdError    float64 `json:"std_error"`
	CILow       float64 `json:"ci_low"`
	CIHigh      float64 `json:"ci_high"`
	Significant bool    `json:"significant"`
	Err         string  `json:"error,omitempty"`
}

// Failed reports whether the perturbed refit errored.
func (e RobustnessEntry) Failed() bool {
	return e.Err != ""
}

// ToleranceCheck records one aggregate metric against its threshold.
type ToleranceCheck struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// RobustnessSummary aggregates one family of perturbation entries.
type RobustnessSummary struct {
	Entries       int                `json:"entries"`
	Failures      int                `json:"failures"`
	Checks        []ToleranceCheck   `json:"checks"`
	SegmentValues map[string]float64 `json:"segment_values,omitempty"`
	Passed        bool               `json:"passed"`
}

// RobustnessResult holds all perturbation entries for one family, keyed by
// perturbation identifier, plus the pass/fail summary.
type RobustnessResult struct {
	Kind    RobustnessKind    `json:"kind"`
	Entries []RobustnessEntry `json:"entries"`
	Summary RobustnessSummary `json:"summary"`
}

// RobustnessReport is the full output of one suite run.
type RobustnessReport struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Segments    []string          `json:"segments"`
	BaseSpec    FitSpec           `json:"base_spec"`
	Options     SuiteOptions      `json:"options"`
	BaseFits    []*ModelFit       `json:"base_fits"`
	Placebo     *RobustnessResult `json:"placebo"`
	Window      *RobustnessResult `json:"window"`
	LeaveOneOut *RobustnessResult `json:"leave_one_segment_out"`
	SpecGrid    *RobustnessResult `json:"spec_grid"`
	AllPassed   bool              `json:"all_passed"`
}

// Results returns the family results in fixed order, skipping any not run.
func (r *RobustnessReport) Results() []*RobustnessResult {
	out := make([]*RobustnessResult, 0, 4)
	for _, res := range []*RobustnessResult{r.Placebo, r.Window, r.LeaveOneOut, r.SpecGrid} {
		if res != nil {
			out = append(out, res)
		}
	}
	return out
}

// Suite re-drives the estimator across four independent families of
// perturbation: placebo intervention dates, pre-window lengths,
// leave-one-segment-out panels, and a specification grid. No family mutates
// the panel or any prior fit; every refit runs on its own copy of the spec.
type Suite struct {
	estimator *Estimator
	opts      SuiteOptions
	logger    *slog.Logger
}

// NewSuite creates a robustness suite around an estimator. Zero-valued
// option fields fall back to DefaultSuiteOptions.
func NewSuite(estimator *Estimator, opts SuiteOptions, logger *slog.Logger) (*Suite, error) {
	if estimator == nil {
		return nil, &ConfigurationError{Field: "estimator", Message: "suite requires an estimator"}
	}
	opts = opts.normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Suite{estimator: estimator, opts: opts, logger: logger}, nil
}

// refitTask is one perturbed estimation queued for the worker pool.
type refitTask struct {
	key     string
	segment string
	run     func(ctx context.Context) (*ModelFit, error)
}

// runPerturbations executes tasks concurrently, bounded by MaxConcurrency.
// Individual refit errors are captured on their entry so one bad sweep
// point cannot hide the rest; only cancellation aborts the sweep.
func (s *Suite) runPerturbations(ctx context.Context, tasks []refitTask) ([]RobustnessEntry, error) {
	entriesChan := make(chan RobustnessEntry, s.opts.MaxConcurrency)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.opts.MaxConcurrency)

dispatch:
	for i := range tasks {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}

		wg.Add(1)
		go func(t refitTask) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			entry := RobustnessEntry{Key: t.key, Segment: t.segment}
			fit, err := t.run(ctx)
			if err != nil {
				entry.Err = err.Error()
				s.logger.DebugContext(ctx, "perturbed refit failed",
					"key", t.key,
					"segment", t.segment,
					"error", err,
				)
			} else {
				effect := fit.LevelChange()
				entry.Estimate = effect.Estimate
				entry.StdError = effect.StdError
				entry.CILow = effect.CILow
				entry.CIHigh = effect.CIHigh
				entry.Significant = effect.ExcludesZero()
			}
			entriesChan <- entry
		}(tasks[i])
	}

	go func() {
		wg.Wait()
		close(entriesChan)
	}()

	entries := make([]RobustnessEntry, 0, len(tasks))
	for entry := range entriesChan {
		entries = append(entries, entry)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("robustness sweep cancelled: %w", err)
	}

	// Arrival order is nondeterministic; aggregate order is by key.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].Segment < entries[j].Segment
	})
	return entries, nil
}

// Placebo refits every segment at fabricated intervention dates strictly
// inside the true pre period, on rows truncated to the true pre period so
// no real step change is in view. base supplies the true estimates the
// placebo magnitudes are compared against.
func (s *Suite) Placebo(ctx context.Context, panel *Panel, spec FitSpec, base []*ModelFit) (*RobustnessResult, error) {
	dates := s.opts.PlaceboDates
	if len(dates) == 0 {
		derived, err := derivePlaceboDates(panel, s.opts)
		if err != nil {
			return nil, err
		}
		dates = derived
	} else if err := validatePlaceboDates(panel, dates); err != nil {
		return nil, err
	}

	trueIntervention := panel.InterventionDate()
	var tasks []refitTask
	for _, date := range dates {
		for _, segment := range panel.SegmentIDs() {
			rows := panel.Segment(segment)
			cut := sort.Search(len(rows), func(i int) bool {
				return !rows[i].Date.Before(trueIntervention)
			})
			preRows := rows[:cut]
			placeboDate := date
			tasks = append(tasks, refitTask{
				key:     date.Format("2006-01-02"),
				segment: segment,
				run: func(ctx context.Context) (*ModelFit, error) {
					return s.estimator.fitRows(ctx, segment, preRows, placeboDate, spec)
				},
			})
		}
	}

	entries, err := s.runPerturbations(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &RobustnessResult{
		Kind:    RobustnessPlacebo,
		Entries: entries,
		Summary: s.summarizePlacebo(entries, base),
	}, nil
}

func (s *Suite) summarizePlacebo(entries []RobustnessEntry, base []*ModelFit) RobustnessSummary {
	baseByseg := baseEstimates(base)

	significant, successes, failures := 0, 0, 0
	ratios := make(map[string]float64)
	for _, e := range entries {
		if e.Failed() {
			failures++
			continue
		}
		successes++
		if e.Significant {
			significant++
		}
		if trueEst, ok := baseByseg[e.Segment]; ok && math.Abs(trueEst) > 0 {
			ratio := math.Abs(e.Estimate) / math.Abs(trueEst)
			if ratio > ratios[e.Segment] {
				ratios[e.Segment] = ratio
			}
		}
	}

	share := 0.0
	if successes > 0 {
		share = float64(significant) / float64(successes)
	}
	worstRatio := 0.0
	for _, r := range ratios {
		if r > worstRatio {
			worstRatio = r
		}
	}

	checks := []ToleranceCheck{
		{
			Name:      "placebo_significant_share",
			Value:     share,
			Threshold: s.opts.MaxPlaceboSignificantShare,
			Passed:    successes > 0 && share <= s.opts.MaxPlaceboSignificantShare,
		},
		{
			Name:      "placebo_magnitude_ratio",
			Value:     worstRatio,
			Threshold: s.opts.MaxPlaceboMagnitudeRatio,
			Passed:    len(ratios) > 0 && worstRatio <= s.opts.MaxPlaceboMagnitudeRatio,
		},
	}
	return RobustnessSummary{
		Entries:       len(entries),
		Failures:      failures,
		Checks:        checks,
		SegmentValues: ratios,
		Passed:        allChecksPassed(checks),
	}
}

// WindowSensitivity refits every segment restricting the pre period to each
// configured length in years.
func (s *Suite) WindowSensitivity(ctx context.Context, panel *Panel, spec FitSpec) (*RobustnessResult, error) {
	var tasks []refitTask
	for _, years := range s.opts.WindowYears {
		variant := spec
		variant.MaxPreYears = years
		for _, segment := range panel.SegmentIDs() {
			tasks = append(tasks, refitTask{
				key:     fmt.Sprintf("%dy", years),
				segment: segment,
				run: func(ctx context.Context) (*ModelFit, error) {
					return s.estimator.FitSegment(ctx, panel, segment, variant)
				},
			})
		}
	}

	entries, err := s.runPerturbations(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &RobustnessResult{
		Kind:    RobustnessWindow,
		Entries: entries,
		Summary: s.summarizeWindow(entries),
	}, nil
}

func (s *Suite) summarizeWindow(entries []RobustnessEntry) RobustnessSummary {
	failures := 0
	bySegment := make(map[string][]float64)
	for _, e := range entries {
		if e.Failed() {
			failures++
			continue
		}
		bySegment[e.Segment] = append(bySegment[e.Segment], e.Estimate)
	}

	cvs := make(map[string]float64)
	for segment, estimates := range bySegment {
		if len(estimates) < 2 {
			continue
		}
		mean := stat.Mean(estimates, nil)
		sd := stat.StdDev(estimates, nil)
		if abs := math.Abs(mean); abs > 0 {
			cvs[segment] = sd / abs
		} else {
			cvs[segment] = sd
		}
	}

	worst := 0.0
	for _, cv := range cvs {
		if cv > worst {
			worst = cv
		}
	}
	checks := []ToleranceCheck{{
		Name:      "window_cv",
		Value:     worst,
		Threshold: s.opts.MaxWindowCV,
		Passed:    len(cvs) > 0 && worst <= s.opts.MaxWindowCV,
	}}
	return RobustnessSummary{
		Entries:       len(entries),
		Failures:      failures,
		Checks:        checks,
		SegmentValues: cvs,
		Passed:        allChecksPassed(checks),
	}
}

// LeaveOneSegmentOut drops each segment in turn and refits the remaining
// segments. Fits are strictly segment-local, so every refit must reproduce
// the base estimate exactly; any deviation is an isolation defect in the
// estimator, not a property of the data.
func (s *Suite) LeaveOneSegmentOut(ctx context.Context, panel *Panel, spec FitSpec, base []*ModelFit) (*RobustnessResult, error) {
	var tasks []refitTask
	for _, excluded := range panel.SegmentIDs() {
		reduced := panel.WithoutSegment(excluded)
		for _, segment := range reduced.SegmentIDs() {
			tasks = append(tasks, refitTask{
				key:     "drop_" + excluded,
				segment: segment,
				run: func(ctx context.Context) (*ModelFit, error) {
					return s.estimator.FitSegment(ctx, reduced, segment, spec)
				},
			})
		}
	}

	entries, err := s.runPerturbations(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &RobustnessResult{
		Kind:    RobustnessLeaveOneSegment,
		Entries: entries,
		Summary: s.summarizeLeaveOneOut(entries, base),
	}, nil
}

func (s *Suite) summarizeLeaveOneOut(entries []RobustnessEntry, base []*ModelFit) RobustnessSummary {
	baseByseg := baseEstimates(base)

	failures := 0
	deviations := make(map[string]float64)
	for _, e := range entries {
		if e.Failed() {
			failures++
			continue
		}
		dev := math.Abs(e.Estimate - baseByseg[e.Segment])
		if dev > deviations[e.Segment] {
			deviations[e.Segment] = dev
		} else if _, seen := deviations[e.Segment]; !seen {
			deviations[e.Segment] = dev
		}
	}

	worst := 0.0
	for _, dev := range deviations {
		if dev > worst {
			worst = dev
		}
	}
	checks := []ToleranceCheck{{
		Name:      "max_abs_deviation",
		Value:     worst,
		Threshold: 0,
		Passed:    failures == 0 && worst == 0,
	}}
	return RobustnessSummary{
		Entries:       len(entries),
		Failures:      failures,
		Checks:        checks,
		SegmentValues: deviations,
		Passed:        allChecksPassed(checks),
	}
}

// SpecPerturbation refits every segment across the grid of HAC lag
// truncations, boundary trims, and slope-change inclusion, and bounds the
// worst-case drift of the level-change estimate relative to base.
func (s *Suite) SpecPerturbation(ctx context.Context, panel *Panel, spec FitSpec, base []*ModelFit) (*RobustnessResult, error) {
	var tasks []refitTask
	for _, lags := range s.opts.HACLagGrid {
		for _, trim := range s.opts.TrimWeeks {
			for _, slope := range []bool{false, true} {
				variant := spec
				variant.HACLags = lags
				variant.TrimWeeks = trim
				variant.IncludeSlopeChange = slope
				key := fmt.Sprintf("lags_%d_trim_%d_slope_%t", lags, trim, slope)
				for _, segment := range panel.SegmentIDs() {
					tasks = append(tasks, refitTask{
						key:     key,
						segment: segment,
						run: func(ctx context.Context) (*ModelFit, error) {
							return s.estimator.FitSegment(ctx, panel, segment, variant)
						},
					})
				}
			}
		}
	}

	entries, err := s.runPerturbations(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &RobustnessResult{
		Kind:    RobustnessSpecGrid,
		Entries: entries,
		Summary: s.summarizeSpecGrid(entries, base),
	}, nil
}

func (s *Suite) summarizeSpecGrid(entries []RobustnessEntry, base []*ModelFit) RobustnessSummary {
	baseByseg := baseEstimates(base)

	failures := 0
	deviations := make(map[string]float64)
	for _, e := range entries {
		if e.Failed() {
			failures++
			continue
		}
		trueEst, ok := baseByseg[e.Segment]
		var dev float64
		if ok && math.Abs(trueEst) > 0 {
			dev = math.Abs(e.Estimate-trueEst) / math.Abs(trueEst)
		} else {
			dev = math.Abs(e.Estimate - trueEst)
		}
		if dev > deviations[e.Segment] {
			deviations[e.Segment] = dev
		} else if _, seen := deviations[e.Segment]; !seen {
			deviations[e.Segment] = dev
		}
	}

	worst := 0.0
	for _, dev := range deviations {
		if dev > worst {
			worst = dev
		}
	}
	checks := []ToleranceCheck{{
		Name:      "spec_max_relative_deviation",
		Value:     worst,
		Threshold: s.opts.MaxSpecDeviation,
		Passed:    len(deviations) > 0 && worst <= s.opts.MaxSpecDeviation,
	}}
	return RobustnessSummary{
		Entries:       len(entries),
		Failures:      failures,
		Checks:        checks,
		SegmentValues: deviations,
		Passed:        allChecksPassed(checks),
	}
}

// RunAll estimates the base fits and then runs all four perturbation
// families against them.
func (s *Suite) RunAll(ctx context.Context, panel *Panel, spec FitSpec) (*RobustnessReport, error) {
	if panel == nil {
		return nil, &ConfigurationError{Field: "panel", Message: "robustness suite requires a panel"}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	base, err := s.estimator.FitAll(ctx, panel, spec)
	if err != nil {
		return nil, fmt.Errorf("base estimation: %w", err)
	}

	placebo, err := s.Placebo(ctx, panel, spec, base)
	if err != nil {
		return nil, fmt.Errorf("placebo family: %w", err)
	}
	window, err := s.WindowSensitivity(ctx, panel, spec)
	if err != nil {
		return nil, fmt.Errorf("window family: %w", err)
	}
	leaveOneOut, err := s.LeaveOneSegmentOut(ctx, panel, spec, base)
	if err != nil {
		return nil, fmt.Errorf("leave-one-segment-out family: %w", err)
	}
	specGrid, err := s.SpecPerturbation(ctx, panel, spec, base)
	if err != nil {
		return nil, fmt.Errorf("spec grid family: %w", err)
	}

	report := &RobustnessReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Segments:    panel.SegmentIDs(),
		BaseSpec:    spec,
		Options:     s.opts,
		BaseFits:    base,
		Placebo:     placebo,
		Window:      window,
		LeaveOneOut: leaveOneOut,
		SpecGrid:    specGrid,
		AllPassed: placebo.Summary.Passed &&
			window.Summary.Passed &&
			leaveOneOut.Summary.Passed &&
			specGrid.Summary.Passed,
	}

	s.logger.InfoContext(ctx, "robustness suite completed",
		"run_id", report.RunID,
		"segments", len(report.Segments),
		"placebo_passed", placebo.Summary.Passed,
		"window_passed", window.Summary.Passed,
		"leave_one_out_passed", leaveOneOut.Summary.Passed,
		"spec_grid_passed", specGrid.Summary.Passed,
		"all_passed", report.AllPassed,
	)
	return report, nil
}

// derivePlaceboDates spaces NumPlacebos dates evenly across the pre period,
// keeping PlaceboBufferWeeks clear of both the series start and the true
// intervention so every placebo has room on either side.
func derivePlaceboDates(panel *Panel, opts SuiteOptions) ([]time.Time, error) {
	earliest := earliestDate(panel)
	if earliest.IsZero() {
		return nil, &ConfigurationError{Field: "panel", Message: "panel has no observations"}
	}
	intervention := panel.InterventionDate()

	start := earliest.AddDate(0, 0, opts.PlaceboBufferWeeks*weekDays)
	end := intervention.AddDate(0, 0, -opts.PlaceboBufferWeeks*weekDays)
	span := int(end.Sub(start).Hours() / 24 / weekDays)
	if span <= 0 {
		return nil, &ConfigurationError{
			Field:   "placebo_buffer_weeks",
			Message: "pre-intervention period too short for placebo dates",
			Value:   opts.PlaceboBufferWeeks,
		}
	}

	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0, opts.NumPlacebos)
	for i := 1; i <= opts.NumPlacebos; i++ {
		offset := span * i / (opts.NumPlacebos + 1)
		date := start.AddDate(0, 0, offset*weekDays)
		if seen[date] {
			continue
		}
		seen[date] = true
		dates = append(dates, date)
	}
	return dates, nil
}

// validatePlaceboDates rejects configured placebo dates that are not
// strictly inside the true pre-intervention period.
func validatePlaceboDates(panel *Panel, dates []time.Time) error {
	earliest := earliestDate(panel)
	intervention := panel.InterventionDate()
	for _, date := range dates {
		if !date.After(earliest) || !date.Before(intervention) {
			return &ConfigurationError{
				Field:   "placebo_dates",
				Message: "placebo date must fall strictly inside the pre-intervention period",
				Value:   date.Format("2006-01-02"),
			}
		}
	}
	return nil
}

func earliestDate(panel *Panel) time.Time {
	var earliest time.Time
	for _, id := range panel.SegmentIDs() {
		rows := panel.Segment(id)
		if len(rows) == 0 {
			continue
		}
		if earliest.IsZero() || rows[0].Date.Before(earliest) {
			earliest = rows[0].Date
		}
	}
	return earliest
}

func baseEstimates(base []*ModelFit) map[string]float64 {
	out := make(map[string]float64, len(base))
	for _, fit := range base {
		if fit == nil {
			continue
		}
		out[fit.Segment] = fit.LevelChange().Estimate
	}
	return out
}

func allChecksPassed(checks []ToleranceCheck) bool {
	for _, c := range checks {
		if !c.Passed {
			return false
		}
	}
	return true
}
