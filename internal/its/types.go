package its

import (
	"sort"
	"strings"
	"time"
)

// Regression term identifiers used in coefficient tables
const (
	TermIntercept   = "intercept"
	TermTrend       = "trend"
	TermLevelChange = "level_change"
	TermSlopeChange = "slope_change"
)

// Constants for default values
const (
	// Weeks used when converting pre-window years to a row cutoff
	WeeksPerYear = 52

	// Default coverage for coefficient confidence intervals
	DefaultConfidenceLevel = 0.95

	// Default window for the rolling post-intervention gap
	DefaultRollingGapWindow = 8

	// Minimum observations beyond the parameter count for a usable fit
	MinExtraObservations = 4
)

// MonthTerm returns the coefficient-table identifier for a calendar month
// indicator (January is the reference month and has no term).
func MonthTerm(m time.Month) string {
	return "month_" + strings.ToLower(m.String()[:3])
}

// Point is a single weekly value produced by a series generator, before
// panel assembly.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Observation is one (segment, week) row of an assembled panel.
type Observation struct {
	Date                   time.Time  `json:"date"`
	Segment                string     `json:"segment"`
	Outcome                float64    `json:"outcome"`
	WeekIndex              int        `json:"week_index"`
	Post                   bool       `json:"post"`
	WeeksSinceIntervention int        `json:"weeks_since_intervention"`
	Month                  time.Month `json:"month"`
}

// IsValid checks if the observation data is valid
func (o Observation) IsValid() bool {
	return !o.Date.IsZero() && o.Segment != "" && o.Outcome >= 0 &&
		o.WeekIndex >= 0 && o.WeeksSinceIntervention >= 0 &&
		o.Month >= time.January && o.Month <= time.December
}

// Panel is an ordered collection of observations keyed by (segment, date).
// It is built once by BuildPanel and treated as immutable afterward; all
// accessors return data that callers must not modify.
type Panel struct {
	interventionDate time.Time
	segmentIDs       []string
	segments         map[string][]Observation
}

// InterventionDate returns the intervention date the panel was built with.
func (p *Panel) InterventionDate() time.Time {
	return p.interventionDate
}

// SegmentIDs returns segment identifiers in stable (sorted) order.
func (p *Panel) SegmentIDs() []string {
	ids := make([]string, len(p.segmentIDs))
	copy(ids, p.segmentIDs)
	return ids
}

// Segment returns the ordered weekly rows for one segment, or nil if the
// segment is not present.
func (p *Panel) Segment(id string) []Observation {
	return p.segments[id]
}

// NumRows returns the total number of observations across all segments.
func (p *Panel) NumRows() int {
	n := 0
	for _, rows := range p.segments {
		n += len(rows)
	}
	return n
}

// Rows returns all observations ordered by segment then date.
func (p *Panel) Rows() []Observation {
	out := make([]Observation, 0, p.NumRows())
	for _, id := range p.segmentIDs {
		out = append(out, p.segments[id]...)
	}
	return out
}

// WithoutSegment returns a new panel that shares no state with the receiver
// and omits the named segment. Used by the leave-one-segment-out check.
func (p *Panel) WithoutSegment(id string) *Panel {
	out := &Panel{
		interventionDate: p.interventionDate,
		segments:         make(map[string][]Observation, len(p.segments)),
	}
	for _, sid := range p.segmentIDs {
		if sid == id {
			continue
		}
		rows := make([]Observation, len(p.segments[sid]))
		copy(rows, p.segments[sid])
		out.segmentIDs = append(out.segmentIDs, sid)
		out.segments[sid] = rows
	}
	sort.Strings(out.segmentIDs)
	return out
}

// FitSpec configures a single segmented-regression fit. The zero value is
// usable: trend and level-change regressors are always included, the
// confidence level falls back to DefaultConfidenceLevel, and an HACLags of
// zero selects the Newey-West automatic lag rule.
type FitSpec struct {
	// IncludeSlopeChange adds the weeks-since-intervention regressor,
	// allowing the post-intervention growth rate to differ from the
	// pre-intervention trend.
	IncludeSlopeChange bool `json:"include_slope_change" yaml:"include_slope_change"`

	// IncludeMonthDummies adds eleven calendar-month indicators (January
	// is the reference). Requires the estimation window to span all twelve
	// calendar months.
	IncludeMonthDummies bool `json:"include_month_dummies" yaml:"include_month_dummies"`

	// HACLags is the Newey-West lag truncation. Zero selects the
	// floor(4*(n/100)^(2/9)) rule.
	HACLags int `json:"hac_lags" yaml:"hac_lags"`

	// ConfidenceLevel is the CI coverage; zero means DefaultConfidenceLevel.
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`

	// MaxPreYears restricts the pre-intervention window to the most recent
	// N years; zero keeps all pre-intervention rows.
	MaxPreYears int `json:"max_pre_years" yaml:"max_pre_years"`

	// TrimWeeks drops this many rows from each end of the segment window
	// before fitting.
	TrimWeeks int `json:"trim_weeks" yaml:"trim_weeks"`
}

// DefaultFitSpec returns the specification used for headline estimates:
// slope change included, no month indicators, automatic HAC lags, 95% CIs.
func DefaultFitSpec() FitSpec {
	return FitSpec{
		IncludeSlopeChange:  true,
		IncludeMonthDummies: false,
		HACLags:             0,
		ConfidenceLevel:     DefaultConfidenceLevel,
		MaxPreYears:         0,
		TrimWeeks:           0,
	}
}

// Validate checks the specification for values that cannot be fitted.
func (s FitSpec) Validate() error {
	if s.HACLags < 0 {
		return &ConfigurationError{Field: "HACLags", Message: "lag truncation cannot be negative", Value: s.HACLags}
	}
	if s.ConfidenceLevel < 0 || s.ConfidenceLevel >= 1 {
		return &ConfigurationError{Field: "ConfidenceLevel", Message: "confidence level must be in [0, 1)", Value: s.ConfidenceLevel}
	}
	if s.MaxPreYears < 0 {
		return &ConfigurationError{Field: "MaxPreYears", Message: "pre-window years cannot be negative", Value: s.MaxPreYears}
	}
	if s.TrimWeeks < 0 {
		return &ConfigurationError{Field: "TrimWeeks", Message: "trim weeks cannot be negative", Value: s.TrimWeeks}
	}
	return nil
}

// confidence returns the effective CI coverage for the spec.
func (s FitSpec) confidence() float64 {
	if s.ConfidenceLevel == 0 {
		return DefaultConfidenceLevel
	}
	return s.ConfidenceLevel
}

// Coefficient is one row of a fitted coefficient table.
type Coefficient struct {
	Term     string  `json:"term"`
	Estimate float64 `json:"estimate"`
	StdError float64 `json:"std_error"`
	CILow    float64 `json:"ci_low"`
	CIHigh   float64 `json:"ci_high"`
	PValue   float64 `json:"p_value"`
}

// ExcludesZero reports whether the coefficient's confidence interval
// excludes zero, the significance criterion used by the placebo tests.
func (c Coefficient) ExcludesZero() bool {
	return c.CILow > 0 || c.CIHigh < 0
}

// ModelFit is the result of one segmented-regression fit. It is created by
// a single estimator invocation and never mutated afterward; robustness
// re-runs produce fresh fits.
type ModelFit struct {
	Segment          string        `json:"segment"`
	Spec             FitSpec       `json:"spec"`
	Coefficients     []Coefficient `json:"coefficients"`
	RSquared         float64       `json:"r_squared"`
	AdjRSquared      float64       `json:"adj_r_squared"`
	DurbinWatson     float64       `json:"durbin_watson"`
	Observations     int           `json:"observations"`
	PreObservations  int           `json:"pre_observations"`
	PostObservations int           `json:"post_observations"`
	MonthsSpanned    int           `json:"months_spanned"`
	HACLagsUsed      int           `json:"hac_lags_used"`
	ConfidenceLevel  float64       `json:"confidence_level"`
	WindowStart      time.Time     `json:"window_start"`
	WindowEnd        time.Time     `json:"window_end"`
	InterventionDate time.Time     `json:"intervention_date"`

	// Covariance is the HAC covariance matrix in coefficient order.
	Covariance [][]float64 `json:"-"`

	// Residuals are in time order over the fitted window.
	Residuals []float64 `json:"-"`
}

// Coefficient returns the coefficient for the named term.
func (m *ModelFit) Coefficient(term string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Term == term {
			return c, true
		}
	}
	return Coefficient{}, false
}

// LevelChange returns the level-change coefficient, the headline effect of
// an interrupted time series fit.
func (m *ModelFit) LevelChange() Coefficient {
	c, _ := m.Coefficient(TermLevelChange)
	return c
}

// IsValid checks if the fit carries a complete coefficient table
func (m *ModelFit) IsValid() bool {
	if m.Segment == "" || len(m.Coefficients) == 0 {
		return false
	}
	if m.Observations <= 0 || m.Observations != m.PreObservations+m.PostObservations {
		return false
	}
	_, hasIntercept := m.Coefficient(TermIntercept)
	_, hasLevel := m.Coefficient(TermLevelChange)
	return hasIntercept && hasLevel
}
