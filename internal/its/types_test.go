package its

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthTerm(t *testing.T) {
	assert.Equal(t, "month_jan", MonthTerm(time.January))
	assert.Equal(t, "month_feb", MonthTerm(time.February))
	assert.Equal(t, "month_sep", MonthTerm(time.September))
	assert.Equal(t, "month_dec", MonthTerm(time.December))
}

func TestDefaultFitSpec(t *testing.T) {
	spec := DefaultFitSpec()

	assert.True(t, spec.IncludeSlopeChange)
	assert.False(t, spec.IncludeMonthDummies)
	assert.Equal(t, 0, spec.HACLags)
	assert.Equal(t, DefaultConfidenceLevel, spec.ConfidenceLevel)
	assert.Equal(t, 0, spec.MaxPreYears)
	assert.Equal(t, 0, spec.TrimWeeks)
	assert.NoError(t, spec.Validate())
}

func TestFitSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FitSpec)
		field  string
	}{
		{"negative lag truncation", func(s *FitSpec) { s.HACLags = -1 }, "HACLags"},
		{"negative confidence level", func(s *FitSpec) { s.ConfidenceLevel = -0.1 }, "ConfidenceLevel"},
		{"confidence level at one", func(s *FitSpec) { s.ConfidenceLevel = 1 }, "ConfidenceLevel"},
		{"negative pre window", func(s *FitSpec) { s.MaxPreYears = -2 }, "MaxPreYears"},
		{"negative trim", func(s *FitSpec) { s.TrimWeeks = -4 }, "TrimWeeks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultFitSpec()
			tt.mutate(&spec)

			err := spec.Validate()
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	t.Run("zero value is valid", func(t *testing.T) {
		var spec FitSpec
		assert.NoError(t, spec.Validate())
	})
}

func TestFitSpecConfidenceDefaulting(t *testing.T) {
	var spec FitSpec
	assert.Equal(t, DefaultConfidenceLevel, spec.confidence())

	spec.ConfidenceLevel = 0.9
	assert.Equal(t, 0.9, spec.confidence())
}

func TestCoefficientExcludesZero(t *testing.T) {
	tests := []struct {
		name string
		coef Coefficient
		want bool
	}{
		{"interval above zero", Coefficient{CILow: 0.5, CIHigh: 2}, true},
		{"interval below zero", Coefficient{CILow: -2, CIHigh: -0.5}, true},
		{"interval straddling zero", Coefficient{CILow: -1, CIHigh: 1}, false},
		{"interval touching zero", Coefficient{CILow: 0, CIHigh: 1}, false},
		{"degenerate interval at zero", Coefficient{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coef.ExcludesZero())
		})
	}
}

func TestModelFitCoefficientLookup(t *testing.T) {
	fit := &ModelFit{
		Segment: "Downtown",
		Coefficients: []Coefficient{
			{Term: TermIntercept, Estimate: 100},
			{Term: TermTrend, Estimate: 1.5},
			{Term: TermLevelChange, Estimate: 40},
		},
		Observations:     10,
		PreObservations:  6,
		PostObservations: 4,
	}

	level, ok := fit.Coefficient(TermLevelChange)
	require.True(t, ok)
	assert.Equal(t, 40.0, level.Estimate)
	assert.Equal(t, 40.0, fit.LevelChange().Estimate)

	_, ok = fit.Coefficient(TermSlopeChange)
	assert.False(t, ok)
	assert.True(t, fit.IsValid())
}

func TestModelFitIsValid(t *testing.T) {
	valid := func() *ModelFit {
		return &ModelFit{
			Segment: "Downtown",
			Coefficients: []Coefficient{
				{Term: TermIntercept},
				{Term: TermLevelChange},
			},
			Observations:     8,
			PreObservations:  5,
			PostObservations: 3,
		}
	}

	tests := []struct {
		name   string
		mutate func(*ModelFit)
		want   bool
	}{
		{"complete fit", func(*ModelFit) {}, true},
		{"missing segment", func(f *ModelFit) { f.Segment = "" }, false},
		{"no coefficients", func(f *ModelFit) { f.Coefficients = nil }, false},
		{"zero observations", func(f *ModelFit) { f.Observations = 0 }, false},
		{"pre and post do not add up", func(f *ModelFit) { f.PreObservations = 4 }, false},
		{
			"missing level change",
			func(f *ModelFit) { f.Coefficients = []Coefficient{{Term: TermIntercept}, {Term: TermTrend}} },
			false,
		},
		{
			"missing intercept",
			func(f *ModelFit) { f.Coefficients = []Coefficient{{Term: TermLevelChange}} },
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := valid()
			tt.mutate(fit)
			assert.Equal(t, tt.want, fit.IsValid())
		})
	}
}

func TestObservationIsValid(t *testing.T) {
	valid := func() Observation {
		return Observation{
			Date:      mondayStart,
			Segment:   "Downtown",
			Outcome:   120,
			WeekIndex: 3,
			Month:     time.January,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Observation)
		want   bool
	}{
		{"complete observation", func(*Observation) {}, true},
		{"zero outcome is allowed", func(o *Observation) { o.Outcome = 0 }, true},
		{"zero date", func(o *Observation) { o.Date = time.Time{} }, false},
		{"empty segment", func(o *Observation) { o.Segment = "" }, false},
		{"negative outcome", func(o *Observation) { o.Outcome = -1 }, false},
		{"negative week index", func(o *Observation) { o.WeekIndex = -1 }, false},
		{"negative weeks since intervention", func(o *Observation) { o.WeeksSinceIntervention = -2 }, false},
		{"month out of range", func(o *Observation) { o.Month = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := valid()
			tt.mutate(&obs)
			assert.Equal(t, tt.want, obs.IsValid())
		})
	}
}
