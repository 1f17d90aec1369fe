package its

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// On a noise-free series the segmented regression must recover the
// generating parameters exactly, with vanishing residuals and standard
// errors.
func TestFitSegmentRecoversExactEffects(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*208)
	panel := mustBuildPanel(t, map[string][]Point{
		"Downtown": interruptedPoints(mondayStart, 261, 208, 100, 1.5, 40, 2),
	}, intervention)

	fit, err := NewEstimator(discardLogger()).FitSegment(context.Background(), panel, "Downtown", DefaultFitSpec())
	require.NoError(t, err)

	wantTerms := map[string]float64{
		TermIntercept:   100,
		TermTrend:       1.5,
		TermLevelChange: 40,
		TermSlopeChange: 2,
	}
	require.Len(t, fit.Coefficients, 4)
	for term, want := range wantTerms {
		coef, ok := fit.Coefficient(term)
		require.True(t, ok, term)
		assert.InDelta(t, want, coef.Estimate, 1e-6, term)
		assert.InDelta(t, 0, coef.StdError, 1e-6, term)
	}
	assert.InDelta(t, 0, fit.LevelChange().PValue, 1e-9)

	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, 1.0, fit.AdjRSquared, 1e-9)
	assert.Equal(t, 261, fit.Observations)
	assert.Equal(t, 208, fit.PreObservations)
	assert.Equal(t, 53, fit.PostObservations)
	assert.Equal(t, 12, fit.MonthsSpanned)
	assert.Equal(t, 4, fit.HACLagsUsed)
	assert.Equal(t, DefaultConfidenceLevel, fit.ConfidenceLevel)
	assert.True(t, fit.WindowStart.Equal(mondayStart))
	assert.True(t, fit.WindowEnd.Equal(mondayStart.AddDate(0, 0, 7*260)))
	assert.True(t, fit.InterventionDate.Equal(intervention))
	assert.True(t, fit.IsValid())

	require.Len(t, fit.Residuals, 261)
	for i, r := range fit.Residuals {
		assert.InDelta(t, 0, r, 1e-7, "residual %d", i)
	}
	require.Len(t, fit.Covariance, 4)
	require.Len(t, fit.Covariance[0], 4)
}

func TestFitSegmentWithoutSlopeChange(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*80)
	panel := mustBuildPanel(t, map[string][]Point{
		"Downtown": interruptedPoints(mondayStart, 120, 80, 200, 0.8, 25, 0),
	}, intervention)

	spec := DefaultFitSpec()
	spec.IncludeSlopeChange = false
	fit, err := NewEstimator(discardLogger()).FitSegment(context.Background(), panel, "Downtown", spec)
	require.NoError(t, err)

	require.Len(t, fit.Coefficients, 3)
	assert.InDelta(t, 25, fit.LevelChange().Estimate, 1e-6)
	_, ok := fit.Coefficient(TermSlopeChange)
	assert.False(t, ok)
}

func TestFitSegmentExplicitHACLags(t *testing.T) {
	panel := wigglePanel(t)

	spec := DefaultFitSpec()
	spec.HACLags = 8
	fit, err := NewEstimator(discardLogger()).FitSegment(context.Background(), panel, "Airport", spec)
	require.NoError(t, err)

	assert.Equal(t, 8, fit.HACLagsUsed)
	assert.Positive(t, fit.LevelChange().StdError)
}

func TestFitSegmentValidation(t *testing.T) {
	panel := wigglePanel(t)
	estimator := NewEstimator(discardLogger())

	t.Run("unknown segment", func(t *testing.T) {
		_, err := estimator.FitSegment(context.Background(), panel, "Ferry", DefaultFitSpec())
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "segment", cfgErr.Field)
		assert.Equal(t, "Ferry", cfgErr.Value)
	})

	t.Run("invalid spec", func(t *testing.T) {
		spec := DefaultFitSpec()
		spec.HACLags = -1
		_, err := estimator.FitSegment(context.Background(), panel, "Airport", spec)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "HACLags", cfgErr.Field)
	})
}

func TestFitSegmentMonthIndicatorTrap(t *testing.T) {
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	intervention := time.Date(2023, time.December, 4, 0, 0, 0, 0, time.UTC)
	panel := mustBuildPanel(t, map[string][]Point{
		"Downtown": interruptedPoints(start, 52, 48, 100, 1, 15, 0),
	}, intervention)

	spec := DefaultFitSpec()
	spec.IncludeMonthDummies = true
	_, err := NewEstimator(discardLogger()).FitSegment(context.Background(), panel, "Downtown", spec)

	var collinearErr *CollinearSpecificationError
	require.ErrorAs(t, err, &collinearErr)
	assert.Equal(t, MonthTerm(time.December), collinearErr.Term)
}

func TestFitAll(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*30)
	panel := mustBuildPanel(t, map[string][]Point{
		"Downtown": interruptedPoints(mondayStart, 60, 30, 100, 1, 30, 0),
		"Airport":  interruptedPoints(mondayStart, 60, 30, 50, 0.5, 10, 0),
	}, intervention)

	fits, err := NewEstimator(discardLogger()).FitAll(context.Background(), panel, DefaultFitSpec())
	require.NoError(t, err)
	require.Len(t, fits, 2)

	assert.Equal(t, "Airport", fits[0].Segment)
	assert.Equal(t, "Downtown", fits[1].Segment)
	assert.InDelta(t, 10, fits[0].LevelChange().Estimate, 1e-6)
	assert.InDelta(t, 30, fits[1].LevelChange().Estimate, 1e-6)
}

func TestFitAllPropagatesSegmentFailure(t *testing.T) {
	intervention := mondayStart.AddDate(0, 0, 7*30)
	panel := mustBuildPanel(t, map[string][]Point{
		"Downtown": interruptedPoints(mondayStart, 60, 30, 100, 1, 30, 0),
		"Airport":  linearPoints(mondayStart, 7, 50, 0.5),
	}, intervention)

	_, err := NewEstimator(discardLogger()).FitAll(context.Background(), panel, DefaultFitSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fit segment Airport")

	var underErr *UnderdeterminedModelError
	require.ErrorAs(t, err, &underErr)
	assert.Equal(t, "Airport", underErr.Segment)
}

// Segment fits share no state, so refitting the same panel must reproduce
// every number bitwise.
func TestFitSegmentDeterministic(t *testing.T) {
	panel := wigglePanel(t)
	estimator := NewEstimator(discardLogger())

	first, err := estimator.FitSegment(context.Background(), panel, "Downtown", DefaultFitSpec())
	require.NoError(t, err)
	second, err := estimator.FitSegment(context.Background(), panel, "Downtown", DefaultFitSpec())
	require.NoError(t, err)

	assert.Equal(t, first.Coefficients, second.Coefficients)
	assert.Equal(t, first.Covariance, second.Covariance)
	assert.Equal(t, first.Residuals, second.Residuals)
}

func TestTwoSidedP(t *testing.T) {
	tests := []struct {
		name     string
		estimate float64
		se       float64
		want     float64
		delta    float64
	}{
		{"zero estimate zero se", 0, 0, 1, 0},
		{"nonzero estimate zero se", 3, 0, 0, 0},
		{"zero estimate", 0, 2, 1, 1e-12},
		{"critical value", 1.9599639845400545, 1, 0.05, 1e-9},
		{"one standard error", 1, 1, 0.3173, 1e-4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, twoSidedP(tt.estimate, tt.se), tt.delta)
		})
	}
}

func TestDurbinWatson(t *testing.T) {
	assert.Equal(t, 0.0, durbinWatson(nil))
	assert.Equal(t, 0.0, durbinWatson([]float64{0, 0}))
	assert.InDelta(t, 3.0, durbinWatson([]float64{1, -1, 1, -1}), 1e-12)
	assert.InDelta(t, 0.0, durbinWatson([]float64{2, 2, 2}), 1e-12)
}
