package its

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAutomaticHACLags(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-5, 0},
		{0, 0},
		{1, 1},
		{16, 2},
		{30, 3},
		{50, 3},
		{100, 4},
		{104, 4},
		{208, 4},
		{261, 4},
		{500, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AutomaticHACLags(tt.n), "n=%d", tt.n)
	}
}

// An intercept-only design with residuals 1, 2, 3 has closed-form HAC
// covariances: X'X = 3, S0 = 14, lag-1 cross sum = 2*(2+6) = 16, lag-2
// cross sum = 2*3. The Bartlett weights then give 14/9, 22/9, and 80/27.
func TestNeweyWestCovarianceClosedForm(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 1, 1})
	residuals := []float64{1, 2, 3}

	tests := []struct {
		name string
		lags int
		want float64
	}{
		{"zero lags collapses to White", 0, 14.0 / 9.0},
		{"negative lags treated as zero", -3, 14.0 / 9.0},
		{"one lag adds weighted cross products", 1, 22.0 / 9.0},
		{"oversized truncation clamps to n-1", 10, 80.0 / 27.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cov, err := neweyWestCovariance(x, residuals, tt.lags)
			require.NoError(t, err)
			require.Len(t, cov, 1)
			assert.InDelta(t, tt.want, cov[0][0], 1e-12)
		})
	}
}

func TestNeweyWestCovarianceSymmetric(t *testing.T) {
	x := mat.NewDense(6, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
		1, 3,
		1, 4,
		1, 5,
	})
	residuals := []float64{0.5, -1, 0.25, 2, -0.75, 1}

	cov, err := neweyWestCovariance(x, residuals, 2)
	require.NoError(t, err)
	require.Len(t, cov, 2)
	assert.InDelta(t, cov[0][1], cov[1][0], 1e-12)
	assert.GreaterOrEqual(t, cov[0][0], 0.0)
	assert.GreaterOrEqual(t, cov[1][1], 0.0)
}

func TestNeweyWestCovarianceResidualMismatch(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 1, 1})

	_, err := neweyWestCovariance(x, []float64{1, 2}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "residual count 2 does not match 3 design rows")
}

func TestNeweyWestCovarianceSingularDesign(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0, 0})

	_, err := neweyWestCovariance(x, []float64{1, 2}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invert X'X")
}
