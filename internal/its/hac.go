package its

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AutomaticHACLags returns the Newey-West automatic lag truncation
// floor(4*(n/100)^(2/9)), applied whenever a spec leaves HACLags at zero.
func AutomaticHACLags(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(4 * math.Pow(float64(n)/100, 2.0/9.0)))
}

// neweyWestCovariance estimates the HAC covariance of OLS coefficients with
// Bartlett-kernel weights w_l = 1 - l/(L+1):
//
//	Cov = (X'X)^-1 * (S0 + sum_l w_l*(Sl + Sl')) * (X'X)^-1
//
// where S0 is the squared-residual outer-product sum and Sl collects the
// lag-l residual cross products. Residuals must be in time order; the
// result is robust to serial correlation up to the truncation lag.
func neweyWestCovariance(x *mat.Dense, residuals []float64, lags int) ([][]float64, error) {
	n, p := x.Dims()
	if len(residuals) != n {
		return nil, fmt.Errorf("residual count %d does not match %d design rows", len(residuals), n)
	}
	if lags >= n {
		lags = n - 1
	}
	if lags < 0 {
		lags = 0
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var bread mat.Dense
	if err := bread.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("invert X'X: %w", err)
	}

	meat := mat.NewDense(p, p, nil)
	rowT := make([]float64, p)
	rowL := make([]float64, p)

	for t := 0; t < n; t++ {
		mat.Row(rowT, t, x)
		e2 := residuals[t] * residuals[t]
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				meat.Set(i, j, meat.At(i, j)+e2*rowT[i]*rowT[j])
			}
		}
	}

	for l := 1; l <= lags; l++ {
		w := 1 - float64(l)/float64(lags+1)
		for t := l; t < n; t++ {
			mat.Row(rowT, t, x)
			mat.Row(rowL, t-l, x)
			ee := w * residuals[t] * residuals[t-l]
			for i := 0; i < p; i++ {
				for j := 0; j < p; j++ {
					meat.Set(i, j, meat.At(i, j)+ee*(rowT[i]*rowL[j]+rowL[i]*rowT[j]))
				}
			}
		}
	}

	var half mat.Dense
	half.Mul(&bread, meat)
	var cov mat.Dense
	cov.Mul(&half, &bread)

	out := make([][]float64, p)
	for i := 0; i < p; i++ {
		out[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			out[i][j] = cov.At(i, j)
		}
	}
	return out, nil
}
