package its

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Estimator fits the interrupted time series model
//
//	outcome ~ 1 + trend + post (+ weeks_since_intervention) (+ month indicators)
//
// one segment at a time. Segments are always estimated independently:
// pre-intervention trends are not assumed parallel across segments, so
// there is no pooled or shared-slope model. This is a fixed design
// decision, not a per-call option.
type Estimator struct {
	logger *slog.Logger
}

// NewEstimator creates an estimator. A nil logger falls back to the
// default slog logger.
func NewEstimator(logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{logger: logger}
}

// FitSegment fits the model for one segment of the panel under the given
// specification and returns a fresh ModelFit.
func (e *Estimator) FitSegment(ctx context.Context, panel *Panel, segmentID string, spec FitSpec) (*ModelFit, error) {
	rows := panel.Segment(segmentID)
	if rows == nil {
		return nil, &ConfigurationError{Field: "segment", Message: "segment not present in panel", Value: segmentID}
	}
	return e.fitRows(ctx, segmentID, rows, panel.InterventionDate(), spec)
}

// FitAll fits every segment with the same specification, in stable segment
// order.
func (e *Estimator) FitAll(ctx context.Context, panel *Panel, spec FitSpec) ([]*ModelFit, error) {
	ids := panel.SegmentIDs()
	fits := make([]*ModelFit, 0, len(ids))
	for _, id := range ids {
		fit, err := e.FitSegment(ctx, panel, id, spec)
		if err != nil {
			return nil, fmt.Errorf("fit segment %s: %w", id, err)
		}
		fits = append(fits, fit)
	}
	return fits, nil
}

// fitRows runs the estimation pipeline on one segment's rows against an
// explicit intervention date. Placebo fits pass a fabricated date together
// with a pre-intervention row slice; everything downstream is identical to
// a real fit.
func (e *Estimator) fitRows(ctx context.Context, segment string, rows []Observation, interventionDate time.Time, spec FitSpec) (*ModelFit, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	d, err := buildDesign(segment, rows, interventionDate, spec)
	if err != nil {
		return nil, err
	}
	n, p := d.x.Dims()

	var qr mat.QR
	qr.Factorize(d.x)
	beta := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(beta, false, d.y); err != nil {
		return nil, &CollinearSpecificationError{Segment: segment, Message: fmt.Sprintf("least squares solve failed: %v", err)}
	}

	var fitted mat.VecDense
	fitted.MulVec(d.x, beta)

	residuals := make([]float64, n)
	meanY := 0.0
	for i := 0; i < n; i++ {
		residuals[i] = d.y.AtVec(i) - fitted.AtVec(i)
		meanY += d.y.AtVec(i)
	}
	meanY /= float64(n)

	ssr, sst := 0.0, 0.0
	for i := 0; i < n; i++ {
		ssr += residuals[i] * residuals[i]
		dev := d.y.AtVec(i) - meanY
		sst += dev * dev
	}
	r2 := 0.0
	if sst > 0 {
		r2 = 1 - ssr/sst
	} else if ssr == 0 {
		r2 = 1
	}
	adjR2 := 1 - (1-r2)*float64(n-1)/float64(n-p)

	lags := spec.HACLags
	if lags == 0 {
		lags = AutomaticHACLags(n)
	}
	cov, err := neweyWestCovariance(d.x, residuals, lags)
	if err != nil {
		return nil, fmt.Errorf("HAC covariance for segment %s: %w", segment, err)
	}

	conf := spec.confidence()
	z := stdNormal.Quantile(0.5 + conf/2)
	coeffs := make([]Coefficient, p)
	for i, term := range d.terms {
		est := beta.AtVec(i)
		se := math.Sqrt(math.Max(0, cov[i][i]))
		coeffs[i] = Coefficient{
			Term:     term,
			Estimate: est,
			StdError: se,
			CILow:    est - z*se,
			CIHigh:   est + z*se,
			PValue:   twoSidedP(est, se),
		}
	}

	fit := &ModelFit{
		Segment:          segment,
		Spec:             spec,
		Coefficients:     coeffs,
		RSquared:         r2,
		AdjRSquared:      adjR2,
		DurbinWatson:     durbinWatson(residuals),
		Observations:     n,
		PreObservations:  d.preCount,
		PostObservations: d.postCount,
		MonthsSpanned:    d.monthsSpan,
		HACLagsUsed:      lags,
		ConfidenceLevel:  conf,
		WindowStart:      d.rows[0].Date,
		WindowEnd:        d.rows[n-1].Date,
		InterventionDate: interventionDate,
		Covariance:       cov,
		Residuals:        residuals,
	}

	e.logger.DebugContext(ctx, "fitted segment model",
		"segment", segment,
		"observations", n,
		"parameters", p,
		"hac_lags", lags,
		"level_change", fit.LevelChange().Estimate,
		"r_squared", r2,
	)

	return fit, nil
}

// twoSidedP returns the two-sided p-value under the normal approximation.
func twoSidedP(est, se float64) float64 {
	if se == 0 {
		if est == 0 {
			return 1
		}
		return 0
	}
	return 2 * stdNormal.Survival(math.Abs(est/se))
}

// durbinWatson computes the Durbin-Watson statistic on time-ordered
// residuals. Values near 2 indicate no first-order autocorrelation. It is
// reported as a diagnostic only, never used as a gate.
func durbinWatson(residuals []float64) float64 {
	num, den := 0.0, 0.0
	for i, e := range residuals {
		den += e * e
		if i > 0 {
			d := e - residuals[i-1]
			num += d * d
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
