package its

import (
	"fmt"
	"log/slog"
	"time"
)

// Share of rolling gaps that must stay inside the effect CI for a
// projection to be labeled stable. Stability is informational; an unstable
// projection is reported, never treated as a failure.
const stabilityShareThreshold = 0.80

// ProjectionPoint is one post-intervention week of a counterfactual
// projection.
type ProjectionPoint struct {
	Date           time.Time `json:"date"`
	WeekIndex      int       `json:"week_index"`
	Observed       float64   `json:"observed"`
	Counterfactual float64   `json:"counterfactual"`
	Gap            float64   `json:"gap"`
	RollingGap     float64   `json:"rolling_gap"`
	WithinCI       bool      `json:"within_ci"`
}

// Projection is the no-intervention baseline for one segment together with
// the realized weekly gaps and the headline effect summary.
type Projection struct {
	Segment         string            `json:"segment"`
	Points          []ProjectionPoint `json:"points"`
	Effect          Coefficient       `json:"effect"`
	MeanGap         float64           `json:"mean_gap"`
	PreMean         float64           `json:"pre_mean"`
	PostMean        float64           `json:"post_mean"`
	NaiveDifference float64           `json:"naive_difference"`
	RawJump         float64           `json:"raw_jump"`
	RollingWindow   int               `json:"rolling_window"`
	StabilityShare  float64           `json:"stability_share"`
	Stable          bool              `json:"stable"`
}

// Projector extrapolates the pre-intervention level and trend of a fitted
// model over the post-intervention horizon, as if no intervention had
// occurred.
type Projector struct {
	rollingWindow int
	logger        *slog.Logger
}

// NewProjector creates a projector. A non-positive rolling window selects
// DefaultRollingGapWindow; a nil logger falls back to the default slog
// logger.
func NewProjector(rollingWindow int, logger *slog.Logger) *Projector {
	if rollingWindow <= 0 {
		rollingWindow = DefaultRollingGapWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{rollingWindow: rollingWindow, logger: logger}
}

// Project builds the counterfactual series for the fitted segment from the
// given rows (the segment's full pre+post window). Only the intercept and
// pre-trend coefficients participate in the extrapolation; the headline
// effect is the fit's level-change coefficient with its HAC interval.
func (p *Projector) Project(fit *ModelFit, rows []Observation) (*Projection, error) {
	if fit == nil || !fit.IsValid() {
		return nil, &ConfigurationError{Field: "fit", Message: "projection requires a complete model fit"}
	}
	if len(rows) == 0 {
		return nil, &ConfigurationError{Field: "rows", Message: "projection requires segment rows", Value: fit.Segment}
	}

	intercept, okI := fit.Coefficient(TermIntercept)
	trend, okT := fit.Coefficient(TermTrend)
	if !okI || !okT {
		return nil, &ConfigurationError{Field: "fit", Message: "fit lacks pre-trend coefficients", Value: fit.Segment}
	}
	effect := fit.LevelChange()

	iv := fit.InterventionDate
	var (
		preSum, postSum   float64
		preCount          int
		lastPre, firstPost *Observation
		points            []ProjectionPoint
	)

	for i := range rows {
		row := rows[i]
		if row.Date.Before(iv) {
			preSum += row.Outcome
			preCount++
			lastPre = &rows[i]
			continue
		}
		if firstPost == nil {
			firstPost = &rows[i]
		}
		postSum += row.Outcome

		counterfactual := intercept.Estimate + trend.Estimate*float64(row.WeekIndex)
		points = append(points, ProjectionPoint{
			Date:           row.Date,
			WeekIndex:      row.WeekIndex,
			Observed:       row.Outcome,
			Counterfactual: counterfactual,
			Gap:            row.Outcome - counterfactual,
		})
	}

	if len(points) == 0 {
		return nil, &ConfigurationError{Field: "rows", Message: "no post-intervention rows to project", Value: fit.Segment}
	}
	if preCount == 0 {
		return nil, &ConfigurationError{Field: "rows", Message: "no pre-intervention rows behind the projection", Value: fit.Segment}
	}

	gapSum := 0.0
	within := 0
	for i := range points {
		gapSum += points[i].Gap

		start := i - p.rollingWindow + 1
		if start < 0 {
			start = 0
		}
		rolling := 0.0
		for j := start; j <= i; j++ {
			rolling += points[j].Gap
		}
		rolling /= float64(i - start + 1)
		points[i].RollingGap = rolling
		points[i].WithinCI = rolling >= effect.CILow && rolling <= effect.CIHigh
		if points[i].WithinCI {
			within++
		}
	}

	share := float64(within) / float64(len(points))
	proj := &Projection{
		Segment:         fit.Segment,
		Points:          points,
		Effect:          effect,
		MeanGap:         gapSum / float64(len(points)),
		PreMean:         preSum / float64(preCount),
		PostMean:        postSum / float64(len(points)),
		NaiveDifference: postSum/float64(len(points)) - preSum/float64(preCount),
		RawJump:         firstPost.Outcome - lastPre.Outcome,
		RollingWindow:   p.rollingWindow,
		StabilityShare:  share,
		Stable:          share >= stabilityShareThreshold,
	}

	p.logger.Debug("projected counterfactual",
		"segment", fit.Segment,
		"post_weeks", len(points),
		"mean_gap", proj.MeanGap,
		"stability_share", share,
	)

	return proj, nil
}

// ProjectAll projects every fitted segment against its rows in the panel.
func (p *Projector) ProjectAll(fits []*ModelFit, panel *Panel) ([]*Projection, error) {
	projections := make([]*Projection, 0, len(fits))
	for _, fit := range fits {
		proj, err := p.Project(fit, panel.Segment(fit.Segment))
		if err != nil {
			return nil, fmt.Errorf("project segment %s: %w", fit.Segment, err)
		}
		projections = append(projections, proj)
	}
	return projections, nil
}
