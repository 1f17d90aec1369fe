package its

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Near-singularity limits for the pre-fit design checks. Detection happens
// before solving; the QR solver is never relied on to surface a degenerate
// specification.
const (
	condNumberLimit    = 1e12
	postMonthCorrLimit = 0.999
)

// design holds the assembled regression problem for one segment window.
type design struct {
	terms      []string
	x          *mat.Dense
	y          *mat.VecDense
	rows       []Observation
	preCount   int
	postCount  int
	monthsSpan int
}

// applyWindow restricts a segment's rows per the spec: the pre-intervention
// side is cut to the most recent MaxPreYears, then TrimWeeks rows are
// dropped from each end.
func applyWindow(rows []Observation, interventionDate time.Time, spec FitSpec) []Observation {
	out := rows
	if spec.MaxPreYears > 0 {
		maxPreDays := spec.MaxPreYears * WeeksPerYear * weekDays
		kept := make([]Observation, 0, len(out))
		for _, row := range out {
			if row.Date.Before(interventionDate) {
				if int(interventionDate.Sub(row.Date).Hours()/24) > maxPreDays {
					continue
				}
			}
			kept = append(kept, row)
		}
		out = kept
	}
	if spec.TrimWeeks > 0 {
		if len(out) <= 2*spec.TrimWeeks {
			return nil
		}
		out = out[spec.TrimWeeks : len(out)-spec.TrimWeeks]
	}
	return out
}

// buildDesign assembles the design matrix for outcome ~ 1 + trend + post
// (+ weeks-since-intervention) (+ month indicators) over the windowed rows,
// recomputing the intervention flags against the given date so placebo fits
// can relabel the same rows. All degeneracy checks run here, before any
// solve is attempted.
func buildDesign(segment string, rows []Observation, interventionDate time.Time, spec FitSpec) (*design, error) {
	windowed := applyWindow(rows, interventionDate, spec)
	n := len(windowed)

	terms := []string{TermIntercept, TermTrend, TermLevelChange}
	if spec.IncludeSlopeChange {
		terms = append(terms, TermSlopeChange)
	}
	if spec.IncludeMonthDummies {
		for m := time.February; m <= time.December; m++ {
			terms = append(terms, MonthTerm(m))
		}
	}
	p := len(terms)

	if n < p+MinExtraObservations {
		return nil, &UnderdeterminedModelError{Segment: segment, Observations: n, Parameters: p}
	}

	post := make([]float64, n)
	weeksSince := make([]float64, n)
	preCount, postCount := 0, 0
	monthsSeen := make(map[time.Month]bool, 12)
	for i, row := range windowed {
		days := int(row.Date.Sub(interventionDate).Hours() / 24)
		if days >= 0 {
			post[i] = 1
			weeksSince[i] = float64(days / weekDays)
			postCount++
		} else {
			preCount++
		}
		monthsSeen[row.Month] = true
	}

	switch {
	case postCount == 0:
		return nil, &CollinearSpecificationError{
			Segment: segment,
			Term:    TermLevelChange,
			Message: "estimation window contains no post-intervention rows",
		}
	case preCount == 0:
		return nil, &CollinearSpecificationError{
			Segment: segment,
			Term:    TermLevelChange,
			Message: "estimation window contains no pre-intervention rows",
		}
	}

	if spec.IncludeMonthDummies && len(monthsSeen) < 12 {
		return nil, &CollinearSpecificationError{
			Segment: segment,
			Term:    MonthTerm(time.February),
			Message: fmt.Sprintf("month indicators need 12 distinct calendar months, window spans %d", len(monthsSeen)),
		}
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, row := range windowed {
		x.Set(i, 0, 1)
		x.Set(i, 1, float64(row.WeekIndex))
		x.Set(i, 2, post[i])
		col := 3
		if spec.IncludeSlopeChange {
			x.Set(i, col, weeksSince[i])
			col++
		}
		if spec.IncludeMonthDummies {
			for m := time.February; m <= time.December; m++ {
				if row.Month == m {
					x.Set(i, col, 1)
				}
				col++
			}
		}
		y.SetVec(i, row.Outcome)
	}

	if spec.IncludeMonthDummies {
		if err := checkPostMonthAlignment(segment, windowed, post); err != nil {
			return nil, err
		}
	}

	if cond := mat.Cond(x, 2); cond >= condNumberLimit || math.IsInf(cond, 1) {
		return nil, &CollinearSpecificationError{
			Segment: segment,
			Message: fmt.Sprintf("design matrix condition number %.3g exceeds %.0g", cond, condNumberLimit),
		}
	}

	return &design{
		terms:      terms,
		x:          x,
		y:          y,
		rows:       windowed,
		preCount:   preCount,
		postCount:  postCount,
		monthsSpan: len(monthsSeen),
	}, nil
}

// checkPostMonthAlignment refuses designs where a month indicator is nearly
// collinear with the intervention indicator. With a fixed calendar
// intervention date and a short window, a single month can align with the
// post period and absorb the treatment signal.
func checkPostMonthAlignment(segment string, rows []Observation, post []float64) error {
	for m := time.February; m <= time.December; m++ {
		monthCol := make([]float64, len(rows))
		for i, row := range rows {
			if row.Month == m {
				monthCol[i] = 1
			}
		}
		corr := stat.Correlation(post, monthCol, nil)
		if math.IsNaN(corr) {
			continue
		}
		if math.Abs(corr) >= postMonthCorrLimit {
			return &CollinearSpecificationError{
				Segment: segment,
				Term:    MonthTerm(m),
				Message: fmt.Sprintf("month indicator correlates %.4f with the intervention indicator", corr),
			}
		}
	}
	return nil
}
