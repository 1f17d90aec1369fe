package scenario

import (
	"math"
	"time"
)

// shockValue evaluates a shape at phase w, measured in fractional weeks
// since the event date, with characteristic length d weeks. The returned
// value is in [0, 1] (exactly 1 at the shape's peak) and is multiplied by
// the per-segment magnitude.
func shockValue(shape ShockShape, w, d float64) float64 {
	if w < 0 {
		return 0
	}
	switch shape {
	case ShapeExponential:
		return math.Exp(-3 * w / d)
	case ShapeLinear:
		v := 1 - w/d
		if v < 0 {
			return 0
		}
		return v
	case ShapeRamp:
		if w >= d {
			return 1
		}
		return w / d
	case ShapePulse:
		if w > d {
			return 0
		}
		return math.Sin(math.Pi * w / d)
	case ShapeLevel:
		if w < d {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// seasonalTerm evaluates the panel-wide seasonal form for one calendar
// month. The sinusoidal form is a semiannual cosine dip: deepest in January
// and July, zero in April and October, always non-positive so the base
// level stays the seasonal ceiling.
func seasonalTerm(form SeasonalForm, amplitude float64, month time.Month) float64 {
	if form != SeasonalSinusoidal || amplitude == 0 {
		return 0
	}
	return -amplitude * (0.5 + 0.5*math.Cos(4*math.Pi*float64(month-1)/12))
}
