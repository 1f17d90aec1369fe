package its

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mondayStart is the first Monday used by most synthetic series.
var mondayStart = time.Date(2020, time.January, 6, 0, 0, 0, 0, time.UTC)

// interruptedPoints builds a noise-free weekly series with a known level and
// slope break at breakWeek. Weeks at or after the break carry the full step
// plus slope effect, so a correct fit recovers the inputs exactly.
func interruptedPoints(start time.Time, weeks, breakWeek int, base, trend, step, slope float64) []Point {
	points := make([]Point, 0, weeks)
	for i := 0; i < weeks; i++ {
		value := base + trend*float64(i)
		if i >= breakWeek {
			value += step + slope*float64(i-breakWeek)
		}
		points = append(points, Point{Date: start.AddDate(0, 0, 7*i), Value: value})
	}
	return points
}

// linearPoints builds a noise-free weekly series with no break at all.
func linearPoints(start time.Time, weeks int, base, trend float64) []Point {
	return interruptedPoints(start, weeks, weeks, base, trend, 0, 0)
}

// wigglePoints overlays a small deterministic oscillation on a stepped series
// so fits carry real residual structure without any randomness.
func wigglePoints(start time.Time, weeks, breakWeek int, base, trend, step, amp float64) []Point {
	points := make([]Point, 0, weeks)
	for i := 0; i < weeks; i++ {
		value := base + trend*float64(i) + amp*math.Sin(float64(i))
		if i >= breakWeek {
			value += step
		}
		points = append(points, Point{Date: start.AddDate(0, 0, 7*i), Value: value})
	}
	return points
}

func mustBuildPanel(t *testing.T, series map[string][]Point, intervention time.Time) *Panel {
	t.Helper()
	panel, err := BuildPanel(series, intervention)
	require.NoError(t, err)
	return panel
}

// wigglePanel is a two-segment 156-week panel with the intervention at week
// 104. The sine overlay gives every fit nonzero residuals and standard
// errors while staying fully reproducible.
func wigglePanel(t *testing.T) *Panel {
	t.Helper()
	intervention := mondayStart.AddDate(0, 0, 7*104)
	return mustBuildPanel(t, map[string][]Point{
		"Airport":  wigglePoints(mondayStart, 156, 104, 300, 1.2, 80, 3),
		"Downtown": wigglePoints(mondayStart, 156, 104, 500, 2.0, 150, 4),
	}, intervention)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
