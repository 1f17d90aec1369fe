package scenario

import "time"

// Baseline returns the low-noise validation scenario: three routes with
// known step effects, no seasonality, no confounder events, and mild AR(1)
// noise. An estimator that cannot recover the configured effects here is
// broken, so this preset anchors the recovery tests.
func Baseline() Config {
	return Config{
		Name:         "baseline",
		HorizonStart: NewDate(2020, time.January, 6),
		HorizonEnd:   NewDate(2024, time.December, 30),
		Intervention: NewDate(2024, time.January, 1),
		Seed:         42,
		SeasonalForm: SeasonalNone,
		Segments: []SegmentConfig{
			{
				ID:          "Downtown",
				BaseLevel:   500,
				WeeklyTrend: 2.45,
				StepEffect:  300,
				NoiseStd:    20,
				NoiseRho:    0.3,
			},
			{
				ID:          "Suburban",
				BaseLevel:   400,
				WeeklyTrend: 1.67,
				StepEffect:  200,
				NoiseStd:    15,
				NoiseRho:    0.3,
			},
			{
				ID:          "Cross-town",
				BaseLevel:   300,
				WeeklyTrend: 1.09,
				StepEffect:  150,
				NoiseStd:    12,
				NoiseRho:    0.3,
			},
		},
	}
}

// Realistic returns the stress scenario: triple the innovation noise,
// smooth semiannual seasonality, much smaller true effects, and three
// confounder events overlapping the horizon. Estimates here are expected
// to be noisier and wider than under Baseline; the point is to measure how
// much.
func Realistic() Config {
	return Config{
		Name:         "realistic",
		HorizonStart: NewDate(2020, time.January, 6),
		HorizonEnd:   NewDate(2024, time.December, 30),
		Intervention: NewDate(2024, time.January, 1),
		Seed:         42,
		SeasonalForm: SeasonalSinusoidal,
		Segments: []SegmentConfig{
			{
				ID:                "Downtown",
				BaseLevel:         500,
				WeeklyTrend:       2.45,
				SeasonalAmplitude: 80,
				StepEffect:        50,
				NoiseStd:          60,
				NoiseRho:          0.3,
			},
			{
				ID:                "Suburban",
				BaseLevel:         400,
				WeeklyTrend:       1.67,
				SeasonalAmplitude: 60,
				StepEffect:        30,
				NoiseStd:          45,
				NoiseRho:          0.3,
			},
			{
				ID:                "Cross-town",
				BaseLevel:         300,
				WeeklyTrend:       1.09,
				SeasonalAmplitude: 40,
				StepEffect:        15,
				NoiseStd:          36,
				NoiseRho:          0.3,
			},
		},
		Events: []Event{
			{
				Name:       "competitor_launch",
				Date:       NewDate(2023, time.July, 1),
				Shape:      ShapeRamp,
				DecayWeeks: 8,
				Magnitudes: map[string]float64{
					"Downtown":   -15,
					"Suburban":   -8,
					"Cross-town": -3,
				},
			},
			{
				Name:       "fuel_price_spike",
				Date:       NewDate(2022, time.March, 1),
				Shape:      ShapePulse,
				DecayWeeks: 16,
				Magnitudes: map[string]float64{
					"Downtown":   12,
					"Suburban":   18,
					"Cross-town": 10,
				},
			},
			{
				Name:       "severe_winter",
				Date:       NewDate(2023, time.January, 1),
				Shape:      ShapeLevel,
				DecayWeeks: 8,
				Magnitudes: map[string]float64{
					"Downtown":   -20,
					"Suburban":   -25,
					"Cross-town": -15,
				},
			},
		},
	}
}

// Preset returns a named preset configuration.
func Preset(name string) (Config, bool) {
	switch name {
	case "baseline":
		return Baseline(), true
	case "realistic":
		return Realistic(), true
	}
	return Config{}, false
}
