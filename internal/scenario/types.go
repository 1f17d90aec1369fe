package scenario

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day that round-trips through YAML and JSON as
// YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(dateLayout), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// ShockShape is the temporal profile of a confounder event.
type ShockShape string

const (
	// ShapeExponential decays geometrically from the event date.
	ShapeExponential ShockShape = "exponential"
	// ShapeLinear fades to zero linearly over the decay length.
	ShapeLinear ShockShape = "linear"
	// ShapeRamp grows linearly to full magnitude, then holds permanently.
	ShapeRamp ShockShape = "ramp"
	// ShapePulse rises and falls as a half sine over the decay length.
	ShapePulse ShockShape = "pulse"
	// ShapeLevel applies the full magnitude for the decay length, then stops.
	ShapeLevel ShockShape = "level"
)

// IsValid reports whether the shape is one of the recognized profiles.
func (s ShockShape) IsValid() bool {
	switch s {
	case ShapeExponential, ShapeLinear, ShapeRamp, ShapePulse, ShapeLevel:
		return true
	}
	return false
}

// SeasonalForm selects the within-year pattern applied to every segment.
type SeasonalForm string

const (
	// SeasonalNone disables the seasonal term.
	SeasonalNone SeasonalForm = "none"
	// SeasonalSinusoidal applies a smooth semiannual cosine dip, deepest in
	// January and July.
	SeasonalSinusoidal SeasonalForm = "sinusoidal"
)

// IsValid reports whether the form is recognized.
func (f SeasonalForm) IsValid() bool {
	return f == SeasonalNone || f == SeasonalSinusoidal
}

// SegmentConfig describes one synthetic segment.
type SegmentConfig struct {
	// ID names the segment in the generated panel.
	ID string `yaml:"id" json:"id" validate:"required"`

	// BaseLevel is the outcome at the first week before trend, seasonality,
	// effects, and noise.
	BaseLevel float64 `yaml:"base_level" json:"base_level" validate:"gte=0"`

	// WeeklyTrend is the secular change in outcome per week.
	WeeklyTrend float64 `yaml:"weekly_trend" json:"weekly_trend"`

	// SeasonalAmplitude scales the panel-wide seasonal form for this
	// segment. Zero disables seasonality for the segment.
	SeasonalAmplitude float64 `yaml:"seasonal_amplitude" json:"seasonal_amplitude" validate:"gte=0"`

	// StepEffect is the true level change applied from the intervention
	// date onward.
	StepEffect float64 `yaml:"step_effect" json:"step_effect"`

	// SlopeEffect is the true change in weekly trend applied from the
	// intervention date onward.
	SlopeEffect float64 `yaml:"slope_effect" json:"slope_effect"`

	// NoiseStd is the standard deviation of the AR(1) innovations.
	NoiseStd float64 `yaml:"noise_std" json:"noise_std" validate:"gte=0"`

	// NoiseRho is the AR(1) autocorrelation coefficient.
	NoiseRho float64 `yaml:"noise_rho" json:"noise_rho" validate:"gte=0,lt=1"`
}

// Event is a confounder shock overlapping the horizon: something that moves
// the outcome but is not the intervention.
type Event struct {
	Name  string     `yaml:"name" json:"name" validate:"required"`
	Date  Date       `yaml:"date" json:"date"`
	Shape ShockShape `yaml:"shape" json:"shape" validate:"required"`

	// DecayWeeks is the shape's characteristic length in weeks.
	DecayWeeks int `yaml:"decay_weeks" json:"decay_weeks" validate:"gt=0"`

	// Magnitudes maps segment ID to the event's peak contribution for that
	// segment. Segments absent from the map are unaffected.
	Magnitudes map[string]float64 `yaml:"magnitudes" json:"magnitudes" validate:"required,min=1"`
}

// Config is a full scenario: horizon, intervention, per-segment dynamics,
// and confounder events.
type Config struct {
	Name         string       `yaml:"name" json:"name"`
	HorizonStart Date         `yaml:"horizon_start" json:"horizon_start"`
	HorizonEnd   Date         `yaml:"horizon_end" json:"horizon_end"`
	Intervention Date         `yaml:"intervention" json:"intervention"`
	Seed         uint64       `yaml:"seed" json:"seed"`
	SeasonalForm SeasonalForm `yaml:"seasonal_form" json:"seasonal_form"`

	Segments []SegmentConfig `yaml:"segments" json:"segments" validate:"required,min=1,dive"`
	Events   []Event         `yaml:"events" json:"events" validate:"omitempty,dive"`
}

// NumWeeks returns the number of weekly observations the horizon spans.
func (c *Config) NumWeeks() int {
	if c.HorizonStart.IsZero() || c.HorizonEnd.Before(c.HorizonStart.Time) {
		return 0
	}
	return int(c.HorizonEnd.Sub(c.HorizonStart.Time).Hours()/24)/7 + 1
}

// SegmentIDs returns the configured segment identifiers in declaration
// order.
func (c *Config) SegmentIDs() []string {
	ids := make([]string, 0, len(c.Segments))
	for _, s := range c.Segments {
		ids = append(ids, s.ID)
	}
	return ids
}
