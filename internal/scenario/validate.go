package scenario

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"transitimpact/internal/its"
)

// validate is the package validator. Field names in errors use the yaml
// tag, matching what users write in configuration files.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the scenario configuration: struct-tag constraints first,
// then the cross-field rules no tag can express. An empty seasonal form is
// normalized to "none".
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &its.ConfigurationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("violates %q constraint", fe.Tag()),
				Value:   fe.Value(),
			}
		}
		return fmt.Errorf("scenario validation: %w", err)
	}

	if c.HorizonStart.IsZero() || c.HorizonEnd.IsZero() {
		return &its.ConfigurationError{Field: "horizon_start", Message: "horizon start and end are required"}
	}
	if !c.HorizonEnd.After(c.HorizonStart.Time) {
		return &its.ConfigurationError{
			Field:   "horizon_end",
			Message: "horizon end must fall after horizon start",
			Value:   c.HorizonEnd.String(),
		}
	}
	if c.HorizonEnd.Sub(c.HorizonStart.Time) < daysPerWeek*24*time.Hour {
		return &its.ConfigurationError{
			Field:   "horizon_end",
			Message: "horizon must span at least two weeks",
			Value:   c.HorizonEnd.String(),
		}
	}

	if c.Intervention.IsZero() {
		return &its.ConfigurationError{Field: "intervention", Message: "intervention date is required"}
	}
	if !c.Intervention.After(c.HorizonStart.Time) || c.Intervention.After(c.HorizonEnd.Time) {
		return &its.ConfigurationError{
			Field:   "intervention",
			Message: "intervention date outside horizon",
			Value:   c.Intervention.String(),
		}
	}

	if c.SeasonalForm == "" {
		c.SeasonalForm = SeasonalNone
	}
	if !c.SeasonalForm.IsValid() {
		return &its.ConfigurationError{
			Field:   "seasonal_form",
			Message: "unrecognized seasonal form",
			Value:   string(c.SeasonalForm),
		}
	}

	ids := make(map[string]bool, len(c.Segments))
	for _, segment := range c.Segments {
		if ids[segment.ID] {
			return &its.ConfigurationError{
				Field:   "segments",
				Message: "duplicate segment id",
				Value:   segment.ID,
			}
		}
		ids[segment.ID] = true
	}

	for i, event := range c.Events {
		field := fmt.Sprintf("events[%d]", i)
		if event.Date.IsZero() {
			return &its.ConfigurationError{Field: field + ".date", Message: "event date is required", Value: event.Name}
		}
		if !event.Shape.IsValid() {
			return &its.ConfigurationError{
				Field:   field + ".shape",
				Message: "unrecognized shock shape",
				Value:   string(event.Shape),
			}
		}
		for id := range event.Magnitudes {
			if !ids[id] {
				return &its.ConfigurationError{
					Field:   field + ".magnitudes",
					Message: "magnitude references unknown segment",
					Value:   id,
				}
			}
		}
	}

	return nil
}
