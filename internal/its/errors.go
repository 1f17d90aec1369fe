package its

import (
	"fmt"
	"time"
)

// ConfigurationError reports invalid scenario or estimation parameters.
// It is raised before any generation or fitting begins.
type ConfigurationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DataIntegrityError reports a gap or duplicate in a segment's weekly time
// index. It aborts the panel build.
type DataIntegrityError struct {
	Segment string    `json:"segment"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("segment %q at %s: %s", e.Segment, e.Date.Format("2006-01-02"), e.Message)
}

// UnderdeterminedModelError reports a fit with fewer observations than free
// parameters. The fit is aborted rather than returning an exact-interpolation
// solution.
type UnderdeterminedModelError struct {
	Segment      string `json:"segment"`
	Observations int    `json:"observations"`
	Parameters   int    `json:"parameters"`
}

// Error implements the error interface
func (e *UnderdeterminedModelError) Error() string {
	return fmt.Sprintf("segment %q: %d observations cannot identify %d parameters",
		e.Segment, e.Observations, e.Parameters)
}

// CollinearSpecificationError reports near-perfect collinearity in the
// requested design, detected before solving. The most common cause is the
// month-indicator trap: month dummies combined with a fixed calendar
// intervention date absorb the treatment signal when the window does not
// span a full year of calendar months.
type CollinearSpecificationError struct {
	Segment string `json:"segment"`
	Term    string `json:"term,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *CollinearSpecificationError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("segment %q: %s (term %s)", e.Segment, e.Message, e.Term)
	}
	return fmt.Sprintf("segment %q: %s", e.Segment, e.Message)
}
