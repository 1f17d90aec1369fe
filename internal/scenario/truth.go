package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GroundTruth records the intervention effects baked into a generated
// scenario so recovered estimates can be compared against them later.
type GroundTruth struct {
	Scenario     string         `json:"scenario"`
	Intervention Date           `json:"intervention_date"`
	Seed         uint64         `json:"seed"`
	Segments     []SegmentTruth `json:"segments"`
}

// SegmentTruth is the true effect pair for one segment.
type SegmentTruth struct {
	ID          string  `json:"id"`
	StepEffect  float64 `json:"step_effect"`
	SlopeEffect float64 `json:"slope_effect"`
}

// Truth extracts the ground truth from a scenario configuration.
func (c *Config) Truth() GroundTruth {
	truth := GroundTruth{
		Scenario:     c.Name,
		Intervention: c.Intervention,
		Seed:         c.Seed,
		Segments:     make([]SegmentTruth, 0, len(c.Segments)),
	}
	for _, seg := range c.Segments {
		truth.Segments = append(truth.Segments, SegmentTruth{
			ID:          seg.ID,
			StepEffect:  seg.StepEffect,
			SlopeEffect: seg.SlopeEffect,
		})
	}
	return truth
}

// Segment returns the truth entry for the named segment.
func (g GroundTruth) Segment(id string) (SegmentTruth, bool) {
	for _, seg := range g.Segments {
		if seg.ID == id {
			return seg, true
		}
	}
	return SegmentTruth{}, false
}

// WriteGroundTruth writes the scenario's true effects as indented JSON.
func WriteGroundTruth(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg.Truth(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ground truth: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ground truth: %w", err)
	}
	return nil
}
