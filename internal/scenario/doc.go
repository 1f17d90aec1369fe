// Package scenario synthesizes weekly panel data with known ground truth
// for validating the estimation pipeline.
//
// A scenario describes a multi-year weekly horizon, a set of segments with
// their own level, trend, seasonality, and noise dynamics, a single
// intervention date with true step and slope effects per segment, and
// optional confounder events that move the outcome without being the
// intervention.
//
// # Components
//
// 1. Config: the scenario description, loadable from YAML
// 2. Generator: deterministic series synthesis from a Config and seed
// 3. Presets: the Baseline and Realistic reference scenarios
//
// # Usage
//
// Generate the baseline validation panel:
//
//	generator := scenario.NewGenerator(slog.Default())
//	panel, err := generator.GeneratePanel(ctx, scenario.Baseline())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or load a custom scenario from YAML:
//
//	cfg, err := scenario.LoadConfig("scenarios/pilot.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	panel, err := generator.GeneratePanel(ctx, cfg)
//
// # Determinism
//
// Generation is reproducible: the same Config and seed always produce the
// same series. Each segment draws innovations from its own PCG sub-stream
// keyed by (seed, segment index), and each Gaussian draw consumes exactly
// one uniform by inverse transform, so segment streams never interleave.
//
// # Outcome Composition
//
// Each weekly outcome is assembled as
//
//	base + trend*week + seasonal + intervention effects + events + AR(1) noise
//
// and floored at zero, since the modeled outcomes are counts.
package scenario
