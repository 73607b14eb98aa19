// Package adaptive implements the learner model: recall and speed
// estimation per item, and weighted selection of the next question.
package adaptive

import "github.com/fretdrill/fretdrill/internal/model"

// DefaultConfig returns the uncalibrated adaptive configuration.
func DefaultConfig() model.AdaptiveConfig {
	return model.AdaptiveConfig{
		MinTime:                 500,
		MaxResponseTime:         8000,
		InitialStability:        1.0,
		MaxStability:            720,
		StabilityGrowthBase:     2.0,
		StabilityDecayOnWrong:   0.5,
		RecallThreshold:         0.6,
		AutomaticityThreshold:   0.7,
		SpeedBonusMax:           1.0,
		SelfCorrectionThreshold: 3000,
		AutomaticityTarget:      1500,
		ExpansionThreshold:      0.66,
	}
}

// ReferenceBaseline is the motor baseline, in milliseconds, that the
// default time thresholds were tuned against.
const ReferenceBaseline = 350

// RescaleConfig returns a copy of cfg with all time thresholds scaled
// by baselineMs relative to ReferenceBaseline, so a slower or faster
// person is judged against their own measured speed. Non-positive
// baselines return cfg unchanged.
func RescaleConfig(cfg model.AdaptiveConfig, baselineMs float64) model.AdaptiveConfig {
	if baselineMs <= 0 {
		return cfg
	}
	factor := baselineMs / ReferenceBaseline
	out := cfg
	out.MinTime = cfg.MinTime * factor
	out.MaxResponseTime = cfg.MaxResponseTime * factor
	out.AutomaticityTarget = cfg.AutomaticityTarget * factor
	out.SelfCorrectionThreshold = cfg.SelfCorrectionThreshold * factor
	return out
}
