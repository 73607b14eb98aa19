package adaptive

import (
	"math"

	"github.com/fretdrill/fretdrill/internal/model"
)

// Recall estimates the probability of a correct answer after
// elapsedHours, modeling memory as a continuous half-life decay:
// R = 2^(-elapsed/stability), so recall is exactly 0.5 when the
// elapsed time equals the stability. Returns nil when stability is
// unknown or non-positive.
func Recall(stability *float64, elapsedHours float64) *float64 {
	if stability == nil || *stability <= 0 {
		return nil
	}
	if elapsedHours < 0 {
		elapsedHours = 0
	}
	r := math.Exp2(-elapsedHours / *stability)
	r = clamp(r, 0, 1)
	return &r
}

// UpdateStability returns the stability after a correct answer.
//
// The first correct answer grants InitialStability. Subsequent correct
// answers grow stability multiplicatively: the base growth is boosted
// when the response was fast relative to SelfCorrectionThreshold
// (confident recall rather than a slow reconstruction) and when the
// elapsed time is large relative to the current stability (a survived
// retention interval is stronger evidence of durable memory). The
// result is clamped to [0, MaxStability].
func UpdateStability(old *float64, responseTimeMs, elapsedHours float64, cfg model.AdaptiveConfig) float64 {
	if old == nil || *old <= 0 {
		return clamp(cfg.InitialStability, 0, cfg.MaxStability)
	}
	speed := 1.0
	if cfg.SelfCorrectionThreshold > 0 && responseTimeMs > 0 {
		frac := (cfg.SelfCorrectionThreshold - responseTimeMs) / cfg.SelfCorrectionThreshold
		speed = 1 + 0.5*clamp(frac, 0, 1)
	}
	spacing := 1 + clamp(elapsedHours / *old, 0, 1)
	grown := *old * cfg.StabilityGrowthBase * speed * spacing
	return clamp(grown, 0, cfg.MaxStability)
}

// StabilityAfterWrong decays stability after a wrong answer. Decay is
// multiplicative, never a reset: a single mistake on a well-learned
// item costs more absolute stability than on a fresh one, but the item
// keeps part of its accumulated progress.
func StabilityAfterWrong(old float64, cfg model.AdaptiveConfig) float64 {
	return clamp(old*cfg.StabilityDecayOnWrong, 0, cfg.MaxStability)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
