package adaptive

import "github.com/fretdrill/fretdrill/internal/model"

// SpeedScore normalizes a rolling-average response time into
// [0, SpeedBonusMax]. Averages at or below AutomaticityTarget earn the
// full bonus; slower averages decay asymptotically toward zero.
// Returns nil when no average is available.
func SpeedScore(ewmaMs *float64, cfg model.AdaptiveConfig) *float64 {
	if ewmaMs == nil || *ewmaMs <= 0 {
		return nil
	}
	score := cfg.SpeedBonusMax
	if *ewmaMs > cfg.AutomaticityTarget && cfg.AutomaticityTarget > cfg.MinTime {
		score = cfg.SpeedBonusMax * (cfg.AutomaticityTarget - cfg.MinTime) / (*ewmaMs - cfg.MinTime)
	}
	score = clamp(score, 0, cfg.SpeedBonusMax)
	return &score
}

// Automaticity combines recall and speed into a single fluency score
// in [0, 1]. Recall dominates; speed modulates within a fixed band, so
// an item is never "automatic" while recall is poor no matter how fast
// the answers come. Returns nil when either signal is missing.
func Automaticity(recall, speedScore *float64) *float64 {
	if recall == nil || speedScore == nil {
		return nil
	}
	speed := clamp(*speedScore, 0, 1)
	a := clamp(*recall*(0.6+0.4*speed), 0, 1)
	return &a
}

// Weight computes the selection weight for an item. Unseen items get a
// fixed baseline above any mastered item's weight so new material keeps
// surfacing. Seen items multiply a speed factor (slower average, more
// practice) by a recall-urgency factor (lower estimated recall, more
// practice); the recall factor is omitted while recall is unknown.
// The result is always positive.
func Weight(stats *model.ItemStats, recall *float64, cfg model.AdaptiveConfig) float64 {
	if cfg.MinTime <= 0 {
		return 1
	}
	if stats == nil {
		return cfg.MaxResponseTime / cfg.MinTime
	}
	ewma := clamp(stats.EWMA, cfg.MinTime, cfg.MaxResponseTime)
	w := ewma / cfg.MinTime
	if recall != nil {
		w *= 1 + (1 - clamp(*recall, 0, 1))
	}
	if w <= 0 {
		w = 1
	}
	return w
}
