// Package deadline maintains a personalized answer deadline per item.
//
// The deadline follows a staircase policy: success tightens it, failure
// or timeout loosens it, and every step is clamped so the limit stays
// inside a band derived from the adaptive time thresholds.
package deadline

import (
	"fmt"
	"math"

	"github.com/fretdrill/fretdrill/internal/model"
)

// Storage is the persistence contract for per-item deadlines.
// Missing or corrupt values surface as zero.
type Storage interface {
	GetDeadline(itemID string) (int, error)
	SaveDeadline(itemID string, deadlineMs int) error
}

// DefaultConfig returns the default staircase configuration.
func DefaultConfig() model.DeadlineConfig {
	return model.DeadlineConfig{
		DecreaseFactor:     0.85,
		IncreaseFactor:     1.4,
		MinDeadlineMargin:  1.5,
		EwmaMultiplier:     2.0,
		HeadroomMultiplier: 1.5,
		MaxDropFactor:      0.5,
	}
}

// Tracker owns the per-item deadline state.
type Tracker struct {
	storage  Storage
	adaptive model.AdaptiveConfig
	cfg      model.DeadlineConfig
}

// NewTracker constructs a Tracker over the given storage.
func NewTracker(storage Storage, adaptive model.AdaptiveConfig, cfg model.DeadlineConfig) *Tracker {
	return &Tracker{storage: storage, adaptive: adaptive, cfg: cfg}
}

// UpdateConfig swaps the adaptive thresholds, used after calibration.
// Persisted deadlines are kept; they drift toward the new band through
// the usual clamped adjustments.
func (t *Tracker) UpdateConfig(adaptive model.AdaptiveConfig) {
	t.adaptive = adaptive
}

// bounds returns the deadline band for an item requiring responseCount
// physical responses per question. The band scales linearly with the
// expected number of responses.
func (t *Tracker) bounds(responseCount int) (minMs, maxMs int) {
	n := float64(responseCount)
	if n < 1 {
		n = 1
	}
	minMs = int(math.Round(t.adaptive.MinTime * n * t.cfg.MinDeadlineMargin))
	maxMs = int(math.Round(t.adaptive.MaxResponseTime * n))
	return minMs, maxMs
}

// InitialDeadline computes the first deadline for an item. A known
// rolling average anchors it; unseen items get the generous ceiling.
func (t *Tracker) InitialDeadline(ewmaMs *float64, responseCount int) int {
	minMs, maxMs := t.bounds(responseCount)
	if ewmaMs == nil || *ewmaMs <= 0 {
		return maxMs
	}
	return clampInt(int(math.Round(*ewmaMs*t.cfg.EwmaMultiplier)), minMs, maxMs)
}

// Adjust computes the next deadline after an answer.
//
// Wrong answers and timeouts loosen the deadline by IncreaseFactor;
// the response time is ignored, since being wrong never tightens the
// limit. Correct answers take the more aggressive of the staircase
// step (current × DecreaseFactor) and the anchored target
// (responseTime × HeadroomMultiplier), floored so a single answer can
// never drop the deadline below current × MaxDropFactor.
func (t *Tracker) Adjust(currentMs int, correct bool, responseCount int, responseTimeMs float64) int {
	minMs, maxMs := t.bounds(responseCount)
	if !correct {
		return clampInt(int(math.Round(float64(currentMs)*t.cfg.IncreaseFactor)), minMs, maxMs)
	}
	target := float64(currentMs) * t.cfg.DecreaseFactor
	if responseTimeMs > 0 {
		anchored := responseTimeMs * t.cfg.HeadroomMultiplier
		if anchored < target {
			target = anchored
		}
	}
	floor := float64(currentMs) * t.cfg.MaxDropFactor
	if target < floor {
		target = floor
	}
	return clampInt(int(math.Round(target)), minMs, maxMs)
}

// GetDeadline returns the persisted deadline for an item, computing
// and persisting the initial value on first use. Corrupt or
// non-positive stored values are recomputed rather than trusted.
func (t *Tracker) GetDeadline(itemID string, ewmaMs *float64, responseCount int) (int, error) {
	stored, err := t.storage.GetDeadline(itemID)
	if err != nil {
		return 0, fmt.Errorf("load deadline for %q: %w", itemID, err)
	}
	if stored > 0 {
		return stored, nil
	}
	initial := t.InitialDeadline(ewmaMs, responseCount)
	if err := t.storage.SaveDeadline(itemID, initial); err != nil {
		return 0, fmt.Errorf("save deadline for %q: %w", itemID, err)
	}
	return initial, nil
}

// RecordOutcome adjusts and persists the deadline after an answer,
// returning the new value. An item with no persisted deadline is a
// caller sequencing bug (GetDeadline is always called first); the
// tracker no-ops and returns zero rather than fabricating a value.
func (t *Tracker) RecordOutcome(itemID string, correct bool, responseCount int, responseTimeMs float64) (int, error) {
	current, err := t.storage.GetDeadline(itemID)
	if err != nil {
		return 0, fmt.Errorf("load deadline for %q: %w", itemID, err)
	}
	if current <= 0 {
		return 0, nil
	}
	next := t.Adjust(current, correct, responseCount, responseTimeMs)
	if err := t.storage.SaveDeadline(itemID, next); err != nil {
		return 0, fmt.Errorf("save deadline for %q: %w", itemID, err)
	}
	return next, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
