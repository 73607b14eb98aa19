// Package calibrate measures a person's raw motor baseline through a
// short forced-choice tap sequence. The median tap latency rescales
// the adaptive time thresholds so speed is judged against the person,
// not a fixed constant.
package calibrate

import (
	"math/rand"
	"sort"
	"time"
)

// TrialCount is the number of taps in a calibration run.
const TrialCount = 7

// Runner drives one calibration run. A run is started, fed one latency
// per trial, and either completes with a median baseline or is
// abandoned with no effect on any previously stored baseline.
type Runner struct {
	rnd       *rand.Rand
	targets   []int
	latencies []float64
	active    bool
}

// NewRunner constructs a Runner seeded with the current time.
func NewRunner() *Runner {
	return &Runner{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Start begins a fresh run over controlCount answer controls and
// returns the sequence length. Any in-progress run is discarded.
func (r *Runner) Start(controlCount int) int {
	if controlCount < 1 {
		controlCount = 1
	}
	r.targets = make([]int, TrialCount)
	prev := -1
	for i := range r.targets {
		t := r.rnd.Intn(controlCount)
		// Avoid back-to-back repeats so every trial needs a fresh aim.
		if controlCount > 1 && t == prev {
			t = (t + 1 + r.rnd.Intn(controlCount-1)) % controlCount
		}
		r.targets[i] = t
		prev = t
	}
	r.latencies = r.latencies[:0]
	r.active = true
	return TrialCount
}

// Active reports whether a run is in progress.
func (r *Runner) Active() bool {
	return r.active
}

// Trial returns the zero-based index of the current trial.
func (r *Runner) Trial() int {
	return len(r.latencies)
}

// Target returns the control index to highlight for the current trial,
// or -1 when no run is active or the run is complete.
func (r *Runner) Target() int {
	if !r.active || len(r.latencies) >= len(r.targets) {
		return -1
	}
	return r.targets[len(r.latencies)]
}

// RecordTap records one trial latency and reports whether the run is
// complete. Taps outside an active run are ignored.
func (r *Runner) RecordTap(latencyMs float64) bool {
	if !r.active || len(r.latencies) >= len(r.targets) {
		return false
	}
	if latencyMs < 0 {
		latencyMs = 0
	}
	r.latencies = append(r.latencies, latencyMs)
	return len(r.latencies) == len(r.targets)
}

// Baseline returns the median tap latency of a completed run. The
// median, not the mean, so one fumbled tap cannot skew the baseline.
// ok is false while the run is incomplete or abandoned.
func (r *Runner) Baseline() (baselineMs float64, ok bool) {
	if !r.active || len(r.latencies) < len(r.targets) || len(r.latencies) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(r.latencies))
	copy(sorted, r.latencies)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// Abandon discards the run and its partial results. The previously
// stored baseline, if any, is the caller's to keep.
func (r *Runner) Abandon() {
	r.active = false
	r.targets = nil
	r.latencies = nil
}
