// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and pace for a practice round.
// Timed-out questions count against accuracy.
func SessionMetrics(correct, incorrect, timedOut int, durationMs int64) (accuracy, questionsPerMin float64) {
	total := correct + incorrect + timedOut
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	if durationMs > 0 {
		minutes := float64(durationMs) / 60000.0
		questionsPerMin = float64(total) / minutes
	}
	return accuracy, questionsPerMin
}

// MovingAverage computes a rolling mean over the provided window size.
// The early entries average over however many values exist so far.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = sparkChars[int(math.Round((v-lo)/(hi-lo)*float64(len(sparkChars)-1)))]
	}
	return string(out)
}
