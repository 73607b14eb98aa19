// Package model defines shared data structures.
package model

import "time"

// RecentTimesCap bounds the per-item raw response time window.
const RecentTimesCap = 10

// ItemStats tracks the learning state of a single drill item.
type ItemStats struct {
	// EWMA is the rolling-averaged response time in milliseconds.
	EWMA float64
	// RecentTimes holds the most recent raw response times, oldest first.
	RecentTimes []float64
	// SampleCount is the total number of recorded responses.
	SampleCount int
	// LastSeen is the time of the most recent response of any kind.
	LastSeen time.Time
	// Stability is the estimated memory half-life in hours.
	// Nil exactly when the item has never been answered correctly.
	Stability *float64
	// LastCorrectAt is the time of the most recent correct answer.
	// Recall decays relative to this moment.
	LastCorrectAt time.Time
}

// AdaptiveConfig parameterizes the recall/speed models and the selector.
// Values are immutable once constructed; calibration replaces the whole
// config rather than mutating fields.
type AdaptiveConfig struct {
	MinTime                 float64 // fastest plausible response, ms
	MaxResponseTime         float64 // generous response ceiling, ms
	InitialStability        float64 // hours, granted on the first correct answer
	MaxStability            float64 // hours, stability cap
	StabilityGrowthBase     float64 // multiplicative growth per correct answer
	StabilityDecayOnWrong   float64 // multiplicative decay per wrong answer, < 1
	RecallThreshold         float64 // recall below this counts as due
	AutomaticityThreshold   float64 // automaticity above this counts as mastered
	SpeedBonusMax           float64 // upper bound of the speed score
	SelfCorrectionThreshold float64 // ms; slower correct answers suggest hesitation
	AutomaticityTarget      float64 // ms considered fluent
	ExpansionThreshold      float64 // mastered/seen ratio gating expansion
}

// DeadlineConfig parameterizes the per-item answer deadline staircase.
type DeadlineConfig struct {
	DecreaseFactor     float64 // deadline shrink on correct
	IncreaseFactor     float64 // deadline growth on wrong/timeout
	MinDeadlineMargin  float64 // min deadline = round(MinTime * margin)
	EwmaMultiplier     float64 // initial deadline = ewma * multiplier
	HeadroomMultiplier float64 // anchored target = responseTime * multiplier
	MaxDropFactor      float64 // deadline never drops below current * this in one step
}

// GroupAggregate summarizes one item group for recommendation.
type GroupAggregate struct {
	Index         int
	DueCount      int // seen but not yet mastered
	UnseenCount   int // no recorded stats
	MasteredCount int // automaticity above threshold
	TotalCount    int
}

// RecommendationResult is the output of the consolidate-before-expand engine.
type RecommendationResult struct {
	// Recommended groups get an advisory highlight.
	Recommended map[int]struct{}
	// Enabled groups should actually be activated by the caller.
	Enabled map[int]struct{}
	// ConsolidateIndices are the started groups picked for consolidation.
	ConsolidateIndices []int
	// ConsolidateDueCount is the due-item total across consolidation
	// groups; unseen work is reported via ExpandNewCount.
	ConsolidateDueCount int
	// ExpandIndex is the unstarted group unlocked for expansion, or nil.
	ExpandIndex *int
	// ExpandNewCount is the number of unseen items in the expanded group.
	ExpandNewCount int
}

// PracticeConfig defines practice session settings.
type PracticeConfig struct {
	Tuning        string
	MaxFret       int
	RoundSeconds  int
	Intervals     bool
	Triads        bool
	Strings       []int
	AutoRecommend bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed practice round.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Tuning     string
	Questions  int
	Correct    int
	Incorrect  int
	TimedOut   int
	DurationMs int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Questions  int
	Correct    int
	Incorrect  int
	TimedOut   int
	DurationMs int64
}
