// Package engine holds the pure session state machine: phases,
// transitions, and key routing, decoupled from the learning math and
// from any rendering.
package engine

import "time"

// Phase is the screen phase of a practice session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseRoundComplete
	PhaseCalibrationIntro
	PhaseCalibrating
	PhaseCalibrationResults
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseRoundComplete:
		return "round-complete"
	case PhaseCalibrationIntro:
		return "calibration-intro"
	case PhaseCalibrating:
		return "calibrating"
	case PhaseCalibrationResults:
		return "calibration-results"
	default:
		return "unknown"
	}
}

// FeedbackKind classifies per-question feedback for styling.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackCorrect
	FeedbackWrong
	FeedbackTimeout
)

// State is an immutable session snapshot. Transitions return a fresh
// value; nothing mutates a State in place.
type State struct {
	Phase Phase

	SessionStartedAt time.Time

	CurrentItem    string
	ResponseCount  int // physical responses the current question needs
	DeadlineMs     int // answer deadline for the current question
	Answered       bool
	AnswersEnabled bool

	Feedback     string
	FeedbackKind FeedbackKind

	QuestionCount  int
	RoundCorrect   int
	RoundIncorrect int
	RoundTimedOut  int
	TotalCorrect   int
	TotalIncorrect int
	TotalTimedOut  int

	RoundTimeUp bool

	// TimerGen invalidates pending delayed callbacks: a callback
	// scheduled under an older generation must be dropped.
	TimerGen int

	BaselineMs float64 // populated in calibration-results
}

// Initial returns the canonical idle state. Stop must return a value
// deep-equal to this from every reachable phase.
func Initial() State {
	return State{Phase: PhaseIdle}
}

// Start begins a practice session: round counters reset, the session
// start is stamped, and pending timers are invalidated.
func Start(s State, now time.Time) State {
	next := Initial()
	next.Phase = PhaseActive
	next.SessionStartedAt = now
	next.TimerGen = s.TimerGen + 1
	return next
}

// NextQuestion presents a new item: feedback clears, answers re-enable,
// the question count advances, and any pending question timer is
// superseded.
func NextQuestion(s State, itemID string, responseCount, deadlineMs int) State {
	s.CurrentItem = itemID
	s.ResponseCount = responseCount
	s.DeadlineMs = deadlineMs
	s.Answered = false
	s.AnswersEnabled = true
	s.Feedback = ""
	s.FeedbackKind = FeedbackNone
	s.QuestionCount++
	s.TimerGen++
	return s
}

// SubmitAnswer records a graded answer: feedback is set, further
// answers are disabled, and round and session tallies advance.
func SubmitAnswer(s State, correct bool, feedback string) State {
	s.Answered = true
	s.AnswersEnabled = false
	s.Feedback = feedback
	if correct {
		s.FeedbackKind = FeedbackCorrect
		s.RoundCorrect++
		s.TotalCorrect++
	} else {
		s.FeedbackKind = FeedbackWrong
		s.RoundIncorrect++
		s.TotalIncorrect++
	}
	s.TimerGen++
	return s
}

// TimedOut records an expired answer deadline for the open question.
func TimedOut(s State, feedback string) State {
	s.Answered = true
	s.AnswersEnabled = false
	s.Feedback = feedback
	s.FeedbackKind = FeedbackTimeout
	s.RoundTimedOut++
	s.TotalTimedOut++
	s.TimerGen++
	return s
}

// RoundTimerExpired flags the round as out of time. The round does not
// end; the open question still finishes normally.
func RoundTimerExpired(s State) State {
	s.RoundTimeUp = true
	return s
}

// RoundComplete moves to the round boundary, preserving session totals.
func RoundComplete(s State) State {
	s.Phase = PhaseRoundComplete
	s.CurrentItem = ""
	s.ResponseCount = 0
	s.DeadlineMs = 0
	s.Answered = false
	s.AnswersEnabled = false
	s.TimerGen++
	return s
}

// ContinueRound starts the next round: round-local counters reset,
// session totals carry over.
func ContinueRound(s State) State {
	s.Phase = PhaseActive
	s.RoundCorrect = 0
	s.RoundIncorrect = 0
	s.RoundTimedOut = 0
	s.RoundTimeUp = false
	s.Feedback = ""
	s.FeedbackKind = FeedbackNone
	s.TimerGen++
	return s
}

// CalibrationIntro shows the calibration explanation with answers
// disabled.
func CalibrationIntro(s State) State {
	next := Initial()
	next.Phase = PhaseCalibrationIntro
	next.TimerGen = s.TimerGen + 1
	return next
}

// CalibrationStart begins the tap sequence with answers enabled.
func CalibrationStart(s State) State {
	s.Phase = PhaseCalibrating
	s.AnswersEnabled = true
	s.Feedback = ""
	s.FeedbackKind = FeedbackNone
	s.TimerGen++
	return s
}

// CalibrationResults shows the measured baseline with answers disabled.
func CalibrationResults(s State, baselineMs float64) State {
	s.Phase = PhaseCalibrationResults
	s.AnswersEnabled = false
	s.BaselineMs = baselineMs
	s.TimerGen++
	return s
}

// Stop resets to the canonical idle state from any phase. The timer
// generation carries forward so timers pending at stop time stay stale
// even if a new session starts afterwards.
func Stop(s State) State {
	next := Initial()
	next.TimerGen = s.TimerGen + 1
	return next
}
