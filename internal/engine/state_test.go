package engine

import (
	"reflect"
	"testing"
	"time"
)

var sessionStart = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestStartResetsAndBumpsTimerGen(t *testing.T) {
	prev := Initial()
	prev.TimerGen = 7
	prev.TotalCorrect = 42

	s := Start(prev, sessionStart)
	if s.Phase != PhaseActive {
		t.Errorf("phase = %v, want active", s.Phase)
	}
	if s.TimerGen != 8 {
		t.Errorf("TimerGen = %d, want 8 (pending timers must go stale)", s.TimerGen)
	}
	if s.TotalCorrect != 0 {
		t.Errorf("TotalCorrect = %d, want 0", s.TotalCorrect)
	}
	if !s.SessionStartedAt.Equal(sessionStart) {
		t.Errorf("SessionStartedAt = %v, want %v", s.SessionStartedAt, sessionStart)
	}
}

func TestNextQuestionOpensQuestion(t *testing.T) {
	s := Start(Initial(), sessionStart)
	gen := s.TimerGen
	s = NextQuestion(s, "note:s0:f3", 1, 4000)
	if s.CurrentItem != "note:s0:f3" || s.ResponseCount != 1 || s.DeadlineMs != 4000 {
		t.Errorf("question fields not set: %+v", s)
	}
	if s.Answered || !s.AnswersEnabled {
		t.Errorf("question should be open: answered=%v enabled=%v", s.Answered, s.AnswersEnabled)
	}
	if s.QuestionCount != 1 {
		t.Errorf("QuestionCount = %d, want 1", s.QuestionCount)
	}
	if s.TimerGen != gen+1 {
		t.Errorf("TimerGen = %d, want %d", s.TimerGen, gen+1)
	}
}

func TestSubmitAnswerTallies(t *testing.T) {
	s := NextQuestion(Start(Initial(), sessionStart), "x", 1, 4000)
	s = SubmitAnswer(s, true, "C")
	if s.RoundCorrect != 1 || s.TotalCorrect != 1 {
		t.Errorf("correct tallies = %d/%d, want 1/1", s.RoundCorrect, s.TotalCorrect)
	}
	if s.FeedbackKind != FeedbackCorrect {
		t.Errorf("feedback kind = %v, want correct", s.FeedbackKind)
	}
	if !s.Answered || s.AnswersEnabled {
		t.Error("answers should be locked after submit")
	}

	s = NextQuestion(s, "y", 1, 4000)
	s = SubmitAnswer(s, false, "D, not C")
	if s.RoundIncorrect != 1 || s.TotalIncorrect != 1 {
		t.Errorf("incorrect tallies = %d/%d, want 1/1", s.RoundIncorrect, s.TotalIncorrect)
	}
	if s.FeedbackKind != FeedbackWrong {
		t.Errorf("feedback kind = %v, want wrong", s.FeedbackKind)
	}
}

func TestTimedOutTallies(t *testing.T) {
	s := NextQuestion(Start(Initial(), sessionStart), "x", 1, 4000)
	s = TimedOut(s, "too slow")
	if s.RoundTimedOut != 1 || s.TotalTimedOut != 1 {
		t.Errorf("timeout tallies = %d/%d, want 1/1", s.RoundTimedOut, s.TotalTimedOut)
	}
	if s.FeedbackKind != FeedbackTimeout {
		t.Errorf("feedback kind = %v, want timeout", s.FeedbackKind)
	}
	if !s.Answered {
		t.Error("a timed-out question counts as answered")
	}
}

func TestRoundTimerExpiredDoesNotEndRound(t *testing.T) {
	s := NextQuestion(Start(Initial(), sessionStart), "x", 1, 4000)
	s = RoundTimerExpired(s)
	if s.Phase != PhaseActive {
		t.Errorf("phase = %v, want active (open question finishes)", s.Phase)
	}
	if !s.RoundTimeUp {
		t.Error("RoundTimeUp should be set")
	}
	if !s.AnswersEnabled {
		t.Error("the open question is still answerable")
	}
}

func TestContinueRoundResetsRoundCountersOnly(t *testing.T) {
	s := NextQuestion(Start(Initial(), sessionStart), "x", 1, 4000)
	s = SubmitAnswer(s, true, "C")
	s = RoundTimerExpired(s)
	s = RoundComplete(s)
	if s.Phase != PhaseRoundComplete {
		t.Fatalf("phase = %v, want round-complete", s.Phase)
	}
	if s.CurrentItem != "" || s.AnswersEnabled {
		t.Errorf("boundary screen has no open question: %+v", s)
	}

	s = ContinueRound(s)
	if s.Phase != PhaseActive {
		t.Errorf("phase = %v, want active", s.Phase)
	}
	if s.RoundCorrect != 0 || s.RoundIncorrect != 0 || s.RoundTimedOut != 0 {
		t.Errorf("round counters not reset: %+v", s)
	}
	if s.RoundTimeUp {
		t.Error("RoundTimeUp should clear for the new round")
	}
	if s.TotalCorrect != 1 {
		t.Errorf("TotalCorrect = %d, want 1 (session totals carry over)", s.TotalCorrect)
	}
}

func TestCalibrationFlow(t *testing.T) {
	s := CalibrationIntro(Initial())
	if s.Phase != PhaseCalibrationIntro || s.AnswersEnabled {
		t.Errorf("intro: %+v", s)
	}
	s = CalibrationStart(s)
	if s.Phase != PhaseCalibrating || !s.AnswersEnabled {
		t.Errorf("calibrating: %+v", s)
	}
	s = CalibrationResults(s, 312.5)
	if s.Phase != PhaseCalibrationResults || s.AnswersEnabled {
		t.Errorf("results: %+v", s)
	}
	if s.BaselineMs != 312.5 {
		t.Errorf("BaselineMs = %v, want 312.5", s.BaselineMs)
	}
}

func TestStopReturnsInitialFromEveryPhase(t *testing.T) {
	active := NextQuestion(Start(Initial(), sessionStart), "x", 1, 4000)
	states := map[string]State{
		"idle":                Initial(),
		"active":              active,
		"answered":            SubmitAnswer(active, false, "D"),
		"round-complete":      RoundComplete(RoundTimerExpired(active)),
		"calibration-intro":   CalibrationIntro(Initial()),
		"calibrating":         CalibrationStart(CalibrationIntro(Initial())),
		"calibration-results": CalibrationResults(CalibrationStart(CalibrationIntro(Initial())), 300),
	}
	for name, s := range states {
		got := Stop(s)
		if got.TimerGen != s.TimerGen+1 {
			t.Errorf("Stop from %s: TimerGen = %d, want %d", name, got.TimerGen, s.TimerGen+1)
		}
		want := Initial()
		want.TimerGen = got.TimerGen
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Stop from %s = %+v, want %+v", name, got, want)
		}
	}
}

func TestRouteKey(t *testing.T) {
	open := NextQuestion(Start(Initial(), sessionStart), "x", 1, 4000)
	answered := SubmitAnswer(open, true, "C")
	boundary := RoundComplete(answered)
	intro := CalibrationIntro(Initial())
	calibrating := CalibrationStart(intro)
	results := CalibrationResults(calibrating, 300)

	tests := []struct {
		name  string
		state State
		key   string
		want  Action
	}{
		{"esc idle", Initial(), KeyEscape, ActionIgnore},
		{"esc active", open, KeyEscape, ActionStop},
		{"esc calibrating", calibrating, KeyEscape, ActionStop},
		{"answer key open", open, "c", ActionDelegate},
		{"space open", open, KeySpace, ActionIgnore},
		{"space answered", answered, KeySpace, ActionNext},
		{"enter answered", answered, KeyEnter, ActionNext},
		{"answer key answered", answered, "c", ActionIgnore},
		{"space boundary", boundary, KeySpace, ActionContinue},
		{"letter boundary", boundary, "c", ActionIgnore},
		{"enter intro", intro, KeyEnter, ActionContinue},
		{"tap calibrating", calibrating, "1", ActionDelegate},
		{"space calibrating", calibrating, KeySpace, ActionIgnore},
		{"space results", results, KeySpace, ActionContinue},
		{"letter idle", Initial(), "c", ActionIgnore},
	}
	for _, tt := range tests {
		if got := RouteKey(tt.state, tt.key); got != tt.want {
			t.Errorf("%s: RouteKey = %v, want %v", tt.name, got, tt.want)
		}
	}
}
