// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fretdrill/fretdrill/internal/adaptive"
	"github.com/fretdrill/fretdrill/internal/calibrate"
	"github.com/fretdrill/fretdrill/internal/deadline"
	"github.com/fretdrill/fretdrill/internal/deck"
	"github.com/fretdrill/fretdrill/internal/engine"
	"github.com/fretdrill/fretdrill/internal/model"
	"github.com/fretdrill/fretdrill/internal/recommend"
	"github.com/fretdrill/fretdrill/internal/store"
)

// accidentalWindow is how long a bare note letter waits for a '#' or
// 'b' follow-up before committing as a natural.
const accidentalWindow = 350 * time.Millisecond

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CCB6E"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	timeoutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#111111")).Background(lipgloss.Color("#C89A3A")).Padding(0, 1)
	controlStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1)
	headlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// calibrationControls is the number of forced-choice tap targets.
const calibrationControls = 4

type deadlineMsg struct{ gen int }
type roundTimerMsg struct{ gen int }
type accidentalMsg struct{ gen int }

// Model implements the Bubble Tea practice UI.
type Model struct {
	cfg      model.PracticeConfig
	store    *store.Store
	selector *adaptive.Selector
	tracker  *deadline.Tracker
	runner   *calibrate.Runner
	deck     *deck.Deck

	state   engine.State
	enabled map[int]struct{}
	rec     model.RecommendationResult

	questionStartedAt time.Time
	trialStartedAt    time.Time
	responseIdx       int
	gotWrong          bool

	// roundGen invalidates round timers from earlier rounds; the
	// per-question TimerGen moves too fast to cover a whole round.
	roundGen int

	// saved holds the tallies already written to the sessions table so
	// each round boundary records only its own delta.
	saved savedTallies

	pendingNote string
	pendingGen  int
	pendingFlat bool

	calibrateOnly bool

	width  int
	height int
}

// NewModel constructs a practice TUI model. With calibrateOnly set the
// session opens on the calibration intro instead of questions.
func NewModel(cfg model.PracticeConfig, st *store.Store, sel *adaptive.Selector, tr *deadline.Tracker, d *deck.Deck, calibrateOnly bool) *Model {
	m := &Model{
		cfg:           cfg,
		store:         st,
		selector:      sel,
		tracker:       tr,
		runner:        calibrate.NewRunner(),
		deck:          d,
		state:         engine.Initial(),
		enabled:       map[int]struct{}{},
		calibrateOnly: calibrateOnly,
	}
	for _, idx := range cfg.Strings {
		m.enabled[idx] = struct{}{}
	}
	if len(m.enabled) == 0 {
		m.applyRecommendations()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.calibrateOnly {
		m.state = engine.CalibrationIntro(m.state)
		return nil
	}
	m.state = engine.Start(m.state, time.Now())
	m.saved = savedTallies{}
	cmds := []tea.Cmd{m.nextQuestion()}
	if m.cfg.RoundSeconds > 0 {
		cmds = append(cmds, m.roundTimer())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case deadlineMsg:
		// Stale deadlines are no-ops: generation or phase mismatch.
		if msg.gen != m.state.TimerGen || m.state.Phase != engine.PhaseActive || m.state.Answered {
			return m, nil
		}
		return m, m.handleTimeout()
	case roundTimerMsg:
		if msg.gen != m.roundGen || m.state.Phase != engine.PhaseActive {
			return m, nil
		}
		m.state = engine.RoundTimerExpired(m.state)
		return m, nil
	case accidentalMsg:
		if msg.gen != m.pendingGen || m.pendingNote == "" {
			return m, nil
		}
		note := m.pendingNote
		m.pendingNote = ""
		return m, m.submitResponse(note)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	key := normalizeKey(msg)
	switch engine.RouteKey(m.state, key) {
	case engine.ActionStop:
		return m, m.stop()
	case engine.ActionNext:
		return m, m.advance()
	case engine.ActionContinue:
		return m, m.continueFromBoundary()
	case engine.ActionDelegate:
		if m.state.Phase == engine.PhaseCalibrating {
			return m, m.handleCalibrationTap(key)
		}
		return m, m.handleAnswerKey(key)
	default:
		return m, nil
	}
}

// handleAnswerKey feeds a raw key into the note input buffer. A note
// letter opens a short accidental window; '#' or 'b' completes it, a
// new letter commits the pending natural first, and the window expiring
// commits it as typed.
func (m *Model) handleAnswerKey(key string) tea.Cmd {
	if !m.state.AnswersEnabled {
		return nil
	}
	if item, ok := m.deck.Item(m.state.CurrentItem); ok && item.Kind == deck.KindInterval {
		return m.handleIntervalKey(key)
	}
	var cmds []tea.Cmd
	switch {
	case (key == "#" || key == "b") && m.pendingNote != "":
		// 'b' doubles as note B and the flat marker; with a note
		// buffered it resolves to the flat.
		note := m.pendingNote
		m.pendingNote = ""
		m.pendingGen++
		if key == "#" {
			note += "#"
		} else {
			note += "b"
		}
		return m.submitResponse(note)
	case isNoteLetter(key):
		if m.pendingNote != "" {
			note := m.pendingNote
			m.pendingNote = ""
			cmds = append(cmds, m.submitResponse(note))
		}
		m.pendingNote = strings.ToUpper(key)
		m.pendingGen++
		gen := m.pendingGen
		cmds = append(cmds, tea.Tick(accidentalWindow, func(time.Time) tea.Msg {
			return accidentalMsg{gen: gen}
		}))
		return tea.Batch(cmds...)
	default:
		return nil
	}
}

// handleIntervalKey reads interval answers as a degree digit: a bare
// digit is the major or perfect interval, a 'b' prefix flattens it
// ('b3' is the minor third, 'b5' the tritone), 't' is the tritone
// directly.
func (m *Model) handleIntervalKey(key string) tea.Cmd {
	switch {
	case key == "b":
		m.pendingFlat = true
		return nil
	case key == "t":
		m.pendingFlat = false
		return m.submitResponse("TT")
	case len(key) == 1 && key[0] >= '1' && key[0] <= '8':
		name, ok := intervalName(m.pendingFlat, key[0])
		m.pendingFlat = false
		if !ok {
			return nil
		}
		return m.submitResponse(name)
	default:
		return nil
	}
}

func intervalName(flat bool, degree byte) (string, bool) {
	var name string
	if flat {
		name = map[byte]string{'2': "m2", '3': "m3", '5': "TT", '6': "m6", '7': "m7"}[degree]
	} else {
		name = map[byte]string{'1': "P1", '2': "M2", '3': "M3", '4': "P4", '5': "P5", '6': "M6", '7': "M7", '8': "P8"}[degree]
	}
	return name, name != ""
}

// submitResponse grades one physical response for the open question.
// Multi-response items keep collecting until all responses are in or
// one is wrong.
func (m *Model) submitResponse(response string) tea.Cmd {
	item, ok := m.deck.Item(m.state.CurrentItem)
	if !ok || m.state.Answered {
		return nil
	}
	if !deck.CheckResponse(item, m.responseIdx, response) {
		m.gotWrong = true
	}
	m.responseIdx++
	if m.responseIdx < item.ResponseCount() && !m.gotWrong {
		return nil
	}
	correct := !m.gotWrong
	rt := float64(time.Since(m.questionStartedAt).Milliseconds())
	now := time.Now()
	if err := m.selector.RecordResponse(item.ID, rt, correct, now); err != nil {
		logErrf("failed to record response: %v\n", err)
	}
	if _, err := m.tracker.RecordOutcome(item.ID, correct, item.ResponseCount(), rt); err != nil {
		logErrf("failed to adjust deadline: %v\n", err)
	}
	m.state = engine.SubmitAnswer(m.state, correct, m.feedbackFor(item, correct, response))
	return nil
}

func (m *Model) feedbackFor(item deck.Item, correct bool, response string) string {
	if correct {
		return "Correct"
	}
	shown := deck.NormalizeNote(response)
	if item.Kind == deck.KindInterval {
		shown = response
	}
	return fmt.Sprintf("%s · answer: %s", shown, strings.Join(item.Answers, " "))
}

func (m *Model) handleTimeout() tea.Cmd {
	item, ok := m.deck.Item(m.state.CurrentItem)
	if !ok {
		return nil
	}
	now := time.Now()
	if err := m.selector.RecordResponse(item.ID, float64(m.state.DeadlineMs), false, now); err != nil {
		logErrf("failed to record timeout: %v\n", err)
	}
	if _, err := m.tracker.RecordOutcome(item.ID, false, item.ResponseCount(), 0); err != nil {
		logErrf("failed to adjust deadline: %v\n", err)
	}
	m.pendingNote = ""
	m.pendingFlat = false
	m.state = engine.TimedOut(m.state, fmt.Sprintf("Time's up · answer: %s", strings.Join(item.Answers, " ")))
	return nil
}

// advance moves past an answered question, ending the round when the
// round timer has expired.
func (m *Model) advance() tea.Cmd {
	if m.state.RoundTimeUp {
		m.saveSession()
		m.state = engine.RoundComplete(m.state)
		m.applyRecommendations()
		return nil
	}
	return m.nextQuestion()
}

func (m *Model) continueFromBoundary() tea.Cmd {
	switch m.state.Phase {
	case engine.PhaseRoundComplete:
		m.state = engine.ContinueRound(m.state)
		cmds := []tea.Cmd{m.nextQuestion()}
		if m.cfg.RoundSeconds > 0 {
			cmds = append(cmds, m.roundTimer())
		}
		return tea.Batch(cmds...)
	case engine.PhaseCalibrationIntro:
		m.state = engine.CalibrationStart(m.state)
		m.runner.Start(calibrationControls)
		m.trialStartedAt = time.Now()
		return nil
	case engine.PhaseCalibrationResults:
		return tea.Quit
	default:
		return nil
	}
}

func (m *Model) handleCalibrationTap(key string) tea.Cmd {
	target := m.runner.Target()
	if target < 0 {
		return nil
	}
	// Only the highlighted control counts; a wrong tap is re-aimed, not
	// recorded, so fumbles cannot poison the baseline.
	if key != fmt.Sprintf("%d", target+1) {
		return nil
	}
	latency := float64(time.Since(m.trialStartedAt).Milliseconds())
	done := m.runner.RecordTap(latency)
	m.trialStartedAt = time.Now()
	if !done {
		return nil
	}
	baseline, ok := m.runner.Baseline()
	if !ok {
		return nil
	}
	if err := m.store.SaveBaseline(baseline); err != nil {
		logErrf("failed to save baseline: %v\n", err)
	}
	rescaled := adaptive.RescaleConfig(m.selector.Config(), baseline)
	m.selector.UpdateConfig(rescaled)
	m.tracker.UpdateConfig(rescaled)
	m.state = engine.CalibrationResults(m.state, baseline)
	return nil
}

func (m *Model) nextQuestion() tea.Cmd {
	candidates := m.deck.Candidates(m.enabled)
	if len(candidates) == 0 {
		candidates = m.deck.Candidates(nil)
	}
	now := time.Now()
	id, err := m.selector.SelectNext(candidates, now)
	if err != nil {
		logErrf("failed to select item: %v\n", err)
		return tea.Quit
	}
	item, _ := m.deck.Item(id)
	stats, err := m.selector.Stats(id)
	if err != nil {
		logErrf("failed to load stats: %v\n", err)
	}
	var ewma *float64
	if stats != nil && stats.SampleCount > 0 {
		ewma = &stats.EWMA
	}
	deadlineMs, err := m.tracker.GetDeadline(id, ewma, item.ResponseCount())
	if err != nil {
		logErrf("failed to load deadline: %v\n", err)
		deadlineMs = int(m.selector.Config().MaxResponseTime)
	}
	m.state = engine.NextQuestion(m.state, id, item.ResponseCount(), deadlineMs)
	m.questionStartedAt = now
	m.responseIdx = 0
	m.gotWrong = false
	m.pendingNote = ""
	m.pendingFlat = false
	gen := m.state.TimerGen
	return tea.Tick(time.Duration(deadlineMs)*time.Millisecond, func(time.Time) tea.Msg {
		return deadlineMsg{gen: gen}
	})
}

func (m *Model) roundTimer() tea.Cmd {
	m.roundGen++
	gen := m.roundGen
	return tea.Tick(time.Duration(m.cfg.RoundSeconds)*time.Second, func(time.Time) tea.Msg {
		return roundTimerMsg{gen: gen}
	})
}

func (m *Model) stop() tea.Cmd {
	if m.state.Phase == engine.PhaseCalibrating {
		m.runner.Abandon()
	}
	if m.state.Phase == engine.PhaseActive || m.state.Phase == engine.PhaseRoundComplete {
		m.saveSession()
	}
	m.state = engine.Stop(m.state)
	return tea.Quit
}

// savedTallies is the last snapshot written to the sessions table.
type savedTallies struct {
	questions int
	correct   int
	incorrect int
	timedOut  int
	at        time.Time
}

// saveSession records the questions answered since the last save as one
// session row. Session tallies are cumulative across rounds, so each
// row carries the delta from the previous snapshot; a boundary with no
// new questions writes nothing.
func (m *Model) saveSession() {
	questions := m.state.QuestionCount - m.saved.questions
	if questions <= 0 {
		return
	}
	now := time.Now()
	startedAt := m.saved.at
	if startedAt.IsZero() {
		startedAt = m.state.SessionStartedAt
	}
	stats := model.SessionStats{
		StartedAt:  startedAt,
		EndedAt:    now,
		Tuning:     m.cfg.Tuning,
		Questions:  questions,
		Correct:    m.state.TotalCorrect - m.saved.correct,
		Incorrect:  m.state.TotalIncorrect - m.saved.incorrect,
		TimedOut:   m.state.TotalTimedOut - m.saved.timedOut,
		DurationMs: now.Sub(startedAt).Milliseconds(),
	}
	if _, err := m.store.InsertSession(context.Background(), stats); err != nil {
		logErrf("failed to save session: %v\n", err)
		return
	}
	m.saved = savedTallies{
		questions: m.state.QuestionCount,
		correct:   m.state.TotalCorrect,
		incorrect: m.state.TotalIncorrect,
		timedOut:  m.state.TotalTimedOut,
		at:        now,
	}
}

// applyRecommendations refreshes the recommended/enabled string sets
// from the learner state.
func (m *Model) applyRecommendations() {
	indices := m.deck.GroupIndices()
	aggs, err := m.selector.StringRecommendations(indices, m.deck.ItemIDsForGroup, time.Now())
	if err != nil {
		logErrf("failed to aggregate strings: %v\n", err)
		return
	}
	opts := &recommend.Options{AdvisoryOnly: !m.cfg.AutoRecommend && len(m.enabled) > 0}
	m.rec = recommend.Compute(aggs, m.selector.Config(), opts)
	if len(m.rec.Enabled) > 0 {
		m.enabled = m.rec.Enabled
	}
}

func normalizeKey(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyEscape:
		return engine.KeyEscape
	case tea.KeySpace:
		return engine.KeySpace
	case tea.KeyEnter:
		return engine.KeyEnter
	case tea.KeyRunes:
		return strings.ToLower(string(msg.Runes))
	default:
		return msg.String()
	}
}

func isNoteLetter(key string) bool {
	if len(key) != 1 {
		return false
	}
	c := key[0]
	return c >= 'a' && c <= 'g'
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
