package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/fretdrill/fretdrill/internal/calibrate"
	"github.com/fretdrill/fretdrill/internal/deck"
	"github.com/fretdrill/fretdrill/internal/engine"
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.state.Phase {
	case engine.PhaseActive:
		content = m.viewQuestion()
	case engine.PhaseRoundComplete:
		content = m.viewRoundComplete()
	case engine.PhaseCalibrationIntro:
		content = m.viewCalibrationIntro()
	case engine.PhaseCalibrating:
		content = m.viewCalibrating()
	case engine.PhaseCalibrationResults:
		content = m.viewCalibrationResults()
	default:
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewQuestion() string {
	item, ok := m.deck.Item(m.state.CurrentItem)
	if !ok {
		return ""
	}
	lines := []string{promptStyle.Render(item.Prompt)}
	if item.ResponseCount() > 1 {
		lines = append(lines, pendingStyle.Render(fmt.Sprintf("response %d of %d", m.responseIdx+1, item.ResponseCount())))
	}
	if m.pendingNote != "" {
		lines = append(lines, pendingStyle.Render(m.pendingNote+"…"))
	}
	if m.pendingFlat {
		lines = append(lines, pendingStyle.Render("b…"))
	}
	if item.Kind == deck.KindInterval && !m.state.Answered {
		lines = append(lines, pendingStyle.Render("digit: major/perfect · b+digit: minor · t: tritone"))
	}
	if m.state.Answered {
		lines = append(lines, m.feedbackLine(), pendingStyle.Render("space: next · esc: stop"))
	}
	return strings.Join(lines, "\n\n")
}

func (m *Model) feedbackLine() string {
	switch m.state.FeedbackKind {
	case engine.FeedbackCorrect:
		return correctStyle.Render(m.state.Feedback)
	case engine.FeedbackWrong:
		return wrongStyle.Render(m.state.Feedback)
	case engine.FeedbackTimeout:
		return timeoutStyle.Render(m.state.Feedback)
	default:
		return m.state.Feedback
	}
}

func (m *Model) viewRoundComplete() string {
	total := m.state.RoundCorrect + m.state.RoundIncorrect + m.state.RoundTimedOut
	lines := []string{
		headlineStyle.Render("Round complete"),
		fmt.Sprintf("%d questions · %d correct · %d wrong · %d timed out",
			total, m.state.RoundCorrect, m.state.RoundIncorrect, m.state.RoundTimedOut),
	}
	if len(m.rec.Recommended) > 0 {
		var names []string
		for _, idx := range m.deck.GroupIndices() {
			if _, ok := m.rec.Recommended[idx]; ok {
				names = append(names, m.deck.GroupLabel(idx))
			}
		}
		lines = append(lines, pendingStyle.Render("focus next: "+strings.Join(names, ", ")))
	}
	lines = append(lines, pendingStyle.Render("space: continue · esc: stop"))
	return strings.Join(lines, "\n\n")
}

func (m *Model) viewCalibrationIntro() string {
	return strings.Join([]string{
		headlineStyle.Render("Calibration"),
		fmt.Sprintf("Tap the highlighted key as fast as you can, %d times.", calibrate.TrialCount),
		"Your median tap speed becomes the baseline every time limit is scaled against.",
		pendingStyle.Render("space: begin · esc: cancel"),
	}, "\n\n")
}

func (m *Model) viewCalibrating() string {
	target := m.runner.Target()
	controls := make([]string, calibrationControls)
	for i := range controls {
		label := fmt.Sprintf("%d", i+1)
		if i == target {
			controls[i] = targetStyle.Render(label)
		} else {
			controls[i] = controlStyle.Render(label)
		}
	}
	return strings.Join([]string{
		headlineStyle.Render(fmt.Sprintf("Tap %d of %d", m.runner.Trial()+1, calibrate.TrialCount)),
		strings.Join(controls, " "),
	}, "\n\n")
}

func (m *Model) viewCalibrationResults() string {
	return strings.Join([]string{
		headlineStyle.Render("Calibration complete"),
		fmt.Sprintf("Motor baseline: %.0f ms", m.state.BaselineMs),
		"Time limits are now scaled to your speed.",
		pendingStyle.Render("space: done"),
	}, "\n\n")
}

func (m *Model) renderFooter() string {
	if m.state.Phase != engine.PhaseActive {
		return ""
	}
	segments := []string{
		fmt.Sprintf("Q%d", m.state.QuestionCount),
		fmt.Sprintf("%d✓ %d✗ %d⏱", m.state.RoundCorrect, m.state.RoundIncorrect, m.state.RoundTimedOut),
		fmt.Sprintf("limit %.1fs", float64(m.state.DeadlineMs)/1000),
	}
	if m.state.RoundTimeUp {
		segments = append(segments, "round over after this question")
	}
	footer := strings.Join(segments, "  ")
	if m.width > 0 {
		footer = truncateToWidth(footer, m.width)
	}
	return footerStyle.Render(footer)
}

// truncateToWidth trims a line to the given display width, accounting
// for wide runes.
func truncateToWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "…"
}
