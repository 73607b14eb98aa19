package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fretdrill/fretdrill/internal/adaptive"
	"github.com/fretdrill/fretdrill/internal/deck"
	"github.com/fretdrill/fretdrill/internal/model"
	"github.com/fretdrill/fretdrill/internal/store"
)

// ItemRow is one item's learning state for reporting.
type ItemRow struct {
	ID           string
	Prompt       string
	SampleCount  int
	EWMA         float64
	Recall       *float64
	Automaticity *float64
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Groups   []model.GroupAggregate
	Labels   map[int]string
	Items    []ItemRow
}

// BuildReport loads and prepares data for stats rendering. Items are
// sorted weakest first so the report surfaces what needs practice.
func BuildReport(ctx context.Context, st *store.Store, sel *adaptive.Selector, d *deck.Deck, cfg model.StatsConfig, now time.Time) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	indices := d.GroupIndices()
	groups, err := sel.StringRecommendations(indices, d.ItemIDsForGroup, now)
	if err != nil {
		return Report{}, err
	}
	labels := make(map[int]string, len(indices))
	for _, idx := range indices {
		labels[idx] = d.GroupLabel(idx)
	}

	var items []ItemRow
	for _, idx := range indices {
		for _, id := range d.ItemIDsForGroup(idx) {
			stats, err := sel.Stats(id)
			if err != nil {
				return Report{}, err
			}
			if stats == nil {
				continue
			}
			recall, err := sel.Recall(id, now)
			if err != nil {
				return Report{}, err
			}
			auto, err := sel.Automaticity(id, now)
			if err != nil {
				return Report{}, err
			}
			prompt := id
			if it, ok := d.Item(id); ok {
				prompt = it.Prompt
			}
			items = append(items, ItemRow{
				ID:           id,
				Prompt:       prompt,
				SampleCount:  stats.SampleCount,
				EWMA:         stats.EWMA,
				Recall:       recall,
				Automaticity: auto,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return scoreOrNeg(items[i].Automaticity) < scoreOrNeg(items[j].Automaticity)
	})

	return Report{Sessions: sessions, Groups: groups, Labels: labels, Items: items}, nil
}

func scoreOrNeg(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

// RenderSummary prints a summary for the loaded sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalPace float64
	bestAcc := 0.0
	for _, s := range sessions {
		acc, pace := SessionMetrics(s.Correct, s.Incorrect, s.TimedOut, s.DurationMs)
		totalAcc += acc
		totalPace += pace
		if acc > bestAcc {
			bestAcc = acc
		}
	}
	count := float64(len(sessions))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(sessions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.1f%%\n", (totalAcc/count)*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best Accuracy: %.1f%%\n", bestAcc*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Pace: %.1f questions/min\n", totalPace/count); err != nil {
		return err
	}
	if len(sessions) > 1 {
		accs := make([]float64, len(sessions))
		for i, s := range sessions {
			accs[i], _ = SessionMetrics(s.Correct, s.Incorrect, s.TimedOut, s.DurationMs)
		}
		if _, err := fmt.Fprintf(w, "Trend: %s\n", Sparkline(accs)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderGroupTable prints per-string mastery aggregates.
func RenderGroupTable(w io.Writer, groups []model.GroupAggregate, labels map[int]string) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No string stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-String"); err != nil {
		return err
	}
	headers := []string{"String", "Mastered", "Due", "Unseen", "Total"}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		label := labels[g.Index]
		if label == "" {
			label = fmt.Sprintf("%d", g.Index)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%d", g.MasteredCount),
			fmt.Sprintf("%d", g.DueCount),
			fmt.Sprintf("%d", g.UnseenCount),
			fmt.Sprintf("%d", g.TotalCount),
		})
	}
	for _, line := range alignTable(headers, rows, 1, 2, 3, 4) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderItemTable prints the weakest items, limited to top rows.
func RenderItemTable(w io.Writer, items []ItemRow, top int) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No item stats found.")
		return err
	}
	if top > 0 && len(items) > top {
		items = items[:top]
	}
	if _, err := fmt.Fprintln(w, "Weakest Items"); err != nil {
		return err
	}
	headers := []string{"Item", "Automaticity", "Recall", "Avg (ms)", "Samples"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Prompt,
			formatScore(it.Automaticity),
			formatScore(it.Recall),
			fmt.Sprintf("%.0f", it.EWMA),
			fmt.Sprintf("%d", it.SampleCount),
		})
	}
	for _, line := range alignTable(headers, rows, 1, 2, 3, 4) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAccuracyCurve plots session accuracy over time with a moving
// average window.
func RenderAccuracyCurve(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s.Correct, s.Incorrect, s.TimedOut, s.DurationMs)
		accs[i] = acc * 100
	}
	accs = MovingAverage(accs, window)
	return PlotSeries(w, "Learning Curve", Series{Name: "Accuracy %", Values: accs}, width, 0)
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
