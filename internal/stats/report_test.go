package stats

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fretdrill/fretdrill/internal/adaptive"
	"github.com/fretdrill/fretdrill/internal/deck"
	"github.com/fretdrill/fretdrill/internal/model"
	"github.com/fretdrill/fretdrill/internal/store"
)

func reportFixture(t *testing.T) (*store.Store, *adaptive.Selector, *deck.Deck, time.Time) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "learner.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if cerr := st.Close(); cerr != nil {
			t.Errorf("close store: %v", cerr)
		}
	})
	sel := adaptive.NewSelector(st, adaptive.DefaultConfig())
	d := deck.New(model.PracticeConfig{Tuning: "standard", MaxFret: 5})
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	// One practiced item, one struggled item, one session row.
	for i := 0; i < 5; i++ {
		if err := sel.RecordResponse("note:s0:f3", 800, true, now.Add(time.Duration(i-5)*time.Minute)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := sel.RecordResponse("note:s0:f1", 6000, false, now.Add(-time.Minute)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := st.InsertSession(context.Background(), model.SessionStats{
		StartedAt:  now.Add(-10 * time.Minute),
		EndedAt:    now.Add(-5 * time.Minute),
		Tuning:     "standard",
		Questions:  6,
		Correct:    5,
		Incorrect:  1,
		DurationMs: 300000,
	}); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return st, sel, d, now
}

func TestBuildReport(t *testing.T) {
	st, sel, d, now := reportFixture(t)
	r, err := BuildReport(context.Background(), st, sel, d, model.StatsConfig{}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(r.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(r.Sessions))
	}
	if len(r.Groups) != 6 {
		t.Errorf("groups = %d, want 6", len(r.Groups))
	}
	if r.Labels[0] != "6th (E)" {
		t.Errorf("label = %q, want %q", r.Labels[0], "6th (E)")
	}
	if len(r.Items) != 2 {
		t.Fatalf("items = %d, want 2 (unseen items are excluded)", len(r.Items))
	}
	// Weakest first: the struggled item has never been correct, so its
	// automaticity is unknown and it sorts ahead of the practiced item.
	if r.Items[0].ID != "note:s0:f1" {
		t.Errorf("weakest item = %s, want note:s0:f1", r.Items[0].ID)
	}
	if r.Items[1].Automaticity == nil {
		t.Error("practiced item should have automaticity")
	}
}

func TestBuildReportLastLimit(t *testing.T) {
	st, sel, d, now := reportFixture(t)
	for i := 0; i < 4; i++ {
		if _, err := st.InsertSession(context.Background(), model.SessionStats{
			StartedAt:  now.Add(time.Duration(i) * time.Hour),
			EndedAt:    now.Add(time.Duration(i)*time.Hour + time.Minute),
			Tuning:     "standard",
			Questions:  10,
			Correct:    10,
			DurationMs: 60000,
		}); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
	r, err := BuildReport(context.Background(), st, sel, d, model.StatsConfig{Last: 2}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(r.Sessions) != 2 {
		t.Errorf("sessions = %d, want 2 (most recent kept)", len(r.Sessions))
	}
}

func TestRenderSummary(t *testing.T) {
	var b strings.Builder
	sessions := []model.SessionAggregate{
		{Questions: 20, Correct: 15, Incorrect: 3, TimedOut: 2, DurationMs: 120000},
	}
	if err := RenderSummary(&b, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "Sessions: 1") {
		t.Errorf("missing session count:\n%s", out)
	}
	if !strings.Contains(out, "75.0%") {
		t.Errorf("missing accuracy:\n%s", out)
	}

	b.Reset()
	if err := RenderSummary(&b, nil); err != nil {
		t.Fatalf("render empty summary: %v", err)
	}
	if !strings.Contains(b.String(), "No sessions found.") {
		t.Errorf("empty summary = %q", b.String())
	}
}

func TestRenderGroupTable(t *testing.T) {
	var b strings.Builder
	groups := []model.GroupAggregate{
		{Index: 0, MasteredCount: 3, DueCount: 2, UnseenCount: 1, TotalCount: 6},
	}
	labels := map[int]string{0: "6th (E)"}
	if err := RenderGroupTable(&b, groups, labels); err != nil {
		t.Fatalf("render group table: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "6th (E)") {
		t.Errorf("missing label:\n%s", out)
	}
	if !strings.Contains(out, "Mastered") {
		t.Errorf("missing header:\n%s", out)
	}
}

func TestRenderItemTableTopLimit(t *testing.T) {
	var b strings.Builder
	items := []ItemRow{
		{Prompt: "first", SampleCount: 1},
		{Prompt: "second", SampleCount: 2},
		{Prompt: "third", SampleCount: 3},
	}
	if err := RenderItemTable(&b, items, 2); err != nil {
		t.Fatalf("render item table: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("missing rows:\n%s", out)
	}
	if strings.Contains(out, "third") {
		t.Errorf("top limit ignored:\n%s", out)
	}
	// Unknown scores render as a dash, not a zero.
	if !strings.Contains(out, "-") {
		t.Errorf("missing dash for unknown scores:\n%s", out)
	}
}

func TestRenderAccuracyCurveEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderAccuracyCurve(&b, nil, 3, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("empty sessions should render nothing, got %q", b.String())
	}
}
