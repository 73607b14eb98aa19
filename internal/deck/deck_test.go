package deck

import (
	"testing"

	"github.com/fretdrill/fretdrill/internal/model"
)

func TestNewNotesOnly(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12})
	// 6 strings, frets 0..12.
	want := 6 * 13
	if got := len(d.Candidates(nil)); got != want {
		t.Errorf("item count = %d, want %d", got, want)
	}
	for _, idx := range d.GroupIndices() {
		if got := len(d.ItemIDsForGroup(idx)); got != 13 {
			t.Errorf("group %d: %d items, want 13", idx, got)
		}
	}
}

func TestNewWithIntervalsAndTriads(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12, Intervals: true, Triads: true})
	// Per string: 13 note items, 12 interval items (fret 0 excluded),
	// 4 triad items at frets 0, 4, 8, 12.
	want := 6 * (13 + 12 + 4)
	if got := len(d.Candidates(nil)); got != want {
		t.Errorf("item count = %d, want %d", got, want)
	}
}

func TestNoteAnswers(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12})
	tests := []struct {
		id   string
		note string
	}{
		{"note:s0:f0", "E"},  // open low E
		{"note:s0:f3", "G"},
		{"note:s1:f0", "A"},  // open A
		{"note:s4:f1", "C"},  // B string, first fret
		{"note:s5:f12", "E"}, // high E octave
	}
	for _, tt := range tests {
		it, ok := d.Item(tt.id)
		if !ok {
			t.Errorf("%s: item missing", tt.id)
			continue
		}
		if len(it.Answers) != 1 || it.Answers[0] != tt.note {
			t.Errorf("%s: answers = %v, want [%s]", tt.id, it.Answers, tt.note)
		}
		if it.ResponseCount() != 1 {
			t.Errorf("%s: ResponseCount = %d, want 1", tt.id, it.ResponseCount())
		}
	}
}

func TestDropDTuning(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "dropd", MaxFret: 12})
	it, ok := d.Item("note:s0:f0")
	if !ok {
		t.Fatal("open low string missing")
	}
	if it.Answers[0] != "D" {
		t.Errorf("drop D open low string = %s, want D", it.Answers[0])
	}
}

func TestUnknownTuningFallsBackToStandard(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "ukulele", MaxFret: 12})
	it, ok := d.Item("note:s0:f0")
	if !ok {
		t.Fatal("open low string missing")
	}
	if it.Answers[0] != "E" {
		t.Errorf("fallback open low string = %s, want E", it.Answers[0])
	}
}

func TestIntervalAnswers(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12, Intervals: true})
	tests := []struct {
		id   string
		name string
	}{
		{"ivl:s0:f7", "P5"},
		{"ivl:s0:f1", "m2"},
		{"ivl:s0:f12", "P8"},
	}
	for _, tt := range tests {
		it, ok := d.Item(tt.id)
		if !ok {
			t.Errorf("%s: item missing", tt.id)
			continue
		}
		if it.Answers[0] != tt.name {
			t.Errorf("%s: answer = %s, want %s", tt.id, it.Answers[0], tt.name)
		}
	}
}

func TestTriadSpelling(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12, Triads: true})
	// String 1 (A), fret 4: C# major.
	it, ok := d.Item("triad:s1:f4")
	if !ok {
		t.Fatal("triad item missing")
	}
	want := []string{"C#", "F", "G#"}
	if it.ResponseCount() != 3 {
		t.Fatalf("ResponseCount = %d, want 3", it.ResponseCount())
	}
	for i, note := range want {
		if it.Answers[i] != note {
			t.Errorf("answer %d = %s, want %s", i, it.Answers[i], note)
		}
	}
}

func TestCandidatesFilteredByEnabledGroups(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12})
	enabled := map[int]struct{}{2: {}, 3: {}}
	got := d.Candidates(enabled)
	if len(got) != 2*13 {
		t.Fatalf("candidate count = %d, want %d", len(got), 2*13)
	}
	for _, id := range got {
		it, _ := d.Item(id)
		if it.String != 2 && it.String != 3 {
			t.Errorf("candidate %s on string %d, want 2 or 3", id, it.String)
		}
	}
}

func TestGroupLabel(t *testing.T) {
	d := New(model.PracticeConfig{Tuning: "standard", MaxFret: 12})
	tests := []struct {
		index int
		want  string
	}{
		{0, "6th (E)"},
		{1, "5th (A)"},
		{4, "2nd (B)"},
		{5, "1st (E)"},
	}
	for _, tt := range tests {
		if got := d.GroupLabel(tt.index); got != tt.want {
			t.Errorf("GroupLabel(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestCheckResponse(t *testing.T) {
	it := Item{Answers: []string{"C#", "F", "G#"}}
	tests := []struct {
		n        int
		response string
		want     bool
	}{
		{0, "c#", true},
		{0, "db", true}, // flat spelling accepted
		{0, "C", false},
		{1, " f ", true},
		{2, "Ab", true},
		{3, "C#", false}, // out of range
		{-1, "C#", false},
	}
	for _, tt := range tests {
		if got := CheckResponse(it, tt.n, tt.response); got != tt.want {
			t.Errorf("CheckResponse(%d, %q) = %v, want %v", tt.n, tt.response, got, tt.want)
		}
	}
}

func TestCheckResponseIntervalCaseSensitive(t *testing.T) {
	it := Item{Kind: KindInterval, Answers: []string{"m3"}}
	if !CheckResponse(it, 0, "m3") {
		t.Error("exact interval name should match")
	}
	if CheckResponse(it, 0, "M3") {
		t.Error("major third is not the minor third")
	}
}

func TestNormalizeNote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"bb", "A#"},
		{"Eb", "D#"},
		{" g# ", "G#"},
		{"P5", "P5"},
		{"c", "C"},
	}
	for _, tt := range tests {
		if got := NormalizeNote(tt.in); got != tt.want {
			t.Errorf("NormalizeNote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
