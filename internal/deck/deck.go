// Package deck defines the drillable fretboard content: note
// identification, interval, and triad spelling items, grouped by
// guitar string.
package deck

import (
	"fmt"
	"strings"

	"github.com/fretdrill/fretdrill/internal/model"
)

// Kind classifies a drill item.
type Kind int

const (
	KindNote     Kind = iota // name the note at a position
	KindInterval             // name the interval from the open string
	KindTriad                // spell the major triad from a position
)

// Item is one drillable question.
type Item struct {
	ID      string
	Kind    Kind
	String  int // 0 = lowest-pitched string
	Fret    int
	Prompt  string
	Answers []string // expected responses, in order
}

// ResponseCount is the number of physical responses the item needs.
func (it Item) ResponseCount() int {
	return len(it.Answers)
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatNames = map[string]string{
	"DB": "C#", "EB": "D#", "GB": "F#", "AB": "G#", "BB": "A#",
}

var intervalNames = []string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"}

// tunings maps a tuning name to open-string pitch classes, low to high.
var tunings = map[string][]int{
	"standard": {4, 9, 2, 7, 11, 4}, // E A D G B E
	"dropd":    {2, 9, 2, 7, 11, 4}, // D A D G B E
}

// Deck holds the generated items for one practice configuration.
type Deck struct {
	tuning string
	open   []int
	items  map[string]Item
	groups [][]string
}

// New builds the deck for the given practice configuration. Unknown
// tunings fall back to standard.
func New(cfg model.PracticeConfig) *Deck {
	open, ok := tunings[strings.ToLower(cfg.Tuning)]
	if !ok {
		open = tunings["standard"]
	}
	maxFret := cfg.MaxFret
	if maxFret < 1 || maxFret > 24 {
		maxFret = 12
	}
	d := &Deck{
		tuning: cfg.Tuning,
		open:   open,
		items:  map[string]Item{},
		groups: make([][]string, len(open)),
	}
	for s := range open {
		for f := 0; f <= maxFret; f++ {
			d.add(noteItem(open, s, f))
			if cfg.Intervals && f > 0 {
				d.add(intervalItem(open, s, f))
			}
			if cfg.Triads && f%4 == 0 {
				d.add(triadItem(open, s, f))
			}
		}
	}
	return d
}

func (d *Deck) add(it Item) {
	d.items[it.ID] = it
	d.groups[it.String] = append(d.groups[it.String], it.ID)
}

// GroupIndices returns the string indices, low to high.
func (d *Deck) GroupIndices() []int {
	out := make([]int, len(d.groups))
	for i := range out {
		out[i] = i
	}
	return out
}

// GroupLabel names a string group for display, e.g. "6th (E)".
func (d *Deck) GroupLabel(index int) string {
	if index < 0 || index >= len(d.open) {
		return fmt.Sprintf("string %d", index)
	}
	return fmt.Sprintf("%d%s (%s)", len(d.open)-index, ordinalSuffix(len(d.open)-index), noteNames[d.open[index]])
}

// ItemIDsForGroup returns the item IDs on one string.
func (d *Deck) ItemIDsForGroup(index int) []string {
	if index < 0 || index >= len(d.groups) {
		return nil
	}
	return d.groups[index]
}

// Item looks up an item by ID.
func (d *Deck) Item(id string) (Item, bool) {
	it, ok := d.items[id]
	return it, ok
}

// Candidates returns all item IDs on the enabled strings. With no
// strings enabled it returns every item, so the caller always has a
// non-empty candidate set to select from.
func (d *Deck) Candidates(enabled map[int]struct{}) []string {
	var out []string
	for idx, ids := range d.groups {
		if len(enabled) > 0 {
			if _, ok := enabled[idx]; !ok {
				continue
			}
		}
		out = append(out, ids...)
	}
	return out
}

// CheckResponse grades the n-th response for an item. Note names
// accept flat spellings and are case-insensitive. Interval names are
// compared exactly: m2 and M2 differ only in case.
func CheckResponse(it Item, n int, response string) bool {
	if n < 0 || n >= len(it.Answers) {
		return false
	}
	if it.Kind == KindInterval {
		return strings.TrimSpace(response) == it.Answers[n]
	}
	return NormalizeNote(response) == it.Answers[n]
}

// NormalizeNote canonicalizes a typed note or interval name: trimmed,
// upper-cased, flats mapped to the sharp spelling.
func NormalizeNote(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	if sharp, ok := flatNames[up]; ok {
		return sharp
	}
	return up
}

func noteItem(open []int, s, f int) Item {
	name := noteNames[(open[s]+f)%12]
	return Item{
		ID:      fmt.Sprintf("note:s%d:f%d", s, f),
		Kind:    KindNote,
		String:  s,
		Fret:    f,
		Prompt:  fmt.Sprintf("Name the note: string %d, fret %d", len(open)-s, f),
		Answers: []string{name},
	}
}

func intervalItem(open []int, s, f int) Item {
	name := intervalNames[f%12]
	if f%12 == 0 {
		name = "P8"
	}
	return Item{
		ID:      fmt.Sprintf("ivl:s%d:f%d", s, f),
		Kind:    KindInterval,
		String:  s,
		Fret:    f,
		Prompt:  fmt.Sprintf("Interval from open string %d to fret %d", len(open)-s, f),
		Answers: []string{name},
	}
}

func triadItem(open []int, s, f int) Item {
	root := (open[s] + f) % 12
	return Item{
		ID:     fmt.Sprintf("triad:s%d:f%d", s, f),
		Kind:   KindTriad,
		String: s,
		Fret:   f,
		Prompt: fmt.Sprintf("Spell the major triad on %s (string %d, fret %d)", noteNames[root], len(open)-s, f),
		Answers: []string{
			noteNames[root],
			noteNames[(root+4)%12],
			noteNames[(root+7)%12],
		},
	}
}

func ordinalSuffix(n int) string {
	switch n {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
