package recommend

import (
	"testing"

	"github.com/fretdrill/fretdrill/internal/adaptive"
	"github.com/fretdrill/fretdrill/internal/model"
)

func agg(index, due, unseen, mastered int) model.GroupAggregate {
	return model.GroupAggregate{
		Index:         index,
		DueCount:      due,
		UnseenCount:   unseen,
		MasteredCount: mastered,
		TotalCount:    due + unseen + mastered,
	}
}

func recommended(r model.RecommendationResult) []int {
	out := []int{}
	for i := range r.Recommended {
		out = append(out, i)
	}
	return out
}

func TestFirstLaunchRecommendsFirstUnstarted(t *testing.T) {
	aggs := []model.GroupAggregate{
		agg(0, 0, 12, 0),
		agg(1, 0, 12, 0),
	}
	r := Compute(aggs, adaptive.DefaultConfig(), nil)
	if _, ok := r.Recommended[0]; !ok {
		t.Error("first unstarted group should be recommended on first launch")
	}
	if len(r.Recommended) != 1 {
		t.Errorf("exactly one group expected, got %v", recommended(r))
	}
	if r.ExpandIndex == nil || *r.ExpandIndex != 0 {
		t.Errorf("ExpandIndex = %v, want 0", r.ExpandIndex)
	}
	if r.ExpandNewCount != 12 {
		t.Errorf("ExpandNewCount = %d, want 12", r.ExpandNewCount)
	}
}

func TestFirstLaunchHonorsExpansionOrder(t *testing.T) {
	aggs := []model.GroupAggregate{
		agg(0, 0, 12, 0),
		agg(5, 0, 12, 0),
	}
	r := Compute(aggs, adaptive.DefaultConfig(), &Options{ExpansionOrder: []int{5, 0}})
	if _, ok := r.Recommended[5]; !ok {
		t.Errorf("expansion order ignored, recommended %v", recommended(r))
	}
}

func TestConsolidateAboveMedian(t *testing.T) {
	aggs := []model.GroupAggregate{
		agg(0, 8, 2, 1), // pending 10
		agg(1, 1, 0, 9), // pending 1
		agg(2, 3, 1, 5), // pending 4
	}
	r := Compute(aggs, adaptive.DefaultConfig(), nil)
	// Median pending is 4; only group 0 is above it.
	if len(r.ConsolidateIndices) != 1 || r.ConsolidateIndices[0] != 0 {
		t.Errorf("ConsolidateIndices = %v, want [0]", r.ConsolidateIndices)
	}
	if r.ConsolidateDueCount != 8 {
		t.Errorf("ConsolidateDueCount = %d, want 8", r.ConsolidateDueCount)
	}
	if _, ok := r.Recommended[0]; !ok {
		t.Error("consolidation target should be recommended")
	}
}

func TestFlatFieldFallsBackToSingleGroup(t *testing.T) {
	aggs := []model.GroupAggregate{
		agg(0, 2, 0, 3),
		agg(1, 2, 0, 3),
		agg(2, 2, 0, 3),
	}
	r := Compute(aggs, adaptive.DefaultConfig(), nil)
	if len(r.ConsolidateIndices) != 1 {
		t.Fatalf("flat field should recommend exactly one group, got %v", r.ConsolidateIndices)
	}
	if len(r.Recommended) == 0 {
		t.Error("a recommendation must exist whenever any data exists")
	}
}

func TestExpansionGatedByMasteredRatio(t *testing.T) {
	cfg := adaptive.DefaultConfig()

	// 5 of 10 seen mastered: below the 0.66 threshold, no expansion.
	below := []model.GroupAggregate{
		agg(0, 5, 0, 5),
		agg(1, 0, 12, 0),
	}
	r := Compute(below, cfg, nil)
	if r.ExpandIndex != nil {
		t.Errorf("expansion should be gated, got ExpandIndex=%d", *r.ExpandIndex)
	}

	// 8 of 10 mastered: expansion unlocks group 1.
	above := []model.GroupAggregate{
		agg(0, 2, 0, 8),
		agg(1, 0, 12, 0),
	}
	r = Compute(above, cfg, nil)
	if r.ExpandIndex == nil || *r.ExpandIndex != 1 {
		t.Fatalf("ExpandIndex = %v, want 1", r.ExpandIndex)
	}
	if r.ExpandNewCount != 12 {
		t.Errorf("ExpandNewCount = %d, want 12", r.ExpandNewCount)
	}
	if _, ok := r.Enabled[1]; !ok {
		t.Error("expanded group should be enabled")
	}
}

func TestNoExpansionWithoutUnstartedGroups(t *testing.T) {
	aggs := []model.GroupAggregate{
		agg(0, 1, 0, 9),
		agg(1, 0, 0, 10),
	}
	r := Compute(aggs, adaptive.DefaultConfig(), nil)
	if r.ExpandIndex != nil {
		t.Errorf("nothing left to expand into, got ExpandIndex=%d", *r.ExpandIndex)
	}
}

func TestAdvisoryOnlyLeavesEnabledEmpty(t *testing.T) {
	aggs := []model.GroupAggregate{
		agg(0, 8, 2, 1),
		agg(1, 1, 0, 9),
	}
	r := Compute(aggs, adaptive.DefaultConfig(), &Options{AdvisoryOnly: true})
	if len(r.Recommended) == 0 {
		t.Error("advisory mode still recommends")
	}
	if len(r.Enabled) != 0 {
		t.Errorf("advisory mode must not enable groups, got %v", r.Enabled)
	}
}

func TestEmptyAggregates(t *testing.T) {
	r := Compute(nil, adaptive.DefaultConfig(), nil)
	if len(r.Recommended) != 0 || len(r.Enabled) != 0 || r.ExpandIndex != nil {
		t.Errorf("empty input should produce an empty result, got %+v", r)
	}
}
