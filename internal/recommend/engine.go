// Package recommend decides which item groups to highlight and enable
// next, consolidating started material before unlocking new groups.
package recommend

import (
	"sort"

	"github.com/fretdrill/fretdrill/internal/model"
)

// Options tunes a recommendation computation.
type Options struct {
	// ExpansionOrder is the preferred ordering of group indices when
	// picking the next unstarted group. Natural aggregate order is
	// used when empty.
	ExpansionOrder []int
	// AdvisoryOnly leaves Enabled empty so callers can show purely
	// advisory text without activating anything.
	AdvisoryOnly bool
}

// Compute applies the consolidate-before-expand heuristic to per-group
// aggregates.
//
// Groups with any seen item are ranked by pending work (due plus
// unseen items); every group above the median pending work is
// recommended, falling back to the single highest-work group when the
// field is flat, so at least one group is always recommended whenever
// any data exists. Once the mastered/seen ratio across started groups
// reaches ExpansionThreshold, the first unstarted group is additionally
// unlocked. On first launch, with nothing started, exactly the first
// unstarted group is recommended so there is always a usable starting
// point.
func Compute(aggs []model.GroupAggregate, cfg model.AdaptiveConfig, opts *Options) model.RecommendationResult {
	if opts == nil {
		opts = &Options{}
	}
	result := model.RecommendationResult{
		Recommended: map[int]struct{}{},
		Enabled:     map[int]struct{}{},
	}

	var started, unstarted []model.GroupAggregate
	for _, agg := range aggs {
		if agg.TotalCount-agg.UnseenCount > 0 {
			started = append(started, agg)
		} else {
			unstarted = append(unstarted, agg)
		}
	}

	if len(started) == 0 {
		if first, ok := firstByOrder(unstarted, opts.ExpansionOrder); ok {
			mark(&result, first.Index, opts.AdvisoryOnly)
			idx := first.Index
			result.ExpandIndex = &idx
			result.ExpandNewCount = first.UnseenCount
		}
		return result
	}

	totalSeen, totalMastered := 0, 0
	for _, agg := range started {
		totalSeen += agg.TotalCount - agg.UnseenCount
		totalMastered += agg.MasteredCount
	}

	ranked := make([]model.GroupAggregate, len(started))
	copy(ranked, started)
	sort.SliceStable(ranked, func(i, j int) bool {
		return pending(ranked[i]) > pending(ranked[j])
	})

	med := medianPending(ranked)
	for _, agg := range ranked {
		if float64(pending(agg)) > med {
			result.ConsolidateIndices = append(result.ConsolidateIndices, agg.Index)
			result.ConsolidateDueCount += agg.DueCount
			mark(&result, agg.Index, opts.AdvisoryOnly)
		}
	}
	if len(result.ConsolidateIndices) == 0 {
		top := ranked[0]
		result.ConsolidateIndices = []int{top.Index}
		result.ConsolidateDueCount = top.DueCount
		mark(&result, top.Index, opts.AdvisoryOnly)
	}

	consolidatedRatio := 0.0
	if totalSeen > 0 {
		consolidatedRatio = float64(totalMastered) / float64(totalSeen)
	}
	if consolidatedRatio >= cfg.ExpansionThreshold {
		if first, ok := firstByOrder(unstarted, opts.ExpansionOrder); ok {
			mark(&result, first.Index, opts.AdvisoryOnly)
			idx := first.Index
			result.ExpandIndex = &idx
			result.ExpandNewCount = first.UnseenCount
		}
	}
	return result
}

func pending(agg model.GroupAggregate) int {
	return agg.DueCount + agg.UnseenCount
}

func medianPending(ranked []model.GroupAggregate) float64 {
	values := make([]int, len(ranked))
	for i, agg := range ranked {
		values[i] = pending(agg)
	}
	sort.Ints(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return float64(values[mid])
	}
	return float64(values[mid-1]+values[mid]) / 2
}

func firstByOrder(unstarted []model.GroupAggregate, order []int) (model.GroupAggregate, bool) {
	if len(unstarted) == 0 {
		return model.GroupAggregate{}, false
	}
	for _, want := range order {
		for _, agg := range unstarted {
			if agg.Index == want {
				return agg, true
			}
		}
	}
	return unstarted[0], true
}

func mark(result *model.RecommendationResult, index int, advisoryOnly bool) {
	result.Recommended[index] = struct{}{}
	if !advisoryOnly {
		result.Enabled[index] = struct{}{}
	}
}
