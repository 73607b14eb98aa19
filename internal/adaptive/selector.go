package adaptive

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/fretdrill/fretdrill/internal/model"
)

// ewmaAlpha is the smoothing factor for the rolling response average.
const ewmaAlpha = 0.3

// Storage is the persistence contract the selector depends on.
// Implementations treat missing or malformed records as absent and
// return a nil ItemStats rather than an error.
type Storage interface {
	GetStats(itemID string) (*model.ItemStats, error)
	SaveStats(itemID string, stats model.ItemStats) error
}

// Selector orchestrates the recall and speed models over persisted
// per-item state. All methods run synchronously on the caller's
// goroutine; the selector holds no locks.
type Selector struct {
	storage Storage
	cfg     model.AdaptiveConfig
	rnd     *rand.Rand
}

// NewSelector constructs a Selector over the given storage.
func NewSelector(storage Storage, cfg model.AdaptiveConfig) *Selector {
	return &Selector{
		storage: storage,
		cfg:     cfg,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the active adaptive configuration.
func (s *Selector) Config() model.AdaptiveConfig {
	return s.cfg
}

// UpdateConfig swaps the active configuration. Persisted item state is
// not rewritten; new responses are simply judged under the new config.
func (s *Selector) UpdateConfig(cfg model.AdaptiveConfig) {
	s.cfg = cfg
}

// RecordResponse updates the per-item state after an answer.
// EWMA, the recent-times window, the sample count, and LastSeen are
// updated for every answer. A correct answer grows stability and marks
// LastCorrectAt; a wrong answer decays stability only when stability
// is already known.
func (s *Selector) RecordResponse(itemID string, responseTimeMs float64, correct bool, now time.Time) error {
	stats, err := s.storage.GetStats(itemID)
	if err != nil {
		return fmt.Errorf("load stats for %q: %w", itemID, err)
	}
	if stats == nil {
		stats = &model.ItemStats{}
	}

	rt := clamp(responseTimeMs, 0, s.cfg.MaxResponseTime)
	if stats.SampleCount == 0 {
		stats.EWMA = rt
	} else {
		stats.EWMA = ewmaAlpha*rt + (1-ewmaAlpha)*stats.EWMA
	}
	stats.RecentTimes = append(stats.RecentTimes, rt)
	if len(stats.RecentTimes) > model.RecentTimesCap {
		stats.RecentTimes = stats.RecentTimes[len(stats.RecentTimes)-model.RecentTimesCap:]
	}
	stats.SampleCount++
	stats.LastSeen = now

	if correct {
		elapsed := s.elapsedHours(stats, now)
		newStability := UpdateStability(stats.Stability, rt, elapsed, s.cfg)
		stats.Stability = &newStability
		stats.LastCorrectAt = now
	} else if stats.Stability != nil {
		decayed := StabilityAfterWrong(*stats.Stability, s.cfg)
		stats.Stability = &decayed
	}

	if err := s.storage.SaveStats(itemID, *stats); err != nil {
		return fmt.Errorf("save stats for %q: %w", itemID, err)
	}
	return nil
}

// SelectNext picks the next item by weighted random choice over the
// candidates. A single candidate is returned deterministically.
// Callers must never pass an empty candidate list.
func (s *Selector) SelectNext(candidates []string, now time.Time) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("select next: empty candidate list")
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, id := range candidates {
		stats, err := s.storage.GetStats(id)
		if err != nil {
			return "", fmt.Errorf("load stats for %q: %w", id, err)
		}
		var recall *float64
		if stats != nil {
			recall = Recall(stats.Stability, s.elapsedHours(stats, now))
		}
		w := Weight(stats, recall, s.cfg)
		weights[i] = w
		total += w
	}

	r := s.rnd.Float64() * total
	acc := 0.0
	idx := 0
	for i, w := range weights {
		acc += w
		if r <= acc {
			idx = i
			break
		}
	}
	return candidates[idx], nil
}

// Recall returns the current recall probability for an item, or nil
// for items that were never answered correctly. The value is computed
// from persisted state and the clock on every call, so it decays
// naturally between calls.
func (s *Selector) Recall(itemID string, now time.Time) (*float64, error) {
	stats, err := s.storage.GetStats(itemID)
	if err != nil {
		return nil, fmt.Errorf("load stats for %q: %w", itemID, err)
	}
	if stats == nil {
		return nil, nil
	}
	return Recall(stats.Stability, s.elapsedHours(stats, now)), nil
}

// Automaticity returns the combined recall/speed fluency score for an
// item, or nil while either signal is missing.
func (s *Selector) Automaticity(itemID string, now time.Time) (*float64, error) {
	stats, err := s.storage.GetStats(itemID)
	if err != nil {
		return nil, fmt.Errorf("load stats for %q: %w", itemID, err)
	}
	return s.automaticity(stats, now), nil
}

// Stats returns the persisted stats for an item, or nil if unseen.
func (s *Selector) Stats(itemID string) (*model.ItemStats, error) {
	stats, err := s.storage.GetStats(itemID)
	if err != nil {
		return nil, fmt.Errorf("load stats for %q: %w", itemID, err)
	}
	return stats, nil
}

// StringRecommendations aggregates item state per group as input for
// the recommendation engine. For each group index it counts unseen
// items, mastered items (automaticity above the threshold), and due
// items (the seen remainder).
func (s *Selector) StringRecommendations(groupIndices []int, itemIDsForGroup func(int) []string, now time.Time) ([]model.GroupAggregate, error) {
	aggs := make([]model.GroupAggregate, 0, len(groupIndices))
	for _, idx := range groupIndices {
		agg := model.GroupAggregate{Index: idx}
		for _, id := range itemIDsForGroup(idx) {
			stats, err := s.storage.GetStats(id)
			if err != nil {
				return nil, fmt.Errorf("load stats for %q: %w", id, err)
			}
			switch {
			case stats == nil:
				agg.UnseenCount++
			case s.isMastered(stats, now):
				agg.MasteredCount++
			default:
				agg.DueCount++
			}
		}
		agg.TotalCount = agg.UnseenCount + agg.MasteredCount + agg.DueCount
		aggs = append(aggs, agg)
	}
	return aggs, nil
}

func (s *Selector) automaticity(stats *model.ItemStats, now time.Time) *float64 {
	if stats == nil {
		return nil
	}
	recall := Recall(stats.Stability, s.elapsedHours(stats, now))
	var ewma *float64
	if stats.SampleCount > 0 {
		ewma = &stats.EWMA
	}
	return Automaticity(recall, SpeedScore(ewma, s.cfg))
}

func (s *Selector) isMastered(stats *model.ItemStats, now time.Time) bool {
	a := s.automaticity(stats, now)
	return a != nil && *a > s.cfg.AutomaticityThreshold
}

func (s *Selector) elapsedHours(stats *model.ItemStats, now time.Time) float64 {
	if stats.LastCorrectAt.IsZero() {
		return 0
	}
	h := now.Sub(stats.LastCorrectAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}
