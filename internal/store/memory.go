package store

import "github.com/fretdrill/fretdrill/internal/model"

// Memory is an in-memory learner state store. It satisfies the same
// persistence contract as Store for tests and ephemeral sessions.
type Memory struct {
	stats     map[string]*model.ItemStats
	deadlines map[string]int
	baseline  float64
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		stats:     map[string]*model.ItemStats{},
		deadlines: map[string]int{},
	}
}

// GetStats returns the stats for an item, or nil when unseen.
func (m *Memory) GetStats(itemID string) (*model.ItemStats, error) {
	return copyStats(m.stats[itemID]), nil
}

// SaveStats stores the stats record for an item.
func (m *Memory) SaveStats(itemID string, stats model.ItemStats) error {
	m.stats[itemID] = copyStats(&stats)
	return nil
}

// Preload is a no-op; everything is already in memory.
func (m *Memory) Preload([]string) error {
	return nil
}

// GetDeadline returns the deadline for an item, or zero when absent.
func (m *Memory) GetDeadline(itemID string) (int, error) {
	return m.deadlines[itemID], nil
}

// SaveDeadline stores the deadline for an item.
func (m *Memory) SaveDeadline(itemID string, deadlineMs int) error {
	m.deadlines[itemID] = deadlineMs
	return nil
}

// GetBaseline returns the stored motor baseline, or zero when unset.
func (m *Memory) GetBaseline() (float64, error) {
	return m.baseline, nil
}

// SaveBaseline stores the motor baseline.
func (m *Memory) SaveBaseline(baselineMs float64) error {
	m.baseline = baselineMs
	return nil
}
