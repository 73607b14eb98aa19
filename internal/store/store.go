// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fretdrill/fretdrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for learner state and session history.
// Missing or malformed persisted values are treated as absent, never
// as errors: stats come back nil, deadlines come back zero.
type Store struct {
	db    *sql.DB
	cache map[string]*model.ItemStats
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, cache: map[string]*model.ItemStats{}}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS item_stats (
			item_id TEXT PRIMARY KEY,
			ewma REAL NOT NULL,
			recent_times TEXT NOT NULL,
			sample_count INTEGER NOT NULL,
			last_seen TEXT NOT NULL,
			stability REAL,
			last_correct_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS deadlines (
			item_id TEXT PRIMARY KEY,
			deadline_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS baseline (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			baseline_ms REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			tuning TEXT NOT NULL,
			questions INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetStats returns the stats for an item, or nil when unseen or when
// the stored record cannot be decoded.
func (s *Store) GetStats(itemID string) (*model.ItemStats, error) {
	if cached, ok := s.cache[itemID]; ok {
		return copyStats(cached), nil
	}
	row := s.db.QueryRow(
		`SELECT ewma, recent_times, sample_count, last_seen, stability, last_correct_at
		 FROM item_stats WHERE item_id = ?`, itemID)
	stats, err := scanStats(row)
	if err != nil {
		return nil, err
	}
	s.cache[itemID] = copyStats(stats)
	return stats, nil
}

// SaveStats persists the stats record for an item.
func (s *Store) SaveStats(itemID string, stats model.ItemStats) error {
	recent, err := json.Marshal(stats.RecentTimes)
	if err != nil {
		return err
	}
	var stability any
	if stats.Stability != nil {
		stability = *stats.Stability
	}
	var lastCorrect any
	if !stats.LastCorrectAt.IsZero() {
		lastCorrect = stats.LastCorrectAt.Format(time.RFC3339Nano)
	}
	_, err = s.db.Exec(
		`INSERT INTO item_stats (item_id, ewma, recent_times, sample_count, last_seen, stability, last_correct_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET
			ewma = excluded.ewma,
			recent_times = excluded.recent_times,
			sample_count = excluded.sample_count,
			last_seen = excluded.last_seen,
			stability = excluded.stability,
			last_correct_at = excluded.last_correct_at`,
		itemID, stats.EWMA, string(recent), stats.SampleCount,
		stats.LastSeen.Format(time.RFC3339Nano), stability, lastCorrect)
	if err != nil {
		return err
	}
	s.cache[itemID] = copyStats(&stats)
	return nil
}

// Preload warms the stats cache for the given items in one query.
// Purely a hint; a failed preload only means later per-item reads.
func (s *Store) Preload(itemIDs []string) error {
	missing := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := s.cache[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	placeholders := make([]string, len(missing))
	args := make([]any, len(missing))
	for i, id := range missing {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT item_id, ewma, recent_times, sample_count, last_seen, stability, last_correct_at
		 FROM item_stats WHERE item_id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	found := map[string]struct{}{}
	for rows.Next() {
		var itemID string
		stats, err := scanStatsColumns(rows, &itemID)
		if err != nil {
			return err
		}
		if stats != nil {
			s.cache[itemID] = stats
			found[itemID] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range missing {
		if _, ok := found[id]; !ok {
			s.cache[id] = nil
		}
	}
	return nil
}

// GetDeadline returns the persisted deadline for an item in
// milliseconds, or zero when absent or corrupt.
func (s *Store) GetDeadline(itemID string) (int, error) {
	var deadline int
	err := s.db.QueryRow(`SELECT deadline_ms FROM deadlines WHERE item_id = ?`, itemID).Scan(&deadline)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if deadline < 0 {
		return 0, nil
	}
	return deadline, nil
}

// SaveDeadline persists the deadline for an item.
func (s *Store) SaveDeadline(itemID string, deadlineMs int) error {
	_, err := s.db.Exec(
		`INSERT INTO deadlines (item_id, deadline_ms) VALUES (?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET deadline_ms = excluded.deadline_ms`,
		itemID, deadlineMs)
	return err
}

// GetBaseline returns the stored motor baseline in milliseconds, or
// zero when no calibration has been completed.
func (s *Store) GetBaseline() (float64, error) {
	var baseline float64
	err := s.db.QueryRow(`SELECT baseline_ms FROM baseline WHERE id = 1`).Scan(&baseline)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if baseline < 0 {
		return 0, nil
	}
	return baseline, nil
}

// SaveBaseline persists the motor baseline.
func (s *Store) SaveBaseline(baselineMs float64) error {
	_, err := s.db.Exec(
		`INSERT INTO baseline (id, baseline_ms) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET baseline_ms = excluded.baseline_ms`,
		baselineMs)
	return err
}

// InsertSession stores a completed practice round.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, tuning, questions, correct, incorrect, timed_out, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Tuning,
		stats.Questions,
		stats.Correct,
		stats.Incorrect,
		stats.TimedOut,
		stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, questions, correct, incorrect, timed_out, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Questions, &agg.Correct, &agg.Incorrect, &agg.TimedOut, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStats(row *sql.Row) (*model.ItemStats, error) {
	var (
		ewma        float64
		recent      string
		sampleCount int
		lastSeen    string
		stability   sql.NullFloat64
		lastCorrect sql.NullString
	)
	err := row.Scan(&ewma, &recent, &sampleCount, &lastSeen, &stability, &lastCorrect)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStats(ewma, recent, sampleCount, lastSeen, stability, lastCorrect), nil
}

func scanStatsColumns(rows rowScanner, itemID *string) (*model.ItemStats, error) {
	var (
		ewma        float64
		recent      string
		sampleCount int
		lastSeen    string
		stability   sql.NullFloat64
		lastCorrect sql.NullString
	)
	if err := rows.Scan(itemID, &ewma, &recent, &sampleCount, &lastSeen, &stability, &lastCorrect); err != nil {
		return nil, err
	}
	return decodeStats(ewma, recent, sampleCount, lastSeen, stability, lastCorrect), nil
}

// decodeStats tolerates malformed stored values: undecodable rows come
// back nil (treated as unseen), bad timestamps come back zero.
func decodeStats(ewma float64, recent string, sampleCount int, lastSeen string, stability sql.NullFloat64, lastCorrect sql.NullString) *model.ItemStats {
	stats := &model.ItemStats{
		EWMA:        ewma,
		SampleCount: sampleCount,
	}
	if err := json.Unmarshal([]byte(recent), &stats.RecentTimes); err != nil {
		stats.RecentTimes = nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, lastSeen); err == nil {
		stats.LastSeen = parsed
	}
	if stability.Valid && stability.Float64 >= 0 {
		v := stability.Float64
		stats.Stability = &v
	}
	if lastCorrect.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, lastCorrect.String); err == nil {
			stats.LastCorrectAt = parsed
		}
	}
	if stats.SampleCount <= 0 && stats.Stability == nil {
		return nil
	}
	return stats
}

func copyStats(stats *model.ItemStats) *model.ItemStats {
	if stats == nil {
		return nil
	}
	out := *stats
	out.RecentTimes = append([]float64(nil), stats.RecentTimes...)
	if stats.Stability != nil {
		v := *stats.Stability
		out.Stability = &v
	}
	return &out
}
