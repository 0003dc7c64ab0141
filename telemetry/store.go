package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// StoreSchemaVersion is incremented when the run store schema changes.
const StoreSchemaVersion = 1

const storeSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed INTEGER NOT NULL,
    config TEXT,
    started_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS windows (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    window_end_ms INTEGER NOT NULL,
    phase TEXT,
    session INTEGER,
    money INTEGER,
    trees INTEGER,
    segments INTEGER,
    alive INTEGER,
    dead INTEGER,
    blooming INTEGER,
    max_level INTEGER,
    level_mean REAL,
    grow_mean REAL,
    tree_size_mean REAL,
    PRIMARY KEY (run_id, window_end_ms)
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    time_ms INTEGER NOT NULL,
    type TEXT NOT NULL,
    entity INTEGER,
    cell INTEGER,
    parent INTEGER,
    level INTEGER,
    grow_count INTEGER,
    amount INTEGER,
    money INTEGER
);

CREATE INDEX IF NOT EXISTS idx_events_run_type ON events(run_id, type);
`

// RunStore keeps telemetry windows and events of many runs in one SQLite
// database so runs can be compared with plain SQL.
type RunStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRunStore opens or creates the database at dbPath.
func NewRunStore(dbPath string) (*RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	_, _ = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, StoreSchemaVersion)

	return &RunStore{db: db}, nil
}

// Close closes the database.
func (s *RunStore) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records a new run and returns its id.
func (s *RunStore) BeginRun(seed int64, configYAML string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT INTO runs (seed, config) VALUES (?, ?)`, seed, configYAML)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// WriteWindow stores one stats window of a run.
func (s *RunStore) WriteWindow(runID int64, w WindowStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO windows (run_id, window_end_ms, phase, session, money, trees,
			segments, alive, dead, blooming, max_level, level_mean, grow_mean, tree_size_mean)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, w.WindowEndMs, w.Phase, w.Session, w.Money, w.Trees,
		w.Segments, w.Alive, w.Dead, w.Blooming, w.MaxLevel, w.LevelMean, w.GrowMean, w.TreeSizeMean)
	if err != nil {
		return fmt.Errorf("write window: %w", err)
	}
	return nil
}

// WriteEvents stores events of a run in a single transaction.
func (s *RunStore) WriteEvents(runID int64, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO events (run_id, time_ms, type, entity, cell, parent, level, grow_count, amount, money)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("write events: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(runID, ev.TimeMs, string(ev.Type), ev.Entity, ev.Cell, ev.Parent,
			ev.Level, ev.GrowCount, ev.Amount, ev.Money); err != nil {
			tx.Rollback()
			return fmt.Errorf("write event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit events: %w", err)
	}
	return nil
}

// EventCounts returns the number of stored events of a run by type.
func (s *RunStore) EventCounts(runID int64) (map[EventType]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM events WHERE run_id = ? GROUP BY type`, runID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[EventType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("count events: %w", err)
		}
		counts[EventType(typ)] = n
	}
	return counts, rows.Err()
}

// Windows returns the stored windows of a run in time order. Only the
// columns the store keeps are filled in.
func (s *RunStore) Windows(runID int64) ([]WindowStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT window_end_ms, phase, session, money, trees, segments, alive, dead, blooming,
			max_level, level_mean, grow_mean, tree_size_mean
		FROM windows WHERE run_id = ? ORDER BY window_end_ms
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	defer rows.Close()

	var out []WindowStats
	for rows.Next() {
		var w WindowStats
		if err := rows.Scan(&w.WindowEndMs, &w.Phase, &w.Session, &w.Money, &w.Trees, &w.Segments,
			&w.Alive, &w.Dead, &w.Blooming, &w.MaxLevel, &w.LevelMean, &w.GrowMean, &w.TreeSizeMean); err != nil {
			return nil, fmt.Errorf("list windows: %w", err)
		}
		w.SimTimeSec = float64(w.WindowEndMs) / 1000
		out = append(out, w)
	}
	return out, rows.Err()
}
