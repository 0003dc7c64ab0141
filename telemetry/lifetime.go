package telemetry

import "log/slog"

// LifetimeStats tracks per-tree statistics from planting to removal.
type LifetimeStats struct {
	Cell      int   `json:"cell" inspect:"skip"`
	PlantedMs int64 `json:"planted_ms" inspect:"label,name:Planted,fmt:%dms"`
	AgeMs     int64 `json:"age_ms" inspect:"label,name:Tree age,fmt:%dms"`

	Segments int `json:"segments" inspect:"label,name:Spawned"` // Segments ever spawned, root included
	MaxLevel int `json:"max_level" inspect:"label,name:Depth"`
	Blooms   int `json:"blooms"`
	Deaths   int `json:"deaths"`
}

// LogValue implements slog.LogValuer for structured logging.
func (ls LifetimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("cell", ls.Cell),
		slog.Int64("age_ms", ls.AgeMs),
		slog.Int("segments", ls.Segments),
		slog.Int("max_level", ls.MaxLevel),
		slog.Int("blooms", ls.Blooms),
		slog.Int("deaths", ls.Deaths),
	)
}

// LifetimeTracker manages per-tree lifetime statistics keyed by cell.
type LifetimeTracker struct {
	stats map[int]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[int]*LifetimeStats),
	}
}

// Register starts tracking the tree planted in cell.
func (lt *LifetimeTracker) Register(cell int, plantedMs int64) {
	lt.stats[cell] = &LifetimeStats{
		Cell:      cell,
		PlantedMs: plantedMs,
		Segments:  1,
	}
}

// Get returns the lifetime stats for a cell, or nil if not found.
func (lt *LifetimeTracker) Get(cell int) *LifetimeStats {
	return lt.stats[cell]
}

// Remove stops tracking a cell and returns its stats with the final age.
func (lt *LifetimeTracker) Remove(cell int, nowMs int64) *LifetimeStats {
	stats := lt.stats[cell]
	delete(lt.stats, cell)
	if stats != nil {
		stats.AgeMs = nowMs - stats.PlantedMs
	}
	return stats
}

// RecordBranch counts a new segment at level.
func (lt *LifetimeTracker) RecordBranch(cell, level int) {
	if s := lt.stats[cell]; s != nil {
		s.Segments++
		if level > s.MaxLevel {
			s.MaxLevel = level
		}
	}
}

// RecordBloom increments the bloom count.
func (lt *LifetimeTracker) RecordBloom(cell int) {
	if s := lt.stats[cell]; s != nil {
		s.Blooms++
	}
}

// RecordDeath increments the segment death count.
func (lt *LifetimeTracker) RecordDeath(cell int) {
	if s := lt.stats[cell]; s != nil {
		s.Deaths++
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[int]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked trees.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
