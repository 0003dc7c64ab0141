package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable garden state at one instant.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	TimeMs  int64  `json:"time_ms"`
	Session int    `json:"session"`
	Phase   string `json:"phase"`
	Money   int    `json:"money"`

	Cells []CellState `json:"cells"`
}

// CellState holds one grid cell and the tree planted in it, if any.
type CellState struct {
	Index    int    `json:"index"`
	Position r3.Vec `json:"position"`
	Enabled  bool   `json:"enabled"`

	Tree     *systems.TreeSnapshot `json:"tree,omitempty"`
	Lifetime *LifetimeStats        `json:"lifetime,omitempty"`
}

// Trees returns the number of planted cells.
func (s *Snapshot) Trees() int {
	n := 0
	for _, c := range s.Cells {
		if c.Tree != nil {
			n++
		}
	}
	return n
}

// SnapshotSummary is a flat, CSV-friendly digest of a snapshot.
type SnapshotSummary struct {
	Path     string `csv:"path"`
	TimeMs   int64  `csv:"time_ms"`
	Session  int    `csv:"session"`
	Phase    string `csv:"phase"`
	Money    int    `csv:"money"`
	Trees    int    `csv:"trees"`
	Segments int    `csv:"segments"`
	Alive    int    `csv:"alive"`
	Dead     int    `csv:"dead"`
	MaxLevel int    `csv:"max_level"`
	Flowers  int    `csv:"flowers"` // Current flowers on blooming segments
}

// Summary digests the snapshot loaded from path.
func (s *Snapshot) Summary(path string) SnapshotSummary {
	sum := SnapshotSummary{
		Path:    path,
		TimeMs:  s.TimeMs,
		Session: s.Session,
		Phase:   s.Phase,
		Money:   s.Money,
		Trees:   s.Trees(),
	}
	var visit func(t *systems.TreeSnapshot)
	visit = func(t *systems.TreeSnapshot) {
		sum.Segments++
		if t.Dead {
			sum.Dead++
		} else {
			sum.Alive++
		}
		sum.MaxLevel = max(sum.MaxLevel, t.Level)
		if t.Flowering == components.FloweringBlooming {
			sum.Flowers += len(t.CurrentFlowers)
		}
		for i := range t.Children {
			visit(&t.Children[i])
		}
	}
	for _, c := range s.Cells {
		if c.Tree != nil {
			visit(c.Tree)
		}
	}
	return sum
}

// SaveSnapshot writes a snapshot to dir as snapshot_<time_ms>.json.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.TimeMs))
	if err := WriteSnapshot(snapshot, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSnapshot writes a snapshot to path, creating its directory.
func WriteSnapshot(snapshot *Snapshot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
