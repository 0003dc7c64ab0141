package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Plant.GrowthIntervalMs != 1000 {
		t.Errorf("growth_interval_ms = %d, want 1000", cfg.Plant.GrowthIntervalMs)
	}
	if cfg.Plant.DeathGrowCount != 50 {
		t.Errorf("death_grow_count = %d, want 50", cfg.Plant.DeathGrowCount)
	}
	if cfg.Shape.Samples != 100 {
		t.Errorf("samples = %d, want 100", cfg.Shape.Samples)
	}
	if cfg.Plant.ImmortalRoots || cfg.Plant.ReseedEachBloom {
		t.Error("open-question flags should default to false")
	}
}

func TestCellPositions(t *testing.T) {
	cfg := Default()

	if cfg.Derived.CellCount != 9 {
		t.Fatalf("CellCount = %d, want 9", cfg.Derived.CellCount)
	}

	// 3x3 grid with spacing 5 centred on origin: x = -5 + (i%3)*5, z = -5 + (i/3)*5
	for i, p := range cfg.Derived.CellPositions {
		wantX := -5 + float64(i%3)*5
		wantZ := -5 + float64(i/3)*5
		if math.Abs(p.X-wantX) > 1e-9 || math.Abs(p.Z-wantZ) > 1e-9 || p.Y != 0 {
			t.Errorf("cell %d at %+v, want (%v, 0, %v)", i, p, wantX, wantZ)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("plant:\n  immortal_roots: true\n  branch_chance: 0.25\ngarden:\n  rows: 2\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !cfg.Plant.ImmortalRoots {
		t.Error("immortal_roots override not applied")
	}
	if cfg.Plant.BranchChance != 0.25 {
		t.Errorf("branch_chance = %v, want 0.25", cfg.Plant.BranchChance)
	}
	// Untouched fields keep their defaults
	if cfg.Plant.NoneMs != 10000 {
		t.Errorf("none_ms = %d, want default 10000", cfg.Plant.NoneMs)
	}
	if cfg.Derived.CellCount != 6 {
		t.Errorf("CellCount = %d, want 6", cfg.Derived.CellCount)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero rows", "garden:\n  rows: 0\n"},
		{"zero tick", "sim:\n  tick_ms: 0\n"},
		{"inverted flowers", "plant:\n  min_flowers: 9\n  max_flowers: 4\n"},
		{"too few samples", "shape:\n  samples: 1\n"},
		{"disabled cell out of range", "garden:\n  disabled_cells: [9]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Plant.DeathGrowCount = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Plant.DeathGrowCount != 7 {
		t.Errorf("death_grow_count = %d, want 7", loaded.Plant.DeathGrowCount)
	}
}
