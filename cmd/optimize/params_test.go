package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/sprout/config"
)

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	want := pv.DefaultVector()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: config %v, default %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyClampsAndRounds(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	pv.ApplyToConfig(cfg, []float64{2, 1234.6, 3, 4.4})

	if cfg.Plant.BranchChance != 0.95 {
		t.Errorf("branch_chance = %v, want clamped 0.95", cfg.Plant.BranchChance)
	}
	if cfg.Plant.GrowthIntervalMs != 1235 {
		t.Errorf("growth_interval_ms = %d, want 1235", cfg.Plant.GrowthIntervalMs)
	}
	if cfg.Plant.DeathGrowCount != 10 {
		t.Errorf("death_grow_count = %d, want clamped 10", cfg.Plant.DeathGrowCount)
	}
	if cfg.Plant.MaxLevel != 4 {
		t.Errorf("max_level = %d, want 4", cfg.Plant.MaxLevel)
	}
}

func TestEvaluateDefaults(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 30_000, 100, []int64{1, 2}, config.Default(), Targets{TreeSize: 5, Level: 1})

	f := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(f) || f < 0 {
		t.Fatalf("fitness = %v", f)
	}
	m := fe.LastMetrics()
	if m.TreeSize < 1 {
		t.Errorf("mean tree size = %v, want at least the root", m.TreeSize)
	}
	if m.Level < 0 || m.Level > 4 {
		t.Errorf("mean level = %v outside [0, max_level]", m.Level)
	}
}
