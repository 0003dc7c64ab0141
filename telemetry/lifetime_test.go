package telemetry

import "testing"

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(4, 1000)

	lt.RecordBranch(4, 1)
	lt.RecordBranch(4, 2)
	lt.RecordBranch(4, 1)
	lt.RecordBloom(4)
	lt.RecordDeath(4)

	// Unknown cells are ignored
	lt.RecordBranch(7, 5)
	lt.RecordBloom(7)

	if lt.Count() != 1 {
		t.Fatalf("Count = %d, want 1", lt.Count())
	}

	got := lt.Remove(4, 6000)
	if got == nil {
		t.Fatal("Remove returned nil")
	}
	want := LifetimeStats{Cell: 4, PlantedMs: 1000, AgeMs: 5000, Segments: 4, MaxLevel: 2, Blooms: 1, Deaths: 1}
	if *got != want {
		t.Errorf("stats = %+v, want %+v", *got, want)
	}
	if lt.Get(4) != nil || lt.Remove(4, 7000) != nil {
		t.Error("cell still tracked after Remove")
	}
}
