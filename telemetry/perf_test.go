package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseGarden)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhasePlants)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick(TickWork{})
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	for _, phase := range []Phase{PhaseGarden, PhasePlants} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %s not tracked", phase)
		}
	}
	if stats.PhasePct[PhasePlants] <= stats.PhasePct[PhaseGarden] {
		t.Errorf("plants (%v%%) should outweigh garden (%v%%)",
			stats.PhasePct[PhasePlants], stats.PhasePct[PhaseGarden])
	}

	row := stats.ToCSV(5000)
	if row.WindowEndMs != 5000 || row.PlantsPct != stats.PhasePct[PhasePlants] {
		t.Errorf("csv row = %+v", row)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseTelemetry)
		time.Sleep(50 * time.Microsecond)
		pc.EndTick(TickWork{Timers: i})
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Errorf("expected positive timing after window wrapped: %+v", stats)
	}
	// Only ticks 5..9 remain in the window
	if stats.TimersAvg != 7 || stats.TimersMax != 9 {
		t.Errorf("timers avg=%v max=%d, want 7 and 9", stats.TimersAvg, stats.TimersMax)
	}
}

func TestPerfCollectorTimerWork(t *testing.T) {
	pc := NewPerfCollector(10)

	for _, w := range []TickWork{{Timers: 2, Pending: 10}, {Timers: 4, Pending: 12}, {Timers: 6, Pending: 14}} {
		pc.StartTick()
		pc.StartPhase(PhasePlants)
		time.Sleep(100 * time.Microsecond)
		pc.EndTick(w)
	}

	stats := pc.Stats()
	if stats.TimersAvg != 4 || stats.TimersMax != 6 || stats.PendingAvg != 12 {
		t.Errorf("work avg=%v max=%d pending=%v, want 4, 6, 12", stats.TimersAvg, stats.TimersMax, stats.PendingAvg)
	}
	// 12 timers over three ticks of at least 100us each
	if stats.TimerCost < 25*time.Microsecond {
		t.Errorf("timer cost = %v, want at least 25us", stats.TimerCost)
	}

	row := stats.ToCSV(1000)
	if row.TimersMax != 6 || row.TimerCostNS != stats.TimerCost.Nanoseconds() {
		t.Errorf("csv row = %+v", row)
	}
}

func TestPerfCollectorIdleTicks(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhaseGarden)
	pc.EndTick(TickWork{Pending: 3})

	stats := pc.Stats()
	if stats.TimerCost != 0 || stats.TimersAvg != 0 {
		t.Errorf("idle tick: cost=%v avg=%v, want zero", stats.TimerCost, stats.TimersAvg)
	}
	if _, ok := stats.PhaseAvg[PhaseAnim]; ok {
		t.Error("untimed phase reported")
	}
	if PhasePlants.String() != "plants" {
		t.Errorf("phase name = %q", PhasePlants.String())
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("FPS = %v, want (0, 70] for a 16ms frame", stats.FPS)
	}
}
