package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a garden tick.
type Phase uint8

const (
	PhaseGarden    Phase = iota // phase machine and tending
	PhasePlants                 // segment timers and GROW delivery
	PhaseAnim                   // scale tweens
	PhaseTelemetry              // census, window flush and output
	phaseCount
)

// Phases lists the phases in reporting order.
var Phases = []Phase{PhaseGarden, PhasePlants, PhaseAnim, PhaseTelemetry}

func (p Phase) String() string {
	switch p {
	case PhaseGarden:
		return "garden"
	case PhasePlants:
		return "plants"
	case PhaseAnim:
		return "anim"
	case PhaseTelemetry:
		return "telemetry"
	}
	return "unknown"
}

// TickWork is the plant work done in one tick.
type TickWork struct {
	Timers  int // Region timers fired
	Pending int // Timers still armed afterwards
}

// tickSample is the cost and work of one tick.
type tickSample struct {
	duration time.Duration
	phases   [phaseCount]time.Duration
	work     TickWork
}

// PerfCollector keeps a ring of the last ticks so the cost of plant timers
// can be read next to how many fired.
type PerfCollector struct {
	ring   []tickSample
	next   int
	filled int

	current    tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over the last window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.current = tickSample{}
	p.tickStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick closes the tick and stores it with the plant work it did.
func (p *PerfCollector) EndTick(work TickWork) {
	now := time.Now()
	p.closePhase(now)
	p.current.duration = now.Sub(p.tickStart)
	p.current.work = work

	p.ring[p.next] = p.current
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame records the time since the previous frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the ticks in the ring.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[Phase]time.Duration
	PhasePct map[Phase]float64 // Share of the average tick

	// Plant work per tick
	TimersAvg  float64
	TimersMax  int
	PendingAvg float64
	// TimerCost is the plants phase time per fired timer; 0 when none fired.
	TimerCost time.Duration

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the collected ticks.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[Phase]time.Duration, phaseCount),
		PhasePct:      make(map[Phase]float64, phaseCount),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phases [phaseCount]time.Duration
	timers, pending := 0, 0
	for i, t := range p.ring[:p.filled] {
		total += t.duration
		if i == 0 || t.duration < s.MinTickDuration {
			s.MinTickDuration = t.duration
		}
		s.MaxTickDuration = max(s.MaxTickDuration, t.duration)
		for ph, d := range t.phases {
			phases[ph] += d
		}
		timers += t.work.Timers
		pending += t.work.Pending
		s.TimersMax = max(s.TimersMax, t.work.Timers)
	}

	n := time.Duration(p.filled)
	s.AvgTickDuration = total / n
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for _, ph := range Phases {
		if phases[ph] == 0 {
			continue
		}
		s.PhaseAvg[ph] = phases[ph] / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTickDuration) * 100
		}
	}

	s.TimersAvg = float64(timers) / float64(p.filled)
	s.PendingAvg = float64(pending) / float64(p.filled)
	if timers > 0 {
		s.TimerCost = phases[PhasePlants] / time.Duration(timers)
	}
	return s
}

// LogStats logs the stats at Info.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.Float64("timers_avg", s.TimersAvg),
		slog.Int("timers_max", s.TimersMax),
		slog.Float64("pending_avg", s.PendingAvg),
		slog.Int64("timer_cost_ns", s.TimerCost.Nanoseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEndMs  int64   `csv:"window_end_ms"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	GardenPct    float64 `csv:"garden_pct"`
	PlantsPct    float64 `csv:"plants_pct"`
	AnimPct      float64 `csv:"anim_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	TimersAvg    float64 `csv:"timers_avg"`
	TimersMax    int     `csv:"timers_max"`
	PendingAvg   float64 `csv:"pending_avg"`
	TimerCostNS  int64   `csv:"timer_cost_ns"`
}

// ToCSV flattens the stats for the perf CSV.
func (s PerfStats) ToCSV(windowEndMs int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEndMs:  windowEndMs,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		GardenPct:    s.PhasePct[PhaseGarden],
		PlantsPct:    s.PhasePct[PhasePlants],
		AnimPct:      s.PhasePct[PhaseAnim],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
		TimersAvg:    s.TimersAvg,
		TimersMax:    s.TimersMax,
		PendingAvg:   s.PendingAvg,
		TimerCostNS:  s.TimerCost.Nanoseconds(),
	}
}
