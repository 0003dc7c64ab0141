package telemetry

import "github.com/pthm-cable/sprout/systems"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowMs int64

	// Current window tracking
	windowStartMs int64

	// Event counters for current window
	spawns   int
	branches int
	blooms   int
	deaths   int
	plants   int
	sells    int
	thrashes int
	earned   int

	// Events not yet drained to output
	pending []Event
}

// NewCollector creates a new stats collector.
// windowMs: how long each stats window lasts in logical milliseconds
func NewCollector(windowMs int64) *Collector {
	if windowMs < 1 {
		windowMs = 1
	}
	return &Collector{windowMs: windowMs}
}

// Record counts an event and queues it for output.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventSpawn:
		c.spawns++
	case EventBranch:
		c.branches++
	case EventBloom:
		c.blooms++
	case EventDeath:
		c.deaths++
	case EventPlant:
		c.plants++
	case EventSell:
		c.sells++
		c.earned += ev.Amount
	case EventThrash:
		c.thrashes++
	}
	c.pending = append(c.pending, ev)
}

// DrainEvents returns the queued events and clears the queue.
func (c *Collector) DrainEvents() []Event {
	out := c.pending
	c.pending = nil
	return out
}

// ShouldFlush returns true if enough time has passed to flush the window.
func (c *Collector) ShouldFlush(nowMs int64) bool {
	return nowMs-c.windowStartMs >= c.windowMs
}

// GardenState is the garden-level state sampled at window end.
type GardenState struct {
	Phase     string
	Session   int
	Money     int
	TreeSizes []float64 // Segment count per planted cell
	Census    systems.Census
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(nowMs int64, state GardenState) WindowStats {
	levels := Summarize(state.Census.Levels)
	grows := Summarize(state.Census.GrowCounts)
	sizes := Summarize(state.TreeSizes)

	stats := WindowStats{
		WindowStartMs: c.windowStartMs,
		WindowEndMs:   nowMs,
		SimTimeSec:    float64(nowMs) / 1000,

		Phase:   state.Phase,
		Session: state.Session,
		Money:   state.Money,
		Trees:   len(state.TreeSizes),

		Segments:  state.Census.Segments,
		Alive:     state.Census.Alive,
		Dead:      state.Census.Dead,
		Blooming:  state.Census.Blooming,
		Senescent: state.Census.Senescent,
		MaxLevel:  state.Census.MaxLevel,

		Spawns:   c.spawns,
		Branches: c.branches,
		Blooms:   c.blooms,
		Deaths:   c.deaths,
		Plants:   c.plants,
		Sells:    c.sells,
		Thrashes: c.thrashes,
		Earned:   c.earned,

		LevelMean: levels.Mean,
		LevelStd:  levels.Std,
		LevelP50:  levels.P50,
		LevelP90:  levels.P90,

		GrowMean: grows.Mean,
		GrowStd:  grows.Std,
		GrowP10:  grows.P10,
		GrowP50:  grows.P50,
		GrowP90:  grows.P90,

		TreeSizeMean: sizes.Mean,
		TreeSizeMax:  sizes.Max,
	}

	// Reset for next window
	c.windowStartMs = nowMs
	c.spawns = 0
	c.branches = 0
	c.blooms = 0
	c.deaths = 0
	c.plants = 0
	c.sells = 0
	c.thrashes = 0
	c.earned = 0

	return stats
}

// WindowMs returns the window length in milliseconds.
func (c *Collector) WindowMs() int64 {
	return c.windowMs
}
