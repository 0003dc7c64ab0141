package garden

import (
	"errors"
	"slices"

	"github.com/pthm-cable/sprout/systems"
	"github.com/pthm-cable/sprout/telemetry"
)

// Phase returns the current session phase.
func (g *Garden) Phase() Phase { return g.phase }

// Money returns the current balance.
func (g *Garden) Money() int { return g.money }

// Session returns the 1-based session number.
func (g *Garden) Session() int { return g.session }

// Clock returns the total logical time in milliseconds.
func (g *Garden) Clock() int64 { return g.clock }

// PhaseElapsed returns the time spent in the current phase.
func (g *Garden) PhaseElapsed() int64 { return g.phaseElapsed }

// Seed returns the seed the garden was created with.
func (g *Garden) Seed() int64 { return g.seed }

// Work returns the plant work of the last Update.
func (g *Garden) Work() telemetry.TickWork {
	return telemetry.TickWork{Timers: g.lastFired, Pending: g.plants.PendingTimers()}
}

// Plants exposes the plant system for read-only queries such as Walk.
func (g *Garden) Plants() *systems.PlantSystem { return g.plants }

// Cells returns a copy of the grid.
func (g *Garden) Cells() []Cell { return slices.Clone(g.cells) }

// Lifetime returns a copy of the running stats of the tree in cell index
// aged to the current clock, or nil.
func (g *Garden) Lifetime(index int) *telemetry.LifetimeStats {
	ls := g.lifetimes.Get(index)
	if ls == nil {
		return nil
	}
	cp := *ls
	cp.AgeMs = g.clock - cp.PlantedMs
	return &cp
}

// PlantAll plants every enabled empty cell while money allows and returns
// the number planted.
func (g *Garden) PlantAll() int {
	n := 0
	for i := range g.cells {
		_, err := g.Plant(i)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrNotPlaying):
			return n
		}
	}
	return n
}

// Harvest sells every tree whose root has died. Returns the number of trees
// sold and the total credit.
func (g *Garden) Harvest() (sold, credit int) {
	for i, c := range g.cells {
		if !c.Occupied {
			continue
		}
		if snap, ok := g.plants.Snapshot(c.Root); !ok || !snap.Dead {
			continue
		}
		n, err := g.Sell(i)
		if err != nil {
			return sold, credit
		}
		sold++
		credit += n
	}
	return sold, credit
}

// treeSizes counts segments per planted cell.
func (g *Garden) treeSizes() []float64 {
	var sizes []float64
	for _, c := range g.cells {
		if !c.Occupied {
			continue
		}
		n := 0
		g.plants.Walk(c.Root, func(systems.RenderNode) { n++ })
		sizes = append(sizes, float64(n))
	}
	return sizes
}

// ShouldFlush reports whether the current stats window is complete.
func (g *Garden) ShouldFlush() bool {
	return g.collector.ShouldFlush(g.clock)
}

// Flush closes the current stats window.
func (g *Garden) Flush() telemetry.WindowStats {
	return g.collector.Flush(g.clock, telemetry.GardenState{
		Phase:     string(g.phase),
		Session:   g.session,
		Money:     g.money,
		TreeSizes: g.treeSizes(),
		Census:    g.plants.Census(),
	})
}

// DrainEvents returns the events recorded since the last drain.
func (g *Garden) DrainEvents() []telemetry.Event {
	return g.collector.DrainEvents()
}

// Snapshot captures the whole garden, one nested tree per planted cell.
func (g *Garden) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RNGSeed: g.seed,
		TimeMs:  g.clock,
		Session: g.session,
		Phase:   string(g.phase),
		Money:   g.money,
		Cells:   make([]telemetry.CellState, len(g.cells)),
	}
	for i, c := range g.cells {
		cs := telemetry.CellState{
			Index:    c.Index,
			Position: c.Position,
			Enabled:  c.Enabled,
		}
		if c.Occupied {
			if tree, ok := g.plants.Tree(c.Root); ok {
				cs.Tree = &tree
			}
			cs.Lifetime = g.Lifetime(i)
		}
		snap.Cells[i] = cs
	}
	return snap
}
