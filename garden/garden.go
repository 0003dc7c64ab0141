// Package garden runs the planting grid: the session phase machine, the
// economy and the plant system the trees live in.
package garden

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/geometry"
	"github.com/pthm-cable/sprout/systems"
	"github.com/pthm-cable/sprout/telemetry"
)

// Phase is the session state.
type Phase string

const (
	PhaseSplash  Phase = "splash"
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"
)

var (
	ErrNotPlaying        = errors.New("garden: not playing")
	ErrNoSuchCell        = errors.New("garden: no such cell")
	ErrCellDisabled      = errors.New("garden: cell disabled")
	ErrCellOccupied      = errors.New("garden: cell occupied")
	ErrCellEmpty         = errors.New("garden: cell empty")
	ErrInsufficientFunds = errors.New("garden: insufficient funds")
)

// Cell is one planting position on the grid.
type Cell struct {
	Index    int
	Position r3.Vec
	Enabled  bool

	Root     ecs.Entity
	Occupied bool
}

// Garden owns the grid, the money and the plant system for one player.
type Garden struct {
	cfg     *config.Config
	pending *config.Config // Applied at the next reset
	rng     *rand.Rand
	seed    int64

	plants *systems.PlantSystem
	cells  []Cell
	owner  map[ecs.Entity]int // Segment to cell index

	planting    int   // Cell of the root being spawned, else -1
	advancing   bool  // Inside plants.Advance
	plantOffset int64 // Garden time minus plant time during Advance
	lastFired   int   // Timers fired by the last Update

	money        int
	phase        Phase
	phaseElapsed int64
	clock        int64 // Total logical time across sessions
	session      int

	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
}

// New creates a garden in the splash phase.
func New(cfg *config.Config, seed int64) *Garden {
	g := &Garden{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		planting:  -1,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindowMs),
	}
	g.reset()
	return g
}

// reset starts a fresh session: new plant system, full purse, empty cells.
func (g *Garden) reset() {
	if g.pending != nil {
		g.cfg, g.pending = g.pending, nil
	}
	g.session++
	g.plants = systems.NewPlantSystem(g.rng, g.cfg.Plant, g.cfg.Shape)
	g.plants.SetHooks(systems.PlantHooks{
		OnSpawn:  g.onSpawn,
		OnDeath:  g.onDeath,
		OnBloom:  g.onBloom,
		OnBranch: g.onBranch,
	})
	g.owner = make(map[ecs.Entity]int)
	g.lifetimes = telemetry.NewLifetimeTracker()
	g.money = g.cfg.Garden.StartingMoney

	disabled := make(map[int]bool, len(g.cfg.Garden.DisabledCells))
	for _, idx := range g.cfg.Garden.DisabledCells {
		disabled[idx] = true
	}
	g.cells = make([]Cell, g.cfg.Derived.CellCount)
	for i := range g.cells {
		g.cells[i] = Cell{
			Index:    i,
			Position: g.cfg.Derived.CellPositions[i],
			Enabled:  !disabled[i],
		}
	}

	g.setPhase(PhaseSplash)
}

func (g *Garden) setPhase(p Phase) {
	if g.phase != p {
		slog.Info("phase", "from", string(g.phase), "to", string(p), "session", g.session)
	}
	g.phase = p
	g.phaseElapsed = 0
}

// Reconfigure replaces the config from the next session on. The running
// session keeps its grid, prices and plant parameters.
func (g *Garden) Reconfigure(cfg *config.Config) {
	g.pending = cfg
}

// Start skips the splash screen.
func (g *Garden) Start() {
	if g.phase == PhaseSplash {
		g.setPhase(PhasePlaying)
	}
}

// cell validates index and returns its cell.
func (g *Garden) cell(index int) (*Cell, error) {
	if index < 0 || index >= len(g.cells) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchCell, index)
	}
	return &g.cells[index], nil
}

// Plant seeds a new tree in the cell at index.
func (g *Garden) Plant(index int) (ecs.Entity, error) {
	if g.phase != PhasePlaying {
		return ecs.Entity{}, ErrNotPlaying
	}
	c, err := g.cell(index)
	if err != nil {
		return ecs.Entity{}, err
	}
	switch {
	case !c.Enabled:
		return ecs.Entity{}, fmt.Errorf("%w: %d", ErrCellDisabled, index)
	case c.Occupied:
		return ecs.Entity{}, fmt.Errorf("%w: %d", ErrCellOccupied, index)
	case g.money < g.cfg.Garden.PlantCost:
		return ecs.Entity{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, g.money, g.cfg.Garden.PlantCost)
	}

	g.money -= g.cfg.Garden.PlantCost
	g.lifetimes.Register(index, g.clock)

	g.planting = index
	root := g.plants.Spawn(components.Plant{
		Level:    0,
		Junction: geometry.Junction{Position: c.Position},
	})
	g.planting = -1
	g.owner[root] = index
	c.Root = root
	c.Occupied = true

	g.collector.Record(telemetry.NewPlantEvent(g.clock, root.ID(), index, g.cfg.Garden.PlantCost, g.money))
	slog.Info("planted", "cell", index, "money", g.money)
	return root, nil
}

// DebugGrow delivers GROW to every planted root.
func (g *Garden) DebugGrow() error {
	if g.phase != PhasePlaying {
		return ErrNotPlaying
	}
	for _, c := range g.cells {
		if c.Occupied {
			g.plants.Grow(c.Root)
		}
	}
	return nil
}

// Sell removes the tree at index and credits SellPrice per living segment.
// Returns the credit.
func (g *Garden) Sell(index int) (int, error) {
	c, err := g.occupied(index)
	if err != nil {
		return 0, err
	}
	credit := g.plants.CountAlive(c.Root) * g.cfg.Garden.SellPrice
	root := c.Root
	g.clear(c)
	g.money += credit

	g.collector.Record(telemetry.NewSellEvent(g.clock, root.ID(), index, credit, g.money))
	slog.Info("sold", "cell", index, "credit", credit, "money", g.money)
	return credit, nil
}

// Thrash removes the tree at index without credit.
func (g *Garden) Thrash(index int) error {
	c, err := g.occupied(index)
	if err != nil {
		return err
	}
	root := c.Root
	g.clear(c)

	g.collector.Record(telemetry.NewThrashEvent(g.clock, root.ID(), index, g.money))
	slog.Info("thrashed", "cell", index, "money", g.money)
	g.checkGameOver()
	return nil
}

func (g *Garden) occupied(index int) (*Cell, error) {
	if g.phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	c, err := g.cell(index)
	if err != nil {
		return nil, err
	}
	if !c.Occupied {
		return nil, fmt.Errorf("%w: %d", ErrCellEmpty, index)
	}
	return c, nil
}

// clear tears down the tree in c and closes its lifetime record.
func (g *Garden) clear(c *Cell) {
	g.plants.Walk(c.Root, func(n systems.RenderNode) {
		delete(g.owner, n.Entity)
	})
	g.plants.Remove(c.Root)
	if ls := g.lifetimes.Remove(c.Index, g.clock); ls != nil {
		slog.Debug("tree removed", "lifetime", *ls)
	}
	c.Root = ecs.Entity{}
	c.Occupied = false
}

// GameOver ends the session.
func (g *Garden) GameOver() error {
	if g.phase != PhasePlaying {
		return ErrNotPlaying
	}
	g.collector.Record(telemetry.NewGameOverEvent(g.clock, g.money))
	g.setPhase(PhaseOver)
	return nil
}

// checkGameOver ends the session once nothing can be planted and nothing
// is left growing.
func (g *Garden) checkGameOver() {
	if g.phase != PhasePlaying || g.money >= g.cfg.Garden.PlantCost {
		return
	}
	for _, c := range g.cells {
		if c.Occupied && g.plants.CountAlive(c.Root) > 0 {
			return
		}
	}
	g.GameOver()
}

// Update advances the session by dt logical milliseconds.
func (g *Garden) Update(dt int64) {
	g.phaseElapsed += dt
	g.lastFired = 0

	switch g.phase {
	case PhaseSplash:
		g.clock += dt
		if g.phaseElapsed >= g.cfg.Garden.SplashMs {
			g.setPhase(PhasePlaying)
		}
	case PhasePlaying:
		// The plant clock only runs while playing
		g.plantOffset = g.clock - g.plants.Now()
		g.advancing = true
		g.lastFired = g.plants.Advance(dt)
		g.advancing = false
		g.clock += dt
		g.checkGameOver()
	case PhaseOver:
		g.clock += dt
		if g.phaseElapsed >= g.cfg.Garden.OverMs {
			g.reset()
		}
	}
}

// now is the garden time of the current event, including timers firing
// part way through an Update.
func (g *Garden) now() int64 {
	if g.advancing {
		return g.plantOffset + g.plants.Now()
	}
	return g.clock
}

// cellOf returns the owning cell of a segment, or -1.
func (g *Garden) cellOf(e ecs.Entity) int {
	if idx, ok := g.owner[e]; ok {
		return idx
	}
	return -1
}

// onSpawn records roots only; a branch's cell is known once onBranch runs.
func (g *Garden) onSpawn(e ecs.Entity, p components.Plant) {
	if p.IsRoot() {
		g.collector.Record(telemetry.NewSpawnEvent(g.now(), e.ID(), g.planting, p.Level))
	}
}

func (g *Garden) onBranch(parent, child ecs.Entity) {
	idx := g.cellOf(parent)
	g.owner[child] = idx

	level := 0
	if snap, ok := g.plants.Snapshot(child); ok {
		level = snap.Level
	}
	g.lifetimes.RecordBranch(idx, level)
	g.collector.Record(telemetry.NewSpawnEvent(g.now(), child.ID(), idx, level))
	g.collector.Record(telemetry.NewBranchEvent(g.now(), parent.ID(), child.ID(), idx))
}

func (g *Garden) onBloom(e ecs.Entity) {
	idx := g.cellOf(e)
	g.lifetimes.RecordBloom(idx)
	g.collector.Record(telemetry.NewBloomEvent(g.now(), e.ID(), idx))
}

func (g *Garden) onDeath(e ecs.Entity, level, growCount int) {
	idx := g.cellOf(e)
	g.lifetimes.RecordDeath(idx)
	g.collector.Record(telemetry.NewDeathEvent(g.now(), e.ID(), idx, level, growCount))
}
