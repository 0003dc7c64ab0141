package garden

import (
	"errors"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/systems"
	"github.com/pthm-cable/sprout/telemetry"
)

func newTestGarden(t *testing.T, mutate func(*config.Config)) (*Garden, *config.Config) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, 42), cfg
}

func playing(t *testing.T, mutate func(*config.Config)) (*Garden, *config.Config) {
	t.Helper()
	g, cfg := newTestGarden(t, mutate)
	g.Start()
	if g.Phase() != PhasePlaying {
		t.Fatalf("phase = %s after Start", g.Phase())
	}
	return g, cfg
}

func TestNewGarden(t *testing.T) {
	g, _ := newTestGarden(t, nil)

	if g.Phase() != PhaseSplash {
		t.Errorf("phase = %s, want splash", g.Phase())
	}
	if g.Money() != 1000 {
		t.Errorf("money = %d, want 1000", g.Money())
	}
	cells := g.Cells()
	if len(cells) != 9 {
		t.Fatalf("cells = %d, want 9", len(cells))
	}
	for i, c := range cells {
		wantX := -5 + float64(i%3)*5
		wantZ := -5 + float64(i/3)*5
		if c.Position.X != wantX || c.Position.Z != wantZ || c.Position.Y != 0 {
			t.Errorf("cell %d at %+v, want (%v, 0, %v)", i, c.Position, wantX, wantZ)
		}
		if !c.Enabled || c.Occupied {
			t.Errorf("cell %d enabled=%v occupied=%v", i, c.Enabled, c.Occupied)
		}
	}
}

func TestSplashTimesOut(t *testing.T) {
	g, cfg := newTestGarden(t, nil)

	g.Update(cfg.Garden.SplashMs - 1)
	if g.Phase() != PhaseSplash {
		t.Fatalf("phase = %s before splash timeout", g.Phase())
	}
	g.Update(1)
	if g.Phase() != PhasePlaying {
		t.Errorf("phase = %s after splash timeout, want playing", g.Phase())
	}
}

func TestPlant(t *testing.T) {
	g, cfg := playing(t, nil)

	root, err := g.Plant(4)
	if err != nil {
		t.Fatal(err)
	}
	if g.Money() != cfg.Garden.StartingMoney-cfg.Garden.PlantCost {
		t.Errorf("money = %d after planting", g.Money())
	}

	c := g.Cells()[4]
	if !c.Occupied || c.Root != root {
		t.Fatalf("cell 4 = %+v", c)
	}
	snap, ok := g.Plants().Snapshot(root)
	if !ok {
		t.Fatal("root not in plant system")
	}
	if snap.Level != 0 || snap.Junction.Position != c.Position {
		t.Errorf("root level %d at %+v, want level 0 at %+v", snap.Level, snap.Junction.Position, c.Position)
	}
	if g.Lifetime(4) == nil {
		t.Error("no lifetime record for planted cell")
	}
}

func TestPlantErrors(t *testing.T) {
	t.Run("not playing", func(t *testing.T) {
		g, _ := newTestGarden(t, nil)
		if _, err := g.Plant(0); !errors.Is(err, ErrNotPlaying) {
			t.Errorf("err = %v, want ErrNotPlaying", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*config.Config)
		setup  func(*Garden)
		index  int
		want   error
	}{
		{"negative index", nil, nil, -1, ErrNoSuchCell},
		{"index past grid", nil, nil, 9, ErrNoSuchCell},
		{"disabled", func(c *config.Config) { c.Garden.DisabledCells = []int{3} }, nil, 3, ErrCellDisabled},
		{"occupied", nil, func(g *Garden) { g.Plant(2) }, 2, ErrCellOccupied},
		{"no money", func(c *config.Config) { c.Garden.StartingMoney = 1 }, func(g *Garden) { g.Plant(0) }, 1, ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := playing(t, tt.mutate)
			if tt.setup != nil {
				tt.setup(g)
			}
			money := g.Money()
			if _, err := g.Plant(tt.index); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if g.Money() != money {
				t.Errorf("failed plant charged %d", money-g.Money())
			}
		})
	}
}

func TestSellCreditsLivingSegments(t *testing.T) {
	g, cfg := playing(t, nil)
	root, err := g.Plant(0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		g.DebugGrow()
	}

	alive := g.Plants().CountAlive(root)
	if alive < 2 {
		t.Fatalf("expected branches after 8 GROWs, got %d segments", alive)
	}
	before := g.Money()

	credit, err := g.Sell(0)
	if err != nil {
		t.Fatal(err)
	}
	if credit != alive*cfg.Garden.SellPrice {
		t.Errorf("credit = %d, want %d", credit, alive*cfg.Garden.SellPrice)
	}
	if g.Money() != before+credit {
		t.Errorf("money = %d, want %d", g.Money(), before+credit)
	}
	if g.Cells()[0].Occupied || g.Plants().Alive(root) {
		t.Error("tree still present after sell")
	}
	if _, err := g.Sell(0); !errors.Is(err, ErrCellEmpty) {
		t.Errorf("second sell err = %v, want ErrCellEmpty", err)
	}
}

func TestThrash(t *testing.T) {
	g, _ := playing(t, nil)
	root, _ := g.Plant(5)
	g.DebugGrow()
	money := g.Money()

	if err := g.Thrash(5); err != nil {
		t.Fatal(err)
	}
	if g.Money() != money {
		t.Errorf("thrash changed money %d -> %d", money, g.Money())
	}
	if g.Plants().Alive(root) || g.Cells()[5].Occupied {
		t.Error("tree still present after thrash")
	}
	if err := g.Thrash(5); !errors.Is(err, ErrCellEmpty) {
		t.Errorf("err = %v, want ErrCellEmpty", err)
	}
	if err := g.Thrash(12); !errors.Is(err, ErrNoSuchCell) {
		t.Errorf("err = %v, want ErrNoSuchCell", err)
	}
}

func TestDebugGrowReachesEveryRoot(t *testing.T) {
	g, _ := playing(t, nil)
	a, _ := g.Plant(0)
	b, _ := g.Plant(8)

	if err := g.DebugGrow(); err != nil {
		t.Fatal(err)
	}
	for _, root := range []ecs.Entity{a, b} {
		snap, ok := g.Plants().Snapshot(root)
		if !ok {
			t.Fatalf("root %v missing", root)
		}
		if snap.Age != components.AgeBaby {
			t.Errorf("root %v age %v after one DebugGrow, want baby", root, snap.Age)
		}
	}
}

func TestGameOverAndReset(t *testing.T) {
	g, cfg := playing(t, nil)
	g.Plant(1)
	g.Plant(2)

	if err := g.GameOver(); err != nil {
		t.Fatal(err)
	}
	if g.Phase() != PhaseOver {
		t.Fatalf("phase = %s, want over", g.Phase())
	}
	if err := g.GameOver(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("second GameOver err = %v", err)
	}
	if err := g.DebugGrow(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("DebugGrow while over err = %v", err)
	}

	g.Update(cfg.Garden.OverMs - 1)
	if g.Phase() != PhaseOver {
		t.Fatalf("phase = %s before over timeout", g.Phase())
	}
	g.Update(1)

	if g.Phase() != PhaseSplash || g.Session() != 2 {
		t.Errorf("phase %s session %d, want splash session 2", g.Phase(), g.Session())
	}
	if g.Money() != cfg.Garden.StartingMoney {
		t.Errorf("money = %d after reset", g.Money())
	}
	for _, c := range g.Cells() {
		if c.Occupied {
			t.Errorf("cell %d still occupied after reset", c.Index)
		}
	}
	if g.Plants().Census().Segments != 0 {
		t.Error("plant system not fresh after reset")
	}
}

func TestReconfigureAppliesNextSession(t *testing.T) {
	g, cfg := playing(t, nil)

	next := config.Default()
	next.Garden.StartingMoney = 7
	next.Garden.DisabledCells = []int{0}
	g.Reconfigure(next)

	// The running session keeps its settings
	if _, err := g.Plant(0); err != nil {
		t.Fatalf("plant in current session: %v", err)
	}
	if g.Money() != cfg.Garden.StartingMoney-cfg.Garden.PlantCost {
		t.Errorf("money = %d", g.Money())
	}

	g.GameOver()
	g.Update(cfg.Garden.OverMs)

	if g.Session() != 2 || g.Money() != 7 {
		t.Errorf("session %d money %d, want session 2 money 7", g.Session(), g.Money())
	}
	if g.Cells()[0].Enabled {
		t.Error("cell 0 enabled after reconfigure")
	}
}

func TestAutoGameOverWhenBroke(t *testing.T) {
	g, _ := playing(t, func(c *config.Config) { c.Garden.StartingMoney = 1 })
	if _, err := g.Plant(0); err != nil {
		t.Fatal(err)
	}

	// A living tree keeps the session going
	g.Update(1000)
	if g.Phase() != PhasePlaying {
		t.Fatalf("phase = %s with a living tree", g.Phase())
	}

	if err := g.Thrash(0); err != nil {
		t.Fatal(err)
	}
	if g.Phase() != PhaseOver {
		t.Errorf("phase = %s after thrashing the last tree with no money", g.Phase())
	}
}

func TestAutoGameOverWhenTreeDies(t *testing.T) {
	g, _ := playing(t, func(c *config.Config) {
		c.Garden.StartingMoney = 1
		c.Plant.MaxLevel = 1
	})
	g.Plant(0)

	for i := 0; i < 200 && g.Phase() == PhasePlaying; i++ {
		g.Update(1000)
	}
	if g.Phase() != PhaseOver {
		t.Errorf("phase = %s after every segment died", g.Phase())
	}
}

func TestHarvestSellsDeadTrees(t *testing.T) {
	g, cfg := playing(t, func(c *config.Config) { c.Plant.MaxLevel = 1 })
	old, _ := g.Plant(0)

	g.Update(30_000)
	young, _ := g.Plant(1)

	// Sold nothing while every root lives
	if sold, _ := g.Harvest(); sold != 0 {
		t.Fatalf("harvested %d living trees", sold)
	}

	for i := 0; i < 22; i++ {
		g.Update(1000)
	}
	snap, _ := g.Plants().Snapshot(old)
	if !snap.Dead {
		t.Fatalf("root not dead after %d grow ticks", snap.GrowCount)
	}
	alive := g.Plants().CountAlive(old)
	money := g.Money()

	sold, credit := g.Harvest()
	if sold != 1 || credit != alive*cfg.Garden.SellPrice {
		t.Errorf("harvest = %d trees for %d, want 1 for %d", sold, credit, alive*cfg.Garden.SellPrice)
	}
	if g.Money() != money+credit {
		t.Errorf("money = %d, want %d", g.Money(), money+credit)
	}
	cells := g.Cells()
	if cells[0].Occupied {
		t.Error("harvested cell still occupied")
	}
	if !cells[1].Occupied || cells[1].Root != young {
		t.Error("living tree harvested")
	}
}

func TestPlantAll(t *testing.T) {
	g, _ := playing(t, func(c *config.Config) {
		c.Garden.DisabledCells = []int{4}
		c.Garden.StartingMoney = 5
	})

	if n := g.PlantAll(); n != 5 {
		t.Errorf("planted %d, want 5 (money limit)", n)
	}
	if g.Money() != 0 {
		t.Errorf("money = %d", g.Money())
	}
	if g.Cells()[4].Occupied {
		t.Error("disabled cell planted")
	}
}

func TestTelemetryFlow(t *testing.T) {
	g, cfg := playing(t, nil)
	g.Plant(0)
	g.Plant(1)

	for !g.ShouldFlush() {
		g.Update(cfg.Sim.TickMs)
	}
	stats := g.Flush()

	if stats.Trees != 2 || stats.Plants != 2 {
		t.Errorf("trees %d plants %d, want 2/2", stats.Trees, stats.Plants)
	}
	if stats.Segments == 0 || stats.Segments != stats.Alive+stats.Dead {
		t.Errorf("segments %d alive %d dead %d", stats.Segments, stats.Alive, stats.Dead)
	}
	if stats.Branches != stats.Segments-2 {
		t.Errorf("branch events %d, want %d", stats.Branches, stats.Segments-2)
	}

	events := g.DrainEvents()
	cells := map[int]bool{}
	for _, ev := range events {
		if ev.Type == telemetry.EventSpawn {
			if ev.Cell < 0 {
				t.Errorf("spawn event without cell: %+v", ev)
			}
			cells[ev.Cell] = true
		}
		if ev.TimeMs > g.Clock() {
			t.Errorf("event in the future: %+v", ev)
		}
	}
	if !cells[0] || !cells[1] {
		t.Errorf("spawn cells = %v, want 0 and 1", cells)
	}
}

func TestSnapshot(t *testing.T) {
	g, _ := playing(t, func(c *config.Config) { c.Garden.DisabledCells = []int{8} })
	root, _ := g.Plant(3)
	g.Update(6000)

	snap := g.Snapshot()
	if snap.Trees() != 1 || snap.Money != g.Money() || snap.Phase != "playing" {
		t.Errorf("snapshot header = %+v", snap)
	}
	if snap.Cells[8].Enabled {
		t.Error("disabled cell reported enabled")
	}

	cell := snap.Cells[3]
	if cell.Tree == nil || cell.Tree.ID != root.ID() {
		t.Fatalf("cell 3 tree = %+v", cell.Tree)
	}
	if cell.Lifetime == nil || cell.Lifetime.AgeMs != 6000 {
		t.Errorf("lifetime = %+v", cell.Lifetime)
	}

	count := 0
	var walk func(systems.TreeSnapshot)
	walk = func(n systems.TreeSnapshot) {
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(*cell.Tree)
	if count != g.Plants().CountAlive(root) {
		t.Errorf("snapshot has %d segments, tree has %d alive", count, g.Plants().CountAlive(root))
	}
}

func TestWorkReportsPlantTimers(t *testing.T) {
	g, _ := playing(t, nil)
	if _, err := g.Plant(0); err != nil {
		t.Fatal(err)
	}

	g.Update(500)
	if w := g.Work(); w.Timers != 0 || w.Pending != 1 {
		t.Errorf("work after 0.5s = %+v, want no timers and one pending", w)
	}
	g.Update(500)
	if w := g.Work(); w.Timers != 1 || w.Pending != 1 {
		t.Errorf("work after 1s = %+v, want one fired and one pending", w)
	}

	g.GameOver()
	g.Update(500)
	if w := g.Work(); w.Timers != 0 {
		t.Errorf("timers fired while over: %+v", w)
	}
}
