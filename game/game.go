package game

import (
	"context"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/anim"
	"github.com/pthm-cable/sprout/camera"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/garden"
	"github.com/pthm-cable/sprout/inspector"
	"github.com/pthm-cable/sprout/telemetry"
)

// Options configures a new Game.
type Options struct {
	Seed           int64
	LogStats       bool
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	AutoTend       bool   // Replant and harvest without input; always on when headless
	DBPath         string // SQLite run store; empty disables
	ConfigPath     string // Watched for changes when WatchConfig is set
	WatchConfig    bool
}

// Game drives a garden and, unless headless, draws it.
type Game struct {
	cfg    *config.Config
	garden *garden.Garden

	// Viewer state, nil when headless
	camera    *camera.Orbit
	springs   *anim.Springs[ecs.Entity]
	inspector *inspector.Inspector

	// State
	tick           int64
	accumMs        float64
	paused         bool
	headless       bool
	autoTend       bool
	stepsPerUpdate int
	hoveredCell    int
	selectedCell   int
	lastSession    int
	lastPhase      garden.Phase
	status         string

	// Telemetry
	logStats      bool
	snapshotDir   string
	outputManager *telemetry.OutputManager
	perfCollector *telemetry.PerfCollector
	store         *telemetry.RunStore
	runID         int64

	// Config hot reload
	configUpdates <-chan *config.Config
	stopWatch     context.CancelFunc

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game. Graphical mode needs an open raylib window.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = max(cfg.Sim.StepsPerUpdate, 1)
	}

	g := &Game{
		cfg:            cfg,
		garden:         garden.New(cfg, opts.Seed),
		headless:       opts.Headless,
		autoTend:       opts.AutoTend || opts.Headless,
		stepsPerUpdate: steps,
		hoveredCell:    -1,
		selectedCell:   -1,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		perfCollector:  telemetry.NewPerfCollector(60),
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}
	g.lastSession = g.garden.Session()
	g.lastPhase = g.garden.Phase()

	if !opts.Headless {
		g.camera = camera.New(r3.Vec{})
		g.springs = anim.NewSprings[ecs.Entity](cfg.Render.SpringMs)
		g.inspector = inspector.New(int32(g.screenWidth), "Tree")
		g.setInspectorLimits()
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	if opts.DBPath != "" {
		g.openStore(opts.DBPath, opts.Seed)
	}

	if opts.WatchConfig && opts.ConfigPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		updates, err := config.Watch(ctx, opts.ConfigPath, 250*time.Millisecond)
		if err != nil {
			cancel()
			slog.Error("failed to watch config", "path", opts.ConfigPath, "error", err)
		} else {
			g.configUpdates = updates
			g.stopWatch = cancel
		}
	}

	return g
}

// openStore opens the run store and registers this run.
func (g *Game) openStore(path string, seed int64) {
	store, err := telemetry.NewRunStore(path)
	if err != nil {
		slog.Error("failed to open run store", "path", path, "error", err)
		return
	}
	data, err := g.cfg.YAML()
	if err != nil {
		slog.Error("failed to encode config", "error", err)
	}
	runID, err := store.BeginRun(seed, string(data))
	if err != nil {
		slog.Error("failed to begin run", "error", err)
		store.Close()
		return
	}
	g.store, g.runID = store, runID
	slog.Info("run store opened", "path", path, "run", runID)
}

// applyConfigUpdates takes the latest reloaded config, if any. Render
// settings apply at once; the garden picks up the rest next session.
func (g *Game) applyConfigUpdates() {
	if g.configUpdates == nil {
		return
	}
	select {
	case cfg, ok := <-g.configUpdates:
		if !ok {
			g.configUpdates = nil
			return
		}
		if g.springs != nil && cfg.Render.SpringMs != g.cfg.Render.SpringMs {
			g.springs = anim.NewSprings[ecs.Entity](cfg.Render.SpringMs)
		}
		g.cfg = cfg
		g.garden.Reconfigure(cfg)
		g.setInspectorLimits()
		g.status = "config reloaded"
	default:
	}
}

// Update handles input and runs as many fixed ticks as the frame time covers.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.applyConfigUpdates()
	g.handleInput()

	if g.paused {
		return
	}

	tickMs := float64(g.cfg.Sim.TickMs)
	g.accumMs += float64(rl.GetFrameTime()) * 1000 * float64(g.stepsPerUpdate)

	// Drop backlog after a stall instead of spiralling
	limit := tickMs * float64(4*g.stepsPerUpdate)
	if g.accumMs > limit {
		g.accumMs = limit
	}
	for g.accumMs >= tickMs {
		g.step()
		g.accumMs -= tickMs
	}
}

// UpdateHeadless runs StepsPerUpdate ticks without touching raylib.
func (g *Game) UpdateHeadless() {
	g.applyConfigUpdates()
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step runs a single tick.
func (g *Game) step() {
	tickMs := g.cfg.Sim.TickMs
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseGarden)
	if g.autoTend {
		g.tend()
	}

	g.perfCollector.StartPhase(telemetry.PhasePlants)
	g.garden.Update(tickMs)

	if g.springs != nil {
		g.perfCollector.StartPhase(telemetry.PhaseAnim)
		g.syncSprings(float32(tickMs) / 1000)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.checkSession()
	g.flushTelemetry()

	g.perfCollector.EndTick(g.garden.Work())
	g.tick++
}

// tend harvests dead trees and replants every free cell.
func (g *Game) tend() {
	if g.garden.Phase() != garden.PhasePlaying {
		return
	}
	if sold, credit := g.garden.Harvest(); sold > 0 {
		slog.Debug("harvested", "trees", sold, "credit", credit)
	}
	g.garden.PlantAll()
}

// checkSession reacts to phase changes: a finished session is snapshotted,
// a fresh one drops the old animation state.
func (g *Game) checkSession() {
	phase := g.garden.Phase()
	if phase == garden.PhaseOver && g.lastPhase != garden.PhaseOver && g.snapshotDir != "" {
		g.saveSnapshot()
	}
	g.lastPhase = phase

	if s := g.garden.Session(); s != g.lastSession {
		g.lastSession = s
		g.selectedCell = -1
		if g.springs != nil {
			g.springs.Reset()
		}
	}
}

// Tick returns the number of ticks run.
func (g *Game) Tick() int64 {
	return g.tick
}

// Garden returns the underlying garden.
func (g *Game) Garden() *garden.Garden {
	return g.garden
}

// Unload flushes final output and closes files.
func (g *Game) Unload() {
	if g.stopWatch != nil {
		g.stopWatch()
	}

	g.writeEvents(g.garden.DrainEvents())
	if err := g.store.Close(); err != nil {
		slog.Error("failed to close run store", "error", err)
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteSnapshot(g.garden.Snapshot()); err != nil {
			slog.Error("failed to write snapshot", "error", err)
		}
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
