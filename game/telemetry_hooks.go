package game

import (
	"log/slog"

	"github.com/pthm-cable/sprout/telemetry"
)

// flushTelemetry closes the stats window when it is due and writes the
// window, its events and the perf sample.
func (g *Game) flushTelemetry() {
	if !g.garden.ShouldFlush() {
		return
	}

	stats := g.garden.Flush()
	events := g.garden.DrainEvents()
	perfStats := g.perfCollector.Stats()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	g.writeEvents(events)
	if g.store != nil {
		if err := g.store.WriteWindow(g.runID, stats); err != nil {
			slog.Error("failed to store window", "error", err)
		}
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndMs); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// writeEvents sends events to every enabled sink.
func (g *Game) writeEvents(events []telemetry.Event) {
	if len(events) == 0 {
		return
	}
	if err := g.outputManager.WriteEvents(events); err != nil {
		slog.Error("failed to write events", "error", err)
	}
	if g.store != nil {
		if err := g.store.WriteEvents(g.runID, events); err != nil {
			slog.Error("failed to store events", "error", err)
		}
	}
}

// saveSnapshot writes the garden to the snapshot directory.
func (g *Game) saveSnapshot() {
	if g.snapshotDir == "" {
		g.status = "no snapshot dir"
		return
	}

	path, err := telemetry.SaveSnapshot(g.garden.Snapshot(), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	g.status = "saved " + path
	slog.Info("snapshot saved", "path", path, "tick", g.tick, "session", g.garden.Session())
}
