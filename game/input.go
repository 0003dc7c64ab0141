package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/garden"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyEnter) {
		g.garden.Start()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.report("debug grow", g.garden.DebugGrow())
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.autoTend = !g.autoTend
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot()
	}

	g.handleCameraInput()
	g.handleCellInput()
}

// handleResize checks for window resize and records the new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	if g.inspector != nil {
		g.inspector.Anchor(int32(g.screenWidth))
	}
}

// handleCameraInput processes orbit, pan and zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Right drag orbits
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Rotate(float64(-d.X)*0.01, float64(d.Y)*0.01)
	}

	// Pan speed scales with distance for natural feel
	panSpeed := g.camera.Distance * 0.01
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset(g.camera.Target)
	}
}

// handleCellInput updates the hovered cell and handles left clicks: an empty
// cell is planted, an occupied one becomes the selection for the HUD.
func (g *Game) handleCellInput() {
	g.hoveredCell = g.pickCell(rl.GetMousePosition())

	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) || g.hoveredCell < 0 || g.overHUD(rl.GetMousePosition()) {
		return
	}

	cell := g.garden.Cells()[g.hoveredCell]
	if cell.Occupied {
		g.selectedCell = cell.Index
		return
	}
	if _, err := g.garden.Plant(cell.Index); err == nil {
		g.selectedCell = cell.Index
	} else {
		g.report("plant", err)
	}
}

// pickCell returns the index of the cell under the screen position, or -1.
func (g *Game) pickCell(pos rl.Vector2) int {
	ray := rl.GetScreenToWorldRay(pos, g.camera3D())

	best, bestDist := -1, float32(0)
	for _, c := range g.garden.Cells() {
		hit := rl.GetRayCollisionBox(ray, cellBounds(c))
		if hit.Hit && (best < 0 || hit.Distance < bestDist) {
			best, bestDist = c.Index, hit.Distance
		}
	}
	return best
}

// report logs a failed action and shows it on the HUD.
func (g *Game) report(action string, err error) {
	if err == nil {
		g.status = ""
		return
	}
	g.status = err.Error()
	slog.Debug("action failed", "action", action, "error", err, "phase", string(g.garden.Phase()))
}

// cellBounds is the clickable box of a cell: the plot plus the space a tree
// grows into.
func cellBounds(c garden.Cell) rl.BoundingBox {
	p := toVector3(c.Position)
	return rl.NewBoundingBox(
		rl.NewVector3(p.X-plotSize/2, p.Y-plotHeight, p.Z-plotSize/2),
		rl.NewVector3(p.X+plotSize/2, p.Y+plotHeight, p.Z+plotSize/2),
	)
}
