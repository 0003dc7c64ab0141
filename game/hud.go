package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/garden"
	"github.com/pthm-cable/sprout/inspector"
)

// HUD layout
const (
	panelX      = 10
	panelY      = 10
	panelWidth  = 220
	buttonH     = 30
	buttonGap   = 6
	panelHeight = 8*(buttonH+buttonGap) + 20
)

// overHUD reports whether pos lies on the control panel or the inspector.
func (g *Game) overHUD(pos rl.Vector2) bool {
	if rl.CheckCollisionPointRec(pos, rl.NewRectangle(panelX, panelY, panelWidth, panelHeight)) {
		return true
	}
	if parts := g.selectedParts(); parts != nil {
		return rl.CheckCollisionPointRec(pos, g.inspector.Bounds(inspector.Rows(parts...)))
	}
	return false
}

// selectedParts returns the root components and lifetime of the selected
// tree, or nil when nothing inspectable is selected.
func (g *Game) selectedParts() []any {
	if g.inspector == nil || g.selectedCell < 0 {
		return nil
	}
	c := g.garden.Cells()[g.selectedCell]
	if !c.Occupied {
		return nil
	}
	snap, ok := g.garden.Plants().Snapshot(c.Root)
	if !ok {
		return nil
	}
	return []any{
		components.Age{Stage: snap.Age},
		components.Condition{Stage: snap.Condition, GrowCount: snap.GrowCount},
		components.Flowering{Stage: snap.Flowering, Current: snap.CurrentFlowers},
		g.garden.Lifetime(c.Index),
	}
}

// setInspectorLimits scales the grow bar to the death threshold.
func (g *Game) setInspectorLimits() {
	if g.inspector == nil {
		return
	}
	g.inspector.Limits["Grows"] = float32(g.cfg.Plant.DeathGrowCount + 1)
}

// drawHUD draws the control panel and the splash or game over screen.
func (g *Game) drawHUD() {
	switch g.garden.Phase() {
	case garden.PhaseSplash:
		g.drawBanner("Sprout", "click Start or press Enter")
		if gui.Button(rl.NewRectangle(g.screenWidth/2-60, g.screenHeight/2+40, 120, buttonH), "Start") {
			g.garden.Start()
		}
		return
	case garden.PhaseOver:
		g.drawBanner("Game Over", fmt.Sprintf("session %d ended with %d", g.garden.Session(), g.garden.Money()))
		return
	}

	gui.Panel(rl.NewRectangle(panelX, panelY, panelWidth, panelHeight), "Garden")
	y := float32(panelY + 30)
	row := func() rl.Rectangle {
		r := rl.NewRectangle(panelX+10, y, panelWidth-20, buttonH)
		y += buttonH + buttonGap
		return r
	}

	gui.Label(row(), fmt.Sprintf("Money: %d", g.garden.Money()))

	if gui.Button(row(), "Debug Grow") {
		g.report("debug grow", g.garden.DebugGrow())
	}
	if gui.Button(row(), "Plant All") {
		g.garden.PlantAll()
	}

	sel := "Cell: none"
	if g.selectedCell >= 0 {
		c := g.garden.Cells()[g.selectedCell]
		sel = fmt.Sprintf("Cell %d: %s", c.Index, cellTitle(c))
		if c.Occupied {
			sel = fmt.Sprintf("Cell %d: %d alive", c.Index, g.garden.Plants().CountAlive(c.Root))
		}
	}
	gui.Label(row(), sel)

	if gui.Button(row(), "Sell") {
		g.sellSelected()
	}
	if gui.Button(row(), "Thrash") {
		g.thrashSelected()
	}
	if gui.Button(row(), "Game Over") {
		g.report("game over", g.garden.GameOver())
	}
	gui.Label(row(), g.status)

	if parts := g.selectedParts(); parts != nil {
		g.inspector.Draw(parts...)
	}

	g.drawFooter()
}

func (g *Game) sellSelected() {
	if g.selectedCell < 0 {
		return
	}
	_, err := g.garden.Sell(g.selectedCell)
	g.report("sell", err)
}

func (g *Game) thrashSelected() {
	if g.selectedCell < 0 {
		return
	}
	g.report("thrash", g.garden.Thrash(g.selectedCell))
}

// drawBanner draws a centered title with a subtitle below it.
func (g *Game) drawBanner(title, subtitle string) {
	const titleSize, subSize = 60, 20
	tw := rl.MeasureText(title, titleSize)
	sw := rl.MeasureText(subtitle, subSize)
	cx, cy := int32(g.screenWidth/2), int32(g.screenHeight/2)
	rl.DrawText(title, cx-tw/2, cy-titleSize, titleSize, rl.DarkGreen)
	rl.DrawText(subtitle, cx-sw/2, cy+8, subSize, rl.DarkGray)
}

// drawFooter shows speed, pause and tending state along the bottom edge.
func (g *Game) drawFooter() {
	text := fmt.Sprintf("FPS %d  speed %dx  t=%.1fs", rl.GetFPS(), g.stepsPerUpdate, float64(g.garden.Clock())/1000)
	if g.paused {
		text += "  PAUSED"
	}
	if g.autoTend {
		text += "  auto-tend"
	}
	rl.DrawText(text, 10, int32(g.screenHeight)-24, 16, rl.DarkGray)
}
