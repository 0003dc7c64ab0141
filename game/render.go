package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/garden"
	"github.com/pthm-cable/sprout/systems"
)

// Plot dimensions
const (
	plotSize   = 1.5
	plotHeight = 0.25
	leafDepth  = 0.05 // Outline extrusion, front to back
)

// Palette
var (
	colorSky      = rl.NewColor(176, 214, 240, 255)
	colorGround   = rl.NewColor(214, 186, 140, 255)
	colorPlot     = rl.NewColor(230, 140, 40, 255)
	colorHover    = rl.NewColor(255, 105, 180, 255)
	colorDisabled = rl.NewColor(120, 120, 120, 255)
	colorSelected = rl.NewColor(255, 255, 255, 255)
	colorLeaf     = rl.NewColor(70, 150, 60, 255)
	colorDead     = rl.NewColor(0xaa, 0xaa, 0x00, 255)
	colorBloom    = rl.NewColor(255, 255, 255, 255)
	colorWilt     = rl.NewColor(0x99, 0x99, 0x00, 255)
)

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colorSky)

	rl.BeginMode3D(g.camera3D())
	rl.DrawPlane(rl.NewVector3(0, 0, 0), rl.NewVector2(200, 200), colorGround)
	g.drawCells()
	g.drawTrees()
	rl.EndMode3D()

	g.drawHUD()

	rl.EndDrawing()
}

// camera3D maps the orbit onto a raylib camera.
func (g *Game) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   toVector3(g.camera.Eye()),
		Target:     toVector3(g.camera.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

// drawCells draws an empty plot box for each cell without a tree.
func (g *Game) drawCells() {
	for _, c := range g.garden.Cells() {
		p := toVector3(c.Position)
		p.Y = -plotHeight / 2

		col := colorPlot
		switch {
		case !c.Enabled:
			col = colorDisabled
		case c.Index == g.hoveredCell:
			col = colorHover
		}
		if !c.Occupied || !c.Enabled {
			rl.DrawCube(p, plotSize, plotHeight, plotSize, col)
		}

		wire := rl.DarkBrown
		if c.Index == g.selectedCell {
			wire = colorSelected
		}
		rl.DrawCubeWires(p, plotSize, plotHeight, plotSize, wire)
	}
}

// drawTrees walks every planted tree and draws its segments in world space.
func (g *Game) drawTrees() {
	plants := g.garden.Plants()
	for _, c := range g.garden.Cells() {
		if !c.Occupied {
			continue
		}
		world := make(map[ecs.Entity]rl.Matrix)
		plants.Walk(c.Root, func(n systems.RenderNode) {
			parent := rl.MatrixIdentity()
			if m, ok := world[n.Parent]; ok && n.Depth > 0 {
				parent = m
			}
			m := rl.MatrixMultiply(segmentMatrix(n.Junction.Position, n.Junction.Rotation, g.springs.Value(n.Entity)), parent)
			world[n.Entity] = m
			g.drawSegment(n, m)
		})
	}
}

// drawSegment draws one segment's outline and, when visible, its flowers.
func (g *Game) drawSegment(n systems.RenderNode, m rl.Matrix) {
	leaf := colorLeaf
	if n.ForcedDead {
		leaf = colorDead
	}
	for _, z := range []float64{0, leafDepth} {
		for i := 1; i < len(n.Outline); i++ {
			a := rl.Vector3Transform(outlinePoint(n.Outline[i-1], z), m)
			b := rl.Vector3Transform(outlinePoint(n.Outline[i], z), m)
			rl.DrawLine3D(a, b, leaf)
		}
	}

	if !n.FloweringVisible || n.ForcedDead {
		return
	}
	flower := colorWilt
	if n.FloweringStatus == components.StatusBlooming {
		flower = colorBloom
	}
	radius := float32(g.cfg.Render.FlowerRadius) * g.springs.Value(n.Entity)
	for _, p := range n.CurrentFlowers {
		rl.DrawSphere(rl.Vector3Transform(toVector3(p), m), radius, flower)
	}
}

// syncSprings retargets every segment's scale and drops springs of segments
// that no longer exist.
func (g *Game) syncSprings(dt float32) {
	seen := make(map[ecs.Entity]bool)
	plants := g.garden.Plants()
	for _, c := range g.garden.Cells() {
		if !c.Occupied {
			continue
		}
		plants.Walk(c.Root, func(n systems.RenderNode) {
			seen[n.Entity] = true
			g.springs.Target(n.Entity, g.targetScale(n.Meta))
		})
	}
	g.springs.Prune(func(e ecs.Entity) bool { return seen[e] })
	g.springs.Update(dt)
}

// targetScale is the rendered scale of a segment; a missing age scale reads as 1.
func (g *Game) targetScale(meta components.Meta) float32 {
	sf := meta.ScaleFactor
	if sf == 0 {
		sf = 1
	}
	return float32(g.cfg.Render.BaseScale * sf)
}

// segmentMatrix is a segment's local transform: scale, then the junction
// rotation, then the junction offset.
func segmentMatrix(pos, rot r3.Vec, scale float32) rl.Matrix {
	s := rl.MatrixScale(scale, scale, scale)
	r := rl.MatrixRotateXYZ(toVector3(rot))
	t := rl.MatrixTranslate(float32(pos.X), float32(pos.Y), float32(pos.Z))
	return rl.MatrixMultiply(rl.MatrixMultiply(s, r), t)
}

func outlinePoint(p r2.Vec, z float64) rl.Vector3 {
	return rl.NewVector3(float32(p.X), float32(p.Y), float32(z))
}

func toVector3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

// cellTitle labels a cell for the HUD.
func cellTitle(c garden.Cell) string {
	switch {
	case !c.Enabled:
		return "disabled"
	case !c.Occupied:
		return "empty"
	}
	return "planted"
}
