// Package geometry generates the procedural outline, flower points and branch
// junctions of a single plant segment.
package geometry

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/config"
)

// Control point indices of the leaf outline, counter-clockwise from the
// lower left corner of the base.
const (
	ctrlBaseLeft   = iota // A
	ctrlBaseRight         // B
	ctrlBulgeRight        // C
	ctrlTopRight          // D
	ctrlTopLeft           // E
	ctrlBulgeLeft         // F
	numControls
)

// junctionEdges lists the control point pairs branches may attach along.
var junctionEdges = [][2]int{
	{ctrlBulgeRight, ctrlTopRight},
	{ctrlTopLeft, ctrlTopRight},
	{ctrlBulgeLeft, ctrlTopLeft},
}

// Shape is the immutable geometry of one segment in its local frame.
type Shape struct {
	// Controls are the jittered control points A..F.
	Controls [numControls]r2.Vec `json:"-"`

	// Outline is the closed polygon: the base point followed by every
	// sampled curve point. The last sample coincides with the first.
	Outline []r2.Vec `json:"outline"`

	// Junctions are branch attachment candidates, consumed from the end.
	Junctions []Junction `json:"junctions"`

	// FlowerPoints are the sampled curve points in the upper portion.
	FlowerPoints []r3.Vec `json:"flower_points"`
}

// RandomShape builds a randomized leaf outline, its flower candidates and
// its branch junctions.
func RandomShape(rng *rand.Rand, cfg config.ShapeConfig) Shape {
	w := between(rng, cfg.MinWidth, cfg.MaxWidth)
	h := between(rng, cfg.MinHeight, cfg.MaxHeight)
	dw := between(rng, cfg.MinBulge, cfg.MaxBulge)
	hw, hh := w/2, h/2

	j := func() float64 { return between(rng, -cfg.Jitter, cfg.Jitter) }

	var s Shape
	s.Controls = [numControls]r2.Vec{
		ctrlBaseLeft:   {X: -hw + j(), Y: j()},
		ctrlBaseRight:  {X: hw + j(), Y: j()},
		ctrlBulgeRight: {X: hw + dw + j(), Y: hh + j()},
		ctrlTopRight:   {X: hw + j(), Y: h + j()},
		ctrlTopLeft:    {X: -hw + j(), Y: h + j()},
		ctrlBulgeLeft:  {X: -hw - dw + j(), Y: hh + j()},
	}

	ctrl := make([]r3.Vec, 0, numControls+1)
	for _, c := range s.Controls {
		ctrl = append(ctrl, r3.Vec{X: c.X, Y: c.Y})
	}
	ctrl = append(ctrl, ctrl[0])

	samples := CatmullRom{Points: ctrl}.Sample(cfg.Samples)

	s.Outline = make([]r2.Vec, 0, len(samples)+1)
	s.Outline = append(s.Outline, s.Controls[ctrlBaseLeft])
	for _, p := range samples {
		s.Outline = append(s.Outline, r2.Vec{X: p.X, Y: p.Y})
		if p.Y > cfg.FlowerMinY {
			s.FlowerPoints = append(s.FlowerPoints, p)
		}
	}

	s.Junctions = make([]Junction, 0, len(junctionEdges))
	for _, e := range junctionEdges {
		candidates := EdgeJunctions(rng, s.Controls[e[0]], s.Controls[e[1]], cfg.JunctionPoints, cfg.TiltJitter)
		s.Junctions = append(s.Junctions, candidates[rng.Intn(len(candidates))])
	}
	rng.Shuffle(len(s.Junctions), func(a, b int) {
		s.Junctions[a], s.Junctions[b] = s.Junctions[b], s.Junctions[a]
	})

	return s
}

// between returns a uniform value in [lo, hi).
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
