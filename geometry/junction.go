package geometry

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Junction is an attachment point for a child segment: a position in the
// parent's local frame plus an XYZ Euler rotation.
type Junction struct {
	Position r3.Vec `json:"position"`
	Rotation r3.Vec `json:"rotation"`
}

// OutwardAngle returns the in-plane rotation for a branch growing off the
// edge a->b. The angle is perpendicular to the edge and always has a
// non-negative cosine so branches face away from the segment's axis.
func OutwardAngle(a, b r2.Vec) float64 {
	m := -1 / ((b.Y - a.Y) / (b.X - a.X))
	rz := math.Atan(m) - math.Pi/2
	if math.Cos(rz) < 0 {
		rz += math.Pi
	}
	return rz
}

// EdgeJunctions returns count evenly spaced interior points along a->b, at
// i/(count+1) for i in 1..count. Each shares the edge's outward angle and
// gets independent X/Y tilt jitter in [-tilt, tilt).
func EdgeJunctions(rng *rand.Rand, a, b r2.Vec, count int, tilt float64) []Junction {
	rz := OutwardAngle(a, b)
	d := r2.Sub(b, a)

	out := make([]Junction, 0, count)
	for i := 1; i <= count; i++ {
		f := float64(i) / float64(count+1)
		p := r2.Add(a, r2.Scale(f, d))
		out = append(out, Junction{
			Position: r3.Vec{X: p.X, Y: p.Y},
			Rotation: r3.Vec{
				X: -tilt + rng.Float64()*2*tilt,
				Y: -tilt + rng.Float64()*2*tilt,
				Z: rz,
			},
		})
	}
	return out
}
