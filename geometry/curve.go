package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CatmullRom is an open centripetal Catmull-Rom spline through its control
// points. The curve passes through every control point; a closed loop is
// made by repeating the first point at the end.
type CatmullRom struct {
	Points []r3.Vec
}

// Point evaluates the curve at t in [0, 1].
func (c CatmullRom) Point(t float64) r3.Vec {
	pts := c.Points
	l := len(pts)
	switch l {
	case 0:
		return r3.Vec{}
	case 1:
		return pts[0]
	}

	p := float64(l-1) * t
	seg := int(math.Floor(p))
	w := p - float64(seg)
	if seg >= l-1 {
		seg = l - 2
		w = 1
	}
	if seg < 0 {
		seg, w = 0, 0
	}

	// Phantom end points are reflections of the neighbouring control point
	var p0, p3 r3.Vec
	if seg > 0 {
		p0 = pts[seg-1]
	} else {
		p0 = r3.Add(pts[0], r3.Sub(pts[0], pts[1]))
	}
	p1 := pts[seg]
	p2 := pts[seg+1]
	if seg+2 < l {
		p3 = pts[seg+2]
	} else {
		p3 = r3.Add(pts[l-1], r3.Sub(pts[l-1], pts[l-2]))
	}

	// Centripetal knot spacing: |p_i - p_j|^0.5
	dt0 := math.Pow(r3.Norm2(r3.Sub(p0, p1)), 0.25)
	dt1 := math.Pow(r3.Norm2(r3.Sub(p1, p2)), 0.25)
	dt2 := math.Pow(r3.Norm2(r3.Sub(p2, p3)), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return r3.Vec{
		X: nonuniform(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2, w),
		Y: nonuniform(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2, w),
		Z: nonuniform(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2, w),
	}
}

// Sample returns divisions+1 points at t = i/divisions.
func (c CatmullRom) Sample(divisions int) []r3.Vec {
	out := make([]r3.Vec, divisions+1)
	for i := range out {
		out[i] = c.Point(float64(i) / float64(divisions))
	}
	return out
}

// nonuniform evaluates one coordinate of the cubic Hermite segment between
// x1 and x2 with tangents derived from the non-uniform knot spacing.
func nonuniform(x0, x1, x2, x3, dt0, dt1, dt2, t float64) float64 {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1

	c0 := x1
	c1 := t1
	c2 := -3*x1 + 3*x2 - 2*t1 - t2
	c3 := 2*x1 - 2*x2 + t1 + t2
	return c0 + t*(c1+t*(c2+t*c3))
}
