package geometry

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/config"
)

const eps = 1e-9

func shapeConfig() config.ShapeConfig {
	return config.Default().Shape
}

func TestOutlineClosed(t *testing.T) {
	cfg := shapeConfig()
	for seed := int64(1); seed <= 50; seed++ {
		s := RandomShape(rand.New(rand.NewSource(seed)), cfg)

		if got, want := len(s.Outline), cfg.Samples+2; got != want {
			t.Fatalf("seed %d: outline has %d points, want %d", seed, got, want)
		}

		first := s.Outline[0]
		last := s.Outline[len(s.Outline)-1]
		if r2.Norm(r2.Sub(first, last)) > 1e-6 {
			t.Errorf("seed %d: outline not closed: first %+v last %+v", seed, first, last)
		}
		// The move-to point and the first sample are the same base point
		if r2.Norm(r2.Sub(s.Outline[0], s.Outline[1])) > 1e-9 {
			t.Errorf("seed %d: first sample %+v differs from base %+v", seed, s.Outline[1], s.Outline[0])
		}
	}
}

func TestControlPointRanges(t *testing.T) {
	cfg := shapeConfig()
	for seed := int64(1); seed <= 50; seed++ {
		s := RandomShape(rand.New(rand.NewSource(seed)), cfg)
		c := s.Controls

		// Base sits near y=0, top near y in [2, 2.5]
		for _, i := range []int{ctrlBaseLeft, ctrlBaseRight} {
			if math.Abs(c[i].Y) > cfg.Jitter+eps {
				t.Errorf("seed %d: base control %d y=%v outside jitter", seed, i, c[i].Y)
			}
		}
		for _, i := range []int{ctrlTopLeft, ctrlTopRight} {
			if c[i].Y < cfg.MinHeight-cfg.Jitter-eps || c[i].Y > cfg.MaxHeight+cfg.Jitter+eps {
				t.Errorf("seed %d: top control %d y=%v out of range", seed, i, c[i].Y)
			}
		}
		// Bulge points stick out further than the top corners
		if c[ctrlBulgeRight].X <= c[ctrlTopRight].X-2*cfg.Jitter+cfg.MinBulge-eps {
			t.Errorf("seed %d: right bulge %v not outside top %v", seed, c[ctrlBulgeRight].X, c[ctrlTopRight].X)
		}
		if c[ctrlBulgeLeft].X >= c[ctrlTopLeft].X+2*cfg.Jitter-cfg.MinBulge+eps {
			t.Errorf("seed %d: left bulge %v not outside top %v", seed, c[ctrlBulgeLeft].X, c[ctrlTopLeft].X)
		}
	}
}

func TestFlowerPointsUpperPortion(t *testing.T) {
	cfg := shapeConfig()
	s := RandomShape(rand.New(rand.NewSource(7)), cfg)

	if len(s.FlowerPoints) == 0 {
		t.Fatal("expected flower candidates")
	}

	onOutline := make(map[r2.Vec]bool, len(s.Outline))
	for _, p := range s.Outline[1:] {
		onOutline[p] = true
	}

	for _, p := range s.FlowerPoints {
		if p.Y <= cfg.FlowerMinY {
			t.Errorf("flower point %+v not above %v", p, cfg.FlowerMinY)
		}
		if p.Z != 0 {
			t.Errorf("flower point %+v leaves the XY plane", p)
		}
		if !onOutline[r2.Vec{X: p.X, Y: p.Y}] {
			t.Errorf("flower point %+v is not a sampled curve point", p)
		}
	}
}

func TestJunctionsOnEdges(t *testing.T) {
	cfg := shapeConfig()
	for seed := int64(1); seed <= 50; seed++ {
		s := RandomShape(rand.New(rand.NewSource(seed)), cfg)

		if len(s.Junctions) != len(junctionEdges) {
			t.Fatalf("seed %d: %d junctions, want %d", seed, len(s.Junctions), len(junctionEdges))
		}

		// Every edge contributes exactly one junction, at 1/4, 2/4 or 3/4
		used := make([]bool, len(junctionEdges))
		for _, j := range s.Junctions {
			found := -1
			for ei, e := range junctionEdges {
				if used[ei] {
					continue
				}
				if onEdgeQuarter(s.Controls[e[0]], s.Controls[e[1]], j.Position) {
					found = ei
					break
				}
			}
			if found < 0 {
				t.Errorf("seed %d: junction %+v not on a free edge quarter point", seed, j.Position)
				continue
			}
			used[found] = true

			if math.Abs(j.Rotation.X) > cfg.TiltJitter || math.Abs(j.Rotation.Y) > cfg.TiltJitter {
				t.Errorf("seed %d: tilt %+v exceeds %v", seed, j.Rotation, cfg.TiltJitter)
			}
			if math.Cos(j.Rotation.Z) < 0 {
				t.Errorf("seed %d: junction angle %v faces inward", seed, j.Rotation.Z)
			}
		}
	}
}

func onEdgeQuarter(a, b r2.Vec, p r3.Vec) bool {
	for _, f := range []float64{0.25, 0.5, 0.75} {
		q := r2.Add(a, r2.Scale(f, r2.Sub(b, a)))
		if math.Abs(q.X-p.X) < 1e-9 && math.Abs(q.Y-p.Y) < 1e-9 && p.Z == 0 {
			return true
		}
	}
	return false
}

func TestRandomShapeDeterministic(t *testing.T) {
	cfg := shapeConfig()
	a := RandomShape(rand.New(rand.NewSource(99)), cfg)
	b := RandomShape(rand.New(rand.NewSource(99)), cfg)

	if len(a.Outline) != len(b.Outline) {
		t.Fatal("outline lengths differ for the same seed")
	}
	for i := range a.Outline {
		if a.Outline[i] != b.Outline[i] {
			t.Fatalf("outline point %d differs: %+v vs %+v", i, a.Outline[i], b.Outline[i])
		}
	}
	for i := range a.Junctions {
		if a.Junctions[i] != b.Junctions[i] {
			t.Fatalf("junction %d differs: %+v vs %+v", i, a.Junctions[i], b.Junctions[i])
		}
	}
}

func TestJunctionOrderShuffled(t *testing.T) {
	cfg := shapeConfig()

	// The last junction (first to be popped) should come from every edge over many seeds
	seen := make(map[int]bool)
	for seed := int64(1); seed <= 200 && len(seen) < len(junctionEdges); seed++ {
		s := RandomShape(rand.New(rand.NewSource(seed)), cfg)
		last := s.Junctions[len(s.Junctions)-1]
		for ei, e := range junctionEdges {
			if onEdgeQuarter(s.Controls[e[0]], s.Controls[e[1]], last.Position) {
				seen[ei] = true
			}
		}
	}
	if len(seen) != len(junctionEdges) {
		t.Errorf("last junction only drawn from edges %v", seen)
	}
}
