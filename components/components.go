// Package components defines ECS components for plant segments.
package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/geometry"
)

// Plant identifies a segment's place in its tree.
// Level is the depth from the root (root = 0) and never changes.
type Plant struct {
	Level    int
	Junction geometry.Junction
}

// IsRoot reports whether the segment was planted directly in a cell.
func (p *Plant) IsRoot() bool {
	return p.Level == 0
}

// Shape holds the segment's generated geometry. Shape.Junctions is the
// original candidate list; the live pool is Branches.Junctions.
type Shape struct {
	geometry.Shape
}

// Branches holds the segment's children and the junctions still free for
// new ones. Children is append-only; Junctions only shrinks.
type Branches struct {
	Children  []ecs.Entity
	Junctions []geometry.Junction
	Initial   int // Junction count at creation
}

// CanBranch reports whether another child can still be attached.
func (b *Branches) CanBranch() bool {
	return len(b.Junctions) > 0
}

// PopJunction removes and returns the last free junction.
func (b *Branches) PopJunction() (geometry.Junction, bool) {
	n := len(b.Junctions)
	if n == 0 {
		return geometry.Junction{}, false
	}
	j := b.Junctions[n-1]
	b.Junctions = b.Junctions[:n-1]
	return j, true
}

// Age is the maturity region.
type Age struct {
	Stage AgeStage `inspect:"label,name:Age"`
}

// Condition is the mortality region. GrowCount only increases.
type Condition struct {
	Stage     ConditionStage `inspect:"label,name:Condition"`
	GrowCount int            `inspect:"bar,name:Grows"`
}

// Dead reports whether the segment reached the absorbing dead state.
func (c *Condition) Dead() bool {
	return c.Stage == ConditionDead
}

// Flowering is the bloom region. Current is a subset of the shape's flower
// points shown while the region is blooming or senescent.
type Flowering struct {
	Stage   FloweringStage `inspect:"label,name:Flowering"`
	Current []r3.Vec       `inspect:"label,name:Flowers"`
}
