package systems

import (
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/geometry"
)

// SegmentSnapshot is a read-only copy of one segment's observable state.
type SegmentSnapshot struct {
	Entity ecs.Entity `json:"-"`
	ID     uint32     `json:"id"`

	Level    int               `json:"level"`
	Junction geometry.Junction `json:"junction"`

	Outline        []r2.Vec `json:"outline"`
	FlowerPoints   []r3.Vec `json:"flower_points"`
	CurrentFlowers []r3.Vec `json:"current_flowers"`

	Branches         []ecs.Entity `json:"-"`
	FreeJunctions    int          `json:"free_junctions"`
	InitialJunctions int          `json:"initial_junctions"`

	Age       components.AgeStage       `json:"age"`
	Condition components.ConditionStage `json:"condition"`
	Flowering components.FloweringStage `json:"flowering"`
	GrowCount int                       `json:"grow_count"`

	Meta components.Meta `json:"meta"`
	Dead bool            `json:"dead"`
}

// Snapshot returns the current state of entity. The second result is false
// when the handle no longer refers to a live segment.
func (s *PlantSystem) Snapshot(entity ecs.Entity) (SegmentSnapshot, bool) {
	if !s.world.Alive(entity) || !s.plantMap.Has(entity) {
		return SegmentSnapshot{}, false
	}

	plant := s.plantMap.Get(entity)
	shape := s.shapeMap.Get(entity)
	br := s.branchMap.Get(entity)
	age := s.ageMap.Get(entity)
	cond := s.condMap.Get(entity)
	flow := s.flowerMap.Get(entity)

	return SegmentSnapshot{
		Entity:           entity,
		ID:               entity.ID(),
		Level:            plant.Level,
		Junction:         plant.Junction,
		Outline:          shape.Outline,
		FlowerPoints:     shape.FlowerPoints,
		CurrentFlowers:   slices.Clone(flow.Current),
		Branches:         slices.Clone(br.Children),
		FreeJunctions:    len(br.Junctions),
		InitialJunctions: br.Initial,
		Age:              age.Stage,
		Condition:        cond.Stage,
		Flowering:        flow.Stage,
		GrowCount:        cond.GrowCount,
		Meta:             components.Meta{}.Merge(age.Stage.Meta(s.scales)).Merge(flow.Stage.Meta()),
		Dead:             cond.Dead(),
	}, true
}

// RenderNode is a segment as an observer should draw it: its own snapshot
// plus the overrides inherited from its ancestors.
type RenderNode struct {
	SegmentSnapshot

	Parent ecs.Entity // Zero for the root
	Depth  int

	// ForcedDead is set when the segment or any ancestor is dead.
	ForcedDead bool
	// FloweringVisible is set when the segment or any ancestor shows flowers.
	FloweringVisible bool
	// FloweringStatus is the nearest visible ancestor's status, else the
	// segment's own.
	FloweringStatus components.FloweringStatus
}

// Walk visits the tree rooted at root depth-first, parents before children,
// resolving inherited render overrides on the way down.
func (s *PlantSystem) Walk(root ecs.Entity, visit func(RenderNode)) {
	snap, ok := s.Snapshot(root)
	if !ok {
		return
	}
	s.walk(snap, RenderNode{}, true, visit)
}

func (s *PlantSystem) walk(snap SegmentSnapshot, parent RenderNode, isRoot bool, visit func(RenderNode)) {
	node := RenderNode{
		SegmentSnapshot:  snap,
		ForcedDead:       snap.Dead,
		FloweringVisible: snap.Meta.FloweringVisible,
		FloweringStatus:  snap.Meta.FloweringStatus,
	}
	if !isRoot {
		node.Parent = parent.Entity
		node.Depth = parent.Depth + 1
		node.ForcedDead = node.ForcedDead || parent.ForcedDead
		if parent.FloweringVisible {
			node.FloweringVisible = true
			node.FloweringStatus = parent.FloweringStatus
		}
	}

	visit(node)

	for _, child := range snap.Branches {
		if cs, ok := s.Snapshot(child); ok {
			s.walk(cs, node, false, visit)
		}
	}
}

// TreeSnapshot is a nested copy of a whole tree, used for JSON output.
type TreeSnapshot struct {
	SegmentSnapshot
	Children []TreeSnapshot `json:"children,omitempty"`
}

// Tree returns the nested snapshot of the tree rooted at root.
func (s *PlantSystem) Tree(root ecs.Entity) (TreeSnapshot, bool) {
	snap, ok := s.Snapshot(root)
	if !ok {
		return TreeSnapshot{}, false
	}
	t := TreeSnapshot{SegmentSnapshot: snap}
	for _, child := range snap.Branches {
		if ct, ok := s.Tree(child); ok {
			t.Children = append(t.Children, ct)
		}
	}
	return t, true
}

// Census summarises every live segment in the world.
type Census struct {
	Segments  int
	Roots     int
	Alive     int
	Dead      int
	Blooming  int
	Senescent int
	MaxLevel  int

	Levels     []float64 // Level of every segment
	GrowCounts []float64 // Grow count of every segment
}

// Census counts segments by region state.
func (s *PlantSystem) Census() Census {
	var c Census

	query := s.censusFilter.Query()
	for query.Next() {
		plant, cond, flow := query.Get()

		c.Segments++
		if plant.IsRoot() {
			c.Roots++
		}
		if cond.Dead() {
			c.Dead++
		} else {
			c.Alive++
		}
		switch flow.Stage {
		case components.FloweringBlooming:
			c.Blooming++
		case components.FloweringSenescence:
			c.Senescent++
		}
		if plant.Level > c.MaxLevel {
			c.MaxLevel = plant.Level
		}
		c.Levels = append(c.Levels, float64(plant.Level))
		c.GrowCounts = append(c.GrowCounts, float64(cond.GrowCount))
	}

	return c
}

// CountAlive returns the number of live, not dead segments in the tree
// rooted at root.
func (s *PlantSystem) CountAlive(root ecs.Entity) int {
	n := 0
	s.Walk(root, func(node RenderNode) {
		if !node.Dead {
			n++
		}
	})
	return n
}
