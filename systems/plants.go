package systems

import (
	"log/slog"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/geometry"
)

// PlantHooks receives lifecycle notifications. Nil fields are skipped.
type PlantHooks struct {
	OnSpawn  func(entity ecs.Entity, plant components.Plant)
	OnDeath  func(entity ecs.Entity, level, growCount int)
	OnBloom  func(entity ecs.Entity)
	OnBranch func(parent, child ecs.Entity)
}

// PlantSystem runs every plant segment as an actor with three parallel
// regions: Age (driven by GROW), Condition and Flowering (driven by timers).
// Segments live in an ECS world; an entity handle is a segment's identity.
type PlantSystem struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   config.PlantConfig
	shape config.ShapeConfig

	scales components.Scales
	sched  Scheduler
	hooks  PlantHooks

	segmentMapper *ecs.Map6[
		components.Plant,
		components.Shape,
		components.Branches,
		components.Age,
		components.Condition,
		components.Flowering,
	]
	censusFilter *ecs.Filter3[
		components.Plant,
		components.Condition,
		components.Flowering,
	]

	plantMap  *ecs.Map[components.Plant]
	shapeMap  *ecs.Map[components.Shape]
	branchMap *ecs.Map[components.Branches]
	ageMap    *ecs.Map[components.Age]
	condMap   *ecs.Map[components.Condition]
	flowerMap *ecs.Map[components.Flowering]
}

// NewPlantSystem creates a plant system with its own world and clock.
// All randomness is drawn from rng.
func NewPlantSystem(rng *rand.Rand, plantCfg config.PlantConfig, shapeCfg config.ShapeConfig) *PlantSystem {
	world := ecs.NewWorld()

	return &PlantSystem{
		world: world,
		rng:   rng,
		cfg:   plantCfg,
		shape: shapeCfg,
		scales: components.Scales{
			Seed:  plantCfg.SeedScale,
			Baby:  plantCfg.BabyScale,
			Adult: plantCfg.AdultScale,
		},
		segmentMapper: ecs.NewMap6[
			components.Plant,
			components.Shape,
			components.Branches,
			components.Age,
			components.Condition,
			components.Flowering,
		](world),
		censusFilter: ecs.NewFilter3[
			components.Plant,
			components.Condition,
			components.Flowering,
		](world),
		plantMap:  ecs.NewMap[components.Plant](world),
		shapeMap:  ecs.NewMap[components.Shape](world),
		branchMap: ecs.NewMap[components.Branches](world),
		ageMap:    ecs.NewMap[components.Age](world),
		condMap:   ecs.NewMap[components.Condition](world),
		flowerMap: ecs.NewMap[components.Flowering](world),
	}
}

// SetHooks installs lifecycle callbacks.
func (s *PlantSystem) SetHooks(h PlantHooks) {
	s.hooks = h
}

// Now returns the logical time in milliseconds.
func (s *PlantSystem) Now() int64 {
	return s.sched.Now()
}

// NextDeadline returns the earliest pending region timer.
func (s *PlantSystem) NextDeadline() (int64, bool) {
	return s.sched.nextDeadline()
}

// Alive reports whether entity is still a live segment handle.
func (s *PlantSystem) Alive(entity ecs.Entity) bool {
	return s.world.Alive(entity)
}

// Spawn creates a segment for plant, generates its geometry and enters the
// initial state of every region.
func (s *PlantSystem) Spawn(plant components.Plant) ecs.Entity {
	shape := components.Shape{Shape: geometry.RandomShape(s.rng, s.shape)}
	branches := components.Branches{
		Junctions: slices.Clone(shape.Junctions),
		Initial:   len(shape.Junctions),
	}
	age := components.Age{Stage: components.AgeSeed}
	cond := components.Condition{Stage: components.ConditionCheck}
	flow := components.Flowering{Stage: components.FloweringCheck}

	entity := s.segmentMapper.NewEntity(&plant, &shape, &branches, &age, &cond, &flow)

	s.enterFloweringCheck(entity)
	s.enterConditionCheck(entity)

	slog.Debug("segment spawned", "entity", entity.ID(), "level", plant.Level)
	if s.hooks.OnSpawn != nil {
		s.hooks.OnSpawn(entity, plant)
	}
	return entity
}

// Grow delivers one GROW signal to the Age region of entity.
// Dead or removed segments ignore it.
func (s *PlantSystem) Grow(entity ecs.Entity) {
	if !s.world.Alive(entity) || s.condMap.Get(entity).Dead() {
		return
	}

	age := s.ageMap.Get(entity)
	switch age.Stage {
	case components.AgeSeed:
		age.Stage = components.AgeBaby
	case components.AgeBaby:
		age.Stage = components.AgeAdult
	case components.AgeAdult:
		if s.shouldCreateBranch(entity) {
			s.createBranch(entity)
		} else {
			s.growBranch(entity)
		}
	}
}

// Advance moves the clock forward by dt milliseconds, firing every region
// timer that falls due in deadline order. Returns the number fired.
func (s *PlantSystem) Advance(dt int64) int {
	until := s.sched.Now() + dt
	fired := 0
	for {
		t, ok := s.sched.next(until)
		if !ok {
			break
		}
		if !s.world.Alive(t.entity) {
			continue
		}
		fired++
		switch t.region {
		case RegionCondition:
			s.fireCondition(t.entity)
		case RegionFlowering:
			s.fireFlowering(t.entity)
		}
	}
	s.sched.settle(until)
	return fired
}

// PendingTimers returns the number of armed region timers.
func (s *PlantSystem) PendingTimers() int {
	return s.sched.Pending()
}

// Remove tears down the tree rooted at entity. Pending timers of removed
// segments are discarded when they fall due.
func (s *PlantSystem) Remove(root ecs.Entity) int {
	if !s.world.Alive(root) {
		return 0
	}
	var tree []ecs.Entity
	stack := []ecs.Entity{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tree = append(tree, e)
		stack = append(stack, s.branchMap.Get(e).Children...)
	}
	for _, e := range tree {
		s.world.RemoveEntity(e)
	}
	return len(tree)
}

// shouldCreateBranch holds while junctions remain below the level cap and
// the segment is either childless or wins the branch coin flip.
func (s *PlantSystem) shouldCreateBranch(entity ecs.Entity) bool {
	if s.cfg.MaxLevel > 0 && s.plantMap.Get(entity).Level >= s.cfg.MaxLevel {
		return false
	}
	br := s.branchMap.Get(entity)
	return br.CanBranch() && (len(br.Children) == 0 || s.rng.Float64() < s.cfg.BranchChance)
}

// createBranch spawns a child at the last free junction.
func (s *PlantSystem) createBranch(entity ecs.Entity) {
	level := s.plantMap.Get(entity).Level + 1
	junction, ok := s.branchMap.Get(entity).PopJunction()
	if !ok {
		return
	}

	child := s.Spawn(components.Plant{Level: level, Junction: junction})

	// Spawning is a structural change; component pointers must be refetched
	br := s.branchMap.Get(entity)
	br.Children = append(br.Children, child)

	if s.hooks.OnBranch != nil {
		s.hooks.OnBranch(entity, child)
	}
}

// growBranch forwards GROW to one child chosen uniformly.
func (s *PlantSystem) growBranch(entity ecs.Entity) {
	if child, ok := s.pickBranch(entity); ok {
		s.Grow(child)
	}
}

func (s *PlantSystem) pickBranch(entity ecs.Entity) (ecs.Entity, bool) {
	children := s.branchMap.Get(entity).Children
	if len(children) == 0 {
		return ecs.Entity{}, false
	}
	return children[s.rng.Intn(len(children))], true
}

// enterConditionCheck resolves the transient check state. Roots and
// branches both start alive.
func (s *PlantSystem) enterConditionCheck(entity ecs.Entity) {
	s.condMap.Get(entity).Stage = components.ConditionAlive
	s.sched.After(s.cfg.GrowthIntervalMs, entity, RegionCondition)
}

// fireCondition re-enters alive: count the tick, raise GROW, and die once
// the count passes the threshold.
func (s *PlantSystem) fireCondition(entity ecs.Entity) {
	cond := s.condMap.Get(entity)
	if cond.Stage != components.ConditionAlive {
		return
	}
	cond.GrowCount++

	s.Grow(entity)

	cond = s.condMap.Get(entity)
	if cond.GrowCount > s.cfg.DeathGrowCount && s.mortal(entity) {
		cond.Stage = components.ConditionDead
		level := s.plantMap.Get(entity).Level
		slog.Debug("segment died", "entity", entity.ID(), "level", level, "grow_count", cond.GrowCount)
		if s.hooks.OnDeath != nil {
			s.hooks.OnDeath(entity, level, cond.GrowCount)
		}
		return
	}
	s.sched.After(s.cfg.GrowthIntervalMs, entity, RegionCondition)
}

func (s *PlantSystem) mortal(entity ecs.Entity) bool {
	return !(s.cfg.ImmortalRoots && s.plantMap.Get(entity).IsRoot())
}

// enterFloweringCheck seeds the visible flowers and resolves the transient
// check state. Roots never flower.
func (s *PlantSystem) enterFloweringCheck(entity ecs.Entity) {
	flow := s.flowerMap.Get(entity)
	flow.Current = s.sampleFlowers(s.shapeMap.Get(entity).FlowerPoints)

	if s.plantMap.Get(entity).IsRoot() {
		flow.Stage = components.FloweringStopped
		return
	}
	flow.Stage = components.FloweringNone
	s.sched.After(s.cfg.NoneMs, entity, RegionFlowering)
}

// fireFlowering advances the bloom cycle none -> blooming -> senescence -> none.
func (s *PlantSystem) fireFlowering(entity ecs.Entity) {
	flow := s.flowerMap.Get(entity)
	switch flow.Stage {
	case components.FloweringNone:
		if s.condMap.Get(entity).Dead() {
			flow.Stage = components.FloweringStopped
			return
		}
		if s.cfg.ReseedEachBloom {
			flow.Current = s.sampleFlowers(s.shapeMap.Get(entity).FlowerPoints)
		}
		flow.Stage = components.FloweringBlooming
		s.sched.After(s.cfg.BloomingMs, entity, RegionFlowering)
		if s.hooks.OnBloom != nil {
			s.hooks.OnBloom(entity)
		}
	case components.FloweringBlooming:
		flow.Stage = components.FloweringSenescence
		s.sched.After(s.cfg.SenescenceMs, entity, RegionFlowering)
	case components.FloweringSenescence:
		flow.Stage = components.FloweringNone
		s.sched.After(s.cfg.NoneMs, entity, RegionFlowering)
	}
}

// sampleFlowers draws between MinFlowers and MaxFlowers distinct points
// from pool, capped at the pool size.
func (s *PlantSystem) sampleFlowers(pool []r3.Vec) []r3.Vec {
	n := s.cfg.MinFlowers + s.rng.Intn(s.cfg.MaxFlowers-s.cfg.MinFlowers+1)
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]r3.Vec, n)
	for i, idx := range s.rng.Perm(len(pool))[:n] {
		out[i] = pool[idx]
	}
	return out
}
