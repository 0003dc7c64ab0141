package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/garden"
)

// Targets describes the tree shape the tuner aims for.
type Targets struct {
	TreeSize float64 // Mean segments per planted tree
	Level    float64 // Mean segment depth
	Blooms   float64 // Bloom events per stats window
}

// FitnessEvaluator runs headless gardens and scores how close their trees
// come to the targets.
type FitnessEvaluator struct {
	params     *ParamVector
	durationMs int64
	stepMs     int64
	seeds      []int64
	baseConfig *config.Config
	targets    Targets

	mu          sync.Mutex
	lastMetrics runMetrics // metrics from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, durationMs, stepMs int64, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		durationMs: durationMs,
		stepMs:     max(stepMs, 1),
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
	}
}

// runMetrics holds window averages from a run.
type runMetrics struct {
	TreeSize float64
	Level    float64
	Blooms   float64
}

// LastMetrics returns the seed-averaged metrics of the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() runMetrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a parameter vector (lower = better): the sum
// of squared relative errors against the targets, averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runMetrics, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runGarden(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runMetrics
	var total float64
	for _, r := range results {
		total += fe.score(r)
		avg.TreeSize += r.TreeSize
		avg.Level += r.Level
		avg.Blooms += r.Blooms
	}
	n := float64(len(results))
	avg.TreeSize /= n
	avg.Level /= n
	avg.Blooms /= n

	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return total / n
}

// score is the squared relative error of m against the targets.
func (fe *FitnessEvaluator) score(m runMetrics) float64 {
	rel := func(got, want float64) float64 {
		if want == 0 {
			return 0
		}
		d := (got - want) / want
		return d * d
	}
	return rel(m.TreeSize, fe.targets.TreeSize) + rel(m.Level, fe.targets.Level) + rel(m.Blooms, fe.targets.Blooms)
}

// runGarden plays one tended session: plant every cell, harvest trees whose
// root died, replant, and sample every stats window.
func (fe *FitnessEvaluator) runGarden(cfg *config.Config, seed int64) runMetrics {
	g := garden.New(cfg, seed)
	g.Start()

	var sizes, levels, blooms []float64
	for elapsed := int64(0); elapsed < fe.durationMs; elapsed += fe.stepMs {
		if g.Phase() == garden.PhasePlaying {
			g.Harvest()
			g.PlantAll()
		}
		g.Update(fe.stepMs)

		if g.ShouldFlush() {
			w := g.Flush()
			g.DrainEvents()
			if w.Trees == 0 {
				continue
			}
			sizes = append(sizes, w.TreeSizeMean)
			levels = append(levels, w.LevelMean)
			blooms = append(blooms, float64(w.Blooms))
		}
	}

	if len(sizes) == 0 {
		return runMetrics{}
	}
	return runMetrics{
		TreeSize: stat.Mean(sizes, nil),
		Level:    stat.Mean(levels, nil),
		Blooms:   stat.Mean(blooms, nil),
	}
}

// copyConfig returns a copy of the base config. Slices are shared and must
// be treated as read-only.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cp := *fe.baseConfig
	return &cp
}

// finite maps NaN and infinities to a large penalty.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1e9
	}
	return f
}
