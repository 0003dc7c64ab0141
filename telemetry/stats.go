package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartMs int64   `csv:"-"`
	WindowEndMs   int64   `csv:"window_end_ms"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Garden state at window end
	Phase   string `csv:"phase"`
	Session int    `csv:"session"`
	Money   int    `csv:"money"`
	Trees   int    `csv:"trees"`

	// Segment counts at window end
	Segments  int `csv:"segments"`
	Alive     int `csv:"alive"`
	Dead      int `csv:"dead"`
	Blooming  int `csv:"blooming"`
	Senescent int `csv:"senescent"`
	MaxLevel  int `csv:"max_level"`

	// Events during window
	Spawns   int `csv:"spawns"`
	Branches int `csv:"branches"`
	Blooms   int `csv:"blooms"`
	Deaths   int `csv:"deaths"`
	Plants   int `csv:"plants"`
	Sells    int `csv:"sells"`
	Thrashes int `csv:"thrashes"`
	Earned   int `csv:"earned"`

	// Depth distribution (sampled at window end)
	LevelMean float64 `csv:"level_mean"`
	LevelStd  float64 `csv:"level_std"`
	LevelP50  float64 `csv:"level_p50"`
	LevelP90  float64 `csv:"level_p90"`

	// Grow count distribution
	GrowMean float64 `csv:"grow_mean"`
	GrowStd  float64 `csv:"grow_std"`
	GrowP10  float64 `csv:"grow_p10"`
	GrowP50  float64 `csv:"grow_p50"`
	GrowP90  float64 `csv:"grow_p90"`

	// Tree size distribution (segments per planted cell)
	TreeSizeMean float64 `csv:"tree_size_mean"`
	TreeSizeMax  float64 `csv:"tree_size_max"`
}

// Distribution summarises a sample.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
	Max  float64
}

// Summarize computes mean, standard deviation and empirical quantiles.
// Returns the zero Distribution for an empty sample; Std is 0 below two values.
func Summarize(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
		Max:  sorted[n-1],
	}
	if n > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start_ms", s.WindowStartMs),
		slog.Int64("window_end_ms", s.WindowEndMs),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("phase", s.Phase),
		slog.Int("session", s.Session),
		slog.Int("money", s.Money),
		slog.Int("trees", s.Trees),
		slog.Int("segments", s.Segments),
		slog.Int("alive", s.Alive),
		slog.Int("dead", s.Dead),
		slog.Int("blooming", s.Blooming),
		slog.Int("senescent", s.Senescent),
		slog.Int("max_level", s.MaxLevel),
		slog.Int("spawns", s.Spawns),
		slog.Int("branches", s.Branches),
		slog.Int("blooms", s.Blooms),
		slog.Int("deaths", s.Deaths),
		slog.Int("plants", s.Plants),
		slog.Int("sells", s.Sells),
		slog.Int("thrashes", s.Thrashes),
		slog.Int("earned", s.Earned),
		slog.Float64("level_mean", s.LevelMean),
		slog.Float64("level_std", s.LevelStd),
		slog.Float64("level_p50", s.LevelP50),
		slog.Float64("level_p90", s.LevelP90),
		slog.Float64("grow_mean", s.GrowMean),
		slog.Float64("grow_std", s.GrowStd),
		slog.Float64("grow_p10", s.GrowP10),
		slog.Float64("grow_p50", s.GrowP50),
		slog.Float64("grow_p90", s.GrowP90),
		slog.Float64("tree_size_mean", s.TreeSizeMean),
		slog.Float64("tree_size_max", s.TreeSizeMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end_ms", s.WindowEndMs,
		"sim_time", s.SimTimeSec,
		"phase", s.Phase,
		"money", s.Money,
		"trees", s.Trees,
		"segments", s.Segments,
		"alive", s.Alive,
		"dead", s.Dead,
		"blooming", s.Blooming,
		"max_level", s.MaxLevel,
		"spawns", s.Spawns,
		"blooms", s.Blooms,
		"deaths", s.Deaths,
		"level_mean", s.LevelMean,
		"grow_mean", s.GrowMean,
		"tree_size_mean", s.TreeSizeMean,
	)
}
