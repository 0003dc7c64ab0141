// Package config provides configuration loading and access for the garden.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all garden configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sim       SimConfig       `yaml:"sim"`
	Garden    GardenConfig    `yaml:"garden"`
	Plant     PlantConfig     `yaml:"plant"`
	Shape     ShapeConfig     `yaml:"shape"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimConfig holds clock settings.
type SimConfig struct {
	TickMs         int64 `yaml:"tick_ms"`          // Logical milliseconds advanced per tick
	StepsPerUpdate int   `yaml:"steps_per_update"` // Ticks per Update call
}

// GardenConfig holds the planting grid and economy parameters.
type GardenConfig struct {
	Rows          int     `yaml:"rows"`
	Cols          int     `yaml:"cols"`
	Spacing       float64 `yaml:"spacing"` // Distance between neighbouring cells
	StartingMoney int     `yaml:"starting_money"`
	PlantCost     int     `yaml:"plant_cost"`
	SellPrice     int     `yaml:"sell_price"`     // Credit per living segment
	SplashMs      int64   `yaml:"splash_ms"`      // Splash screen duration before play
	OverMs        int64   `yaml:"over_ms"`        // Game over screen duration before reset
	DisabledCells []int   `yaml:"disabled_cells"` // Cell indices that refuse planting
}

// PlantConfig holds segment lifecycle parameters.
type PlantConfig struct {
	GrowthIntervalMs int64   `yaml:"growth_interval_ms"` // Condition region re-entry period
	DeathGrowCount   int     `yaml:"death_grow_count"`   // Dead once grow count exceeds this
	BranchChance     float64 `yaml:"branch_chance"`      // Chance to branch when children exist
	// MaxLevel stops branching at this depth; such segments only delegate.
	// 0 removes the cap and leaves the plain guard: a free junction and
	// either no children or a won BranchChance flip.
	MaxLevel        int     `yaml:"max_level"`
	SeedScale       float64 `yaml:"seed_scale"`
	BabyScale       float64 `yaml:"baby_scale"`
	AdultScale      float64 `yaml:"adult_scale"`
	MinFlowers      int     `yaml:"min_flowers"`
	MaxFlowers      int     `yaml:"max_flowers"`
	NoneMs          int64   `yaml:"none_ms"` // Rest period between bloom cycles
	BloomingMs      int64   `yaml:"blooming_ms"`
	SenescenceMs    int64   `yaml:"senescence_ms"`
	ImmortalRoots   bool    `yaml:"immortal_roots"`    // Roots skip the dead transition
	ReseedEachBloom bool    `yaml:"reseed_each_bloom"` // Resample flowers on every bloom
}

// ShapeConfig holds procedural outline parameters.
type ShapeConfig struct {
	MinWidth       float64 `yaml:"min_width"`
	MaxWidth       float64 `yaml:"max_width"`
	MinHeight      float64 `yaml:"min_height"`
	MaxHeight      float64 `yaml:"max_height"`
	MinBulge       float64 `yaml:"min_bulge"`
	MaxBulge       float64 `yaml:"max_bulge"`
	Jitter         float64 `yaml:"jitter"`          // Control point jitter (+/-)
	Samples        int     `yaml:"samples"`         // Curve divisions; Samples+1 points are produced
	FlowerMinY     float64 `yaml:"flower_min_y"`    // Flower candidates lie strictly above this
	TiltJitter     float64 `yaml:"tilt_jitter"`     // Junction X/Y rotation jitter (+/-)
	JunctionPoints int     `yaml:"junction_points"` // Interior points per control pair
}

// RenderConfig holds viewer parameters.
type RenderConfig struct {
	BaseScale    float64 `yaml:"base_scale"` // Applied on top of the age scale factor
	SpringMs     int64   `yaml:"spring_ms"`
	FlowerRadius float64 `yaml:"flower_radius"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowMs int64 `yaml:"stats_window_ms"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellCount     int      // Rows * Cols
	CellPositions []r3.Vec // World position per cell index
	TickSec32     float32  // Sim.TickMs in seconds as float32
	ScreenW32     float32
	ScreenH32     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// validate rejects values the lifecycle cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Garden.Rows <= 0 || c.Garden.Cols <= 0:
		return fmt.Errorf("garden: rows and cols must be positive (got %dx%d)", c.Garden.Rows, c.Garden.Cols)
	case c.Sim.TickMs <= 0:
		return fmt.Errorf("sim: tick_ms must be positive (got %d)", c.Sim.TickMs)
	case c.Plant.GrowthIntervalMs <= 0:
		return fmt.Errorf("plant: growth_interval_ms must be positive (got %d)", c.Plant.GrowthIntervalMs)
	case c.Plant.MaxLevel < 0:
		return fmt.Errorf("plant: max_level must not be negative (got %d)", c.Plant.MaxLevel)
	case c.Plant.NoneMs <= 0 || c.Plant.BloomingMs <= 0 || c.Plant.SenescenceMs <= 0:
		return fmt.Errorf("plant: flowering durations must be positive")
	case c.Plant.MinFlowers < 0 || c.Plant.MaxFlowers < c.Plant.MinFlowers:
		return fmt.Errorf("plant: invalid flower range [%d, %d]", c.Plant.MinFlowers, c.Plant.MaxFlowers)
	case c.Shape.Samples < 2:
		return fmt.Errorf("shape: samples must be at least 2 (got %d)", c.Shape.Samples)
	case c.Shape.JunctionPoints < 1:
		return fmt.Errorf("shape: junction_points must be at least 1 (got %d)", c.Shape.JunctionPoints)
	}
	for _, idx := range c.Garden.DisabledCells {
		if idx < 0 || idx >= c.Garden.Rows*c.Garden.Cols {
			return fmt.Errorf("garden: disabled cell %d outside %dx%d grid", idx, c.Garden.Rows, c.Garden.Cols)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickSec32 = float32(c.Sim.TickMs) / 1000
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Grid is centred on the origin in the XZ plane
	rows, cols := c.Garden.Rows, c.Garden.Cols
	c.Derived.CellCount = rows * cols
	c.Derived.CellPositions = make([]r3.Vec, c.Derived.CellCount)
	offX := float64(cols-1) * c.Garden.Spacing / 2
	offZ := float64(rows-1) * c.Garden.Spacing / 2
	for i := range c.Derived.CellPositions {
		c.Derived.CellPositions[i] = r3.Vec{
			X: -offX + float64(i%cols)*c.Garden.Spacing,
			Y: 0,
			Z: -offZ + float64(i/cols)*c.Garden.Spacing,
		}
	}
}

// YAML returns the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
