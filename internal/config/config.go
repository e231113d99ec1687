// Package config handles terrain generator configuration loading, validation,
// and hot reload.
package config

import (
	"fmt"
	"math"
)

// Noise backend names accepted by TerrainConfig.Noise.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
)

// Config holds all generator settings.
type Config struct {
	Terrain    TerrainConfig    `yaml:"terrain"`
	Scatter    ScatterConfig    `yaml:"scatter"`
	Vegetation VegetationConfig `yaml:"vegetation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TerrainConfig holds heightfield parameters. The terrain extends from
// -half_size to +half_size on both horizontal axes; the mesh is subdivided
// 2*half_size times per axis.
type TerrainConfig struct {
	HalfSize  uint32  `yaml:"half_size"`
	Seed      uint32  `yaml:"seed"`
	Frequency float64 `yaml:"frequency"`
	Octaves   int     `yaml:"octaves"`
	Noise     string  `yaml:"noise"`    // "simplex" or "perlin"
	Rotation  float32 `yaml:"rotation"` // yaw applied to the whole mesh, radians
	Tangents  bool    `yaml:"tangents"` // required by normal-mapped materials
}

// ScatterConfig holds vegetation placement parameters.
type ScatterConfig struct {
	// Density is the target fraction of eligible vertices that receive an
	// instance, in [0,1].
	Density float32 `yaml:"density"`
	// MaxSteepness rejects placement where |normal x up| exceeds it.
	MaxSteepness float32 `yaml:"max_steepness"`
}

// VegetationConfig describes the auxiliary visual variants to scatter.
type VegetationConfig struct {
	// Variants are opaque asset identifiers (e.g. scene node names); the
	// generator only needs their count and index order.
	Variants []string `yaml:"variants"`
	// ZUp marks assets authored with Z as the vertical axis. Such assets get
	// an upright correction composed before the random yaw.
	ZUp bool `yaml:"z_up"`
}

// OutputConfig holds export destinations for the standalone CLI.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	MeshFile      string `yaml:"mesh_file"`
	InstancesFile string `yaml:"instances_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			HalfSize:  100,
			Seed:      42,
			Frequency: 1.0,
			Octaves:   6,
			Noise:     NoiseSimplex,
			Rotation:  0,
			Tangents:  true,
		},
		Scatter: ScatterConfig{
			Density:      0.5,
			MaxSteepness: 0.5,
		},
		Vegetation: VegetationConfig{
			Variants: nil,
			ZUp:      false,
		},
		Output: OutputConfig{
			Dir:           "out",
			MeshFile:      "terrain.obj",
			InstancesFile: "instances.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects configurations that generation must not run against.
func (c *Config) Validate() error {
	t := c.Terrain
	if t.HalfSize == 0 {
		return fmt.Errorf("terrain.half_size must be > 0")
	}
	if t.Octaves < 1 {
		return fmt.Errorf("terrain.octaves must be >= 1, got %d", t.Octaves)
	}
	if t.Frequency <= 0 || math.IsNaN(t.Frequency) {
		return fmt.Errorf("terrain.frequency must be > 0, got %v", t.Frequency)
	}
	switch t.Noise {
	case NoiseSimplex, NoisePerlin:
	default:
		return fmt.Errorf("terrain.noise must be %q or %q, got %q", NoiseSimplex, NoisePerlin, t.Noise)
	}
	if c.Scatter.Density < 0 {
		return fmt.Errorf("scatter.density must not be negative, got %v", c.Scatter.Density)
	}
	if c.Scatter.MaxSteepness < 0 {
		return fmt.Errorf("scatter.max_steepness must not be negative, got %v", c.Scatter.MaxSteepness)
	}
	return nil
}

// Snapshot returns an immutable copy for one generation pass, with density
// clamped to [0,1]. Validate must have passed on the receiver.
func (c *Config) Snapshot() Config {
	snap := *c
	if snap.Scatter.Density > 1 {
		snap.Scatter.Density = 1
	}
	// Variant names are captured so later config mutations cannot tear a pass.
	snap.Vegetation.Variants = append([]string(nil), c.Vegetation.Variants...)
	return snap
}
