// Package noise provides the seeded fractal noise field that drives terrain
// heights. Sampling is pure: a field built from the same parameters returns
// identical heights across calls, goroutines, and processes.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	// baseScale maps world-space XZ coordinates into noise space. Fixed by
	// design; the configured frequency tunes the octave ladder instead.
	baseScale = 0.05
	// amplitude scales the raw noise value into world-space height.
	amplitude = 100.0

	lacunarity  = 2.0
	persistence = 0.5
)

// Field samples a seeded fractal noise function over 2D coordinates.
type Field struct {
	sample func(x, y float64) float64
}

// New builds a Field for the named backend ("simplex" or "perlin").
func New(backend string, seed uint32, frequency float64, octaves int) (*Field, error) {
	switch backend {
	case "simplex":
		return NewSimplex(seed, frequency, octaves), nil
	case "perlin":
		return NewPerlin(seed, frequency, octaves), nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", backend)
	}
}

// NewSimplex builds a fractal field over seeded simplex noise. Octave
// contributions are normalized so output stays in roughly [-1, 1] before
// amplitude scaling.
func NewSimplex(seed uint32, frequency float64, octaves int) *Field {
	src := opensimplex.New(int64(seed))
	return &Field{
		sample: func(x, y float64) float64 {
			freq := frequency
			amp := 1.0
			var sum, norm float64
			for i := 0; i < octaves; i++ {
				sum += src.Eval2(x*freq, y*freq) * amp
				norm += amp
				freq *= lacunarity
				amp *= persistence
			}
			return sum / norm
		},
	}
}

// NewPerlin builds a fractal field over seeded Perlin noise. go-perlin sums
// octaves internally, so the ladder parameters map straight through.
func NewPerlin(seed uint32, frequency float64, octaves int) *Field {
	src := perlin.NewPerlin(1/persistence, lacunarity, int32(octaves), int64(seed))
	return &Field{
		sample: func(x, y float64) float64 {
			return src.Noise2D(x*frequency, y*frequency)
		},
	}
}

// HeightAt returns the world-space terrain height at horizontal position (x, z).
func (f *Field) HeightAt(x, z float32) float32 {
	return float32(f.sample(float64(x)*baseScale, float64(z)*baseScale)) * amplitude
}
