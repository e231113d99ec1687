package terrain

import (
	"math"
	"math/rand"

	m "github.com/Faultbox/terragen/pkg/math"
)

const (
	// minPlacementHeight keeps instances off the waterline. Slightly above
	// zero so shoreline vertices don't flicker in and out across regenerations.
	minPlacementHeight = 0.01

	// Horizontal jitter breaks up the grid look; the small downward vertical
	// jitter sinks trunks into the ground instead of floating them.
	jitterHorizontal  = 0.25
	jitterVerticalMin = -0.05

	scaleMin = 0.02
	scaleMax = 0.025

	// maxAmplitude matches the noise field's vertical amplitude; instances
	// shrink toward zero as terrain approaches it.
	maxAmplitude = 100.0
)

// ScatterParams gates and shapes vegetation placement for one pass.
type ScatterParams struct {
	// Density is the fraction of eligible vertices that receive an instance,
	// in [0,1].
	Density float32
	// MaxSteepness rejects vertices whose normal deviates too far from up.
	// The measure is |normal x up|, the sine of the deviation angle; a vertex
	// is rejected when it exceeds MaxSteepness.
	MaxSteepness float32
	// BaseRotation corrects the variant asset's rest orientation. Composed
	// before the random yaw.
	BaseRotation m.Quat
	// YawAxis is the vertical axis of the variant asset's local space, i.e.
	// the axis the random yaw spins around. Must be unit length.
	YawAxis m.Vec3
	// VariantCount is the number of interchangeable visual variants.
	VariantCount int
}

// DefaultYawAxis is the yaw axis for assets authored Y-up.
var DefaultYawAxis = m.Up

// Scatter walks mesh vertices in their stored (grid row-major) order and
// produces one placement per vertex that passes the height, density, and
// slope gates. All randomness comes from a single stream seeded with seed,
// consumed in vertex order, so a fixed (params, seed, vertex data) input
// reproduces the result bit for bit.
//
// When VariantCount is zero there is nothing to instantiate and Scatter
// short-circuits to an empty result without consuming the stream.
//
// Per accepted vertex the stream is consumed in this order: jitter X, jitter
// Y, jitter Z, scale, yaw, variant index. The density coin flip is drawn only
// for vertices above the height threshold; the slope gate consumes nothing.
func Scatter(positions, normals []m.Vec3, params ScatterParams, seed uint64) []Placement {
	if params.VariantCount <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	var placements []Placement

	for i, p := range positions {
		height := p.Y
		if height <= minPlacementHeight {
			continue
		}
		if rng.Float32() < 1-params.Density {
			continue
		}
		if steepness(normals[i]) > params.MaxSteepness {
			continue
		}

		jitter := m.Vec3{
			X: randRange(rng, -jitterHorizontal, jitterHorizontal),
			Y: randRange(rng, jitterVerticalMin, 0),
			Z: randRange(rng, -jitterHorizontal, jitterHorizontal),
		}

		// Shrink instances near low terrain so the treeline thins out toward
		// the waterline.
		scale := randRange(rng, scaleMin, scaleMax) * (1 - height/maxAmplitude)
		if scale < 0 {
			scale = 0
		}

		yaw := randRange(rng, 0, 2*math.Pi)
		variant := rng.Intn(params.VariantCount)

		placements = append(placements, Placement{
			Translation: p.Add(jitter),
			Scale:       scale,
			Rotation:    params.BaseRotation.Mul(m.QuatFromAxisAngle(params.YawAxis, yaw)),
			Variant:     variant,
		})
	}
	return placements
}

// steepness is |normal x up|: 0 on flat ground, 1 on a vertical cliff.
func steepness(normal m.Vec3) float32 {
	return normal.Cross(m.Up).Length()
}

func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
