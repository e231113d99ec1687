package math

import (
	"math"
	"testing"
)

func TestQuatIdentityRotation(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := QuatIdentity().RotateVec3(v)
	if !vec3Equal(got, v) {
		t.Errorf("identity rotation changed vector: %v", got)
	}
}

func TestQuatRotateVec3AroundY(t *testing.T) {
	// 90 degrees about Y sends +X to -Z.
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))
	got := q.RotateVec3(Vec3{1, 0, 0})
	want := Vec3{0, 0, -1}
	if !vec3Equal(got, want) {
		t.Errorf("rotate +X by 90deg Y = %v, want %v", got, want)
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	// Two 45 degree yaws equal one 90 degree yaw.
	half := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/4))
	full := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))

	composed := half.Mul(half)
	v := Vec3{1, 0, 0}
	if !vec3Equal(composed.RotateVec3(v), full.RotateVec3(v)) {
		t.Errorf("composed rotation differs: %v vs %v",
			composed.RotateVec3(v), full.RotateVec3(v))
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 2, Y: 0, Z: 0, W: 0}
	n := q.Normalize()
	if !approxEqual(n.Dot(n), 1) {
		t.Errorf("normalized quat has length^2 %f, want 1", n.Dot(n))
	}

	// Degenerate quaternion falls back to identity.
	z := Quat{}.Normalize()
	if z != QuatIdentity() {
		t.Errorf("normalize zero quat = %v, want identity", z)
	}
}
