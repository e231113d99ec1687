package assets

import (
	"math"
	"testing"

	m "github.com/Faultbox/terragen/pkg/math"
)

func TestVariantSetStartsNotReady(t *testing.T) {
	s := NewVariantSet(YUp)
	if s.Ready() {
		t.Error("empty set reports ready")
	}
	if s.Count() != 0 {
		t.Errorf("empty set count %d", s.Count())
	}
}

func TestAddFlipsReadiness(t *testing.T) {
	s := NewVariantSet(YUp)

	if idx := s.Add(Variant{Name: "fir"}); idx != 0 {
		t.Errorf("first variant got index %d", idx)
	}
	if !s.Ready() {
		t.Error("set not ready after first Add")
	}

	if idx := s.Add(Variant{Name: "pine"}); idx != 1 {
		t.Errorf("second variant got index %d", idx)
	}
	if s.Count() != 2 {
		t.Errorf("count %d after two adds", s.Count())
	}
}

func TestHandleLookup(t *testing.T) {
	s := NewVariantSet(YUp)
	s.Add(Variant{Name: "fir"})
	s.Add(Variant{Name: "pine"})

	v, err := s.Handle(1)
	if err != nil {
		t.Fatalf("Handle(1): %v", err)
	}
	if v.Name != "pine" {
		t.Errorf("Handle(1) = %q", v.Name)
	}

	if _, err := s.Handle(2); err == nil {
		t.Error("out-of-range index returned no error")
	}
	if _, err := s.Handle(-1); err == nil {
		t.Error("negative index returned no error")
	}
}

func TestSubscribeNotifiesOnAdd(t *testing.T) {
	s := NewVariantSet(YUp)
	ch := s.Subscribe()

	select {
	case <-ch:
		t.Fatal("signal before any Add")
	default:
	}

	s.Add(Variant{Name: "fir"})
	select {
	case <-ch:
	default:
		t.Fatal("no signal after Add")
	}

	// Coalescing: multiple adds while the subscriber is away collapse to one
	// pending signal.
	s.Add(Variant{Name: "pine"})
	s.Add(Variant{Name: "birch"})
	<-ch
	select {
	case <-ch:
		t.Error("coalesced adds produced more than one pending signal")
	default:
	}
}

func TestZUpOrientation(t *testing.T) {
	s := NewVariantSet(ZUp)
	o := s.Orientation()

	// The corrective rotation must carry the asset's local up (Z) to world up.
	up := o.Base.RotateVec3(m.Vec3{Z: 1})
	if up.Distance(m.Up) > 1e-4 {
		t.Errorf("corrected up = %v, want world up", up)
	}

	// Yawing about the asset's local axis must not tilt it: compose an
	// arbitrary yaw and check up is preserved.
	yaw := m.QuatFromAxisAngle(o.YawAxis, float32(math.Pi/3))
	up = o.Base.Mul(yaw).RotateVec3(m.Vec3{Z: 1})
	if up.Distance(m.Up) > 1e-4 {
		t.Errorf("yawed corrected up = %v, want world up", up)
	}
}
