// Package assets tracks the vegetation variant handles the scatter pass
// indexes into. Handles are opaque references to renderer-side resources;
// nothing here loads or parses asset data.
package assets

import (
	"fmt"
	"math"
	"sync"

	m "github.com/Faultbox/terragen/pkg/math"
)

// Variant is one registered vegetation asset.
type Variant struct {
	// Name identifies the asset to the external renderer or exporter.
	Name string
}

// Orientation describes the rest pose of the registered assets: the
// corrective rotation applied before the per-instance yaw, and the local
// axis that yaw spins around.
type Orientation struct {
	Base    m.Quat
	YawAxis m.Vec3
}

// YUp is the orientation for assets authored with Y as their up axis.
// No correction is needed and yaw spins around Y.
var YUp = Orientation{
	Base:    m.QuatIdentity(),
	YawAxis: m.Up,
}

// ZUp stands Z-up assets upright with a three-quarter turn about X; their
// yaw then spins around local Z.
var ZUp = Orientation{
	Base:    m.QuatFromAxisAngle(m.Vec3{X: 1}, 3*math.Pi/2),
	YawAxis: m.Vec3{Z: 1},
}

// VariantSet is the registry of vegetation variants for one scene. It starts
// empty and not ready; registering the first variant flips readiness and
// notifies subscribers. Safe for concurrent use.
type VariantSet struct {
	mu          sync.RWMutex
	variants    []Variant
	orientation Orientation
	subscribers []chan struct{}
}

// NewVariantSet creates an empty registry with the given rest orientation.
func NewVariantSet(orientation Orientation) *VariantSet {
	return &VariantSet{orientation: orientation}
}

// Add registers a variant and returns its index. The first Add makes the
// set ready; every Add notifies subscribers.
func (s *VariantSet) Add(v Variant) int {
	s.mu.Lock()
	s.variants = append(s.variants, v)
	idx := len(s.variants) - 1
	subs := make([]chan struct{}, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, ch := range subs {
		// Non-blocking: a pending notification already covers this change.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return idx
}

// Ready reports whether at least one variant is registered.
func (s *VariantSet) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.variants) > 0
}

// Count returns the number of registered variants.
func (s *VariantSet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.variants)
}

// Handle returns the variant at index i.
func (s *VariantSet) Handle(i int) (Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.variants) {
		return Variant{}, fmt.Errorf("variant index %d out of range (have %d)", i, len(s.variants))
	}
	return s.variants[i], nil
}

// Orientation returns the rest orientation shared by the registered assets.
func (s *VariantSet) Orientation() Orientation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orientation
}

// Subscribe returns a channel that receives a signal whenever the registry
// changes. The channel is buffered; coalesced signals mean "recheck", not
// one event per Add.
func (s *VariantSet) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}
