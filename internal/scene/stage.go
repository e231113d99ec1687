// Package scene owns the boundary to the external scene graph. It tracks the
// entities belonging to the currently installed generation and guarantees that
// replacing a generation never leaves the scene holding two at once.
package scene

import (
	"sync"

	"github.com/Faultbox/terragen/internal/config"
	"github.com/Faultbox/terragen/internal/terrain"
)

// Generation is one complete regeneration result: the terrain mesh, the
// scattered vegetation instances, the config snapshot that produced them, and
// a monotonically increasing pass number.
type Generation struct {
	Mesh      *terrain.Mesh
	Instances []terrain.Placement
	Config    config.Config
	Pass      uint64
}

// EntityID identifies one spawned scene entity.
type EntityID uint64

// Spawner creates and destroys entities in the external scene graph. The
// renderer (or a test double) implements it.
type Spawner interface {
	// SpawnTerrain creates the terrain entity for the mesh.
	SpawnTerrain(mesh *terrain.Mesh) EntityID
	// SpawnInstance creates one vegetation entity.
	SpawnInstance(p terrain.Placement) EntityID
	// Despawn removes an entity.
	Despawn(id EntityID)
}

// Stage tracks the one installed generation and its entities. Installing a
// new generation despawns the old one's entities and spawns the new ones
// under a single lock, so no observer holding the stage ever sees geometry
// from two generations mixed.
type Stage struct {
	mu        sync.Mutex
	spawner   Spawner
	current   *Generation
	entities  []EntityID
	onInstall func(*Generation)
}

// NewStage creates a stage backed by the given spawner.
func NewStage(spawner Spawner) *Stage {
	return &Stage{spawner: spawner}
}

// OnInstall registers a hook invoked after each successful install, while the
// stage lock is held. Used for export and logging; the hook must not call
// back into the stage.
func (s *Stage) OnInstall(fn func(*Generation)) {
	s.mu.Lock()
	s.onInstall = fn
	s.mu.Unlock()
}

// Install replaces the current generation with g. Teardown happens first so
// entity resources are released before the new spawn claims theirs.
func (s *Stage) Install(g *Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entities {
		s.spawner.Despawn(id)
	}
	s.entities = s.entities[:0]

	s.entities = append(s.entities, s.spawner.SpawnTerrain(g.Mesh))
	for _, p := range g.Instances {
		s.entities = append(s.entities, s.spawner.SpawnInstance(p))
	}
	s.current = g

	if s.onInstall != nil {
		s.onInstall(g)
	}
}

// Current returns the installed generation, or nil before the first install.
func (s *Stage) Current() *Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// EntityCount returns the number of live entities (terrain plus instances).
func (s *Stage) EntityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

// Clear despawns everything and forgets the current generation.
func (s *Stage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.entities {
		s.spawner.Despawn(id)
	}
	s.entities = s.entities[:0]
	s.current = nil
}
