// Package regen drives terrain regeneration: it reacts to config changes and
// asset readiness, runs generation passes one at a time, and installs results
// into the scene stage.
package regen

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/terragen/internal/assets"
	"github.com/Faultbox/terragen/internal/config"
	"github.com/Faultbox/terragen/internal/logger"
	"github.com/Faultbox/terragen/internal/noise"
	"github.com/Faultbox/terragen/internal/scene"
	"github.com/Faultbox/terragen/internal/terrain"
)

// State is the controller's lifecycle phase.
type State int32

const (
	// StateIdle means no config has been applied yet.
	StateIdle State = iota
	// StateAwaitingAssets means a terrain is installed without vegetation
	// because no variants are registered yet.
	StateAwaitingAssets
	// StateGenerating means a pass is running.
	StateGenerating
	// StateInstalled means the latest pass is installed and complete.
	StateInstalled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAssets:
		return "awaiting-assets"
	case StateGenerating:
		return "generating"
	case StateInstalled:
		return "installed"
	default:
		return "unknown"
	}
}

// Controller serializes regeneration passes. All passes run on the Run loop
// goroutine; Apply may be called from anywhere and coalesces bursts so only
// the latest pending config gets generated.
type Controller struct {
	stage    *scene.Stage
	variants *assets.VariantSet

	configCh chan config.Config
	state    atomic.Int32
	pass     atomic.Uint64

	mu      sync.Mutex
	lastCfg *config.Config // config of the last successful pass
}

// New creates a controller installing into stage and drawing variants from
// the given set.
func New(stage *scene.Stage, variants *assets.VariantSet) *Controller {
	return &Controller{
		stage:    stage,
		variants: variants,
		configCh: make(chan config.Config, 1),
	}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Pass returns the number of completed generation passes.
func (c *Controller) Pass() uint64 {
	return c.pass.Load()
}

// Apply queues a config snapshot for regeneration. A snapshot still pending
// when the next arrives is replaced; intermediate revisions are never
// generated.
func (c *Controller) Apply(cfg config.Config) {
	for {
		select {
		case c.configCh <- cfg:
			return
		default:
		}
		select {
		case <-c.configCh:
		default:
		}
	}
}

// Run processes config changes and asset readiness until ctx is cancelled.
// It must be called once; passes never overlap.
func (c *Controller) Run(ctx context.Context) {
	assetCh := c.variants.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-c.configCh:
			c.runFullPass(cfg)
		case <-assetCh:
			c.rescatter()
		}
	}
}

// RunOnce performs a single full pass against cfg, for one-shot CLI use.
func (c *Controller) RunOnce(cfg config.Config) {
	c.runFullPass(cfg)
}

// runFullPass regenerates mesh and placements from cfg and installs the
// result. A panic inside the pass is recovered so the previously installed
// generation survives; the controller simply waits for the next trigger.
func (c *Controller) runFullPass(cfg config.Config) {
	c.state.Store(int32(StateGenerating))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("generation pass panicked, keeping previous terrain",
				zap.Any("panic", r))
			c.restoreStateAfterFailure()
		}
	}()

	field, err := noise.New(cfg.Terrain.Noise, cfg.Terrain.Seed, cfg.Terrain.Frequency, cfg.Terrain.Octaves)
	if err != nil {
		logger.Error("generation pass rejected", zap.Error(err))
		c.restoreStateAfterFailure()
		return
	}

	mesh := terrain.Generate(field, cfg.Terrain.HalfSize)
	if cfg.Terrain.Tangents {
		if err := mesh.GenerateTangents(); err != nil {
			logger.Error("generation pass failed", zap.Error(err))
			c.restoreStateAfterFailure()
			return
		}
	}
	mesh.RotateYaw(cfg.Terrain.Rotation)

	c.install(cfg, mesh)
}

// rescatter re-runs placement against the installed mesh when the variant
// registry changes. The mesh is untouched; only instances are rebuilt.
func (c *Controller) rescatter() {
	c.mu.Lock()
	last := c.lastCfg
	c.mu.Unlock()
	if last == nil {
		// Nothing generated yet; the first config pass will pick the
		// variants up on its own.
		return
	}
	cur := c.stage.Current()
	if cur == nil {
		return
	}

	logger.Info("variant registry changed, re-running placement",
		zap.Int("variants", c.variants.Count()))

	c.state.Store(int32(StateGenerating))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("placement pass panicked, keeping previous instances",
				zap.Any("panic", r))
			c.restoreStateAfterFailure()
		}
	}()

	c.install(*last, cur.Mesh)
}

// install scatters vegetation over mesh and swaps the result into the stage.
func (c *Controller) install(cfg config.Config, mesh *terrain.Mesh) {
	orientation := c.variants.Orientation()
	placements := terrain.Scatter(mesh.Positions, mesh.Normals, terrain.ScatterParams{
		Density:      cfg.Scatter.Density,
		MaxSteepness: cfg.Scatter.MaxSteepness,
		BaseRotation: orientation.Base,
		YawAxis:      orientation.YawAxis,
		VariantCount: c.variants.Count(),
	}, uint64(cfg.Terrain.Seed))

	pass := c.pass.Add(1)
	c.stage.Install(&scene.Generation{
		Mesh:      mesh,
		Instances: placements,
		Config:    cfg,
		Pass:      pass,
	})

	c.mu.Lock()
	c.lastCfg = &cfg
	c.mu.Unlock()

	if c.variants.Ready() {
		c.state.Store(int32(StateInstalled))
	} else {
		c.state.Store(int32(StateAwaitingAssets))
	}

	logger.Info("terrain installed",
		zap.Uint64("pass", pass),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("instances", len(placements)),
		zap.Uint32("seed", cfg.Terrain.Seed))
}

// restoreStateAfterFailure puts the state back to whatever the stage holds.
func (c *Controller) restoreStateAfterFailure() {
	switch {
	case c.stage.Current() == nil:
		c.state.Store(int32(StateIdle))
	case c.variants.Ready():
		c.state.Store(int32(StateInstalled))
	default:
		c.state.Store(int32(StateAwaitingAssets))
	}
}
