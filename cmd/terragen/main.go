// Package main is the entry point for the terragen CLI: it generates a
// heightfield terrain with scattered vegetation from a config file and writes
// the result to disk, optionally watching the config for changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/terragen/internal/assets"
	"github.com/Faultbox/terragen/internal/config"
	"github.com/Faultbox/terragen/internal/export"
	"github.com/Faultbox/terragen/internal/logger"
	"github.com/Faultbox/terragen/internal/regen"
	"github.com/Faultbox/terragen/internal/scene"
	"github.com/Faultbox/terragen/internal/terrain"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== terragen ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Register vegetation variants from config.
	orientation := assets.YUp
	if cfg.Vegetation.ZUp {
		orientation = assets.ZUp
	}
	variants := assets.NewVariantSet(orientation)
	for _, name := range cfg.Vegetation.Variants {
		variants.Add(assets.Variant{Name: name})
	}
	if !variants.Ready() {
		logger.Warn("no vegetation variants configured, terrain will be bare")
	}

	stage := scene.NewStage(&exportSpawner{})
	stage.OnInstall(func(g *scene.Generation) {
		if err := writeOutputs(g, variants); err != nil {
			logger.Error("export failed", zap.Error(err))
		}
	})

	ctrl := regen.New(stage, variants)

	if !config.WatchEnabled() {
		ctrl.RunOnce(cfg.Snapshot())
		if stage.Current() == nil {
			os.Exit(1)
		}
		return
	}

	runWatch(ctrl, cfg)
}

// runWatch regenerates on every valid config file change until interrupted.
func runWatch(ctrl *regen.Controller, cfg *config.Config) {
	path := config.ConfigPath()
	if path == "" {
		path = "./terragen.yaml"
	}
	watcher, err := config.Watch(path, config.DefaultWatchInterval)
	if err != nil {
		logger.Error("config watch failed", zap.Error(err))
		os.Exit(1)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	// First pass uses the already loaded config.
	ctrl.Apply(cfg.Snapshot())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	logger.Info("watching config", zap.String("path", path))
	for {
		select {
		case snap := <-watcher.Changes():
			ctrl.Apply(snap)
		case s := <-sig:
			logger.Info("shutting down", zap.String("signal", s.String()))
			return
		}
	}
}

// writeOutputs exports the installed generation to the configured files.
func writeOutputs(g *scene.Generation, variants *assets.VariantSet) error {
	out := g.Config.Output
	meshPath := filepath.Join(out.Dir, out.MeshFile)
	instPath := filepath.Join(out.Dir, out.InstancesFile)

	if err := export.WriteOBJFile(meshPath, g.Mesh); err != nil {
		return err
	}
	if err := export.WriteInstancesFile(instPath, g.Instances, variants, g.Config.Terrain.Seed); err != nil {
		return err
	}

	logger.Info("outputs written",
		zap.String("mesh", meshPath),
		zap.String("instances", instPath),
		zap.Int("count", len(g.Instances)))
	return nil
}

// exportSpawner satisfies scene.Spawner for the headless CLI. Entities have
// no renderer behind them; installation bookkeeping is all that is needed.
type exportSpawner struct {
	next scene.EntityID
}

func (s *exportSpawner) SpawnTerrain(*terrain.Mesh) scene.EntityID {
	s.next++
	return s.next
}

func (s *exportSpawner) SpawnInstance(terrain.Placement) scene.EntityID {
	s.next++
	return s.next
}

func (s *exportSpawner) Despawn(scene.EntityID) {}
