package regen

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/Faultbox/terragen/internal/assets"
	"github.com/Faultbox/terragen/internal/config"
	"github.com/Faultbox/terragen/internal/noise"
	"github.com/Faultbox/terragen/internal/scene"
	"github.com/Faultbox/terragen/internal/terrain"
)

// nullSpawner satisfies scene.Spawner without a renderer behind it.
type nullSpawner struct{ next scene.EntityID }

func (n *nullSpawner) SpawnTerrain(*terrain.Mesh) scene.EntityID {
	n.next++
	return n.next
}

func (n *nullSpawner) SpawnInstance(terrain.Placement) scene.EntityID {
	n.next++
	return n.next
}

func (n *nullSpawner) Despawn(scene.EntityID) {}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Terrain.HalfSize = 16
	cfg.Terrain.Tangents = false
	return cfg.Snapshot()
}

func readyVariants(n int) *assets.VariantSet {
	s := assets.NewVariantSet(assets.YUp)
	for i := 0; i < n; i++ {
		s.Add(assets.Variant{Name: "fir"})
	}
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunOnceInstalls(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	ctrl := New(stage, readyVariants(2))

	ctrl.RunOnce(testConfig())

	if got := ctrl.State(); got != StateInstalled {
		t.Errorf("state %v, want installed", got)
	}
	cur := stage.Current()
	if cur == nil {
		t.Fatal("nothing installed")
	}
	if cur.Pass != 1 {
		t.Errorf("pass %d, want 1", cur.Pass)
	}
	if cur.Mesh.VertexCount() != 33*33 {
		t.Errorf("vertex count %d", cur.Mesh.VertexCount())
	}
	if len(cur.Instances) == 0 {
		t.Error("no vegetation placed at density 0.5")
	}
}

func TestRunOnceIsDeterministic(t *testing.T) {
	cfg := testConfig()

	stageA := scene.NewStage(&nullSpawner{})
	ctrlA := New(stageA, readyVariants(3))
	ctrlA.RunOnce(cfg)

	stageB := scene.NewStage(&nullSpawner{})
	ctrlB := New(stageB, readyVariants(3))
	ctrlB.RunOnce(cfg)

	a, b := stageA.Current(), stageB.Current()
	if !reflect.DeepEqual(a.Mesh.Positions, b.Mesh.Positions) {
		t.Error("meshes differ across identical runs")
	}
	if !reflect.DeepEqual(a.Instances, b.Instances) {
		t.Error("instances differ across identical runs")
	}
}

func TestNoVariantsInstallsBareTerrain(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	ctrl := New(stage, assets.NewVariantSet(assets.YUp))

	ctrl.RunOnce(testConfig())

	if got := ctrl.State(); got != StateAwaitingAssets {
		t.Errorf("state %v, want awaiting-assets", got)
	}
	cur := stage.Current()
	if cur == nil {
		t.Fatal("terrain not installed without variants")
	}
	if len(cur.Instances) != 0 {
		t.Errorf("%d instances with no variants registered", len(cur.Instances))
	}
}

func TestInvalidBackendKeepsPreviousInstall(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	ctrl := New(stage, readyVariants(1))

	ctrl.RunOnce(testConfig())

	bad := testConfig()
	bad.Terrain.Noise = "bogus"
	ctrl.RunOnce(bad)

	cur := stage.Current()
	if cur == nil || cur.Pass != 1 {
		t.Fatalf("previous install lost: %+v", cur)
	}
	if got := ctrl.State(); got != StateInstalled {
		t.Errorf("state %v after rejected pass, want installed", got)
	}
}

func TestApplyCoalesces(t *testing.T) {
	ctrl := New(scene.NewStage(&nullSpawner{}), readyVariants(1))

	first := testConfig()
	first.Terrain.Seed = 1
	second := testConfig()
	second.Terrain.Seed = 2
	third := testConfig()
	third.Terrain.Seed = 3

	ctrl.Apply(first)
	ctrl.Apply(second)
	ctrl.Apply(third)

	got := <-ctrl.configCh
	if got.Terrain.Seed != 3 {
		t.Errorf("pending config seed %d, want the latest (3)", got.Terrain.Seed)
	}
	select {
	case extra := <-ctrl.configCh:
		t.Errorf("stale config seed %d left in queue", extra.Terrain.Seed)
	default:
	}
}

func TestRunAppliesConfig(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	ctrl := New(stage, readyVariants(2))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	ctrl.Apply(testConfig())
	waitFor(t, "first install", func() bool { return stage.Current() != nil })

	if got := ctrl.State(); got != StateInstalled {
		t.Errorf("state %v, want installed", got)
	}
}

func TestAssetArrivalRerunsPlacementOnly(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	variants := assets.NewVariantSet(assets.YUp)
	ctrl := New(stage, variants)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	ctrl.Apply(testConfig())
	waitFor(t, "bare terrain install", func() bool {
		return ctrl.State() == StateAwaitingAssets
	})
	bare := stage.Current()

	variants.Add(assets.Variant{Name: "fir"})
	waitFor(t, "placement rerun", func() bool {
		cur := stage.Current()
		return cur != nil && cur.Pass == 2
	})

	cur := stage.Current()
	if cur.Mesh != bare.Mesh {
		t.Error("placement rerun rebuilt the mesh instead of reusing it")
	}
	if len(cur.Instances) == 0 {
		t.Error("no instances after variants arrived")
	}
	if got := ctrl.State(); got != StateInstalled {
		t.Errorf("state %v, want installed", got)
	}
}

func TestRapidChangesInstallLatestConfig(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	ctrl := New(stage, readyVariants(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	// Burst of revisions; the stage must settle on the newest one, never a
	// mix of generations.
	var last uint32
	for seed := uint32(1); seed <= 20; seed++ {
		cfg := testConfig()
		cfg.Terrain.Seed = seed
		ctrl.Apply(cfg)
		last = seed
	}

	waitFor(t, "latest config installed", func() bool {
		cur := stage.Current()
		return cur != nil && cur.Config.Terrain.Seed == last && ctrl.State() == StateInstalled
	})

	cur := stage.Current()
	field, err := noise.New(cur.Config.Terrain.Noise, cur.Config.Terrain.Seed,
		cur.Config.Terrain.Frequency, cur.Config.Terrain.Octaves)
	if err != nil {
		t.Fatalf("noise: %v", err)
	}
	// Mesh and config must come from the same pass.
	for i, p := range cur.Mesh.Positions {
		if p.Y != field.HeightAt(p.X, p.Z) {
			t.Fatalf("vertex %d does not match installed config's noise field", i)
		}
	}
}

func TestAssetArrivalBeforeAnyConfigIsIgnored(t *testing.T) {
	stage := scene.NewStage(&nullSpawner{})
	variants := assets.NewVariantSet(assets.YUp)
	ctrl := New(stage, variants)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	variants.Add(assets.Variant{Name: "fir"})

	// Give the loop a moment; nothing must be installed without a config.
	time.Sleep(20 * time.Millisecond)
	if stage.Current() != nil {
		t.Error("asset arrival alone triggered an install")
	}
	if got := ctrl.State(); got != StateIdle {
		t.Errorf("state %v, want idle", got)
	}
}
