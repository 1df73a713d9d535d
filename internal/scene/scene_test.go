package scene

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/vecmath"
)

func TestBuildChain(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Chain.AnchorX = 10
	cfg.Chain.AnchorY = 20
	cfg.Chain.Mass = 4

	sc, err := BuildChain(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if sc.Chain == nil || sc.Sphere != nil {
		t.Fatal("expected a chain scene")
	}
	if got := sc.Chain.Len(); got != cfg.Chain.Links+1 {
		t.Errorf("expected %d particles, got %d", cfg.Chain.Links+1, got)
	}
	if got := sc.Chain.Constraints().Len(); got != cfg.Chain.Links {
		t.Errorf("expected %d constraints, got %d", cfg.Chain.Links, got)
	}

	anchor := sc.Chain.Particles().At(sc.Handles[0])
	if !anchor.Pinned() || anchor.RespondsToForce || anchor.Position != vecmath.V2(10, 20) {
		t.Errorf("unexpected anchor: %+v", *anchor)
	}
	last := sc.Chain.Particles().At(sc.Handles[len(sc.Handles)-1])
	if last.Position != vecmath.V2(10+5*50, 20) || last.InvMass != 0.25 {
		t.Errorf("unexpected tail particle: %+v", *last)
	}
}

func TestBuildElectrons(t *testing.T) {
	cfg := config.GetPreset("electrons", "dozen")
	cfg.Seed = 11

	sc, err := BuildElectrons(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if sc.Sphere == nil || sc.Chain != nil {
		t.Fatal("expected a sphere scene")
	}
	if sc.Sphere.Len() != 12 {
		t.Errorf("expected 12 electrons, got %d", sc.Sphere.Len())
	}
	if sc.Strength != cfg.Field.ForceConstant {
		t.Errorf("strength = %v, want %v", sc.Strength, cfg.Field.ForceConstant)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.List()
	want := []string{"chain", "electrons", "pendulum"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}

	if _, err := r.Build("nonexistent", config.DefaultConfig()); err == nil {
		t.Error("expected error for unknown scene")
	}

	bad := config.DefaultConfig()
	bad.Solver.Substeps = 0
	if _, err := r.Build("chain", bad); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestScenesRunEndToEnd(t *testing.T) {
	tests := []struct {
		scene  string
		preset string
		check  func(t *testing.T, res *sim.Result)
	}{
		{"chain", "pendulum", func(t *testing.T, res *sim.Result) {
			if res.Metrics["anchor_drift"] != 0 {
				t.Errorf("anchor drift %v", res.Metrics["anchor_drift"])
			}
			if res.Metrics["link_strain"] > 0.5 {
				t.Errorf("link strain %v", res.Metrics["link_strain"])
			}
		}},
		{"electrons", "dozen", func(t *testing.T, res *sim.Result) {
			if res.Metrics["sphere_drift"] >= 1e-6 {
				t.Errorf("sphere drift %v", res.Metrics["sphere_drift"])
			}
			if math.IsNaN(res.Metrics["field_energy"]) {
				t.Error("field energy is NaN")
			}
		}},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			cfg := config.GetPreset(tt.scene, tt.preset)
			cfg.Duration = 0.5

			sc, err := r.Build(tt.scene, cfg)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			runner := sim.New(sc.Stepper)
			for _, m := range sc.Metrics {
				runner.AddMetric(m)
			}
			res, err := runner.Run(context.Background(), sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, ValidateState: true})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if res.Frames != 50 {
				t.Errorf("expected 50 frames, got %d", res.Frames)
			}
			tt.check(t, res)
		})
	}
}
