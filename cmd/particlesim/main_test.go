package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/spf13/cobra"
)

func newSceneCmd(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addSceneFlags(cmd)
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := newSceneCmd(t)
	cfg, err := resolveConfig(cmd, "chain")
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	def := config.DefaultConfig()
	if cfg.Dt != def.Dt || cfg.Solver.Substeps != def.Solver.Substeps {
		t.Errorf("got dt=%g substeps=%d, want defaults", cfg.Dt, cfg.Solver.Substeps)
	}
	if cfg.Scene != "chain" {
		t.Errorf("scene = %q", cfg.Scene)
	}
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	cmd := newSceneCmd(t)
	if err := cmd.Flags().Set("preset", "long"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("substeps", "50"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd, "pendulum")
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Chain.Links != 20 {
		t.Errorf("links = %d, want preset value 20", cfg.Chain.Links)
	}
	if cfg.Solver.Substeps != 50 {
		t.Errorf("substeps = %d, want flag value 50", cfg.Solver.Substeps)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := newSceneCmd(t)
	if err := cmd.Flags().Set("preset", "nope"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd, "electrons"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	yaml := "dt: 0.02\nelectrons:\n  count: 7\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newSceneCmd(t)
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(cmd, "electrons")
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Dt != 0.02 || cfg.Electrons.Count != 7 {
		t.Errorf("got dt=%g count=%d, want 0.02 and 7", cfg.Dt, cfg.Electrons.Count)
	}
}

func TestResolveConfigRejectsInvalidFlag(t *testing.T) {
	cmd := newSceneCmd(t)
	if err := cmd.Flags().Set("substeps", "0"); err != nil {
		t.Fatal(err)
	}
	_, err := resolveConfig(cmd, "chain")
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestResolveConfigRejectsUnboundedTime(t *testing.T) {
	for _, v := range []string{"inf", "NaN", "1e30"} {
		cmd := newSceneCmd(t)
		if err := cmd.Flags().Set("time", v); err != nil {
			t.Fatal(err)
		}
		if _, err := resolveConfig(cmd, "chain"); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("--time %s: err = %v, want ErrInvalidConfig", v, err)
		}
	}
}

func TestPresetScene(t *testing.T) {
	tests := map[string]string{
		"pendulum":  "chain",
		"chain":     "chain",
		"electrons": "electrons",
	}
	for in, want := range tests {
		if got := presetScene(in); got != want {
			t.Errorf("presetScene(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"substeps=10,100, 1000", "damping=0.5"})
	if err != nil {
		t.Fatalf("parseGrid: %v", err)
	}
	if len(names) != 2 || names[0] != "substeps" || names[1] != "damping" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][2] != 1000 || ranges[1][0] != 0.5 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"substeps", "=1,2", "substeps=", "substeps=1,x"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q) accepted", bad)
		}
	}
}

func TestBenchSceneRuns(t *testing.T) {
	cmd := newSceneCmd(t)
	for flag, v := range map[string]string{"substeps": "20", "links": "2"} {
		if err := cmd.Flags().Set(flag, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := benchScene(cmd, []string{"chain"}); err != nil {
		t.Errorf("benchScene: %v", err)
	}
}
