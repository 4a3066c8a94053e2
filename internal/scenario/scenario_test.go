package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kmishmael/dieselops/internal/config"
)

func baseConfig() config.Config {
	cfg := *config.DefaultConfig()
	cfg.Dt = 0.5
	cfg.Duration = 60
	cfg.Noise.Disabled = true
	return cfg
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shed.yaml")
	body := []byte(`name: load-shed
description: drop demand mid-run
config:
  dt: 0.5
  duration: 120
steps:
  - at: 0
    action: auto
    loop: power
    enabled: true
    value: 300
  - at: 60
    action: set
    target: load
    value: 20
`)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "load-shed" {
		t.Errorf("name: got %q", sc.Name)
	}
	if len(sc.Steps) != 2 {
		t.Fatalf("steps: got %d", len(sc.Steps))
	}
	if sc.Config.Duration != 120 {
		t.Errorf("duration: got %f", sc.Config.Duration)
	}
}

func TestLoadRejectsBadSteps(t *testing.T) {
	cases := map[string]string{
		"bad action": "steps:\n  - at: 0\n    action: explode\n",
		"bad target": "steps:\n  - at: 0\n    action: set\n    target: warp\n",
		"bad loop":   "steps:\n  - at: 0\n    action: auto\n    loop: voltage\n",
		"bad time":   "steps:\n  - at: -5\n    action: emergency\n",
	}
	dir := t.TempDir()
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestReplayAppliesStepsInOrder(t *testing.T) {
	sc := &Scenario{
		Name:   "shed",
		Config: baseConfig(),
		Steps: []Step{
			{At: 30, Action: "set", Target: "load", Value: 20},
			{At: 0, Action: "set", Target: "load", Value: 90},
		},
	}

	res, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Applied != 2 {
		t.Errorf("applied: got %d want 2", res.Applied)
	}
	if got := res.Run.Final.Plant.Load; got != 20 {
		t.Errorf("final load: got %f want 20", got)
	}
	if res.Run.Final.Plant.Time != 60 {
		t.Errorf("final time: got %f", res.Run.Final.Plant.Time)
	}
	if _, ok := res.Run.Metrics["fuel_consumed"]; !ok {
		t.Error("expected standard metrics in result")
	}
}

func TestReplayEmergencyStep(t *testing.T) {
	sc := &Scenario{
		Config: baseConfig(),
		Steps: []Step{
			{At: 10, Action: "emergency"},
		},
	}

	res, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Run.Final.Emergency {
		t.Error("expected emergency to hold at end of run")
	}
}

func TestParameterSweep(t *testing.T) {
	cfg := baseConfig()
	lc := cfg.Loops["power"]
	lc.Enabled = true
	cfg.Loops["power"] = lc

	sw := &ParameterSweep{
		Config:    cfg,
		Parameter: "power.kp",
		Min:       0.2,
		Max:       0.8,
		Steps:     4,
	}

	points, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("points: got %d", len(points))
	}
	if points[0].Value != 0.2 || points[3].Value != 0.8 {
		t.Errorf("endpoints: got %f..%f", points[0].Value, points[3].Value)
	}
	for _, p := range points {
		if _, ok := p.Metrics["tracking_error_power"]; !ok {
			t.Fatal("expected tracking metric per point")
		}
	}
}

func TestParameterSweepRejectsBadParameter(t *testing.T) {
	sw := &ParameterSweep{Config: baseConfig(), Parameter: "power.gain", Min: 0, Max: 1, Steps: 2}
	if _, err := sw.Run(context.Background()); err == nil {
		t.Error("expected error for unknown field")
	}

	sw.Parameter = "kp"
	if _, err := sw.Run(context.Background()); err == nil {
		t.Error("expected error for missing loop prefix")
	}
}

func TestMonteCarloDeterministicWithSeed(t *testing.T) {
	mc := &MonteCarlo{
		Config:       baseConfig(),
		Perturbation: 10,
		Trials:       3,
		Seed:         42,
	}

	first, err := mc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := mc.Run(context.Background())
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("trials: got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Initial != second[i].Initial {
			t.Errorf("trial %d: seeded runs must perturb identically", i)
		}
	}

	if frac := StableFraction(first); frac < 0 || frac > 1 {
		t.Errorf("stable fraction out of range: %f", frac)
	}
}
