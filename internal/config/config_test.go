package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kmishmael/dieselops/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
	if _, ok := cfg.Loops["temperature"]; !ok {
		t.Error("expected a temperature loop tuning")
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.yaml")
	data := []byte("speed: 4.0\nloops:\n  power:\n    enabled: true\n    target: 420\n    kp: 0.7\n    ki: 0.05\n    kd: 0.1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Speed != 4.0 {
		t.Errorf("speed: got %f", cfg.Speed)
	}
	if cfg.Loops["power"].Target != 420 {
		t.Errorf("power target: got %f", cfg.Loops["power"].Target)
	}
	// Untouched fields keep their defaults.
	if cfg.Dt != DefaultDt {
		t.Errorf("dt: got %f want default", cfg.Dt)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"negative dt":    "dt: -1\n",
		"unknown loop":   "loops:\n  voltage:\n    target: 5\n",
		"bad cascade":    "cascade:\n  type: efficiency\n",
		"bad policy":     "resume_policy: panic\n",
		"malformed yaml": "loops: [\n",
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

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Speed = 2.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Speed != 2.5 {
		t.Errorf("speed: got %f", got.Speed)
	}
}

func TestApplyConfiguresSimulator(t *testing.T) {
	cfg := GetPreset("baseload")
	if cfg == nil {
		t.Fatal("expected baseload preset")
	}

	s, err := cfg.NewSimulator()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if s.Mode(sim.LoopPower) != sim.ModeAuto {
		t.Errorf("power mode: got %s", s.Mode(sim.LoopPower))
	}
	if got := s.Target(sim.LoopPower); got != 320 {
		t.Errorf("power target: got %f", got)
	}
	if got := s.PID(sim.LoopTemperature).Kp; got != -2.5 {
		t.Errorf("temperature kp: got %f", got)
	}
	// Load is an input, settable regardless of mode.
	if got := s.State().Load; got != 70 {
		t.Errorf("load: got %f", got)
	}
}

func TestApplyCascadePreset(t *testing.T) {
	cfg := GetPreset("cascade-power")
	s, err := cfg.NewSimulator()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if s.CascadeTarget() != sim.LoopPower {
		t.Errorf("cascade target: got %s", s.CascadeTarget())
	}
	if !s.CascadeState().Enabled {
		t.Error("cascade should be enabled")
	}
	if s.Mode(sim.LoopPower) != sim.ModeCascade {
		t.Errorf("power mode: got %s", s.Mode(sim.LoopPower))
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}
