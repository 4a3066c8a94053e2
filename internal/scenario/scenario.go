package scenario

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kmishmael/dieselops/internal/config"
	"github.com/kmishmael/dieselops/internal/metrics"
	"github.com/kmishmael/dieselops/internal/sim"
)

// Scenario is a scripted operating sequence: a base plant setup plus
// timed operator actions, replayed against the simulator through its
// public setters.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Config      config.Config `yaml:"config"`
	Steps       []Step        `yaml:"steps"`
}

// Step is one timed action. At is in simulated seconds; steps fire once,
// in time order, when the clock reaches them.
type Step struct {
	At     float64 `yaml:"at"`
	Action string  `yaml:"action"`

	// Set actions.
	Target string  `yaml:"target"`
	Value  float64 `yaml:"value"`

	// Loop actions.
	Loop    string   `yaml:"loop"`
	Enabled bool     `yaml:"enabled"`
	Kp      *float64 `yaml:"kp"`
	Ki      *float64 `yaml:"ki"`
	Kd      *float64 `yaml:"kd"`
}

// Load reads a scenario from YAML; its embedded config layers over the
// defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sc := &Scenario{Config: *config.DefaultConfig()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks the base config and every step action.
func (sc *Scenario) Validate() error {
	if err := sc.Config.Validate(); err != nil {
		return err
	}
	for i, step := range sc.Steps {
		if step.At < 0 {
			return fmt.Errorf("step %d: negative time %f", i+1, step.At)
		}
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Action {
	case "set":
		switch step.Target {
		case "fuel", "cooling", "excitation", "load", "maintenance":
			return nil
		}
		return fmt.Errorf("unknown set target %q", step.Target)
	case "auto", "tune":
		_, err := sim.ParseLoop(step.Loop)
		return err
	case "cascade":
		if step.Loop == "" {
			return nil
		}
		_, err := sim.ParseLoop(step.Loop)
		return err
	case "setpoint":
		_, err := sim.ParseLoop(step.Loop)
		return err
	case "emergency", "speed", "reset":
		return nil
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

// Result is the outcome of a scenario replay. Samples holds one snapshot
// per whole simulated second for persistence or export.
type Result struct {
	Scenario string
	Run      *sim.RunResult
	Samples  []sim.Snapshot
	Applied  int
}

// Run builds the scenario's simulator, replays the steps against the
// simulated clock and collects the standard metric set.
func (sc *Scenario) Run(ctx context.Context) (*Result, error) {
	s, err := sc.Config.NewSimulator()
	if err != nil {
		return nil, err
	}
	return sc.Replay(ctx, s)
}

// Replay runs the scenario against an existing simulator.
func (sc *Scenario) Replay(ctx context.Context, s *sim.Simulator) (*Result, error) {
	steps := make([]Step, len(sc.Steps))
	copy(steps, sc.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	next := 0
	applied := 0
	var samples []sim.Snapshot
	lastSecond := -1.0
	observer := func(snap sim.Snapshot) {
		for next < len(steps) && snap.Plant.Time >= steps[next].At {
			apply(s, steps[next])
			next++
			applied++
		}
		if sec := math.Floor(snap.Plant.Time); sec > lastSecond {
			samples = append(samples, snap)
			lastSecond = sec
		}
	}

	// Fire any step scheduled at or before the start.
	for next < len(steps) && steps[next].At <= 0 {
		apply(s, steps[next])
		next++
		applied++
	}

	runCfg := sim.RunConfig{Dt: sc.Config.Dt, Duration: sc.Config.Duration}
	run, err := sim.Run(ctx, s, runCfg, metrics.Standard(), observer)
	if err != nil {
		return nil, err
	}

	return &Result{Scenario: sc.Name, Run: run, Samples: samples, Applied: applied}, nil
}

func apply(s *sim.Simulator, step Step) {
	switch step.Action {
	case "set":
		switch step.Target {
		case "fuel":
			s.SetFuelInjectionRate(step.Value)
		case "cooling":
			s.SetCoolingSystemPower(step.Value)
		case "excitation":
			s.SetGeneratorExcitation(step.Value)
		case "load":
			s.SetLoad(step.Value)
		case "maintenance":
			s.SetMaintenanceStatus(step.Value)
		}
	case "auto":
		l, _ := sim.ParseLoop(step.Loop)
		if step.Kp != nil || step.Ki != nil || step.Kd != nil {
			s.UpdatePIDParameters(l, step.Kp, step.Ki, step.Kd)
		}
		target := step.Value
		s.UpdateAutoControl(l, step.Enabled, &target)
	case "cascade":
		if step.Loop != "" {
			l, _ := sim.ParseLoop(step.Loop)
			_ = s.SetCascadeControlType(l)
		}
		if step.Value != 0 {
			s.UpdateCascadeSetpoint(step.Value)
		}
		s.SetCascadeControl(step.Enabled)
	case "setpoint":
		l, _ := sim.ParseLoop(step.Loop)
		target := step.Value
		s.UpdateAutoControl(l, s.Mode(l) == sim.ModeAuto, &target)
	case "emergency":
		s.ToggleEmergencyMode()
	case "speed":
		s.SetSimulationSpeed(step.Value)
	case "tune":
		l, _ := sim.ParseLoop(step.Loop)
		req := sim.TuneRequest{Loop: l, Delay: step.Value}
		if step.Kp != nil {
			req.Kp = *step.Kp
		}
		if step.Ki != nil {
			req.Ki = *step.Ki
		}
		if step.Kd != nil {
			req.Kd = *step.Kd
		}
		_ = s.StartAutoTune(req)
	case "reset":
		s.Reset()
	}
}
