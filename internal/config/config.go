package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kmishmael/dieselops/internal/plant"
	"github.com/kmishmael/dieselops/internal/sim"
)

const (
	DefaultDt       = 0.5
	DefaultDuration = 600.0
	DefaultSpeed    = 1.0
)

// Config is the on-disk description of a simulator setup: initial
// actuators, loop tunings and targets, cascade selection, alert
// thresholds and run timing.
type Config struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Speed    float64 `yaml:"speed"`

	Noise NoiseConfig `yaml:"noise"`

	Initial      ActuatorConfig        `yaml:"initial"`
	Loops        map[string]LoopConfig `yaml:"loops"`
	Cascade      CascadeConfig         `yaml:"cascade"`
	Alerts       AlertConfig           `yaml:"alerts"`
	ResumePolicy string                `yaml:"resume_policy"`
}

type NoiseConfig struct {
	Disabled bool  `yaml:"disabled"`
	Seed     int64 `yaml:"seed"`
}

type ActuatorConfig struct {
	FuelInjectionRate   float64 `yaml:"fuel_injection_rate"`
	CoolingSystemPower  float64 `yaml:"cooling_system_power"`
	GeneratorExcitation float64 `yaml:"generator_excitation"`
	Load                float64 `yaml:"load"`
	MaintenanceStatus   float64 `yaml:"maintenance_status"`
}

type LoopConfig struct {
	Enabled bool    `yaml:"enabled"`
	Target  float64 `yaml:"target"`
	Kp      float64 `yaml:"kp"`
	Ki      float64 `yaml:"ki"`
	Kd      float64 `yaml:"kd"`
}

type CascadeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Type    string  `yaml:"type"`
	Target  float64 `yaml:"target"`
}

type AlertConfig struct {
	EfficiencyFloor float64 `yaml:"efficiency_floor"`
	NOxCeiling      float64 `yaml:"nox_ceiling"`
}

// DefaultConfig mirrors the simulator's cold-start defaults: all loops
// manual, temperature cascade configured but disabled, 1x speed.
func DefaultConfig() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Speed:    DefaultSpeed,
		Initial: ActuatorConfig{
			FuelInjectionRate:   plant.DefaultFuelRate,
			CoolingSystemPower:  plant.DefaultCooling,
			GeneratorExcitation: plant.DefaultExcitation,
			Load:                plant.DefaultLoad,
			MaintenanceStatus:   plant.DefaultMaintenance,
		},
		Loops: map[string]LoopConfig{
			"temperature": {Target: 80, Kp: -2.5, Ki: -0.08, Kd: -0.4},
			"power":       {Target: 300, Kp: 0.5, Ki: 0.05, Kd: 0.1},
			"efficiency":  {Target: 40, Kp: 1.5, Ki: 0.1, Kd: 0.2},
		},
		Cascade: CascadeConfig{Type: "temperature", Target: 80},
		Alerts: AlertConfig{
			EfficiencyFloor: sim.DefaultEfficiencyAlertFloor,
			NOxCeiling:      sim.DefaultNOxAlertCeiling,
		},
		ResumePolicy: "manual",
	}
}

// Load reads a YAML config, layered over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configs the simulator would silently misbehave on.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %f", c.Speed)
	}
	for name := range c.Loops {
		if _, err := sim.ParseLoop(name); err != nil {
			return err
		}
	}
	if c.Cascade.Type != "" {
		l, err := sim.ParseLoop(c.Cascade.Type)
		if err != nil {
			return err
		}
		if l == sim.LoopEfficiency {
			return fmt.Errorf("cascade type %q has no inner-loop pairing", c.Cascade.Type)
		}
	}
	if _, err := sim.ParseResumePolicy(c.ResumePolicy); err != nil {
		return err
	}
	return nil
}

// NewSimulator builds a simulator configured per c.
func (c *Config) NewSimulator() (*sim.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var noise plant.Noise
	if !c.Noise.Disabled {
		noise = plant.NewUniform(c.Noise.Seed)
	}
	s := sim.New(noise)
	if err := c.Apply(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply pushes the config onto an existing simulator through its public
// setters, so the usual mode arbitration applies.
func (c *Config) Apply(s *sim.Simulator) error {
	s.SetSimulationSpeed(c.Speed)
	s.SetAlertThresholds(c.Alerts.EfficiencyFloor, c.Alerts.NOxCeiling)

	policy, err := sim.ParseResumePolicy(c.ResumePolicy)
	if err != nil {
		return err
	}
	s.SetResumePolicy(policy)

	s.SetFuelInjectionRate(c.Initial.FuelInjectionRate)
	s.SetCoolingSystemPower(c.Initial.CoolingSystemPower)
	s.SetGeneratorExcitation(c.Initial.GeneratorExcitation)
	s.SetLoad(c.Initial.Load)
	s.SetMaintenanceStatus(c.Initial.MaintenanceStatus)

	for name, lc := range c.Loops {
		l, err := sim.ParseLoop(name)
		if err != nil {
			return err
		}
		kp, ki, kd := lc.Kp, lc.Ki, lc.Kd
		s.UpdatePIDParameters(l, &kp, &ki, &kd)
		target := lc.Target
		s.UpdateAutoControl(l, lc.Enabled, &target)
	}

	if c.Cascade.Type != "" {
		l, err := sim.ParseLoop(c.Cascade.Type)
		if err != nil {
			return err
		}
		if err := s.SetCascadeControlType(l); err != nil {
			return err
		}
		s.UpdateCascadeSetpoint(c.Cascade.Target)
		s.SetCascadeControl(c.Cascade.Enabled)
	}

	return nil
}
