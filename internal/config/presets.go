package config

import "sort"

// Presets are named starting points for common operating situations.
var Presets = map[string]*Config{
	"baseload": {
		Dt: 0.5, Duration: 1800, Speed: 1.0,
		Initial: ActuatorConfig{
			FuelInjectionRate: 60, CoolingSystemPower: 55,
			GeneratorExcitation: 70, Load: 70, MaintenanceStatus: 100,
		},
		Loops: map[string]LoopConfig{
			"temperature": {Enabled: true, Target: 80, Kp: -2.5, Ki: -0.08, Kd: -0.4},
			"power":       {Enabled: true, Target: 320, Kp: 0.5, Ki: 0.05, Kd: 0.1},
		},
		Cascade:      CascadeConfig{Type: "temperature", Target: 80},
		Alerts:       AlertConfig{EfficiencyFloor: 20, NOxCeiling: 200},
		ResumePolicy: "restore",
	},
	"peaking": {
		Dt: 0.25, Duration: 900, Speed: 1.0,
		Initial: ActuatorConfig{
			FuelInjectionRate: 85, CoolingSystemPower: 75,
			GeneratorExcitation: 80, Load: 95, MaintenanceStatus: 90,
		},
		Loops: map[string]LoopConfig{
			"temperature": {Enabled: true, Target: 83, Kp: -3.0, Ki: -0.1, Kd: -0.5},
			"power":       {Enabled: true, Target: 450, Kp: 0.6, Ki: 0.06, Kd: 0.1},
			"efficiency":  {Target: 40, Kp: 1.5, Ki: 0.1, Kd: 0.2},
		},
		Cascade:      CascadeConfig{Type: "temperature", Target: 83},
		Alerts:       AlertConfig{EfficiencyFloor: 18, NOxCeiling: 260},
		ResumePolicy: "manual",
	},
	"coldstart": {
		Dt: 0.5, Duration: 600, Speed: 1.0,
		Initial: ActuatorConfig{
			FuelInjectionRate: 30, CoolingSystemPower: 40,
			GeneratorExcitation: 60, Load: 30, MaintenanceStatus: 100,
		},
		Loops: map[string]LoopConfig{
			"temperature": {Target: 80, Kp: -2.5, Ki: -0.08, Kd: -0.4},
			"power":       {Target: 150, Kp: 0.5, Ki: 0.05, Kd: 0.1},
		},
		Cascade:      CascadeConfig{Type: "temperature", Target: 80},
		Alerts:       AlertConfig{EfficiencyFloor: 15, NOxCeiling: 200},
		ResumePolicy: "manual",
	},
	"worn": {
		Dt: 0.5, Duration: 1200, Speed: 1.0,
		Initial: ActuatorConfig{
			FuelInjectionRate: 65, CoolingSystemPower: 60,
			GeneratorExcitation: 70, Load: 60, MaintenanceStatus: 25,
		},
		Loops: map[string]LoopConfig{
			"temperature": {Enabled: true, Target: 78, Kp: -2.5, Ki: -0.08, Kd: -0.4},
			"power":       {Enabled: true, Target: 250, Kp: 0.5, Ki: 0.05, Kd: 0.1},
			"efficiency":  {Enabled: true, Target: 35, Kp: 1.5, Ki: 0.1, Kd: 0.2},
		},
		Cascade:      CascadeConfig{Type: "temperature", Target: 78},
		Alerts:       AlertConfig{EfficiencyFloor: 22, NOxCeiling: 180},
		ResumePolicy: "restore",
	},
	"cascade-power": {
		Dt: 0.5, Duration: 1800, Speed: 1.0,
		Initial: ActuatorConfig{
			FuelInjectionRate: 50, CoolingSystemPower: 50,
			GeneratorExcitation: 70, Load: 80, MaintenanceStatus: 100,
		},
		Loops: map[string]LoopConfig{
			"temperature": {Enabled: true, Target: 80, Kp: -2.5, Ki: -0.08, Kd: -0.4},
		},
		Cascade:      CascadeConfig{Enabled: true, Type: "power", Target: 350},
		Alerts:       AlertConfig{EfficiencyFloor: 20, NOxCeiling: 200},
		ResumePolicy: "restore",
	},
}

// GetPreset returns the named preset or nil.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns the preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
