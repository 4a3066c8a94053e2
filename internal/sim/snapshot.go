package sim

import (
	"github.com/kmishmael/dieselops/internal/control"
	"github.com/kmishmael/dieselops/internal/plant"
)

// ControllerOutputs holds the last value each automatic loop wrote to its
// actuator.
type ControllerOutputs struct {
	Cooling    float64 `json:"cooling"`
	Fuel       float64 `json:"fuel"`
	Excitation float64 `json:"excitation"`
}

// Snapshot is a read-only copy of everything external observers may see.
// Mutating it has no effect on the simulation.
type Snapshot struct {
	Plant             plant.State          `json:"plant"`
	ControllerOutputs ControllerOutputs    `json:"controllerOutputs"`
	Modes             map[string]string    `json:"modes"`
	Targets           map[string]float64   `json:"targets"`
	Cascade           control.CascadeState `json:"cascade"`
	CascadeType       string               `json:"cascadeType"`
	Emergency         bool                 `json:"emergency"`
	Running           bool                 `json:"running"`
	Speed             float64              `json:"speed"`
	Alerts            []string             `json:"alerts"`
}

// Snapshot captures the current externally-visible state.
func (s *Simulator) Snapshot() Snapshot {
	modes := make(map[string]string, numLoops)
	targets := make(map[string]float64, numLoops)
	for l := Loop(0); l < numLoops; l++ {
		modes[l.String()] = s.Mode(l).String()
		targets[l.String()] = s.targets[l]
	}

	alerts := make([]string, len(s.alerts))
	copy(alerts, s.alerts)

	return Snapshot{
		Plant: s.state,
		ControllerOutputs: ControllerOutputs{
			Cooling:    s.outputs[LoopTemperature],
			Fuel:       s.outputs[LoopPower],
			Excitation: s.outputs[LoopEfficiency],
		},
		Modes:       modes,
		Targets:     targets,
		Cascade:     s.cascade.State(),
		CascadeType: s.cascadeTarget.String(),
		Emergency:   s.emergency,
		Running:     s.running,
		Speed:       s.speed,
		Alerts:      alerts,
	}
}

// State returns a copy of the raw plant state.
func (s *Simulator) State() plant.State { return s.state }

// Alerts returns a copy of the advisory alerts from the latest tick.
func (s *Simulator) Alerts() []string {
	out := make([]string, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Target returns a loop's current auto-control setpoint.
func (s *Simulator) Target(l Loop) float64 { return s.targets[l] }

// PID exposes a loop's controller for inspection; callers must not drive
// it directly.
func (s *Simulator) PID(l Loop) *control.PID { return s.pids[l] }

// CascadeState snapshots the cascade controller.
func (s *Simulator) CascadeState() control.CascadeState { return s.cascade.State() }

// CascadeTarget reports which loop the cascade drives.
func (s *Simulator) CascadeTarget() Loop { return s.cascadeTarget }

// ControllerHistory returns a loop's recorded {time, value, setpoint}
// samples, oldest first.
func (s *Simulator) ControllerHistory(l Loop) []TimedSample {
	out := make([]TimedSample, len(s.ctrlHistory[l]))
	copy(out, s.ctrlHistory[l])
	return out
}

// CascadeHistory returns the recorded cascade controller states, oldest
// first. Samples accumulate only while the cascade drives its loop.
func (s *Simulator) CascadeHistory() []CascadeSample {
	out := make([]CascadeSample, len(s.cascadeHistory))
	copy(out, s.cascadeHistory)
	return out
}

// PowerHistory returns the per-second power window.
func (s *Simulator) PowerHistory() []Point { return s.powerWindow.Points() }

// TemperatureHistory returns the per-second temperature window.
func (s *Simulator) TemperatureHistory() []Point { return s.temperatureWindow.Points() }

// EfficiencyHistory returns the per-second efficiency window.
func (s *Simulator) EfficiencyHistory() []Point { return s.efficiencyWindow.Points() }
