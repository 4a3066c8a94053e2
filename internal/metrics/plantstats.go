package metrics

import "github.com/kmishmael/dieselops/internal/sim"

// PeakTemperature records the hottest engine temperature seen during a run.
type PeakTemperature struct {
	peak float64
}

func NewPeakTemperature() *PeakTemperature {
	return &PeakTemperature{}
}

func (p *PeakTemperature) Name() string { return "peak_temperature" }

func (p *PeakTemperature) Observe(snap sim.Snapshot, dt float64) {
	if snap.Plant.EngineTemperature > p.peak {
		p.peak = snap.Plant.EngineTemperature
	}
}

func (p *PeakTemperature) Value() float64 { return p.peak }

func (p *PeakTemperature) Reset() { p.peak = 0 }

// FuelConsumed integrates the consumption rate (L/h) over simulated time
// into litres burned.
type FuelConsumed struct {
	litres float64
}

func NewFuelConsumed() *FuelConsumed {
	return &FuelConsumed{}
}

func (f *FuelConsumed) Name() string { return "fuel_consumed" }

func (f *FuelConsumed) Observe(snap sim.Snapshot, dt float64) {
	f.litres += snap.Plant.FuelConsumption * dt / 3600
}

func (f *FuelConsumed) Value() float64 { return f.litres }

func (f *FuelConsumed) Reset() { f.litres = 0 }

// AlertSeconds accumulates simulated time spent with at least one active
// alert.
type AlertSeconds struct {
	seconds float64
}

func NewAlertSeconds() *AlertSeconds {
	return &AlertSeconds{}
}

func (a *AlertSeconds) Name() string { return "alert_seconds" }

func (a *AlertSeconds) Observe(snap sim.Snapshot, dt float64) {
	if len(snap.Alerts) > 0 {
		a.seconds += dt
	}
}

func (a *AlertSeconds) Value() float64 { return a.seconds }

func (a *AlertSeconds) Reset() { a.seconds = 0 }

// Standard returns the full metric set reported by headless runs.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewTrackingError(sim.LoopTemperature),
		NewTrackingError(sim.LoopPower),
		NewTrackingError(sim.LoopEfficiency),
		NewControlEffort(),
		NewActuatorTravel(),
		NewPeakTemperature(),
		NewFuelConsumed(),
		NewAlertSeconds(),
	}
}
