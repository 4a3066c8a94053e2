package metrics

import (
	"math"

	"github.com/kmishmael/dieselops/internal/sim"
)

// TrackingError integrates the absolute setpoint error of one loop over a
// run (IAE). Lower is better; it is the default objective for gain search.
type TrackingError struct {
	loop sim.Loop
	sum  float64
}

func NewTrackingError(loop sim.Loop) *TrackingError {
	return &TrackingError{loop: loop}
}

func (m *TrackingError) Name() string {
	return "tracking_error_" + m.loop.String()
}

func (m *TrackingError) Observe(snap sim.Snapshot, dt float64) {
	target := snap.Targets[m.loop.String()]
	var measured float64
	switch m.loop {
	case sim.LoopTemperature:
		measured = snap.Plant.EngineTemperature
	case sim.LoopPower:
		measured = snap.Plant.PowerOutput
	case sim.LoopEfficiency:
		measured = snap.Plant.Efficiency
	}
	m.sum += math.Abs(target-measured) * dt
}

func (m *TrackingError) Value() float64 { return m.sum }

func (m *TrackingError) Reset() { m.sum = 0 }

// Overshoot records the worst excursion of a loop's measurement past its
// setpoint, in the loop's engineering unit.
type Overshoot struct {
	loop sim.Loop
	max  float64
}

func NewOvershoot(loop sim.Loop) *Overshoot {
	return &Overshoot{loop: loop}
}

func (m *Overshoot) Name() string {
	return "overshoot_" + m.loop.String()
}

func (m *Overshoot) Observe(snap sim.Snapshot, dt float64) {
	target := snap.Targets[m.loop.String()]
	var measured float64
	switch m.loop {
	case sim.LoopTemperature:
		measured = snap.Plant.EngineTemperature
	case sim.LoopPower:
		measured = snap.Plant.PowerOutput
	case sim.LoopEfficiency:
		measured = snap.Plant.Efficiency
	}
	if over := measured - target; over > m.max {
		m.max = over
	}
}

func (m *Overshoot) Value() float64 { return m.max }

func (m *Overshoot) Reset() { m.max = 0 }
