package metrics

import (
	"math"

	"github.com/kmishmael/dieselops/internal/sim"
)

// ControlEffort averages the absolute actuator commands the automatic
// loops issue. High average effort with good tracking usually means the
// gains are too hot.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(snap sim.Snapshot, dt float64) {
	out := snap.ControllerOutputs
	c.sum += math.Abs(out.Cooling) + math.Abs(out.Fuel) + math.Abs(out.Excitation)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// ActuatorTravel sums the tick-to-tick movement of the fuel, cooling and
// excitation actuators. It penalizes chattering commands that tracking
// error alone does not see.
type ActuatorTravel struct {
	prev    [3]float64
	primed  bool
	travel  float64
	samples int
}

func NewActuatorTravel() *ActuatorTravel {
	return &ActuatorTravel{}
}

func (a *ActuatorTravel) Name() string { return "actuator_travel" }

func (a *ActuatorTravel) Observe(snap sim.Snapshot, dt float64) {
	cur := [3]float64{
		snap.Plant.CoolingSystemPower,
		snap.Plant.FuelInjectionRate,
		snap.Plant.GeneratorExcitation,
	}
	if a.primed {
		for i := range cur {
			a.travel += math.Abs(cur[i] - a.prev[i])
		}
	}
	a.prev = cur
	a.primed = true
	a.samples++
}

func (a *ActuatorTravel) Value() float64 { return a.travel }

func (a *ActuatorTravel) Reset() {
	a.prev = [3]float64{}
	a.primed = false
	a.travel = 0
	a.samples = 0
}
