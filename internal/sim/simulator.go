package sim

import (
	"math"

	"github.com/kmishmael/dieselops/internal/control"
	"github.com/kmishmael/dieselops/internal/plant"
)

// Forced actuator settings while emergency mode is active: minimal fuel,
// full cooling, reduced excitation.
const (
	EmergencyFuelRate   = 10.0
	EmergencyCooling    = 100.0
	EmergencyExcitation = 50.0
)

// Default alert thresholds; both are configurable.
const (
	DefaultEfficiencyAlertFloor = 20.0
	DefaultNOxAlertCeiling      = 200.0
)

// CriticalTemperature is the alert threshold for engine temperature, °C.
const CriticalTemperature = 95.0

// LowMaintenanceThreshold is the alert threshold for maintenance status, %.
const LowMaintenanceThreshold = 30.0

const minTickDt = 0.01

// Default single-loop tunings. The temperature loop is reverse-acting
// (more cooling pushes temperature down), hence the negative gains.
var defaultGains = [numLoops]struct{ kp, ki, kd float64 }{
	LoopTemperature: {-2.5, -0.08, -0.4},
	LoopPower:       {0.5, 0.05, 0.1},
	LoopEfficiency:  {1.5, 0.1, 0.2},
}

var defaultTargets = [numLoops]float64{
	LoopTemperature: 80.0,  // °C
	LoopPower:       300.0, // MW
	LoopEfficiency:  40.0,  // %
}

// Per-cascade-type tunings: the outer loop deliberately slower than the
// inner one.
var cascadeGains = map[Loop]struct {
	primary, secondary struct{ kp, ki, kd float64 }
	setpoint           float64
}{
	LoopTemperature: {
		primary:   struct{ kp, ki, kd float64 }{-2.0, -0.05, -0.3},
		secondary: struct{ kp, ki, kd float64 }{2.0, 0.1, 0.1},
		setpoint:  80.0,
	},
	LoopPower: {
		primary:   struct{ kp, ki, kd float64 }{0.4, 0.04, 0.05},
		secondary: struct{ kp, ki, kd float64 }{2.0, 0.1, 0.1},
		setpoint:  300.0,
	},
}

// Simulator is the control orchestrator. It is the sole writer of the
// plant state and all controller accumulators; external callers interact
// through the setters and read-only snapshots.
type Simulator struct {
	model *plant.Model
	state plant.State

	pids        [numLoops]*control.PID
	autoEnabled [numLoops]bool
	targets     [numLoops]float64
	outputs     [numLoops]float64
	ctrlHistory [numLoops][]TimedSample

	cascade        *control.Cascade
	cascadeTarget  Loop
	cascadeHistory []CascadeSample

	emergency    bool
	resumePolicy ResumePolicy
	savedAuto    [numLoops]bool
	savedCascade bool

	running bool
	speed   float64

	efficiencyAlertFloor float64
	noxAlertCeiling      float64
	alerts               []string

	powerWindow       *Series
	temperatureWindow *Series
	efficiencyWindow  *Series

	pendingTune *tuneState
}

// New builds a simulator around the given noise source (nil means zero
// noise) with default tunings, a temperature cascade, and speed 1x.
func New(noise plant.Noise) *Simulator {
	s := &Simulator{
		model:                plant.NewModel(noise),
		state:                plant.NewState(),
		speed:                1.0,
		running:              true,
		efficiencyAlertFloor: DefaultEfficiencyAlertFloor,
		noxAlertCeiling:      DefaultNOxAlertCeiling,
		powerWindow:          NewSeries(WindowCapacity),
		temperatureWindow:    NewSeries(WindowCapacity),
		efficiencyWindow:     NewSeries(WindowCapacity),
	}

	for l := Loop(0); l < numLoops; l++ {
		g := defaultGains[l]
		s.pids[l] = control.NewPID(g.kp, g.ki, g.kd, 0, 100)
		s.targets[l] = defaultTargets[l]
		s.ctrlHistory[l] = make([]TimedSample, 0, WindowCapacity)
	}

	s.cascade = control.NewCascade(
		control.NewPID(0, 0, 0, 0, 100),
		control.NewPID(0, 0, 0, 0, 100),
	)
	s.applyCascadeDefaults(LoopTemperature)

	return s
}

func (s *Simulator) applyCascadeDefaults(target Loop) {
	g := cascadeGains[target]
	s.cascadeTarget = target
	s.cascade.Primary.SetGains(g.primary.kp, g.primary.ki, g.primary.kd)
	s.cascade.Secondary.SetGains(g.secondary.kp, g.secondary.ki, g.secondary.kd)
	s.cascade.PrimarySetpoint = g.setpoint
	s.cascade.SecondarySetpointScale = 1.0
	s.cascade.SecondarySetpointOffset = 0
	s.cascade.Reset()
	s.cascadeHistory = s.cascadeHistory[:0]
}

// Update advances the simulation one tick. dt is wall seconds from the
// external driver; it is scaled once by the simulation speed so physics,
// controllers and the clock share the same effective timestep. Non-positive
// dt is floored, never rejected.
func (s *Simulator) Update(dt float64) {
	if !s.running {
		return
	}
	if dt <= 0 {
		dt = minTickDt
	}
	step := dt * s.speed

	s.tickAutoTune()

	if s.emergency {
		s.state.FuelInjectionRate = EmergencyFuelRate
		s.state.CoolingSystemPower = EmergencyCooling
		s.state.GeneratorExcitation = EmergencyExcitation
	} else {
		for l := Loop(0); l < numLoops; l++ {
			s.tickLoop(l, step)
		}
	}

	s.tickPlant(step)
	s.rebuildAlerts()

	next := s.state.Time + step
	if math.Floor(next) > math.Floor(s.state.Time) {
		s.powerWindow.Append(Point{Time: next, Value: s.state.PowerOutput})
		s.temperatureWindow.Append(Point{Time: next, Value: s.state.EngineTemperature})
		s.efficiencyWindow.Append(Point{Time: next, Value: s.state.Efficiency})
	}
	s.state.Time = next
}

// tickLoop computes one loop's actuator value for this tick. Manual loops
// keep their last externally-set value.
func (s *Simulator) tickLoop(l Loop, dt float64) {
	switch {
	case s.cascadeActive(l):
		out := s.cascade.Update(s.measurement(l), s.actuator(l), s.actuator(l), dt)
		s.writeActuator(l, out)
		s.outputs[l] = out
		s.cascadeHistory = append(s.cascadeHistory, CascadeSample{
			Time:  s.state.Time,
			State: s.cascade.State(),
		})
		if len(s.cascadeHistory) > WindowCapacity {
			s.cascadeHistory = s.cascadeHistory[1:]
		}
	case s.autoEnabled[l]:
		measured := s.measurement(l)
		out := s.pids[l].Update(s.targets[l], measured, dt)
		s.writeActuator(l, out)
		s.outputs[l] = out
		s.appendCtrlHistory(l, TimedSample{
			Time:     s.state.Time,
			Value:    measured,
			Setpoint: s.targets[l],
		})
	}
}

// tickPlant recomputes the measured variables. Order matters: power uses
// the previous tick's temperature, then temperature integrates forward,
// and efficiency and emissions read the freshly produced temperature.
func (s *Simulator) tickPlant(dt float64) {
	st := &s.state
	prevTemp := st.EngineTemperature

	st.PowerOutput = s.model.PowerOutput(
		st.FuelInjectionRate, st.Load, prevTemp,
		st.GeneratorExcitation, st.MaintenanceStatus, st.Time)
	st.FuelConsumption = s.model.FuelConsumption(st.FuelInjectionRate)
	st.EngineTemperature = s.model.Temperature(
		prevTemp, st.FuelInjectionRate, st.CoolingSystemPower, st.Load, dt)
	st.Efficiency = s.model.Efficiency(
		st.EngineTemperature, st.FuelInjectionRate, st.Load, st.MaintenanceStatus)
	st.Emissions = s.model.EmissionRates(st.FuelInjectionRate, st.EngineTemperature)
}

func (s *Simulator) cascadeActive(l Loop) bool {
	return s.cascade.Enabled && s.cascadeTarget == l
}

func (s *Simulator) measurement(l Loop) float64 {
	switch l {
	case LoopTemperature:
		return s.state.EngineTemperature
	case LoopPower:
		return s.state.PowerOutput
	default:
		return s.state.Efficiency
	}
}

func (s *Simulator) actuator(l Loop) float64 {
	switch l {
	case LoopTemperature:
		return s.state.CoolingSystemPower
	case LoopPower:
		return s.state.FuelInjectionRate
	default:
		return s.state.GeneratorExcitation
	}
}

func (s *Simulator) writeActuator(l Loop, v float64) {
	switch l {
	case LoopTemperature:
		s.state.CoolingSystemPower = v
	case LoopPower:
		s.state.FuelInjectionRate = v
	default:
		s.state.GeneratorExcitation = v
	}
}

func (s *Simulator) appendCtrlHistory(l Loop, sample TimedSample) {
	s.ctrlHistory[l] = append(s.ctrlHistory[l], sample)
	if len(s.ctrlHistory[l]) > WindowCapacity {
		s.ctrlHistory[l] = s.ctrlHistory[l][1:]
	}
}

// Mode reports the authoritative control source for a loop right now.
func (s *Simulator) Mode(l Loop) Mode {
	switch {
	case s.emergency:
		return ModeManual
	case s.cascadeActive(l):
		return ModeCascade
	case s.autoEnabled[l]:
		return ModeAuto
	default:
		return ModeManual
	}
}

// --- manual setters: effective only while the owning loop is manual ---

func (s *Simulator) SetFuelInjectionRate(v float64) {
	if s.Mode(LoopPower) == ModeManual && !s.emergency {
		s.state.FuelInjectionRate = clampPct(v)
	}
}

func (s *Simulator) SetCoolingSystemPower(v float64) {
	if s.Mode(LoopTemperature) == ModeManual && !s.emergency {
		s.state.CoolingSystemPower = clampPct(v)
	}
}

func (s *Simulator) SetGeneratorExcitation(v float64) {
	if s.Mode(LoopEfficiency) == ModeManual && !s.emergency {
		s.state.GeneratorExcitation = clampPct(v)
	}
}

// SetLoad sets external demand; load is an input, not a controlled loop.
func (s *Simulator) SetLoad(v float64) {
	s.state.Load = clampPct(v)
}

func (s *Simulator) SetMaintenanceStatus(v float64) {
	s.state.MaintenanceStatus = clampPct(v)
}

// --- auto-control setters ---

// UpdateAutoControl enables or disables PID control of a loop. Enabling a
// loop the cascade currently drives disables the cascade: mutual exclusion
// is enforced here, at assignment time.
func (s *Simulator) UpdateAutoControl(l Loop, enabled bool, target *float64) {
	if enabled && s.cascadeTarget == l {
		s.cascade.Enabled = false
	}
	s.autoEnabled[l] = enabled
	if target != nil {
		s.targets[l] = *target
	}
}

// UpdatePIDParameters retunes a loop's controller live. Nil gains are
// unchanged and accumulated state is preserved.
func (s *Simulator) UpdatePIDParameters(l Loop, kp, ki, kd *float64) {
	p := s.pids[l]
	if kp != nil {
		p.Kp = *kp
	}
	if ki != nil {
		p.Ki = *ki
	}
	if kd != nil {
		p.Kd = *kd
	}
}

// --- cascade setters ---

// SetCascadeControl toggles the cascade. Enabling it takes over its target
// loop, forcing that loop's PID flag off. Enabling is refused while
// emergency mode holds.
func (s *Simulator) SetCascadeControl(enabled bool) {
	if enabled && s.emergency {
		return
	}
	if enabled {
		s.autoEnabled[s.cascadeTarget] = false
	}
	s.cascade.Enabled = enabled
}

// SetCascadeControlType retargets the cascade at the temperature or power
// loop, resetting it and applying that type's default tuning.
func (s *Simulator) SetCascadeControlType(target Loop) error {
	if _, ok := cascadeGains[target]; !ok {
		return errUnsupportedCascade(target)
	}
	s.applyCascadeDefaults(target)
	if s.cascade.Enabled {
		s.autoEnabled[target] = false
	}
	return nil
}

func (s *Simulator) UpdateCascadeSetpoint(v float64) {
	s.cascade.SetPrimarySetpoint(v)
}

func (s *Simulator) UpdateCascadeParameters(which string, kp, ki, kd *float64) {
	s.cascade.UpdateParameters(which, kp, ki, kd)
}

// --- lifecycle ---

func (s *Simulator) SetRunning(running bool) { s.running = running }
func (s *Simulator) Running() bool           { return s.running }

// SetSimulationSpeed sets the wall-to-simulated time multiplier.
// Non-positive values are ignored.
func (s *Simulator) SetSimulationSpeed(speed float64) {
	if speed > 0 {
		s.speed = speed
	}
}

// SetAlertThresholds configures the advisory efficiency floor and NOx
// ceiling.
func (s *Simulator) SetAlertThresholds(efficiencyFloor, noxCeiling float64) {
	s.efficiencyAlertFloor = efficiencyFloor
	s.noxAlertCeiling = noxCeiling
}

// SetResumePolicy selects the post-emergency mode restoration behavior.
func (s *Simulator) SetResumePolicy(p ResumePolicy) { s.resumePolicy = p }

// ToggleEmergencyMode flips the global override. Entering forces safe
// actuator values and disables all automatic control; clearing follows the
// configured resume policy.
func (s *Simulator) ToggleEmergencyMode() {
	if !s.emergency {
		s.savedAuto = s.autoEnabled
		s.savedCascade = s.cascade.Enabled
		s.autoEnabled = [numLoops]bool{}
		s.cascade.Enabled = false
		s.emergency = true
		s.state.FuelInjectionRate = EmergencyFuelRate
		s.state.CoolingSystemPower = EmergencyCooling
		s.state.GeneratorExcitation = EmergencyExcitation
		return
	}

	s.emergency = false
	if s.resumePolicy == ResumeRestore {
		s.autoEnabled = s.savedAuto
		s.cascade.Enabled = s.savedCascade
	}
}

// Reset returns the simulation to a cold start: time zero, default
// actuators, cleared controller and cascade state, empty histories.
// Tunings, targets and thresholds survive; emergency mode is cleared.
func (s *Simulator) Reset() {
	s.state = plant.NewState()
	for l := Loop(0); l < numLoops; l++ {
		s.pids[l].Reset()
		s.ctrlHistory[l] = s.ctrlHistory[l][:0]
		s.outputs[l] = 0
	}
	s.cascade.Reset()
	s.cascadeHistory = s.cascadeHistory[:0]
	s.powerWindow.reset()
	s.temperatureWindow.reset()
	s.efficiencyWindow.reset()
	s.alerts = nil
	s.emergency = false
	s.pendingTune = nil
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
