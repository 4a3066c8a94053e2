package control

// HistoryCapacity bounds the per-controller sample history. Oldest samples
// are discarded first.
const HistoryCapacity = 100

// minDt is substituted for non-positive timesteps to keep the derivative
// term finite.
const minDt = 0.01

// Sample records one Update call for external plotting and diagnostics.
type Sample struct {
	Time        float64
	Setpoint    float64
	Measurement float64
	Error       float64
	P           float64
	I           float64
	D           float64
	Output      float64
}

// PID is a single-loop controller. Gains and mode flags may be mutated
// between Update calls; internal accumulators must only be touched through
// Update and Reset.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	OutputMin float64
	OutputMax float64

	// DerivativeOnMeasurement computes D from the measurement's rate of
	// change instead of the error's, avoiding derivative kick on setpoint
	// steps. This is the default configuration throughout the plant.
	DerivativeOnMeasurement bool

	// ProportionalOnMeasurement computes P from the measurement delta
	// instead of the error, damping response to setpoint steps.
	ProportionalOnMeasurement bool

	integral        float64
	prevError       float64
	prevMeasurement float64
	elapsed         float64

	history []Sample
}

// NewPID returns a controller with derivative-on-measurement enabled.
func NewPID(kp, ki, kd, outputMin, outputMax float64) *PID {
	return &PID{
		Kp:                      kp,
		Ki:                      ki,
		Kd:                      kd,
		OutputMin:               outputMin,
		OutputMax:               outputMax,
		DerivativeOnMeasurement: true,
		history:                 make([]Sample, 0, HistoryCapacity),
	}
}

// Update advances the controller by dt seconds and returns the clamped
// output. Non-positive dt is floored to 0.01s rather than rejected.
func (p *PID) Update(setpoint, measurement, dt float64) float64 {
	if dt <= 0 {
		dt = minDt
	}

	err := setpoint - measurement

	var pTerm float64
	if p.ProportionalOnMeasurement {
		pTerm = p.Kp * (p.prevMeasurement - measurement)
	} else {
		pTerm = p.Kp * err
	}

	p.integral += err * dt
	iTerm := p.Ki * p.integral

	var dTerm float64
	if p.DerivativeOnMeasurement {
		dTerm = -p.Kd * (measurement - p.prevMeasurement) / dt
	} else {
		dTerm = p.Kd * (err - p.prevError) / dt
	}

	raw := pTerm + iTerm + dTerm
	out := clamp(raw, p.OutputMin, p.OutputMax)

	// Anti-windup: undo this tick's integral accumulation when the
	// unclamped output exceeds a bound in the error's direction, so the
	// integral stops growing while saturated.
	if (raw > p.OutputMax && err > 0) || (raw < p.OutputMin && err < 0) {
		p.integral -= err * dt
	}

	p.prevError = err
	p.prevMeasurement = measurement
	p.elapsed += dt

	p.history = append(p.history, Sample{
		Time:        p.elapsed,
		Setpoint:    setpoint,
		Measurement: measurement,
		Error:       err,
		P:           pTerm,
		I:           iTerm,
		D:           dTerm,
		Output:      out,
	})
	if len(p.history) > HistoryCapacity {
		p.history = p.history[1:]
	}

	return out
}

// Reset clears accumulated state and history. Gains, bounds and mode flags
// are untouched.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
	p.prevMeasurement = 0
	p.elapsed = 0
	p.history = p.history[:0]
}

// SetMode changes the derivative and proportional term sources for
// subsequent Update calls.
func (p *PID) SetMode(derivativeOnMeasurement, proportionalOnMeasurement bool) {
	p.DerivativeOnMeasurement = derivativeOnMeasurement
	p.ProportionalOnMeasurement = proportionalOnMeasurement
}

// SetGains retunes the controller live. Accumulated state is preserved.
func (p *PID) SetGains(kp, ki, kd float64) {
	p.Kp = kp
	p.Ki = ki
	p.Kd = kd
}

// Integral exposes the accumulator for tests and diagnostics.
func (p *PID) Integral() float64 { return p.integral }

// Elapsed returns the controller-local time accumulated over Update calls.
func (p *PID) Elapsed() float64 { return p.elapsed }

// History returns a copy of the bounded sample history, oldest first.
func (p *PID) History() []Sample {
	out := make([]Sample, len(p.history))
	copy(out, p.history)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
