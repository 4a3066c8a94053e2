package control

// Cascade chains two PIDs: the primary (outer) loop regulates the slow
// process variable and its output, transformed by Scale and Offset, becomes
// the secondary (inner) loop's setpoint. Convention is to tune the primary
// slower than the secondary; nothing here enforces that.
type Cascade struct {
	Primary   *PID
	Secondary *PID

	Enabled         bool
	PrimarySetpoint float64

	// Secondary setpoint transform: secondarySP = primaryOut*Scale + Offset.
	SecondarySetpointScale  float64
	SecondarySetpointOffset float64

	lastPrimaryMeasurement   float64
	lastSecondaryMeasurement float64
	lastPrimaryOutput        float64
	lastSecondarySetpoint    float64
	lastOutput               float64
}

// CascadeState is a read-only snapshot for external observers. The control
// logic itself never reads it.
type CascadeState struct {
	Enabled              bool
	PrimarySetpoint      float64
	PrimaryMeasurement   float64
	PrimaryOutput        float64
	SecondarySetpoint    float64
	SecondaryMeasurement float64
	SecondaryOutput      float64
}

// NewCascade wires two controllers with an identity setpoint transform.
func NewCascade(primary, secondary *PID) *Cascade {
	return &Cascade{
		Primary:                primary,
		Secondary:              secondary,
		SecondarySetpointScale: 1.0,
	}
}

// Update runs one cascade step and returns the secondary output, clamped to
// the secondary's bounds. When disabled it is a pass-through: current is
// returned unchanged and neither inner controller mutates.
func (c *Cascade) Update(primaryMeasurement, secondaryMeasurement, current, dt float64) float64 {
	if !c.Enabled {
		return current
	}

	primaryOut := c.Primary.Update(c.PrimarySetpoint, primaryMeasurement, dt)
	secondarySP := primaryOut*c.SecondarySetpointScale + c.SecondarySetpointOffset
	out := c.Secondary.Update(secondarySP, secondaryMeasurement, dt)

	c.lastPrimaryMeasurement = primaryMeasurement
	c.lastSecondaryMeasurement = secondaryMeasurement
	c.lastPrimaryOutput = primaryOut
	c.lastSecondarySetpoint = secondarySP
	c.lastOutput = out

	return out
}

// State snapshots the most recent cascade evaluation.
func (c *Cascade) State() CascadeState {
	return CascadeState{
		Enabled:              c.Enabled,
		PrimarySetpoint:      c.PrimarySetpoint,
		PrimaryMeasurement:   c.lastPrimaryMeasurement,
		PrimaryOutput:        c.lastPrimaryOutput,
		SecondarySetpoint:    c.lastSecondarySetpoint,
		SecondaryMeasurement: c.lastSecondaryMeasurement,
		SecondaryOutput:      c.lastOutput,
	}
}

// SetPrimarySetpoint retargets the outer loop without resetting state.
func (c *Cascade) SetPrimarySetpoint(v float64) { c.PrimarySetpoint = v }

// UpdateParameters retunes one inner controller in place. Nil gains are
// left unchanged; accumulated state is preserved.
func (c *Cascade) UpdateParameters(which string, kp, ki, kd *float64) {
	target := c.Primary
	if which == "secondary" {
		target = c.Secondary
	}
	if kp != nil {
		target.Kp = *kp
	}
	if ki != nil {
		target.Ki = *ki
	}
	if kd != nil {
		target.Kd = *kd
	}
}

// Reset clears both inner controllers and the cascade's own snapshot state.
func (c *Cascade) Reset() {
	c.Primary.Reset()
	c.Secondary.Reset()
	c.lastPrimaryMeasurement = 0
	c.lastSecondaryMeasurement = 0
	c.lastPrimaryOutput = 0
	c.lastSecondarySetpoint = 0
	c.lastOutput = 0
}
