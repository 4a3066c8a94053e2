package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFirstStep(t *testing.T) {
	// kp=2 ki=0.1 kd=0.5 on [0,100], derivative on measurement.
	pid := NewPID(2.0, 0.1, 0.5, 0, 100)

	out := pid.Update(75, 25, 1.0)

	// error=50: P=100, integral=50 so I=5, D=-0.5*(25-0)/1=-12.5
	assert.InDelta(t, 92.5, out, 1e-9)
	assert.InDelta(t, 50.0, pid.Integral(), 1e-9)

	hist := pid.History()
	require.Len(t, hist, 1)
	assert.InDelta(t, 100.0, hist[0].P, 1e-9)
	assert.InDelta(t, 5.0, hist[0].I, 1e-9)
	assert.InDelta(t, -12.5, hist[0].D, 1e-9)
	assert.InDelta(t, 50.0, hist[0].Error, 1e-9)
}

func TestPIDSecondStep(t *testing.T) {
	pid := NewPID(2.0, 0.1, 0.5, 0, 100)
	pid.Update(75, 25, 1.0)

	out := pid.Update(75, 40, 1.0)

	// error=35: P=70, integral=85 so I=8.5, D=-0.5*(40-25)/1=-7.5
	assert.InDelta(t, 71.0, out, 1e-9)
	assert.InDelta(t, 85.0, pid.Integral(), 1e-9)
}

func TestPIDOutputAlwaysClamped(t *testing.T) {
	cases := []struct {
		name       string
		kp, ki, kd float64
		sp, meas   float64
	}{
		{"huge positive error", 100, 10, 5, 1e6, 0},
		{"huge negative error", 100, 10, 5, -1e6, 0},
		{"negative gains", -50, -5, -1, 100, 0},
		{"zero gains", 0, 0, 0, 50, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pid := NewPID(tc.kp, tc.ki, tc.kd, 0, 100)
			for i := 0; i < 20; i++ {
				out := pid.Update(tc.sp, tc.meas, 0.1)
				assert.GreaterOrEqual(t, out, 0.0)
				assert.LessOrEqual(t, out, 100.0)
			}
		})
	}
}

func TestPIDAntiWindup(t *testing.T) {
	pid := NewPID(2.0, 0.5, 0, 0, 100)

	// Constant large error saturates the output; the integral must stop
	// growing once saturated.
	var saturatedIntegral float64
	for i := 0; i < 50; i++ {
		out := pid.Update(500, 0, 1.0)
		if i > 5 {
			require.Equal(t, 100.0, out, "output should stay saturated")
		}
		if i == 25 {
			saturatedIntegral = pid.Integral()
		}
	}
	assert.InDelta(t, saturatedIntegral, pid.Integral(), 1e-9,
		"integral kept accumulating while saturated")

	// Reversing the error leaves saturation within one step: no residual
	// windup to bleed off.
	out := pid.Update(-500, 0, 1.0)
	assert.Less(t, out, 100.0)
}

func TestPIDDtFloor(t *testing.T) {
	pid := NewPID(1.0, 0, 1.0, -1000, 1000)
	pid.Update(10, 0, 1.0)

	// dt <= 0 is floored, never a division by zero.
	out := pid.Update(10, 5, 0)
	assert.False(t, out != out, "output must not be NaN")
	out = pid.Update(10, 5, -3)
	assert.False(t, out != out, "output must not be NaN")
}

func TestPIDResetEquivalence(t *testing.T) {
	warm := NewPID(2.0, 0.1, 0.5, 0, 100)
	for i := 0; i < 10; i++ {
		warm.Update(60, float64(i)*3, 0.5)
	}
	warm.Reset()

	fresh := NewPID(2.0, 0.1, 0.5, 0, 100)

	assert.Equal(t, fresh.Update(75, 25, 1.0), warm.Update(75, 25, 1.0))
	assert.Equal(t, fresh.Integral(), warm.Integral())
}

func TestPIDHistoryBounded(t *testing.T) {
	pid := NewPID(1.0, 0.1, 0.1, 0, 100)
	for i := 0; i < HistoryCapacity*3; i++ {
		pid.Update(50, float64(i%70), 0.25)
	}

	hist := pid.History()
	require.Len(t, hist, HistoryCapacity)
	for i := 1; i < len(hist); i++ {
		assert.Greater(t, hist[i].Time, hist[i-1].Time, "history must be time-ordered")
	}
}

func TestPIDDerivativeOnError(t *testing.T) {
	pid := NewPID(0, 0, 2.0, -1000, 1000)
	pid.SetMode(false, false)

	pid.Update(10, 0, 1.0) // error 10, prevError was 0
	out := pid.Update(10, 4, 1.0)

	// error goes 10 -> 6: D = 2*(6-10)/1 = -8
	assert.InDelta(t, -8.0, out, 1e-9)
}

func TestPIDProportionalOnMeasurement(t *testing.T) {
	pid := NewPID(2.0, 0, 0, -1000, 1000)
	pid.SetMode(true, true)

	pid.Update(50, 10, 1.0)
	out := pid.Update(50, 25, 1.0)

	// P = kp*(prevMeasurement - measurement) = 2*(10-25) = -30, ignoring
	// the setpoint entirely.
	assert.InDelta(t, -30.0, out, 1e-9)
}

func TestPIDSetGainsPreservesState(t *testing.T) {
	pid := NewPID(1.0, 0.2, 0, 0, 100)
	pid.Update(50, 10, 1.0)
	before := pid.Integral()

	pid.SetGains(3.0, 0.4, 0.1)

	assert.Equal(t, before, pid.Integral())
	assert.Equal(t, 3.0, pid.Kp)
}
