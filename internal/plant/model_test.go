package plant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerOutputWarmPlant(t *testing.T) {
	m := NewModel(Zero)

	// Past the startup ramp at a healthy operating point the analytic value
	// is capacity * fuel * excitation efficiency: 500 * 0.70 * 0.94 = 329.
	out := m.PowerOutput(70, 80, 80, 80, 100, StartupDuration)

	assert.InDelta(t, 329.0, out, 1e-9)
	assert.LessOrEqual(t, out, RatedCapacityMW*0.80, "output never exceeds load demand")
}

func TestPowerOutputLoadCap(t *testing.T) {
	m := NewModel(Zero)

	// Low demand caps output regardless of available capability.
	out := m.PowerOutput(100, 20, 50, 100, 100, 1e6)
	assert.InDelta(t, RatedCapacityMW*0.20, out, 1e-9)
}

func TestPowerOutputStartupRamp(t *testing.T) {
	m := NewModel(Zero)

	cold := m.PowerOutput(70, 100, 25, 80, 100, StartupDuration/2)
	warm := m.PowerOutput(70, 100, 25, 80, 100, StartupDuration)

	assert.InDelta(t, warm/2, cold, 1e-9)
}

func TestPowerOutputTemperatureDerate(t *testing.T) {
	m := NewModel(Zero)

	nominal := m.PowerOutput(70, 100, TempDerateThreshold, 80, 100, 1e6)
	hot := m.PowerOutput(70, 100, TempDerateThreshold+20, 80, 100, 1e6)
	scorching := m.PowerOutput(70, 100, 500, 80, 100, 1e6)

	assert.Less(t, hot, nominal)
	assert.InDelta(t, nominal*(1-20*TempDeratePerDegree), hot, 1e-9)
	assert.InDelta(t, nominal*TempDerateFloor, scorching, 1e-9, "derate bottoms out")
}

func TestPowerOutputNeverNegative(t *testing.T) {
	m := NewModel(NewUniform(1))
	for i := 0; i < 1000; i++ {
		out := m.PowerOutput(0, 0, 25, 0, 0, 0)
		assert.GreaterOrEqual(t, out, 0.0)
	}
}

func TestFuelConsumptionProportional(t *testing.T) {
	m := NewModel(Zero)

	assert.Zero(t, m.FuelConsumption(0))
	assert.InDelta(t, MaxFuelConsumption/2, m.FuelConsumption(50), 1e-9)
	assert.InDelta(t, MaxFuelConsumption, m.FuelConsumption(100), 1e-9)
}

func TestTemperatureEquilibrium(t *testing.T) {
	m := NewModel(Zero)

	// At fuel=50 load=50 cooling=50 the fixed point is ambient +
	// (heat - cooling removal) / natural loss coefficient.
	heat := 50*FuelHeatFactor + 50*LoadHeatFactor - 50*CoolingFactor
	equilibrium := AmbientTemperature + heat/NaturalLossFactor

	temp := AmbientTemperature
	for i := 0; i < 5000; i++ {
		temp = m.Temperature(temp, 50, 50, 50, 0.1)
	}

	assert.InDelta(t, equilibrium, temp, 0.1)
}

func TestTemperatureAmbientFloor(t *testing.T) {
	m := NewModel(Zero)

	// Full cooling on a cold idle engine cannot pull below ambient.
	temp := m.Temperature(AmbientTemperature, 0, 100, 0, 10.0)
	assert.Equal(t, AmbientTemperature, temp)
}

func TestTemperatureMonotonicInCooling(t *testing.T) {
	m := NewModel(Zero)

	low := m.Temperature(80, 70, 20, 60, 1.0)
	high := m.Temperature(80, 70, 90, 60, 1.0)
	assert.Less(t, high, low, "more cooling must lower the next temperature")
}

func TestEfficiencyPeakAtOptimum(t *testing.T) {
	m := NewModel(Zero)

	eff := m.Efficiency(70, OptimalFuelRate, OptimalLoad, 100)
	assert.InDelta(t, IdealPeakEfficiency, eff, 1e-9)

	offLoad := m.Efficiency(70, OptimalFuelRate, OptimalLoad-30, 100)
	assert.Less(t, offLoad, eff)

	hot := m.Efficiency(EfficiencyTempThreshold+40, OptimalFuelRate, OptimalLoad, 100)
	assert.Less(t, hot, eff)
}

func TestEfficiencyClamped(t *testing.T) {
	m := NewModel(Zero)

	worst := m.Efficiency(500, 0, 0, 0)
	assert.Equal(t, MinEfficiency, worst)

	best := m.Efficiency(25, OptimalFuelRate, OptimalLoad, 100)
	assert.LessOrEqual(t, best, IdealPeakEfficiency)
}

func TestEmissionRates(t *testing.T) {
	m := NewModel(Zero)

	e := m.EmissionRates(50, 70)
	assert.InDelta(t, 50*CO2PerFuelUnit, e.CO2, 1e-9)
	assert.InDelta(t, 50*NOxPerFuelUnit, e.NOx, 1e-9)
	assert.InDelta(t, 50*PMPerFuelUnit, e.Particulates, 1e-9)

	// Thermal NOx kicks in above the onset temperature.
	hot := m.EmissionRates(50, NOxTempThreshold+10)
	assert.InDelta(t, e.NOx+10*NOxPerDegree, hot.NOx, 1e-9)

	// Floors hold at zero fuel.
	idle := m.EmissionRates(0, 25)
	assert.Equal(t, 0.0, idle.CO2)
	assert.Equal(t, MinNOx, idle.NOx)
	assert.Equal(t, MinParticulates, idle.Particulates)
}

func TestUniformNoiseBounded(t *testing.T) {
	n := NewUniform(42)
	for i := 0; i < 10000; i++ {
		v := n.Sample(2.5)
		require.LessOrEqual(t, math.Abs(v), 2.5)
	}
}

func TestUniformNoiseDeterministicBySeed(t *testing.T) {
	a := NewUniform(7)
	b := NewUniform(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Sample(1), b.Sample(1))
	}
}
