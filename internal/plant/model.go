package plant

import "math"

// Model evaluates the plant transfer functions. The only state it carries
// is the noise source; every function is otherwise pure in its inputs.
type Model struct {
	noise Noise
}

// NewModel builds a model around the given noise source. Pass Zero for
// deterministic output.
func NewModel(noise Noise) *Model {
	if noise == nil {
		noise = Zero
	}
	return &Model{noise: noise}
}

// PowerOutput returns generated power in MW. Mechanical capability scales
// with fuel rate and the startup ramp, derated by excitation, maintenance
// and high engine temperature; actual output is capped by load demand and
// floored at zero.
func (m *Model) PowerOutput(fuel, load, temperature, excitation, maintenance, time float64) float64 {
	startup := math.Min(1, time/StartupDuration)
	excitationEff := ExcitationBaseFactor + ExcitationSpanFactor*excitation/100
	maintenanceEff := MaintenancePowerBase + MaintenancePowerSpan*maintenance/100

	derate := 1.0
	if temperature > TempDerateThreshold {
		derate = math.Max(TempDerateFloor, 1-(temperature-TempDerateThreshold)*TempDeratePerDegree)
	}

	available := RatedCapacityMW * (fuel / 100) * startup * excitationEff * maintenanceEff * derate
	demanded := RatedCapacityMW * (load / 100)

	out := math.Min(available, demanded) + m.noise.Sample(PowerNoiseMW)
	return math.Max(0, out)
}

// FuelConsumption returns the fuel burn rate in litres per hour,
// proportional to the injection rate.
func (m *Model) FuelConsumption(fuel float64) float64 {
	rate := MaxFuelConsumption*(fuel/100) + m.noise.Sample(FuelNoiseRate)
	return math.Max(0, rate)
}

// Temperature integrates the first-order thermal model over dt and returns
// the new engine temperature, floored at ambient.
func (m *Model) Temperature(currentTemp, fuel, cooling, load, dt float64) float64 {
	heat := fuel*FuelHeatFactor + load*LoadHeatFactor
	removal := cooling*CoolingFactor + (currentTemp-AmbientTemperature)*NaturalLossFactor

	next := currentTemp + ((heat-removal)/ThermalMass+m.noise.Sample(TemperatureNoiseRate))*dt
	return math.Max(AmbientTemperature, next)
}

// Efficiency returns thermal efficiency in percent: the ideal peak minus a
// high-temperature penalty and deviation-from-optimum penalties for load
// and fuel rate, scaled by maintenance condition.
func (m *Model) Efficiency(temperature, fuel, load, maintenance float64) float64 {
	eff := IdealPeakEfficiency
	if temperature > EfficiencyTempThreshold {
		eff -= (temperature - EfficiencyTempThreshold) * EfficiencyTempPenalty
	}
	eff -= math.Abs(load-OptimalLoad) * LoadDeviationPenalty
	eff -= math.Abs(fuel-OptimalFuelRate) * FuelDeviationPenalty
	eff *= MaintenanceBaseFactor + MaintenanceSpanFactor*maintenance/100
	eff += m.noise.Sample(EfficiencyNoisePct)

	return clamp(eff, MinEfficiency, IdealPeakEfficiency)
}

// EmissionRates returns exhaust output. CO2 and particulates track the fuel
// rate linearly; NOx additionally rises with engine temperature above the
// thermal onset point.
func (m *Model) EmissionRates(fuel, temperature float64) Emissions {
	co2 := fuel*CO2PerFuelUnit + m.noise.Sample(CO2Noise)

	nox := fuel * NOxPerFuelUnit
	if temperature > NOxTempThreshold {
		nox += (temperature - NOxTempThreshold) * NOxPerDegree
	}
	nox += m.noise.Sample(NOxNoise)

	pm := fuel*PMPerFuelUnit + m.noise.Sample(ParticulatesNoise)

	return Emissions{
		CO2:          math.Max(0, co2),
		NOx:          math.Max(MinNOx, nox),
		Particulates: math.Max(MinParticulates, pm),
	}
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
