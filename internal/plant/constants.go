package plant

// Plant tuning constants. All rates are per simulated second unless noted.
const (
	// AmbientTemperature is the startup and minimum engine temperature, °C.
	AmbientTemperature = 25.0

	// RatedCapacityMW is the plant's nameplate output at full fuel rate.
	RatedCapacityMW = 500.0

	// StartupDuration is the cold-start ramp: mechanical capability scales
	// with min(1, time/StartupDuration).
	StartupDuration = 120.0

	// TempDerateThreshold is where thermal derating of available power
	// begins, °C.
	TempDerateThreshold = 85.0
	// TempDeratePerDegree fraction of capability lost per °C above the
	// threshold, bottoming out at TempDerateFloor.
	TempDeratePerDegree = 0.01
	TempDerateFloor     = 0.6

	// MaxFuelConsumption is the consumption rate at 100% fuel injection,
	// litres per hour. Consumption is fuel-rate-only: the load/efficiency
	// correction from an earlier revision of this model was dropped.
	MaxFuelConsumption = 1200.0

	// First-order thermal model coefficients. Net heat in
	// °C-units/s: fuel and load add heat, cooling and natural loss to
	// ambient remove it; ThermalMass sets the integration time constant.
	FuelHeatFactor    = 1.2
	LoadHeatFactor    = 0.6
	CoolingFactor     = 1.4
	NaturalLossFactor = 0.8
	ThermalMass       = 10.0

	// IdealPeakEfficiency is the best-case thermal efficiency, %.
	IdealPeakEfficiency = 45.0
	MinEfficiency       = 5.0
	// EfficiencyTempThreshold is where the temperature penalty starts, °C.
	EfficiencyTempThreshold = 90.0
	EfficiencyTempPenalty   = 0.15
	// OptimalLoad and OptimalFuelRate are the operating points where the
	// deviation penalties vanish, in %.
	OptimalLoad            = 80.0
	LoadDeviationPenalty   = 0.08
	OptimalFuelRate        = 65.0
	FuelDeviationPenalty   = 0.05
	MaintenanceBaseFactor  = 0.7
	MaintenanceSpanFactor  = 0.3
	ExcitationBaseFactor   = 0.7
	ExcitationSpanFactor   = 0.3
	MaintenancePowerBase   = 0.5
	MaintenancePowerSpan   = 0.5

	// Emission factors per unit of fuel injection rate.
	CO2PerFuelUnit     = 12.0 // kg/h per %
	NOxPerFuelUnit     = 0.45 // kg/h per %
	NOxTempThreshold   = 90.0 // °C, thermal NOx onset
	NOxPerDegree       = 0.8
	PMPerFuelUnit      = 0.08 // kg/h per %
	MinNOx             = 0.1
	MinParticulates    = 0.01
)

// Noise amplitudes: each derived quantity is perturbed by a uniform sample
// in ±amplitude so downstream alert thresholds behave identically in
// distribution across reimplementations.
const (
	PowerNoiseMW         = 2.0
	FuelNoiseRate        = 5.0
	TemperatureNoiseRate = 0.3
	EfficiencyNoisePct   = 0.5
	CO2Noise             = 10.0
	NOxNoise             = 1.0
	ParticulatesNoise    = 0.1
)
