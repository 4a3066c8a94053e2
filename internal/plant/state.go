package plant

// Emissions groups the three tracked exhaust quantities, kg/h.
type Emissions struct {
	CO2          float64 `json:"co2" yaml:"co2"`
	NOx          float64 `json:"nox" yaml:"nox"`
	Particulates float64 `json:"particulates" yaml:"particulates"`
}

// State holds one plant's actuators and measured process variables.
// Actuators and maintenance are 0-100 percentages; Time is simulated
// seconds. The orchestrator is the sole writer after construction.
type State struct {
	// Actuators and externally-set inputs.
	FuelInjectionRate   float64 `json:"fuelInjectionRate" yaml:"fuel_injection_rate"`
	Load                float64 `json:"load" yaml:"load"`
	CoolingSystemPower  float64 `json:"coolingSystemPower" yaml:"cooling_system_power"`
	GeneratorExcitation float64 `json:"generatorExcitation" yaml:"generator_excitation"`
	MaintenanceStatus   float64 `json:"maintenanceStatus" yaml:"maintenance_status"`

	// Derived measurements.
	EngineTemperature float64   `json:"engineTemperature" yaml:"engine_temperature"`
	PowerOutput       float64   `json:"powerOutput" yaml:"power_output"`
	Efficiency        float64   `json:"efficiency" yaml:"efficiency"`
	FuelConsumption   float64   `json:"fuelConsumption" yaml:"fuel_consumption"`
	Emissions         Emissions `json:"emissions" yaml:"emissions"`

	Time float64 `json:"time" yaml:"time"`
}

// Default actuator settings at simulation start.
const (
	DefaultFuelRate    = 50.0
	DefaultLoad        = 50.0
	DefaultCooling     = 50.0
	DefaultExcitation  = 70.0
	DefaultMaintenance = 100.0
)

// NewState returns a cold plant: actuators at their defaults, engine at
// ambient, clock at zero.
func NewState() State {
	return State{
		FuelInjectionRate:   DefaultFuelRate,
		Load:                DefaultLoad,
		CoolingSystemPower:  DefaultCooling,
		GeneratorExcitation: DefaultExcitation,
		MaintenanceStatus:   DefaultMaintenance,
		EngineTemperature:   AmbientTemperature,
	}
}
