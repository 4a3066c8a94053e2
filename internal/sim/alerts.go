package sim

import "fmt"

// rebuildAlerts recomputes the advisory alert list from scratch. Alerts
// never accumulate across ticks and never halt the simulation.
func (s *Simulator) rebuildAlerts() {
	s.alerts = s.alerts[:0]

	if s.state.EngineTemperature > CriticalTemperature {
		s.alerts = append(s.alerts,
			fmt.Sprintf("critical engine temperature: %.1f°C", s.state.EngineTemperature))
	}
	if s.state.Efficiency < s.efficiencyAlertFloor {
		s.alerts = append(s.alerts,
			fmt.Sprintf("low efficiency: %.1f%%", s.state.Efficiency))
	}
	if s.state.MaintenanceStatus < LowMaintenanceThreshold {
		s.alerts = append(s.alerts,
			fmt.Sprintf("maintenance required: %.0f%%", s.state.MaintenanceStatus))
	}
	if s.state.Emissions.NOx > s.noxAlertCeiling {
		s.alerts = append(s.alerts,
			fmt.Sprintf("NOx emissions above limit: %.1f kg/h", s.state.Emissions.NOx))
	}
}
