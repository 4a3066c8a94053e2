package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kmishmael/dieselops/internal/sim"
)

func (d *Dashboard) View() string {
	snap := d.sim.Snapshot()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(d.viewHeader(snap))
	b.WriteString("\n")
	b.WriteString(d.viewPlant(snap))
	b.WriteString("\n")
	b.WriteString(d.viewLoops(snap))
	b.WriteString("\n")
	b.WriteString(d.viewCharts())
	b.WriteString(d.viewAlerts(snap))
	b.WriteString("\n" + dim.Render("   1/2/3 loop  ↑↓ adjust  tab actuator/setpoint  a auto  c cascade  t retarget  e emergency  ± speed  r reset  q quit") + "\n")

	return b.String()
}

func (d *Dashboard) viewHeader(snap sim.Snapshot) string {
	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case snap.Emergency:
		statusIcon = red.Render("●")
		statusText = red.Render("EMERGENCY")
	case d.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}

	return fmt.Sprintf("   %s %s  %s  %s  %s\n",
		statusIcon, cyan.Render("d i e s e l o p s"), statusText,
		dim.Render(fmt.Sprintf("t=%.1fs", snap.Plant.Time)),
		dim.Render(fmt.Sprintf("%gx", snap.Speed)))
}

func (d *Dashboard) viewPlant(snap sim.Snapshot) string {
	p := snap.Plant
	var b strings.Builder

	b.WriteString("   " + dimmer.Render(strings.Repeat("─", 72)) + "\n")
	b.WriteString(fmt.Sprintf("   %s %s   %s %s   %s %s   %s %s\n",
		dim.Render("power"), white.Render(fmt.Sprintf("%7.1f MW", p.PowerOutput)),
		dim.Render("temp"), tempStyle(p.EngineTemperature).Render(fmt.Sprintf("%5.1f°C", p.EngineTemperature)),
		dim.Render("eff"), white.Render(fmt.Sprintf("%4.1f%%", p.Efficiency)),
		dim.Render("fuel"), white.Render(fmt.Sprintf("%6.0f L/h", p.FuelConsumption))))
	b.WriteString(fmt.Sprintf("   %s %s   %s %s   %s %s\n",
		dim.Render("co2"), white.Render(fmt.Sprintf("%6.0f kg/h", p.Emissions.CO2)),
		dim.Render("nox"), white.Render(fmt.Sprintf("%5.1f kg/h", p.Emissions.NOx)),
		dim.Render("pm"), white.Render(fmt.Sprintf("%4.1f kg/h", p.Emissions.Particulates))))
	b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
		dim.Render("load"), white.Render(fmt.Sprintf("%3.0f%%", p.Load)),
		dim.Render("maint"), white.Render(fmt.Sprintf("%3.0f%%", p.MaintenanceStatus))))

	return b.String()
}

func tempStyle(temp float64) lipgloss.Style {
	switch {
	case temp > sim.CriticalTemperature:
		return red
	case temp > 85:
		return yellow
	default:
		return white
	}
}

func (d *Dashboard) viewLoops(snap sim.Snapshot) string {
	var b strings.Builder
	b.WriteString("   " + dimmer.Render(strings.Repeat("─", 72)) + "\n")

	loops := []struct {
		loop     sim.Loop
		actuator string
		value    float64
		unit     string
	}{
		{sim.LoopTemperature, "cooling", snap.Plant.CoolingSystemPower, "°C"},
		{sim.LoopPower, "fuel", snap.Plant.FuelInjectionRate, "MW"},
		{sim.LoopEfficiency, "excitation", snap.Plant.GeneratorExcitation, "%"},
	}

	for _, row := range loops {
		mode := snap.Modes[row.loop.String()]
		target := snap.Targets[row.loop.String()]

		cursor := "  "
		nameStyle := dim
		if row.loop == d.selected {
			cursor = cyan.Render("▸ ")
			nameStyle = white
		}

		modeStyle := dim
		switch mode {
		case "auto":
			modeStyle = green
		case "cascade":
			modeStyle = magenta
		}

		b.WriteString(fmt.Sprintf("   %s%s %s  %s %s  %s %s\n",
			cursor,
			nameStyle.Render(fmt.Sprintf("%-12s", row.loop.String())),
			modeStyle.Render(fmt.Sprintf("%-7s", mode)),
			dim.Render(fmt.Sprintf("%-10s", row.actuator)),
			white.Render(fmt.Sprintf("%5.1f%%", row.value)),
			dim.Render("target"),
			magenta.Render(fmt.Sprintf("%.1f%s", target, row.unit))))
	}

	if snap.Cascade.Enabled {
		b.WriteString(fmt.Sprintf("   %s %s %s\n",
			dim.Render("cascade"),
			magenta.Render(snap.CascadeType),
			dim.Render(fmt.Sprintf("setpoint %.1f  inner %.1f", snap.Cascade.PrimarySetpoint, snap.Cascade.SecondarySetpoint))))
	}

	return b.String()
}

func (d *Dashboard) viewCharts() string {
	power := d.sim.PowerHistory()
	temp := d.sim.TemperatureHistory()
	if len(power) < 2 || len(temp) < 2 {
		return dim.Render("   collecting history...") + "\n"
	}

	width := d.width - 20
	if width < 40 {
		width = 40
	}
	if width > 80 {
		width = 80
	}

	powerChart := asciigraph.Plot(values(power),
		asciigraph.Height(5), asciigraph.Width(width), asciigraph.Caption("power MW"))
	tempChart := asciigraph.Plot(values(temp),
		asciigraph.Height(5), asciigraph.Width(width), asciigraph.Caption("temperature °C"))

	return indent(powerChart) + "\n" + indent(tempChart) + "\n"
}

func values(points []sim.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = "   " + line
	}
	return strings.Join(lines, "\n")
}

func (d *Dashboard) viewAlerts(snap sim.Snapshot) string {
	if len(snap.Alerts) == 0 && d.statusMsg == "" {
		return ""
	}
	var b strings.Builder
	for _, alert := range snap.Alerts {
		style := yellow
		if strings.HasPrefix(alert, "critical") {
			style = red
		}
		b.WriteString("   " + style.Render("⚠ "+alert) + "\n")
	}
	if d.statusMsg != "" {
		b.WriteString("   " + yellow.Render(d.statusMsg) + "\n")
	}
	return b.String()
}
