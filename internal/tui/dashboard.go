package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kmishmael/dieselops/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const frameInterval = 100 * time.Millisecond

// Dashboard is the interactive operator terminal. All simulator access
// happens on the bubbletea update goroutine, so the single-writer rule
// holds.
type Dashboard struct {
	sim    *sim.Simulator
	paused bool

	selected  sim.Loop
	adjusting adjustTarget

	statusMsg string
	width     int
	height    int
}

// adjustTarget selects what the arrow keys move for the selected loop.
type adjustTarget int

const (
	adjustActuator adjustTarget = iota
	adjustSetpoint
)

func NewDashboard(s *sim.Simulator) *Dashboard {
	return &Dashboard{
		sim:    s,
		width:  100,
		height: 32,
	}
}

func (d *Dashboard) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d.handleKey(msg)
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil
	case tickMsg:
		if !d.paused {
			d.sim.Update(frameInterval.Seconds())
		}
		return d, tick()
	}
	return d, nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d.statusMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return d, tea.Quit
	case " ", "p":
		d.paused = !d.paused
	case "1":
		d.selected = sim.LoopTemperature
	case "2":
		d.selected = sim.LoopPower
	case "3":
		d.selected = sim.LoopEfficiency
	case "tab":
		if d.adjusting == adjustActuator {
			d.adjusting = adjustSetpoint
		} else {
			d.adjusting = adjustActuator
		}
	case "up", "k":
		d.adjust(1)
	case "down", "j":
		d.adjust(-1)
	case "shift+up", "K":
		d.adjust(10)
	case "shift+down", "J":
		d.adjust(-10)
	case "a":
		enabled := d.sim.Mode(d.selected) != sim.ModeAuto
		d.sim.UpdateAutoControl(d.selected, enabled, nil)
	case "c":
		d.sim.SetCascadeControl(!d.sim.CascadeState().Enabled)
	case "t":
		if err := d.sim.SetCascadeControlType(d.selected); err != nil {
			d.statusMsg = err.Error()
		}
	case "e":
		d.sim.ToggleEmergencyMode()
	case "l":
		d.sim.SetLoad(d.sim.State().Load + 5)
	case "h":
		d.sim.SetLoad(d.sim.State().Load - 5)
	case "+", "=":
		d.sim.SetSimulationSpeed(d.sim.Snapshot().Speed * 2)
	case "-", "_":
		if sp := d.sim.Snapshot().Speed / 2; sp >= 0.25 {
			d.sim.SetSimulationSpeed(sp)
		}
	case "0":
		d.sim.SetSimulationSpeed(1)
	case "r":
		d.sim.Reset()
	}
	return d, nil
}

// adjust moves the selected loop's manual actuator or its setpoint.
func (d *Dashboard) adjust(delta float64) {
	if d.adjusting == adjustSetpoint {
		target := d.sim.Target(d.selected) + delta
		enabled := d.sim.Mode(d.selected) == sim.ModeAuto
		d.sim.UpdateAutoControl(d.selected, enabled, &target)
		return
	}

	st := d.sim.State()
	switch d.selected {
	case sim.LoopTemperature:
		d.sim.SetCoolingSystemPower(st.CoolingSystemPower + delta)
	case sim.LoopPower:
		d.sim.SetFuelInjectionRate(st.FuelInjectionRate + delta)
	case sim.LoopEfficiency:
		d.sim.SetGeneratorExcitation(st.GeneratorExcitation + delta)
	}
}

// Run attaches the dashboard to a terminal and blocks until quit.
func Run(s *sim.Simulator) error {
	p := tea.NewProgram(NewDashboard(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
