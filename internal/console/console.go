package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/kmishmael/dieselops/internal/sim"
)

// Console is a line-based operator interface. The simulator is confined
// to the run goroutine; readline feeds commands in over a channel, so
// every mutation happens between ticks.
type Console struct {
	sim      *sim.Simulator
	interval time.Duration

	watching    bool
	lastWatched float64
}

func New(s *sim.Simulator) *Console {
	return &Console{sim: s, interval: 100 * time.Millisecond}
}

// Run drives the simulator in real time and processes operator commands
// until quit, Ctrl+C or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "dieselops> ",
		HistoryFile: historyFilePath(),
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	commands := make(chan string, 10)
	go readLoop(ctx, cancel, rl, commands)

	fmt.Println("operator console ready (type 'help' for commands)")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sim.Update(c.interval.Seconds())
			c.tickWatch(rl)
		case cmd := <-commands:
			if !c.dispatch(rl, cmd) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func readLoop(ctx context.Context, cancel context.CancelFunc, rl *readline.Instance, commands chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			cancel()
			return
		}
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line != "" {
			commands <- line
		}
	}
}

// dispatch executes one command; false means quit.
func (c *Console) dispatch(rl *readline.Instance, cmd string) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true
	}

	print := func(format string, args ...any) {
		rl.Clean()
		fmt.Printf(format+"\n", args...)
		rl.Refresh()
	}

	switch parts[0] {
	case "quit", "exit":
		return false

	case "status":
		c.printStatus(print)

	case "set":
		c.cmdSet(print, parts[1:])

	case "auto":
		c.cmdAuto(print, parts[1:])

	case "pid":
		c.cmdPID(print, parts[1:])

	case "cascade":
		c.cmdCascade(print, parts[1:])

	case "emergency":
		c.sim.ToggleEmergencyMode()
		if c.sim.Snapshot().Emergency {
			print("EMERGENCY MODE ACTIVE: fuel %.0f%% cooling %.0f%% excitation %.0f%%",
				sim.EmergencyFuelRate, sim.EmergencyCooling, sim.EmergencyExcitation)
		} else {
			print("emergency cleared")
		}

	case "speed":
		if len(parts) != 2 {
			print("usage: speed <multiplier>")
			return true
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || v <= 0 {
			print("speed must be a positive number")
			return true
		}
		c.sim.SetSimulationSpeed(v)
		print("speed %gx", v)

	case "pause":
		c.sim.SetRunning(false)
		print("paused")

	case "resume":
		c.sim.SetRunning(true)
		print("resumed")

	case "reset":
		c.sim.Reset()
		print("reset to cold start")

	case "alerts":
		alerts := c.sim.Alerts()
		if len(alerts) == 0 {
			print("no active alerts")
		}
		for _, a := range alerts {
			print("⚠ %s", a)
		}

	case "watch":
		c.watching = !c.watching
		c.lastWatched = c.sim.Snapshot().Plant.Time
		if c.watching {
			print("watching (type 'watch' again to stop)")
		} else {
			print("watch off")
		}

	case "tune":
		c.cmdTune(print, parts[1:])

	case "help":
		printHelp(print)

	default:
		print("unknown command %q (try 'help')", parts[0])
	}
	return true
}

// tickWatch prints a one-line status each simulated second while watch
// mode is on.
func (c *Console) tickWatch(rl *readline.Instance) {
	if !c.watching {
		return
	}
	snap := c.sim.Snapshot()
	if snap.Plant.Time-c.lastWatched < 1 {
		return
	}
	c.lastWatched = snap.Plant.Time

	rl.Clean()
	fmt.Printf("t=%.0fs power %.1f MW  temp %.1f°C  eff %.1f%%  alerts %d\n",
		snap.Plant.Time, snap.Plant.PowerOutput, snap.Plant.EngineTemperature,
		snap.Plant.Efficiency, len(snap.Alerts))
	rl.Refresh()
}

func (c *Console) printStatus(print func(string, ...any)) {
	snap := c.sim.Snapshot()
	p := snap.Plant

	state := "running"
	if snap.Emergency {
		state = "EMERGENCY"
	} else if !snap.Running {
		state = "paused"
	}

	print("t=%.1fs  %s  %gx", p.Time, state, snap.Speed)
	print("power %.1f MW  temp %.1f°C  eff %.1f%%  fuel %.0f L/h",
		p.PowerOutput, p.EngineTemperature, p.Efficiency, p.FuelConsumption)
	print("emissions co2 %.0f  nox %.1f  pm %.1f kg/h",
		p.Emissions.CO2, p.Emissions.NOx, p.Emissions.Particulates)
	print("actuators fuel %.1f%%  cooling %.1f%%  excitation %.1f%%  load %.0f%%  maint %.0f%%",
		p.FuelInjectionRate, p.CoolingSystemPower, p.GeneratorExcitation,
		p.Load, p.MaintenanceStatus)
	for _, name := range []string{"temperature", "power", "efficiency"} {
		print("loop %-12s %-7s target %.1f", name, snap.Modes[name], snap.Targets[name])
	}
	if snap.Cascade.Enabled {
		print("cascade %s  setpoint %.1f  inner setpoint %.1f",
			snap.CascadeType, snap.Cascade.PrimarySetpoint, snap.Cascade.SecondarySetpoint)
	}
	for _, a := range snap.Alerts {
		print("⚠ %s", a)
	}
}

func (c *Console) cmdSet(print func(string, ...any), args []string) {
	if len(args) != 2 {
		print("usage: set <fuel|cooling|excitation|load|maintenance> <value>")
		return
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		print("value must be a number")
		return
	}

	switch args[0] {
	case "fuel":
		c.sim.SetFuelInjectionRate(v)
	case "cooling":
		c.sim.SetCoolingSystemPower(v)
	case "excitation":
		c.sim.SetGeneratorExcitation(v)
	case "load":
		c.sim.SetLoad(v)
	case "maintenance":
		c.sim.SetMaintenanceStatus(v)
	default:
		print("unknown actuator %q", args[0])
		return
	}
	print("ok")
}

func (c *Console) cmdAuto(print func(string, ...any), args []string) {
	if len(args) < 2 {
		print("usage: auto <loop> <on|off> [target]")
		return
	}
	loop, err := sim.ParseLoop(args[0])
	if err != nil {
		print("%v", err)
		return
	}
	enabled := args[1] == "on"

	var target *float64
	if len(args) >= 3 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			print("target must be a number")
			return
		}
		target = &v
	}
	c.sim.UpdateAutoControl(loop, enabled, target)
	print("loop %s now %s", loop, c.sim.Mode(loop))
}

func (c *Console) cmdPID(print func(string, ...any), args []string) {
	if len(args) != 4 {
		print("usage: pid <loop> <kp> <ki> <kd>")
		return
	}
	loop, err := sim.ParseLoop(args[0])
	if err != nil {
		print("%v", err)
		return
	}
	gains := make([]float64, 3)
	for i, raw := range args[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			print("gains must be numbers")
			return
		}
		gains[i] = v
	}
	c.sim.UpdatePIDParameters(loop, &gains[0], &gains[1], &gains[2])
	print("loop %s gains kp=%g ki=%g kd=%g", loop, gains[0], gains[1], gains[2])
}

func (c *Console) cmdCascade(print func(string, ...any), args []string) {
	if len(args) == 0 {
		print("usage: cascade <on|off> | cascade type <loop> | cascade setpoint <value>")
		return
	}
	switch args[0] {
	case "on":
		c.sim.SetCascadeControl(true)
		if c.sim.CascadeState().Enabled {
			print("cascade enabled (%s)", c.sim.CascadeTarget())
		} else {
			print("cascade refused")
		}
	case "off":
		c.sim.SetCascadeControl(false)
		print("cascade disabled")
	case "type":
		if len(args) != 2 {
			print("usage: cascade type <temperature|power>")
			return
		}
		loop, err := sim.ParseLoop(args[1])
		if err != nil {
			print("%v", err)
			return
		}
		if err := c.sim.SetCascadeControlType(loop); err != nil {
			print("%v", err)
			return
		}
		print("cascade retargeted at %s", loop)
	case "setpoint":
		if len(args) != 2 {
			print("usage: cascade setpoint <value>")
			return
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			print("setpoint must be a number")
			return
		}
		c.sim.UpdateCascadeSetpoint(v)
		print("cascade setpoint %.1f", v)
	default:
		print("unknown cascade subcommand %q", args[0])
	}
}

func (c *Console) cmdTune(print func(string, ...any), args []string) {
	if len(args) == 1 && args[0] == "cancel" {
		c.sim.CancelAutoTune()
		print("tune cancelled")
		return
	}
	if len(args) != 5 {
		print("usage: tune <loop> <kp> <ki> <kd> <delay-seconds> | tune cancel")
		return
	}
	loop, err := sim.ParseLoop(args[0])
	if err != nil {
		print("%v", err)
		return
	}
	vals := make([]float64, 4)
	for i, raw := range args[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			print("arguments must be numbers")
			return
		}
		vals[i] = v
	}
	req := sim.TuneRequest{Loop: loop, Kp: vals[0], Ki: vals[1], Kd: vals[2], Delay: vals[3]}
	if err := c.sim.StartAutoTune(req); err != nil {
		print("%v", err)
		return
	}
	print("tune armed: %s commits in %.0fs of simulated time", loop, vals[3])
}

func printHelp(print func(string, ...any)) {
	print("commands:")
	print("  status                              plant and loop overview")
	print("  set <actuator> <value>              manual actuator (fuel/cooling/excitation/load/maintenance)")
	print("  auto <loop> <on|off> [target]       toggle PID control")
	print("  pid <loop> <kp> <ki> <kd>           retune a loop live")
	print("  cascade <on|off>                    toggle cascade control")
	print("  cascade type <temperature|power>    retarget the cascade")
	print("  cascade setpoint <value>            outer-loop setpoint")
	print("  tune <loop> <kp> <ki> <kd> <delay>  deferred gain commit")
	print("  emergency                           toggle emergency override")
	print("  speed <multiplier>                  simulation speed")
	print("  pause / resume / reset              lifecycle")
	print("  alerts                              active advisories")
	print("  watch                               toggle per-second status line")
	print("  quit                                leave the console")
}

func historyFilePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(cacheDir, "dieselops")
	_ = os.MkdirAll(dir, 0750)
	return filepath.Join(dir, "console_history")
}
