package scenario

import (
	"context"
	"fmt"

	"github.com/kmishmael/dieselops/internal/config"
	"github.com/kmishmael/dieselops/internal/metrics"
	"github.com/kmishmael/dieselops/internal/sim"
)

// ParameterSweep runs the same closed-loop setup across a range of one
// parameter, reporting the standard metric set per point. Parameter names
// are "<loop>.kp", "<loop>.ki", "<loop>.kd" or "<loop>.target".
type ParameterSweep struct {
	Config    config.Config
	Parameter string
	Min       float64
	Max       float64
	Steps     int
}

// SweepPoint is the outcome at one parameter value.
type SweepPoint struct {
	Value   float64
	Metrics map[string]float64
	Final   sim.Snapshot
}

// Run executes the sweep. Each point gets a fresh simulator so no
// controller state leaks between runs.
func (sw *ParameterSweep) Run(ctx context.Context) ([]SweepPoint, error) {
	if sw.Steps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sw.Steps)
	}
	loop, field, err := parseParameter(sw.Parameter)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, 0, sw.Steps)
	delta := (sw.Max - sw.Min) / float64(sw.Steps-1)

	for i := 0; i < sw.Steps; i++ {
		val := sw.Min + float64(i)*delta

		s, err := sw.Config.NewSimulator()
		if err != nil {
			return nil, err
		}
		applyParameter(s, loop, field, val)

		runCfg := sim.RunConfig{Dt: sw.Config.Dt, Duration: sw.Config.Duration}
		run, err := sim.Run(ctx, s, runCfg, metrics.Standard(), nil)
		if err != nil {
			return points, fmt.Errorf("sweep point %f: %w", val, err)
		}

		points = append(points, SweepPoint{
			Value:   val,
			Metrics: run.Metrics,
			Final:   run.Final,
		})
	}

	return points, nil
}

func parseParameter(name string) (sim.Loop, string, error) {
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		loop, err := sim.ParseLoop(name[:i])
		if err != nil {
			return 0, "", err
		}
		field := name[i+1:]
		switch field {
		case "kp", "ki", "kd", "target":
			return loop, field, nil
		}
		return 0, "", fmt.Errorf("unknown parameter field %q", field)
	}
	return 0, "", fmt.Errorf("parameter %q must be <loop>.<field>", name)
}

func applyParameter(s *sim.Simulator, loop sim.Loop, field string, val float64) {
	switch field {
	case "kp":
		s.UpdatePIDParameters(loop, &val, nil, nil)
	case "ki":
		s.UpdatePIDParameters(loop, nil, &val, nil)
	case "kd":
		s.UpdatePIDParameters(loop, nil, nil, &val)
	case "target":
		s.UpdateAutoControl(loop, s.Mode(loop) == sim.ModeAuto, &val)
	}
}
