package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/kmishmael/dieselops/internal/config"
	"github.com/kmishmael/dieselops/internal/metrics"
	"github.com/kmishmael/dieselops/internal/sim"
)

// GridSearch exhaustively evaluates PID gain combinations for one loop,
// minimizing that loop's integrated tracking error over a closed-loop run.
type GridSearch struct {
	Config config.Config
	Loop   sim.Loop
	Kp     []float64
	Ki     []float64
	Kd     []float64
}

// Best is the winning gain set and its objective value.
type Best struct {
	Kp, Ki, Kd float64
	Objective  float64
	Evaluated  int
}

// Search runs every combination and returns the best. The loop under
// test is forced to auto; each candidate gets a fresh simulator.
func (g *GridSearch) Search(ctx context.Context) (*Best, error) {
	if len(g.Kp) == 0 || len(g.Ki) == 0 || len(g.Kd) == 0 {
		return nil, fmt.Errorf("empty gain range")
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}

	objective := "tracking_error_" + g.Loop.String()
	best := &Best{Objective: math.Inf(1)}

	for _, kp := range g.Kp {
		for _, ki := range g.Ki {
			for _, kd := range g.Kd {
				select {
				case <-ctx.Done():
					return best, ctx.Err()
				default:
				}

				val, err := g.evaluate(ctx, kp, ki, kd, objective)
				if err != nil {
					return best, err
				}
				best.Evaluated++
				if val < best.Objective {
					best.Objective = val
					best.Kp, best.Ki, best.Kd = kp, ki, kd
				}
			}
		}
	}

	return best, nil
}

func (g *GridSearch) evaluate(ctx context.Context, kp, ki, kd float64, objective string) (float64, error) {
	s, err := g.Config.NewSimulator()
	if err != nil {
		return 0, err
	}
	s.UpdatePIDParameters(g.Loop, &kp, &ki, &kd)
	s.UpdateAutoControl(g.Loop, true, nil)

	runCfg := sim.RunConfig{Dt: g.Config.Dt, Duration: g.Config.Duration}
	run, err := sim.Run(ctx, s, runCfg, metrics.Standard(), nil)
	if err != nil {
		return 0, err
	}
	return run.Metrics[objective], nil
}

// Span builds an inclusive evenly-spaced range for a gain axis.
func Span(min, max float64, steps int) []float64 {
	if steps <= 1 {
		return []float64{min}
	}
	out := make([]float64, steps)
	delta := (max - min) / float64(steps-1)
	for i := range out {
		out[i] = min + float64(i)*delta
	}
	return out
}
