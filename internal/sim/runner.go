package sim

import (
	"context"
	"fmt"
)

// Metric observes snapshots during a headless run and reduces them to a
// single value.
type Metric interface {
	Name() string
	Observe(snap Snapshot, dt float64)
	Value() float64
	Reset()
}

// RunConfig parameterizes a headless run.
type RunConfig struct {
	Dt       float64
	Duration float64
}

// RunResult collects the per-second window samples and final metric values
// of a headless run.
type RunResult struct {
	Power       []Point
	Temperature []Point
	Efficiency  []Point
	Final       Snapshot
	Metrics     map[string]float64
	StepsTaken  int
}

// Run drives the simulator for cfg.Duration simulated seconds at fixed dt,
// feeding every tick's snapshot to the metrics and the optional observer.
// The context cancels a long run between ticks.
func Run(ctx context.Context, s *Simulator, cfg RunConfig, metrics []Metric, observer func(Snapshot)) (*RunResult, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}

	for _, m := range metrics {
		m.Reset()
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &RunResult{Metrics: make(map[string]float64)}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.Update(cfg.Dt)
		result.StepsTaken++

		snap := s.Snapshot()
		for _, m := range metrics {
			m.Observe(snap, cfg.Dt)
		}
		if observer != nil {
			observer(snap)
		}
	}

	result.Power = s.PowerHistory()
	result.Temperature = s.TemperatureHistory()
	result.Efficiency = s.EfficiencyHistory()
	result.Final = s.Snapshot()
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
