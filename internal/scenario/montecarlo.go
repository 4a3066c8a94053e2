package scenario

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kmishmael/dieselops/internal/config"
	"github.com/kmishmael/dieselops/internal/metrics"
	"github.com/kmishmael/dieselops/internal/sim"
)

// MonteCarlo repeats a closed-loop run with randomly perturbed initial
// actuators and a different noise stream per trial, to check the tuning
// holds up away from the nominal operating point.
type MonteCarlo struct {
	Config config.Config
	// Perturbation is the half-width applied to each initial actuator, in
	// percentage points.
	Perturbation float64
	Trials       int
	Seed         int64
}

// Trial is one Monte Carlo outcome. Stable means the run finished without
// crossing the critical temperature.
type Trial struct {
	ID      int
	Initial config.ActuatorConfig
	Metrics map[string]float64
	Stable  bool
}

// Run executes the trials sequentially. A zero seed derives one from the
// wall clock.
func (mc *MonteCarlo) Run(ctx context.Context) ([]Trial, error) {
	if mc.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", mc.Trials)
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	trials := make([]Trial, 0, mc.Trials)
	for id := 0; id < mc.Trials; id++ {
		cfg := mc.Config
		cfg.Noise.Seed = rng.Int63()
		cfg.Initial = perturb(cfg.Initial, mc.Perturbation, rng)

		s, err := cfg.NewSimulator()
		if err != nil {
			return nil, err
		}

		runCfg := sim.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration}
		run, err := sim.Run(ctx, s, runCfg, metrics.Standard(), nil)
		if err != nil {
			return trials, fmt.Errorf("trial %d: %w", id, err)
		}

		trials = append(trials, Trial{
			ID:      id,
			Initial: cfg.Initial,
			Metrics: run.Metrics,
			Stable:  run.Metrics["peak_temperature"] <= sim.CriticalTemperature,
		})
	}

	return trials, nil
}

func perturb(a config.ActuatorConfig, width float64, rng *rand.Rand) config.ActuatorConfig {
	jitter := func(v float64) float64 {
		v += (rng.Float64() - 0.5) * 2 * width
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return v
	}
	a.FuelInjectionRate = jitter(a.FuelInjectionRate)
	a.CoolingSystemPower = jitter(a.CoolingSystemPower)
	a.GeneratorExcitation = jitter(a.GeneratorExcitation)
	a.Load = jitter(a.Load)
	return a
}

// StableFraction summarizes a trial set.
func StableFraction(trials []Trial) float64 {
	if len(trials) == 0 {
		return 0
	}
	stable := 0
	for _, tr := range trials {
		if tr.Stable {
			stable++
		}
	}
	return float64(stable) / float64(len(trials))
}
