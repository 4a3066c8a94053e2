package plant

import "math/rand"

// Noise is the injectable process-noise source. Sample returns a value in
// [-amplitude, +amplitude]. Tests substitute Zero for exact assertions.
type Noise interface {
	Sample(amplitude float64) float64
}

type uniform struct {
	rng *rand.Rand
}

// NewUniform returns a seeded uniform noise source.
func NewUniform(seed int64) Noise {
	return &uniform{rng: rand.New(rand.NewSource(seed))}
}

func (u *uniform) Sample(amplitude float64) float64 {
	return (u.rng.Float64()*2 - 1) * amplitude
}

type zero struct{}

func (zero) Sample(float64) float64 { return 0 }

// Zero is a noise source that always returns 0.
var Zero Noise = zero{}
