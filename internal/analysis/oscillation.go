package analysis

import "math"

// Oscillation summarizes periodic content in a sampled plant series.
// A poorly tuned loop shows up as a strong dominant frequency with a
// large peak-to-peak swing (hunting); a well damped loop has a flat
// spectrum once the transient is excluded.
type Oscillation struct {
	Spectrum    []float64 // magnitude per frequency bin
	DominantHz  float64   // frequency of the strongest non-DC bin
	PeriodSec   float64   // 1/DominantHz, 0 when no dominant bin
	PeakToPeak  float64   // max - min of the raw series
	MeanValue   float64
	SampleCount int
	SampleSec   float64   // sample interval of the input series
}

// Analyze computes the power spectrum of samples taken every
// sampleSec seconds and locates the dominant oscillation.
func Analyze(samples []float64, sampleSec float64) Oscillation {
	res := Oscillation{SampleCount: len(samples), SampleSec: sampleSec}
	if len(samples) < 2 || sampleSec <= 0 {
		return res
	}

	min, max := samples[0], samples[0]
	sum := 0.0
	for _, v := range samples {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	res.MeanValue = sum / float64(len(samples))
	res.PeakToPeak = max - min

	padded := PadToPowerOfTwo(samples)
	res.Spectrum = PowerSpectrum(padded)

	// Bin 0 is the residual DC component; skip it.
	maxIdx := 0
	maxVal := 0.0
	for i := 1; i < len(res.Spectrum); i++ {
		if res.Spectrum[i] > maxVal {
			maxVal = res.Spectrum[i]
			maxIdx = i
		}
	}
	if maxIdx > 0 && maxVal > 0 {
		span := float64(len(padded)) * sampleSec
		res.DominantHz = float64(maxIdx) / span
		if res.DominantHz > 0 {
			res.PeriodSec = 1 / res.DominantHz
		}
	}
	return res
}

// Damped reports whether the series looks settled: the peak-to-peak
// swing stays within tolerance of the mean. A zero mean falls back to
// an absolute comparison.
func (o Oscillation) Damped(tolerance float64) bool {
	ref := math.Abs(o.MeanValue)
	if ref == 0 {
		return o.PeakToPeak <= tolerance
	}
	return o.PeakToPeak/ref <= tolerance
}
