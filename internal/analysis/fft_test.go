package analysis

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFTConstantSignal(t *testing.T) {
	data := []float64{3, 3, 3, 3}
	ps := PowerSpectrum(data)

	if math.Abs(ps[0]-12) > 1e-9 {
		t.Errorf("DC bin = %v, want 12", ps[0])
	}
	if ps[1] > 1e-9 {
		t.Errorf("non-DC bin = %v, want 0", ps[1])
	}
}

func TestFFTMatchesDirectDFT(t *testing.T) {
	data := []float64{1, 3, -2, 0.5, 4, -1, 2.5, 0}

	got := FFT(data)

	n := len(data)
	for k := 0; k < n; k++ {
		var want complex128
		for j, v := range data {
			angle := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			want += complex(v*math.Cos(angle), v*math.Sin(angle))
		}
		if cmplx.Abs(got[k]-want) > 1e-9 {
			t.Errorf("bin %d: got %v, want %v", k, got[k], want)
		}
	}
}

func TestFFTRejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for length 6")
		}
	}()
	FFT(make([]float64, 6))
}

func TestPadToPowerOfTwo(t *testing.T) {
	padded := PadToPowerOfTwo([]float64{1, 2, 3, 4, 5})
	if len(padded) != 8 {
		t.Fatalf("padded length = %d, want 8", len(padded))
	}
	sum := 0.0
	for _, v := range padded[:5] {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("mean not removed, residual sum = %v", sum)
	}
}

func TestAnalyzeFindsSineFrequency(t *testing.T) {
	const n = 64
	const freq = 1.0 / 16 // Hz at 1 s sampling
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 50 + 5*math.Sin(2*math.Pi*freq*float64(i))
	}

	osc := Analyze(samples, 1.0)

	if math.Abs(osc.DominantHz-freq) > 1e-9 {
		t.Errorf("dominant frequency = %v Hz, want %v", osc.DominantHz, freq)
	}
	if math.Abs(osc.PeriodSec-16) > 1e-9 {
		t.Errorf("period = %v s, want 16", osc.PeriodSec)
	}
	if math.Abs(osc.MeanValue-50) > 0.5 {
		t.Errorf("mean = %v, want ~50", osc.MeanValue)
	}
	if osc.PeakToPeak < 9.5 || osc.PeakToPeak > 10.5 {
		t.Errorf("peak-to-peak = %v, want ~10", osc.PeakToPeak)
	}
}

func TestAnalyzeShortSeries(t *testing.T) {
	osc := Analyze([]float64{42}, 1.0)
	if osc.DominantHz != 0 || osc.PeriodSec != 0 {
		t.Errorf("single sample should yield no dominant frequency, got %+v", osc)
	}
}

func TestDamped(t *testing.T) {
	flat := Analyze([]float64{99, 100, 101, 100, 99, 100, 101, 100}, 1.0)
	if !flat.Damped(0.05) {
		t.Errorf("2%% swing around 100 should count as damped")
	}

	hunting := Analyze([]float64{80, 120, 80, 120, 80, 120, 80, 120}, 1.0)
	if hunting.Damped(0.05) {
		t.Errorf("40%% swing should not count as damped")
	}
}
