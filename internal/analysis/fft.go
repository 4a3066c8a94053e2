package analysis

import (
	"math"
	"math/bits"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of data with an in-place
// iterative radix-2 decimation-in-time pass over a bit-reversed copy.
// The input length must be a power of two; use PadToPowerOfTwo for
// arbitrary-length series.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n&(n-1) != 0 {
		panic("fft requires power of 2 length")
	}

	buf := make([]complex128, n)
	if n == 0 {
		return buf
	}
	shift := 64 - uint(bits.Len(uint(n-1)))
	for i, v := range data {
		buf[bits.Reverse64(uint64(i))>>shift] = complex(v, 0)
	}

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := start; k < start+half; k++ {
				a, b := buf[k], buf[k+half]*w
				buf[k] = a + b
				buf[k+half] = a - b
				w *= step
			}
		}
	}
	return buf
}

// PowerSpectrum returns the magnitude of the first half of the FFT
// of data. The input length must be a power of two.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// PadToPowerOfTwo zero-pads data to the next power-of-two length.
// The mean of the series is subtracted first so the padding does not
// introduce a step and the DC bin does not swamp the spectrum.
func PadToPowerOfTwo(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}

	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}
	return padded
}
