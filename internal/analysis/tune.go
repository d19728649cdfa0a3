package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the magnitude spectrum of a turn-by-turn record,
// one value per FFT bin from DC to the Nyquist frequency. The signal
// is mean-subtracted and Hann windowed first; bin k corresponds to a
// tune of k/len(signal).
func Spectrum(signal []float64) []float64 {
	n := len(signal)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(signal, nil)
	buf := make([]float64, n)
	for i, v := range signal {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		buf[i] = (v - mean) * w
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, buf)

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// Tune estimates the fractional betatron tune, in oscillations per
// turn, from a turn-by-turn position record.
//
// The dominant spectral line is refined by parabolic interpolation of
// the three bins around the peak. Returns NaN when the record is too
// short to carry a spectrum.
func Tune(signal []float64) float64 {
	n := len(signal)
	if n < 8 {
		return math.NaN()
	}

	mags := Spectrum(signal)

	// Skip the DC bin; the windowed, mean-free signal has no power there
	// anyway.
	peak := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[peak] {
			peak = k
		}
	}

	tune := float64(peak) / float64(n)
	if peak > 1 && peak < len(mags)-1 {
		den := mags[peak-1] - 2*mags[peak] + mags[peak+1]
		if den != 0 {
			delta := 0.5 * (mags[peak-1] - mags[peak+1]) / den
			tune = (float64(peak) + delta) / float64(n)
		}
	}
	return tune
}
