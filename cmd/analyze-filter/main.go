// Command analyze-filter reports the frequency response of every
// compiled-in compensation filter: DC gain, -3 dB corner, and worst-case
// stopband rejection, computed from an FFT of the coefficient vector.
package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-fir-filter/internal/filter"
)

const (
	// minFFTSize keeps frequency resolution reasonable for short filters.
	minFFTSize = 8192

	// cornerDropDB is the magnitude drop defining the corner frequency.
	cornerDropDB = -3.0

	// stopbandMarginFactor is how far beyond the corner the stopband is
	// considered to begin, for the rejection figure.
	stopbandMarginFactor = 1.5

	// silenceFloorDB stands in for log(0) bins.
	silenceFloorDB = -200.0
)

func main() {
	fmt.Println("=== Compensation filter frequency response ===")
	fmt.Println()

	for _, rate := range filter.Rates() {
		spec, ok := filter.Lookup(rate)
		if !ok {
			continue
		}
		analyze(spec)
	}

	fb := filter.Fallback()
	fmt.Printf("Fallback entry for unsupported rates: %d Hz (order %d)\n", fb.Rate, fb.Order)
}

func analyze(spec *filter.Spec) {
	fftSize := minFFTSize
	for fftSize < 2*spec.Order {
		fftSize *= 2
	}

	padded := make([]float64, fftSize)
	for i, c := range spec.Coefficients() {
		padded[i] = float64(c)
	}

	fft := fourier.NewFFT(fftSize)
	bins := fft.Coefficients(nil, padded)

	magsDB := make([]float64, len(bins))
	for i, b := range bins {
		mag := cmplx.Abs(b)
		if mag <= 0 {
			magsDB[i] = silenceFloorDB
			continue
		}
		magsDB[i] = 20 * math.Log10(mag)
	}

	binHz := float64(spec.Rate) / float64(fftSize)
	corner := cornerFrequency(magsDB, binHz)
	rejection := stopbandRejection(magsDB, binHz, corner)

	fmt.Printf("Rate %6d Hz  order %5d\n", spec.Rate, spec.Order)
	fmt.Printf("  DC gain:            %+.3f dB\n", magsDB[0])
	fmt.Printf("  -3 dB corner:       %.0f Hz\n", corner)
	fmt.Printf("  Stopband rejection: %.1f dB (beyond %.0f Hz)\n",
		rejection, corner*stopbandMarginFactor)
	fmt.Println()
}

// cornerFrequency finds the first frequency where the response falls
// cornerDropDB below DC.
func cornerFrequency(magsDB []float64, binHz float64) float64 {
	threshold := magsDB[0] + cornerDropDB
	for i, m := range magsDB {
		if m < threshold {
			return float64(i) * binHz
		}
	}
	return float64(len(magsDB)-1) * binHz
}

// stopbandRejection returns the worst (highest) magnitude beyond the
// stopband edge, relative to DC.
func stopbandRejection(magsDB []float64, binHz, corner float64) float64 {
	edge := int(corner * stopbandMarginFactor / binHz)
	if edge >= len(magsDB) {
		return 0
	}

	worst := silenceFloorDB
	for _, m := range magsDB[edge:] {
		if m > worst {
			worst = m
		}
	}
	return magsDB[0] - worst
}
