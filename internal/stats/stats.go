// Package stats computes summary statistics of capture regions and symbol
// table columns for the inspector
package stats

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"qosst-scope/internal/capture"
)

// Region holds the statistics of one span of I/Q samples
type Region struct {
	Name    string  `json:"name"`
	Start   int     `json:"start"`
	Samples int     `json:"samples"`
	MeanI   float64 `json:"mean_i"`
	MeanQ   float64 `json:"mean_q"`
	StdI    float64 `json:"std_i"`
	StdQ    float64 `json:"std_q"`
	RMS     float64 `json:"rms"`
	PeakMag float64 `json:"peak_magnitude"`
	PowerDB float64 `json:"power_db"`
}

// Column holds the statistics of one symbol table column
type Column struct {
	Index int     `json:"index"`
	Rows  int     `json:"rows"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Peak is the strongest bin of a complex spectrum
type Peak struct {
	Bin        int     `json:"bin"`
	Size       int     `json:"fft_size"`
	Normalized float64 `json:"normalized_frequency"` // cycles per sample, in [-0.5, 0.5)
	PowerDB    float64 `json:"power_db"`
}

// Describe computes region statistics for samples starting at start
func Describe(name string, start int, samples capture.Capture) Region {
	r := Region{Name: name, Start: start, Samples: samples.Len()}
	if samples.Len() == 0 {
		return r
	}

	is, qs := samples.I(), samples.Q()
	r.MeanI, r.StdI = stat.PopMeanStdDev(is, nil)
	r.MeanQ, r.StdQ = stat.PopMeanStdDev(qs, nil)

	mags := make([]float64, len(is))
	power := 0.0
	for k := range is {
		p := is[k]*is[k] + qs[k]*qs[k]
		power += p
		mags[k] = math.Sqrt(p)
	}
	power /= float64(len(is))

	r.RMS = math.Sqrt(power)
	r.PeakMag = floats.Max(mags)
	r.PowerDB = toDB(power)
	return r
}

// DescribeColumn computes statistics of a symbol table column
func DescribeColumn(index int, values []float64) Column {
	c := Column{Index: index, Rows: len(values)}
	if len(values) == 0 {
		return c
	}
	c.Mean, c.Std = stat.PopMeanStdDev(values, nil)
	c.Min = floats.Min(values)
	c.Max = floats.Max(values)
	return c
}

// SpectrumPeak returns the strongest bin of the complex spectrum of samples.
// The input is truncated to the largest power of two that fits.
func SpectrumPeak(samples capture.Capture) (Peak, bool) {
	n := 1
	for n*2 <= samples.Len() {
		n *= 2
	}
	if n < 2 {
		return Peak{}, false
	}

	fft := fourier.NewCmplxFFT(n)
	coeffs := fft.Coefficients(nil, samples[:n].Complex())

	best, bestPower := 0, -1.0
	for k, c := range coeffs {
		p := real(c * cmplx.Conj(c))
		if p > bestPower {
			best, bestPower = k, p
		}
	}

	return Peak{
		Bin:        best,
		Size:       n,
		Normalized: fft.Freq(best),
		PowerDB:    toDB(bestPower / float64(n) / float64(n)),
	}, true
}

func toDB(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(p)
}
