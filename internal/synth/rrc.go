package synth

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"qosst-scope/internal/capture"
)

// RRCPulse returns the root raised cosine impulse response with the given
// roll-off, sampled samplesPerSymbol times per symbol over spanSymbols
// symbols. The centre tap is 1, so an isolated symbol peaks at its own value.
func RRCPulse(rollOff float64, samplesPerSymbol, spanSymbols int) []float64 {
	half := spanSymbols * samplesPerSymbol / 2
	taps := make([]float64, 2*half+1)
	for k := range taps {
		taps[k] = rrc(float64(k-half)/float64(samplesPerSymbol), rollOff)
	}
	floats.Scale(1/taps[half], taps)
	return taps
}

// rrc evaluates the unnormalized pulse at t symbol periods
func rrc(t, beta float64) float64 {
	if t == 0 {
		return 1 - beta + 4*beta/math.Pi
	}
	// removable singularity at |t| = 1/(4 beta)
	if beta > 0 && math.Abs(math.Abs(4*beta*t)-1) < 1e-9 {
		a := math.Pi / (4 * beta)
		return beta / math.Sqrt2 * ((1+2/math.Pi)*math.Sin(a) + (1-2/math.Pi)*math.Cos(a))
	}
	num := math.Sin(math.Pi*t*(1-beta)) + 4*beta*t*math.Cos(math.Pi*t*(1+beta))
	den := math.Pi * t * (1 - 16*beta*beta*t*t)
	return num / den
}

// Shape places symbol k at sample k*samplesPerSymbol and filters the train
// with pulse. The result has len(syms)*samplesPerSymbol samples per rail;
// pulse tails falling outside it are dropped.
func Shape(syms []capture.Sample, pulse []float64, samplesPerSymbol int) (i, q []float64) {
	n := len(syms) * samplesPerSymbol
	i = make([]float64, n)
	q = make([]float64, n)
	half := len(pulse) / 2

	for k, s := range syms {
		if s == (capture.Sample{}) {
			continue
		}
		first := k*samplesPerSymbol - half
		lo, hi := max(first, 0), min(first+len(pulse), n)
		if lo >= hi {
			continue
		}
		taps := pulse[lo-first : hi-first]
		floats.AddScaled(i[lo:hi], float64(s.I), taps)
		floats.AddScaled(q[lo:hi], float64(s.Q), taps)
	}
	return i, q
}
