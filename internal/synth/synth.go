// Package synth generates synthetic frames in the capture and symbol table
// formats: a Zadoff-Chu preamble held for Decimation samples per chip,
// Gaussian symbols SymbolSpan samples apart, and a zero tail. The symbols are
// shaped by a root raised cosine pulse, or held for their whole period when
// the roll-off is 0.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat/distuv"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/config"
	"qosst-scope/internal/symbols"
)

// Generator produces one synthetic frame per call to Generate
type Generator struct {
	frame  config.FrameConfig
	synth  config.SynthConfig
	logger *log.Logger
}

// Frame is a generated capture and the symbols it carries
type Frame struct {
	Samples capture.Capture
	Symbols [][]float64 // one (I, Q) row per symbol, null tail included
}

// NewGenerator validates cfg and returns a generator for it. logger may be nil.
func NewGenerator(cfg *config.Config, logger *log.Logger) (*Generator, error) {
	if err := cfg.ValidateSynth(); err != nil {
		return nil, err
	}
	return &Generator{
		frame:  cfg.Frame,
		synth:  cfg.Synth,
		logger: logger,
	}, nil
}

// Generate builds the frame. The same seed always yields the same frame.
func (g *Generator) Generate() *Frame {
	preamble := Preamble(g.frame.ZCLength, g.synth.ZCRoot, g.synth.ZCShift, g.synth.Amplitude)
	syms := g.symbols()

	total := len(preamble)*g.frame.Decimation + len(syms)*g.frame.SymbolSpan
	samples := make(capture.Capture, 0, total)
	for _, chip := range preamble {
		samples = appendHeld(samples, chip, g.frame.Decimation)
	}
	rows := make([][]float64, len(syms))
	for k, s := range syms {
		rows[k] = []float64{float64(s.I), float64(s.Q)}
	}
	if g.synth.RRCRollOff > 0 {
		samples = append(samples, g.shape(syms)...)
	} else {
		for _, s := range syms {
			samples = appendHeld(samples, s, g.frame.SymbolSpan)
		}
	}

	if g.logger != nil {
		g.logger.Debug("Generated frame",
			"samples", len(samples),
			"chips", len(preamble),
			"symbols", g.synth.NumSymbols,
			"null_symbols", g.synth.NumNullSymbols,
			"rrc_roll_off", g.synth.RRCRollOff)
	}
	return &Frame{Samples: samples, Symbols: rows}
}

// WriteFiles generates a frame and writes the capture to iqPath and the
// symbol table to symbolsPath
func (g *Generator) WriteFiles(iqPath, symbolsPath string) (*Frame, error) {
	f := g.Generate()

	if err := capture.NewWriter().WriteFile(iqPath, f.Samples); err != nil {
		return nil, fmt.Errorf("failed to write capture %s: %w", iqPath, err)
	}
	if err := symbols.WriteFile(symbolsPath, f.Symbols); err != nil {
		return nil, fmt.Errorf("failed to write symbols %s: %w", symbolsPath, err)
	}

	if g.logger != nil {
		g.logger.Info("Wrote synthetic frame", "iq", iqPath, "symbols", symbolsPath, "samples", f.Samples.Len())
	}
	return f, nil
}

func (g *Generator) symbols() []capture.Sample {
	src := rand.NewPCG(g.synth.Seed, g.synth.Seed^0x9e3779b97f4a7c15)
	normal := distuv.Normal{Mu: 0, Sigma: g.synth.SymbolScale, Src: src}

	limit := 32767.0
	if g.synth.SymbolClamp {
		limit = float64(g.synth.SymbolMaxValue)
	}

	out := make([]capture.Sample, g.synth.NumSymbols+g.synth.NumNullSymbols)
	for k := 0; k < g.synth.NumSymbols; k++ {
		out[k] = capture.Sample{
			I: quantize(normal.Rand(), limit),
			Q: quantize(normal.Rand(), limit),
		}
	}
	return out
}

// shape filters the symbols with the configured pulse. Symbol k peaks at
// data sample k*SymbolSpan.
func (g *Generator) shape(syms []capture.Sample) capture.Capture {
	pulse := RRCPulse(g.synth.RRCRollOff, g.frame.SymbolSpan, g.synth.RRCSpan)
	i, q := Shape(syms, pulse, g.frame.SymbolSpan)

	out := make(capture.Capture, len(i))
	for n := range out {
		out[n] = capture.Sample{I: quantize(i[n], 32767), Q: quantize(q[n], 32767)}
	}
	return out
}

// Preamble returns the length chips of the Zadoff-Chu sequence with the
// given root and cyclic shift, scaled to amplitude
func Preamble(length, root, shift int, amplitude float64) []capture.Sample {
	out := make([]capture.Sample, length)
	odd := length % 2
	for n := range out {
		// n*(n+odd+2*shift) grows past 2^53 for long sequences, reduce first
		m := (int64(n) * int64(n+odd+2*shift)) % int64(2*length)
		m = (m * int64(root)) % int64(2*length)
		phase := -math.Pi * float64(m) / float64(length)
		out[n] = capture.Sample{
			I: quantize(amplitude*math.Cos(phase), 32767),
			Q: quantize(amplitude*math.Sin(phase), 32767),
		}
	}
	return out
}

func appendHeld(dst capture.Capture, s capture.Sample, n int) capture.Capture {
	for k := 0; k < n; k++ {
		dst = append(dst, s)
	}
	return dst
}

func quantize(v, limit float64) int16 {
	v = math.Round(v)
	if v > limit {
		v = limit
	}
	if v < -limit {
		v = -limit
	}
	return int16(v)
}
