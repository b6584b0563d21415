// Package frame derives the sample layout of a captured frame from the shared
// frame constants and slices a capture into its regions.
//
// A frame starts with the ZC synchronization preamble (ZCLength chips of
// Decimation samples each) and is followed by the data symbols (SymbolSpan
// samples each).
package frame

import (
	"fmt"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/config"
	"qosst-scope/internal/failure"
)

// Region is a half-open sample interval [Start, End)
type Region struct {
	Start int
	End   int
}

// Len returns the number of samples in the region
func (r Region) Len() int {
	return r.End - r.Start
}

// Layout is the frame layout for one set of frame constants
type Layout struct {
	config.FrameConfig
}

// NewLayout validates f and returns its layout
func NewLayout(f config.FrameConfig) (Layout, error) {
	if err := f.Validate(); err != nil {
		return Layout{}, err
	}
	return Layout{FrameConfig: f}, nil
}

// SyncRegion returns the preamble span at the start of the capture
func (l Layout) SyncRegion() Region {
	return Region{Start: 0, End: l.ZCLength * l.Decimation}
}

// DataRegion returns the span of the first NumSymbols symbols after the preamble
func (l Layout) DataRegion() Region {
	start := l.SyncRegion().End
	return Region{Start: start, End: start + l.NumSymbols*l.SymbolSpan}
}

// RequiredSamples is the minimum capture length the layout can be drawn from
func (l Layout) RequiredSamples() int {
	return l.DataRegion().End
}

// SymbolOffsets returns the x positions of the symbol markers relative to
// the start of the data region
func (l Layout) SymbolOffsets() []float64 {
	out := make([]float64, l.NumSymbols)
	for k := range out {
		out[k] = float64(k * l.SymbolSpan)
	}
	return out
}

// CheckBounds reports a bounds error when a capture of n samples is too short
func (l Layout) CheckBounds(n int) error {
	if n < l.RequiredSamples() {
		return fmt.Errorf("%w: capture has %d samples, layout needs %d (sync %d + data %d)",
			failure.ErrBounds, n, l.RequiredSamples(), l.SyncRegion().Len(), l.DataRegion().Len())
	}
	return nil
}

// Sync returns the preamble decimated to one sample per ZC chip
func (l Layout) Sync(c capture.Capture) (capture.Capture, error) {
	if err := l.CheckBounds(c.Len()); err != nil {
		return nil, err
	}
	r := l.SyncRegion()
	return c[r.Start:r.End].Every(l.Decimation), nil
}

// Data returns the full-rate samples of the data region
func (l Layout) Data(c capture.Capture) (capture.Capture, error) {
	if err := l.CheckBounds(c.Len()); err != nil {
		return nil, err
	}
	r := l.DataRegion()
	return c[r.Start:r.End], nil
}

// String summarizes the layout for logs and reports
func (l Layout) String() string {
	return fmt.Sprintf("zc_length=%d decimation=%d num_symbols=%d symbol_span=%d (needs %d samples)",
		l.ZCLength, l.Decimation, l.NumSymbols, l.SymbolSpan, l.RequiredSamples())
}
