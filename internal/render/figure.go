// Package render builds and draws the two-panel synchronization diagnostic.
package render

import (
	"fmt"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/failure"
	"qosst-scope/internal/frame"
	"qosst-scope/internal/symbols"
)

const (
	SyncTitle = "Sync sequence"
	DataTitle = "First symbols"
)

// Series is a polyline drawn through (X[k], Y[k])
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Stems is a marker series where each marker is drawn from zero to its value
type Stems struct {
	Name string
	X    []float64
	Y    []float64
}

// Panel is one subplot with its own axes and title
type Panel struct {
	Title  string
	XLabel string
	Lines  []Series
	Stems  []Stems
}

// Figure holds everything needed to draw the diagnostic, already sliced
type Figure struct {
	Layout frame.Layout
	Sync   Panel
	Data   Panel
}

// Build slices the capture and the symbol table according to layout
func Build(c capture.Capture, table *symbols.Table, layout frame.Layout) (*Figure, error) {
	sync, err := layout.Sync(c)
	if err != nil {
		return nil, err
	}
	data, err := layout.Data(c)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("%w: no symbol table", failure.ErrFormat)
	}
	if table.Width < 2 {
		return nil, fmt.Errorf("%w: symbol table has %d columns, need 2", failure.ErrFormat, table.Width)
	}

	offsets := layout.SymbolOffsets()
	stems := make([]Stems, 2)
	for col := range stems {
		values, err := table.Column(col, layout.NumSymbols)
		if err != nil {
			return nil, err
		}
		stems[col] = Stems{
			Name: fmt.Sprintf("symbols[:,%d]", col),
			X:    offsets,
			Y:    values,
		}
	}

	syncX := indices(sync.Len())
	dataX := indices(data.Len())

	return &Figure{
		Layout: layout,
		Sync: Panel{
			Title:  SyncTitle,
			XLabel: fmt.Sprintf("chip (every %d samples)", layout.Decimation),
			Lines: []Series{
				{Name: "I", X: syncX, Y: sync.I()},
				{Name: "Q", X: syncX, Y: sync.Q()},
			},
		},
		Data: Panel{
			Title:  DataTitle,
			XLabel: fmt.Sprintf("sample after sync (+%d)", layout.DataRegion().Start),
			Lines: []Series{
				{Name: "I", X: dataX, Y: data.I()},
				{Name: "Q", X: dataX, Y: data.Q()},
			},
			Stems: stems,
		},
	}, nil
}

func indices(n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = float64(k)
	}
	return out
}
