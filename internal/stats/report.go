package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/frame"
	"qosst-scope/internal/symbols"
)

// Report is the inspector's view of one capture and its symbol table
type Report struct {
	Samples  int      `json:"samples"`
	Required int      `json:"required_samples"`
	Covered  bool     `json:"covered"`
	Layout   string   `json:"layout"`
	Regions  []Region `json:"regions"`
	Columns  []Column `json:"columns,omitempty"`
	Spectrum *Peak    `json:"sync_spectrum_peak,omitempty"`
}

// Analyze computes a report for c and table under layout. Regions the
// capture does not fully cover are described from the samples available, so
// a short capture can still be inspected. table may be nil.
func Analyze(c capture.Capture, table *symbols.Table, layout frame.Layout) Report {
	rep := Report{
		Samples:  c.Len(),
		Required: layout.RequiredSamples(),
		Covered:  layout.CheckBounds(c.Len()) == nil,
		Layout:   layout.String(),
	}

	sync := clip(c, layout.SyncRegion())
	data := clip(c, layout.DataRegion())
	rep.Regions = []Region{
		Describe("sync", layout.SyncRegion().Start, sync),
		Describe("sync_decimated", layout.SyncRegion().Start, sync.Every(layout.Decimation)),
		Describe("data", layout.DataRegion().Start, data),
	}

	if peak, ok := SpectrumPeak(sync.Every(layout.Decimation)); ok {
		rep.Spectrum = &peak
	}

	if table != nil {
		for col := 0; col < table.Width; col++ {
			values, err := table.Column(col, table.Len())
			if err != nil {
				continue
			}
			rep.Columns = append(rep.Columns, DescribeColumn(col, values))
		}
	}
	return rep
}

func clip(c capture.Capture, r frame.Region) capture.Capture {
	start, end := r.Start, r.End
	if start > c.Len() {
		start = c.Len()
	}
	if end > c.Len() {
		end = c.Len()
	}
	return c[start:end]
}

// WriteJSON encodes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonSafe(*r)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// jsonSafe replaces the -Inf power of silent regions, which JSON cannot carry
func jsonSafe(r Report) Report {
	regions := make([]Region, len(r.Regions))
	for k, reg := range r.Regions {
		if math.IsInf(reg.PowerDB, 0) {
			reg.PowerDB = -999
		}
		regions[k] = reg
	}
	r.Regions = regions
	if r.Spectrum != nil && math.IsInf(r.Spectrum.PowerDB, 0) {
		peak := *r.Spectrum
		peak.PowerDB = -999
		r.Spectrum = &peak
	}
	return r
}

// WriteCSV writes the report as sections of comma-separated records
func (r *Report) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	writer.Write([]string{"# Capture"})
	writer.Write([]string{"# Samples", fmt.Sprintf("%d", r.Samples)})
	writer.Write([]string{"# Required", fmt.Sprintf("%d", r.Required)})
	writer.Write([]string{"# Covered", fmt.Sprintf("%t", r.Covered)})
	writer.Write([]string{"# Layout", r.Layout})
	writer.Write([]string{""})

	writer.Write([]string{"# Regions"})
	writer.Write([]string{"Region", "Start", "Samples", "Mean_I", "Mean_Q", "Std_I", "Std_Q", "RMS", "Peak_Magnitude", "Power_dB"})
	for _, reg := range r.Regions {
		writer.Write([]string{
			reg.Name,
			fmt.Sprintf("%d", reg.Start),
			fmt.Sprintf("%d", reg.Samples),
			fmt.Sprintf("%.3f", reg.MeanI),
			fmt.Sprintf("%.3f", reg.MeanQ),
			fmt.Sprintf("%.3f", reg.StdI),
			fmt.Sprintf("%.3f", reg.StdQ),
			fmt.Sprintf("%.3f", reg.RMS),
			fmt.Sprintf("%.3f", reg.PeakMag),
			fmt.Sprintf("%.2f", reg.PowerDB),
		})
	}

	if len(r.Columns) > 0 {
		writer.Write([]string{""})
		writer.Write([]string{"# Symbol Columns"})
		writer.Write([]string{"Column", "Rows", "Mean", "Std", "Min", "Max"})
		for _, col := range r.Columns {
			writer.Write([]string{
				fmt.Sprintf("%d", col.Index),
				fmt.Sprintf("%d", col.Rows),
				fmt.Sprintf("%.4f", col.Mean),
				fmt.Sprintf("%.4f", col.Std),
				fmt.Sprintf("%.4f", col.Min),
				fmt.Sprintf("%.4f", col.Max),
			})
		}
	}

	if r.Spectrum != nil {
		writer.Write([]string{""})
		writer.Write([]string{"# Sync Spectrum Peak"})
		writer.Write([]string{"Bin", "FFT_Size", "Normalized_Frequency", "Power_dB"})
		writer.Write([]string{
			fmt.Sprintf("%d", r.Spectrum.Bin),
			fmt.Sprintf("%d", r.Spectrum.Size),
			fmt.Sprintf("%.6f", r.Spectrum.Normalized),
			fmt.Sprintf("%.2f", r.Spectrum.PowerDB),
		})
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable prints the human readable report
func (r *Report) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "📐 Frame Layout:\n")
	fmt.Fprintf(w, "%s\n", r.Layout)
	fmt.Fprintf(w, "Samples: %d of %d required", r.Samples, r.Required)
	if r.Covered {
		fmt.Fprintf(w, " ✅\n\n")
	} else {
		fmt.Fprintf(w, " ⚠️  capture too short, regions below are partial\n\n")
	}

	fmt.Fprintf(w, "📊 Region Statistics:\n")
	fmt.Fprintf(w, "%-16s %-9s %-9s %-11s %-11s %-11s %-11s %-11s %-11s %-9s\n",
		"Region", "Start", "Samples", "Mean I", "Mean Q", "Std I", "Std Q", "RMS", "Peak", "dB")
	for _, reg := range r.Regions {
		fmt.Fprintf(w, "%-16s %-9d %-9d %-11.2f %-11.2f %-11.2f %-11.2f %-11.2f %-11.2f %-9.2f\n",
			reg.Name, reg.Start, reg.Samples, reg.MeanI, reg.MeanQ, reg.StdI, reg.StdQ, reg.RMS, reg.PeakMag, reg.PowerDB)
	}
	fmt.Fprintln(w)

	if len(r.Columns) > 0 {
		fmt.Fprintf(w, "🔢 Symbol Table:\n")
		fmt.Fprintf(w, "%-8s %-8s %-12s %-12s %-12s %-12s\n", "Column", "Rows", "Mean", "Std", "Min", "Max")
		for _, col := range r.Columns {
			fmt.Fprintf(w, "%-8d %-8d %-12.4f %-12.4f %-12.4f %-12.4f\n",
				col.Index, col.Rows, col.Mean, col.Std, col.Min, col.Max)
		}
		fmt.Fprintln(w)
	}

	if r.Spectrum != nil {
		fmt.Fprintf(w, "📡 Sync Spectrum Peak:\n")
		fmt.Fprintf(w, "Bin: %d of %d\n", r.Spectrum.Bin, r.Spectrum.Size)
		fmt.Fprintf(w, "Normalized Frequency: %.6f cycles/chip\n", r.Spectrum.Normalized)
		fmt.Fprintf(w, "Power: %.2f dB\n\n", r.Spectrum.PowerDB)
	}
}
