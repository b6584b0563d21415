// QOSST Reader - Utility to inspect raw I/Q captures and symbol tables
// This program prints the frame layout, region statistics and the dominant
// spectrum bin of the preamble without rendering anything.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/config"
	"qosst-scope/internal/frame"
	"qosst-scope/internal/stats"
	"qosst-scope/internal/symbols"
	"qosst-scope/internal/version"

	"github.com/spf13/cobra"
)

var (
	symbolsFile  string
	outputFormat string
	showSamples  int
	showGraph    bool
	graphWidth   int
	graphHeight  int
	showVersion  bool
	frameConfig  = config.DefaultConfig().Frame
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qosst-reader [out_iq.bin]",
	Short: "Inspect raw I/Q captures and symbol tables",
	Long: `QOSST Reader prints the frame layout of a raw interleaved int16 I/Q capture,
statistics of its preamble and data regions, the dominant spectrum bin of the
decimated preamble and, when given, statistics of the symbol table columns.

Display modes:
  --samples N  Show the first N samples of the data region
  --graph      Generate ASCII graph of the preamble magnitude per chip`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("QOSST Reader"))
			return
		}

		filename := config.DefaultConfig().Input.IQFile
		if len(args) == 1 {
			filename = args[0]
		}

		if err := inspect(os.Stdout, filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVar(&symbolsFile, "symbols", "", "symbol table to summarize")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json, csv)")
	rootCmd.Flags().IntVarP(&showSamples, "samples", "s", 0, "display the first N samples of the data region")
	rootCmd.Flags().BoolVarP(&showGraph, "graph", "g", false, "generate ASCII graph of the preamble magnitude")
	rootCmd.Flags().IntVar(&graphWidth, "graph-width", 80, "width of the ASCII graph in characters")
	rootCmd.Flags().IntVar(&graphHeight, "graph-height", 16, "height of the ASCII graph in lines")

	rootCmd.Flags().IntVar(&frameConfig.ZCLength, "zc-length", frameConfig.ZCLength, "ZC preamble length in chips")
	rootCmd.Flags().IntVar(&frameConfig.Decimation, "decimation", frameConfig.Decimation, "samples per ZC chip")
	rootCmd.Flags().IntVar(&frameConfig.NumSymbols, "num-symbols", frameConfig.NumSymbols, "symbols in the data region")
	rootCmd.Flags().IntVar(&frameConfig.SymbolSpan, "symbol-span", frameConfig.SymbolSpan, "samples per symbol")
}

// inspect reads the frame window of filename and prints the report
func inspect(w io.Writer, filename string) error {
	layout, err := frame.NewLayout(frameConfig)
	if err != nil {
		return err
	}
	if showGraph && (graphWidth < 2 || graphHeight < 2) {
		return fmt.Errorf("graph must be at least 2x2, got %dx%d", graphWidth, graphHeight)
	}

	total, err := capture.Stat(filename)
	if err != nil {
		return err
	}

	// Only the frame window is needed, captures can be much longer
	window := min(total, layout.RequiredSamples())
	samples, err := capture.ReadRange(filename, 0, window)
	if err != nil {
		return fmt.Errorf("failed to read samples: %w", err)
	}

	var table *symbols.Table
	if symbolsFile != "" {
		table, err = symbols.ReadFile(symbolsFile, 1)
		if err != nil {
			return err
		}
	}

	report := stats.Analyze(samples, table, layout)
	report.Samples = total

	switch outputFormat {
	case "json":
		return report.WriteJSON(w)
	case "csv":
		return report.WriteCSV(w)
	case "table":
	default:
		return fmt.Errorf("unknown output format %q (must be table, json or csv)", outputFormat)
	}

	fmt.Fprintf(w, "QOSST CAPTURE READER %s\n\n", version.GetFullVersion())
	if err := displayFileInfo(w, filename, total); err != nil {
		return err
	}
	report.WriteTable(w)

	if showGraph {
		displayGraph(w, samples[:min(len(samples), layout.SyncRegion().End)].Every(layout.Decimation))
	}
	if showSamples > 0 {
		r := layout.DataRegion()
		start := min(r.Start, len(samples))
		end := min(start+showSamples, len(samples))
		displaySamples(w, samples[start:end], start)
	}
	return nil
}

// displayFileInfo shows the size and sample count of the capture
func displayFileInfo(w io.Writer, filename string, total int) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "📁 File Information:\n")
	fmt.Fprintf(w, "Name: %s\n", filepath.Base(filename))
	fmt.Fprintf(w, "Size: %.2f MB (%d bytes)\n", float64(info.Size())/(1024*1024), info.Size())
	fmt.Fprintf(w, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Samples: %d (int16 I + int16 Q)\n\n", total)
	return nil
}

// displaySamples prints samples with their magnitude and phase
func displaySamples(w io.Writer, samples capture.Capture, offset int) {
	const rad2deg = 180.0 / math.Pi

	fmt.Fprintf(w, "📈 Data Region Samples (%d from sample %d):\n", len(samples), offset)
	fmt.Fprintf(w, "%-10s %-8s %-8s %-12s %-10s\n", "#", "I", "Q", "Magnitude", "Phase (°)")

	var batch strings.Builder
	for k, s := range samples {
		i, q := float64(s.I), float64(s.Q)
		fmt.Fprintf(&batch, "%-10d %-8d %-8d %-12.2f %-10.2f\n",
			offset+k, s.I, s.Q, math.Hypot(i, q), math.Atan2(q, i)*rad2deg)
	}
	fmt.Fprint(w, batch.String())
	fmt.Fprintln(w)
}

// displayGraph draws the magnitude of each preamble chip as an ASCII plot
func displayGraph(w io.Writer, chips capture.Capture) {
	if len(chips) == 0 {
		fmt.Fprintf(w, "📈 Preamble Graph: No samples to display\n\n")
		return
	}

	magnitudes := make([]float64, len(chips))
	minMag, maxMag := math.Inf(1), math.Inf(-1)
	for k, s := range chips {
		mag := math.Hypot(float64(s.I), float64(s.Q))
		magnitudes[k] = mag
		minMag = math.Min(minMag, mag)
		maxMag = math.Max(maxMag, mag)
	}
	if maxMag == minMag {
		maxMag = minMag + 1
	}

	fmt.Fprintf(w, "📈 Preamble Magnitude per Chip:\n")
	fmt.Fprintf(w, "Chips: %d | Magnitude Range: %.2f to %.2f\n\n", len(chips), minMag, maxMag)

	graph := make([][]rune, graphHeight)
	for k := range graph {
		graph[k] = []rune(strings.Repeat(" ", graphWidth))
	}

	for k, mag := range magnitudes {
		x := 0
		if len(magnitudes) > 1 {
			x = k * (graphWidth - 1) / (len(magnitudes) - 1)
		}
		y := int(float64(graphHeight-1) * (1.0 - (mag-minMag)/(maxMag-minMag)))
		y = max(0, min(y, graphHeight-1))

		if graph[y][x] == ' ' {
			graph[y][x] = '*'
		} else {
			graph[y][x] = '#'
		}
	}

	for k, row := range graph {
		value := minMag + float64(graphHeight-1-k)/float64(max(graphHeight-1, 1))*(maxMag-minMag)
		fmt.Fprintf(w, "%10.2f |%s|\n", value, string(row))
	}
	fmt.Fprintf(w, "           +%s+\n", strings.Repeat("-", graphWidth))
	fmt.Fprintf(w, "            0%s%d\n", strings.Repeat(" ", max(graphWidth-1-len(fmt.Sprint(len(chips)-1)), 1)), len(chips)-1)
	fmt.Fprintf(w, "\nLegend: * = chip, # = multiple chips, Chip →\n\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
