// QOSST Plot - synchronization diagnostic for captured CV-QKD frames
// This program loads a raw I/Q capture and its decoded symbol table and
// renders the ZC preamble and the first symbols into a two-panel PNG.
package main

import (
	"fmt"
	"io"
	"os"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/cli"
	"qosst-scope/internal/config"
	"qosst-scope/internal/failure"
	"qosst-scope/internal/frame"
	"qosst-scope/internal/logging"
	"qosst-scope/internal/metrics"
	"qosst-scope/internal/render"
	"qosst-scope/internal/symbols"
	"qosst-scope/internal/version"

	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command line flag variables
var (
	cfgFile     string // Configuration file path
	verbose     bool   // Enable verbose logging
	printConfig bool   // Print the effective configuration and exit
	showVersion bool   // Print version information and exit

	configErr error // Set by initConfig when the config file cannot be read

	logOutput io.Writer = os.Stderr // Destination of the run log
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qosst-plot",
	Short: "Render the synchronization diagnostic of a captured frame",
	Long: `QOSST Plot loads a raw interleaved int16 I/Q capture and the matching
decoded-symbol table and renders two stacked panels into a PNG:

  Sync sequence   the ZC preamble, one sample per chip
  First symbols   the samples after the preamble with the decoded
                  symbols overlaid as stem markers

Any missing file, malformed input or short capture aborts the run before
the image is written.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("QOSST Plot"))
			return
		}

		if err := runPlot(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if verbose {
				fmt.Fprintf(os.Stderr, "Kind: %s\n%s", failure.Kind(err), xerrors.Sprint(err))
			}
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Input and output files
	rootCmd.Flags().String("iq", defaults.Input.IQFile, "raw interleaved int16 I/Q capture")
	rootCmd.Flags().String("symbols", defaults.Input.SymbolsFile, "decoded symbol table")
	rootCmd.Flags().StringP("output", "o", defaults.Output.ImageFile, "output PNG file (overwritten)")
	rootCmd.Flags().Int("width", defaults.Output.Width, "image width in pixels")
	rootCmd.Flags().Int("height", defaults.Output.Height, "image height in pixels")
	rootCmd.Flags().String("metrics-file", defaults.Output.MetricsFile, "write Prometheus textfile metrics of the run to this file")

	// Frame constants
	rootCmd.Flags().Int("zc-length", defaults.Frame.ZCLength, "ZC preamble length in chips")
	rootCmd.Flags().Int("decimation", defaults.Frame.Decimation, "samples per ZC chip")
	rootCmd.Flags().Int("num-symbols", defaults.Frame.NumSymbols, "symbols drawn in the second panel")
	rootCmd.Flags().Int("symbol-span", defaults.Frame.SymbolSpan, "samples per symbol")

	rootCmd.Flags().String("log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&printConfig, "print-config", false, "print the effective configuration as YAML and exit")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")

	// Bind command line flags to viper configuration keys
	if err := cli.BindFlags(rootCmd.Flags(), map[string]string{
		"input.iq_file":       "iq",
		"input.symbols_file":  "symbols",
		"output.image_file":   "output",
		"output.width":        "width",
		"output.height":       "height",
		"output.metrics_file": "metrics-file",
		"frame.zc_length":     "zc-length",
		"frame.decimation":    "decimation",
		"frame.num_symbols":   "num-symbols",
		"frame.symbol_span":   "symbol-span",
		"logging.level":       "log-level",
	}); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set. A read error is
// kept for runPlot so the run fails instead of silently using defaults.
func initConfig() {
	var used string
	used, configErr = cli.ReadConfig(cfgFile)
	if used != "" && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", failure.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runPlot is the main application logic
func runPlot() (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if printConfig {
		return cfg.Dump(os.Stdout)
	}

	logger, err := logging.New(logOutput, "qosst-plot", cfg.Logging, verbose)
	if err != nil {
		return err
	}

	run := metrics.NewRun("qosst-plot")
	if cfg.Output.MetricsFile != "" {
		defer func() {
			run.Finish(err)
			if werr := run.WriteFile(cfg.Output.MetricsFile); werr != nil {
				logger.Warn("Metrics not written", "file", cfg.Output.MetricsFile, "err", werr)
			}
		}()
	}

	layout, err := frame.NewLayout(cfg.Frame)
	if err != nil {
		return err
	}
	logger.Debug("Frame layout", "layout", layout.String())

	var samples capture.Capture
	err = run.Stage("load_capture", func() error {
		samples, err = capture.ReadFile(cfg.Input.IQFile)
		return err
	})
	if err != nil {
		return xerrors.New(err)
	}
	run.SetSamples(samples.Len())
	logger.Info("Loaded capture", "file", cfg.Input.IQFile, "samples", samples.Len())

	var table *symbols.Table
	err = run.Stage("load_symbols", func() error {
		table, err = symbols.ReadFile(cfg.Input.SymbolsFile, cfg.Frame.NumSymbols)
		return err
	})
	if err != nil {
		return xerrors.New(err)
	}
	run.SetSymbols(table.Len())
	logger.Info("Loaded symbols", "file", cfg.Input.SymbolsFile, "rows", table.Len(), "columns", table.Width)
	if table.Width > 2 {
		logger.Warn("Symbol table has extra columns, plotting only the first two",
			"file", cfg.Input.SymbolsFile, "columns", table.Width)
	}

	fig, err := render.Build(samples, table, layout)
	if err != nil {
		return xerrors.New(err)
	}

	opts := render.Options{
		Width:   cfg.Output.Width,
		Height:  cfg.Output.Height,
		Caption: fmt.Sprintf("%s | %s", cfg.Input.IQFile, layout.String()),
	}
	logger.Debug("Rendering", "width", opts.Width, "height", opts.Height)
	err = run.Stage("render", func() error {
		return render.WriteFile(cfg.Output.ImageFile, fig, opts)
	})
	if err != nil {
		return xerrors.New(err)
	}

	logger.Info("Wrote diagnostic", "file", cfg.Output.ImageFile)
	return nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
