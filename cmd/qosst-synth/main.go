// QOSST Synth - synthetic frame generator
// This program writes a raw I/Q capture and the matching symbol table in the
// formats read by qosst-plot and qosst-reader: a Zadoff-Chu preamble followed
// by Gaussian symbols and a zero tail.
package main

import (
	"fmt"
	"io"
	"os"

	"qosst-scope/internal/cli"
	"qosst-scope/internal/config"
	"qosst-scope/internal/failure"
	"qosst-scope/internal/logging"
	"qosst-scope/internal/synth"
	"qosst-scope/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	verbose     bool
	printConfig bool
	showVersion bool

	configErr error
	logOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "qosst-synth",
	Short: "Generate a synthetic frame and its symbol table",
	Long: `QOSST Synth writes a synthetic frame for testing the diagnostic tools.

The capture holds the ZC preamble (each chip repeated --decimation times),
then --num-symbols Gaussian symbols spaced --symbol-span samples apart and
--null-symbols zero symbols. The symbols are shaped by a root raised cosine
pulse (--rrc-roll-off), or held for the whole symbol period when the
roll-off is 0. The symbol table lists every symbol, null tail included, as
tab-separated I and Q integers. The same --seed always yields the same files.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("QOSST Synth"))
			return
		}

		if err := runSynth(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().String("iq", defaults.Input.IQFile, "capture file to write")
	rootCmd.Flags().String("symbols", defaults.Input.SymbolsFile, "symbol table to write")

	rootCmd.Flags().Int("zc-length", defaults.Frame.ZCLength, "ZC preamble length in chips")
	rootCmd.Flags().Int("decimation", defaults.Frame.Decimation, "samples per ZC chip")
	rootCmd.Flags().Int("symbol-span", defaults.Frame.SymbolSpan, "samples per symbol")
	rootCmd.Flags().Int("frame-num-symbols", defaults.Frame.NumSymbols, "symbols shown by qosst-plot, --num-symbols must not be smaller")

	rootCmd.Flags().Int("zc-root", defaults.Synth.ZCRoot, "ZC root index")
	rootCmd.Flags().Int("zc-shift", defaults.Synth.ZCShift, "ZC cyclic shift")
	rootCmd.Flags().Float64("amplitude", defaults.Synth.Amplitude, "preamble amplitude")
	rootCmd.Flags().Int("num-symbols", defaults.Synth.NumSymbols, "number of data symbols")
	rootCmd.Flags().Int("null-symbols", defaults.Synth.NumNullSymbols, "number of zero tail symbols")
	rootCmd.Flags().Float64("symbol-scale", defaults.Synth.SymbolScale, "standard deviation of each symbol component")
	rootCmd.Flags().Int("symbol-max", defaults.Synth.SymbolMaxValue, "clamp limit used with --clamp")
	rootCmd.Flags().Bool("clamp", defaults.Synth.SymbolClamp, "clamp symbols to --symbol-max")
	rootCmd.Flags().Float64("rrc-roll-off", defaults.Synth.RRCRollOff, "roll-off of the root raised cosine pulse, 0 holds each symbol")
	rootCmd.Flags().Int("rrc-span", defaults.Synth.RRCSpan, "length of the root raised cosine pulse in symbols")
	rootCmd.Flags().Uint64("seed", defaults.Synth.Seed, "random seed")

	rootCmd.Flags().String("log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&printConfig, "print-config", false, "print the effective configuration as YAML and exit")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")

	if err := bindFlags(); err != nil {
		panic(err)
	}
}

// flagKeys maps each configuration key to the flag that overrides it
var flagKeys = map[string]string{
	"input.iq_file":          "iq",
	"input.symbols_file":     "symbols",
	"frame.zc_length":        "zc-length",
	"frame.decimation":       "decimation",
	"frame.num_symbols":      "frame-num-symbols",
	"frame.symbol_span":      "symbol-span",
	"synth.zc_root":          "zc-root",
	"synth.zc_shift":         "zc-shift",
	"synth.amplitude":        "amplitude",
	"synth.num_symbols":      "num-symbols",
	"synth.num_null_symbols": "null-symbols",
	"synth.symbol_scale":     "symbol-scale",
	"synth.symbol_max_value": "symbol-max",
	"synth.symbol_clamp":     "clamp",
	"synth.rrc_roll_off":     "rrc-roll-off",
	"synth.rrc_span":         "rrc-span",
	"synth.seed":             "seed",
	"logging.level":          "log-level",
}

func bindFlags() error {
	return cli.BindFlags(rootCmd.Flags(), flagKeys)
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	var used string
	used, configErr = cli.ReadConfig(cfgFile)
	if used != "" && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
	}
}

func runSynth() error {
	if configErr != nil {
		return configErr
	}
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("%w: failed to unmarshal config: %w", failure.ErrConfig, err)
	}

	if printConfig {
		return cfg.Dump(os.Stdout)
	}

	logger, err := logging.New(logOutput, "qosst-synth", cfg.Logging, verbose)
	if err != nil {
		return err
	}

	g, err := synth.NewGenerator(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Generating frame",
		"zc_length", cfg.Frame.ZCLength,
		"zc_root", cfg.Synth.ZCRoot,
		"symbols", cfg.Synth.NumSymbols,
		"rrc_roll_off", cfg.Synth.RRCRollOff,
		"seed", cfg.Synth.Seed)

	if _, err := g.WriteFiles(cfg.Input.IQFile, cfg.Input.SymbolsFile); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
