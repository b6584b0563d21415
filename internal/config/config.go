// Package config provides configuration structures and defaults for QOSST Scope
package config

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"qosst-scope/internal/failure"
)

// Config represents the complete application configuration
type Config struct {
	Frame   FrameConfig   `mapstructure:"frame" yaml:"frame"`     // Frame layout shared by slicing and rendering
	Input   InputConfig   `mapstructure:"input" yaml:"input"`     // Input file locations
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`   // Diagnostic image settings
	Synth   SynthConfig   `mapstructure:"synth" yaml:"synth"`     // Synthetic frame generator settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"` // Logging configuration
}

// FrameConfig holds the constants that tie this tool to the upstream generator.
// They must match whatever produced the capture.
type FrameConfig struct {
	ZCLength   int `mapstructure:"zc_length" yaml:"zc_length"`     // Synchronization sequence length in chips
	Decimation int `mapstructure:"decimation" yaml:"decimation"`   // Samples per ZC chip
	NumSymbols int `mapstructure:"num_symbols" yaml:"num_symbols"` // Symbols shown after the sync region
	SymbolSpan int `mapstructure:"symbol_span" yaml:"symbol_span"` // Samples per symbol
}

// InputConfig contains the paths of the two upstream artifacts
type InputConfig struct {
	IQFile      string `mapstructure:"iq_file" yaml:"iq_file"`           // Interleaved int16 I/Q capture
	SymbolsFile string `mapstructure:"symbols_file" yaml:"symbols_file"` // Whitespace-separated symbol table
}

// OutputConfig contains the diagnostic image settings
type OutputConfig struct {
	ImageFile string `mapstructure:"image_file" yaml:"image_file"` // PNG destination, overwritten on every run
	Width     int    `mapstructure:"width" yaml:"width"`           // Image width in pixels
	Height    int    `mapstructure:"height" yaml:"height"`         // Image height in pixels (both panels)

	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"` // Prometheus textfile written after each run, empty to disable
}

// SynthConfig contains the synthetic frame generator parameters
type SynthConfig struct {
	ZCRoot         int     `mapstructure:"zc_root" yaml:"zc_root"`                   // ZC root index
	ZCShift        int     `mapstructure:"zc_shift" yaml:"zc_shift"`                 // ZC cyclic shift
	Amplitude      float64 `mapstructure:"amplitude" yaml:"amplitude"`               // Peak amplitude of the preamble
	NumSymbols     int     `mapstructure:"num_symbols" yaml:"num_symbols"`           // Data symbols to generate
	NumNullSymbols int     `mapstructure:"num_null_symbols" yaml:"num_null_symbols"` // Zero symbols appended after the data
	SymbolScale    float64 `mapstructure:"symbol_scale" yaml:"symbol_scale"`         // Standard deviation of each symbol component
	SymbolMaxValue int     `mapstructure:"symbol_max_value" yaml:"symbol_max_value"` // Clamp limit when SymbolClamp is set
	SymbolClamp    bool    `mapstructure:"symbol_clamp" yaml:"symbol_clamp"`         // Clamp symbols to SymbolMaxValue
	RRCRollOff     float64 `mapstructure:"rrc_roll_off" yaml:"rrc_roll_off"`         // Root raised cosine roll-off, 0 holds each symbol
	RRCSpan        int     `mapstructure:"rrc_span" yaml:"rrc_span"`                 // Pulse length in symbols
	Seed           uint64  `mapstructure:"seed" yaml:"seed"`                         // Random seed
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // Log level (debug, info, warn, error)
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Frame: FrameConfig{
			ZCLength:   3989, // Prime length ZC preamble
			Decimation: 40,   // 2 GSps DAC / 50 MHz ZC rate
			NumSymbols: 25,   // Symbols shown in the second panel
			SymbolSpan: 20,   // 2 GSps DAC / 100 MBd symbol rate
		},
		Input: InputConfig{
			IQFile:      "out_iq.bin",
			SymbolsFile: "out_symbols.tsv",
		},
		Output: OutputConfig{
			ImageFile: "output.png",
			Width:     800,
			Height:    400,
		},
		Synth: SynthConfig{
			ZCRoot:         5,
			ZCShift:        0,
			Amplitude:      32767 * 0.70710678118,
			NumSymbols:     1000,
			NumNullSymbols: 10,
			SymbolScale:    7500,
			SymbolMaxValue: 0x5fff,
			SymbolClamp:    false,
			RRCRollOff:     0.3,
			RRCSpan:        11,
			Seed:           1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks that the frame constants and output settings are usable
func (c *Config) Validate() error {
	if err := c.Frame.Validate(); err != nil {
		return err
	}
	if c.Output.Width < 100 || c.Output.Height < 100 {
		return fmt.Errorf("%w: image size %dx%d is too small (minimum 100x100)",
			failure.ErrConfig, c.Output.Width, c.Output.Height)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level %q (must be debug, info, warn or error)",
			failure.ErrConfig, c.Logging.Level)
	}
	return nil
}

// Validate checks that every frame constant is positive
func (f FrameConfig) Validate() error {
	if f.ZCLength <= 0 {
		return fmt.Errorf("%w: zc_length must be positive, got %d", failure.ErrConfig, f.ZCLength)
	}
	if f.Decimation <= 0 {
		return fmt.Errorf("%w: decimation must be positive, got %d", failure.ErrConfig, f.Decimation)
	}
	if f.NumSymbols <= 0 {
		return fmt.Errorf("%w: num_symbols must be positive, got %d", failure.ErrConfig, f.NumSymbols)
	}
	if f.SymbolSpan <= 0 {
		return fmt.Errorf("%w: symbol_span must be positive, got %d", failure.ErrConfig, f.SymbolSpan)
	}
	return nil
}

// ValidateSynth checks the generator parameters against the frame layout
func (c *Config) ValidateSynth() error {
	if err := c.Frame.Validate(); err != nil {
		return err
	}
	s := c.Synth
	if s.ZCRoot <= 0 || s.ZCRoot >= c.Frame.ZCLength {
		return fmt.Errorf("%w: zc_root must be in [1, %d), got %d", failure.ErrConfig, c.Frame.ZCLength, s.ZCRoot)
	}
	if s.ZCShift < 0 {
		return fmt.Errorf("%w: zc_shift must not be negative, got %d", failure.ErrConfig, s.ZCShift)
	}
	if s.Amplitude <= 0 || s.Amplitude > 32767 {
		return fmt.Errorf("%w: amplitude must be in (0, 32767], got %g", failure.ErrConfig, s.Amplitude)
	}
	if s.NumSymbols < c.Frame.NumSymbols {
		return fmt.Errorf("%w: synth.num_symbols (%d) must be at least frame.num_symbols (%d)",
			failure.ErrConfig, s.NumSymbols, c.Frame.NumSymbols)
	}
	if s.NumNullSymbols < 0 {
		return fmt.Errorf("%w: num_null_symbols must not be negative, got %d", failure.ErrConfig, s.NumNullSymbols)
	}
	if s.SymbolScale < 0 {
		return fmt.Errorf("%w: symbol_scale must not be negative, got %g", failure.ErrConfig, s.SymbolScale)
	}
	if s.SymbolMaxValue <= 0 || s.SymbolMaxValue > 32767 {
		return fmt.Errorf("%w: symbol_max_value must be in (0, 32767], got %d", failure.ErrConfig, s.SymbolMaxValue)
	}
	if !(s.RRCRollOff >= 0 && s.RRCRollOff <= 1) {
		return fmt.Errorf("%w: rrc_roll_off must be in [0, 1], got %g", failure.ErrConfig, s.RRCRollOff)
	}
	if s.RRCSpan <= 0 {
		return fmt.Errorf("%w: rrc_span must be positive, got %d", failure.ErrConfig, s.RRCSpan)
	}
	return nil
}

// Dump writes the configuration as YAML
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
