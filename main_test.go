package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/failure"
	"qosst-scope/internal/symbols"
)

// setupTable writes a capture of n ramp samples and the given symbol rows
// into a temp dir and points the configuration at them
func setupTable(t *testing.T, n int, table [][]float64) string {
	t.Helper()
	dir := t.TempDir()

	c := make(capture.Capture, n)
	for k := range c {
		c[k] = capture.Sample{I: int16(k)}
	}
	require.NoError(t, capture.NewWriter().WriteFile(filepath.Join(dir, "out_iq.bin"), c))
	require.NoError(t, symbols.WriteFile(filepath.Join(dir, "out_symbols.tsv"), table))

	viper.Set("input.iq_file", filepath.Join(dir, "out_iq.bin"))
	viper.Set("input.symbols_file", filepath.Join(dir, "out_symbols.tsv"))
	viper.Set("output.image_file", filepath.Join(dir, "output.png"))
	t.Cleanup(viper.Reset)
	return dir
}

// setup writes a capture of n ramp samples and rows symbol rows into a temp
// dir and points the configuration at them
func setup(t *testing.T, n, rows int) string {
	t.Helper()
	table := make([][]float64, rows)
	for k := range table {
		table[k] = []float64{1.0, -1.0}
	}
	return setupTable(t, n, table)
}

// captureLog redirects the run log into a buffer for the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logOutput = &buf
	t.Cleanup(func() { logOutput = os.Stderr })
	return &buf
}

// useConfigFile writes content as the config file and runs the cobra
// initializer against it
func useConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, "qosst.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfgFile = path
	t.Cleanup(func() {
		cfgFile = ""
		configErr = nil
	})
	initConfig()
}

func TestRunPlotWritesImage(t *testing.T) {
	dir := setup(t, 3989*40+25*20, 25)

	require.NoError(t, runPlot())

	info, err := os.Stat(filepath.Join(dir, "output.png"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunPlotShortCaptureWritesNothing(t *testing.T) {
	dir := setup(t, 3989*40+25*20-1, 25)

	err := runPlot()
	assert.ErrorIs(t, err, failure.ErrBounds)
	assert.NoFileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotTooFewSymbols(t *testing.T) {
	dir := setup(t, 3989*40+25*20, 24)

	err := runPlot()
	assert.ErrorIs(t, err, failure.ErrFormat)
	assert.NoFileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotMissingInput(t *testing.T) {
	dir := setup(t, 10, 25)
	require.NoError(t, os.Remove(filepath.Join(dir, "out_iq.bin")))

	err := runPlot()
	assert.ErrorIs(t, err, failure.ErrMissingFile)
	assert.Equal(t, "missing-file", failure.Kind(err))
	assert.NoFileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotSmallFrameFromConfig(t *testing.T) {
	dir := setup(t, 8*2+3*4, 3)
	viper.Set("frame.zc_length", 8)
	viper.Set("frame.decimation", 2)
	viper.Set("frame.num_symbols", 3)
	viper.Set("frame.symbol_span", 4)

	require.NoError(t, runPlot())
	assert.FileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotRejectsInvalidConstants(t *testing.T) {
	setup(t, 10, 25)
	viper.Set("frame.decimation", 0)

	assert.ErrorIs(t, runPlot(), failure.ErrConfig)
}

func TestRunPlotWritesMetrics(t *testing.T) {
	dir := setup(t, 3989*40+25*20-1, 25)
	metricsFile := filepath.Join(dir, "qosst.prom")
	viper.Set("output.metrics_file", metricsFile)

	require.Error(t, runPlot())

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `qosst_run_success{tool="qosst-plot"} 0`)
	assert.Contains(t, string(content), `qosst_run_failure{kind="bounds",tool="qosst-plot"} 1`)
}

func TestRunPlotMalformedConfigFile(t *testing.T) {
	dir := setup(t, 3989*40+25*20, 25)
	useConfigFile(t, dir, "frame:\n  zc_length: [3989\n")

	err := runPlot()
	assert.ErrorIs(t, err, failure.ErrConfig)
	assert.Equal(t, "config", failure.Kind(err))
	assert.NoFileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotMissingConfigFile(t *testing.T) {
	dir := setup(t, 3989*40+25*20, 25)
	cfgFile = filepath.Join(dir, "absent.yaml")
	t.Cleanup(func() {
		cfgFile = ""
		configErr = nil
	})
	initConfig()

	assert.ErrorIs(t, runPlot(), failure.ErrConfig)
	assert.NoFileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotReadsConfigFile(t *testing.T) {
	dir := setup(t, 8*2+3*4, 3)
	useConfigFile(t, dir, "frame:\n  zc_length: 8\n  decimation: 2\n  num_symbols: 3\n  symbol_span: 4\n")

	require.NoError(t, runPlot())
	assert.FileExists(t, filepath.Join(dir, "output.png"))
}

func TestRunPlotWarnsOnExtraColumns(t *testing.T) {
	table := make([][]float64, 25)
	for k := range table {
		table[k] = []float64{1.0, -1.0, 0.5}
	}
	dir := setupTable(t, 3989*40+25*20, table)
	buf := captureLog(t)

	require.NoError(t, runPlot())
	assert.FileExists(t, filepath.Join(dir, "output.png"))
	assert.Contains(t, buf.String(), "extra columns")
	assert.Contains(t, buf.String(), "columns=3")
}

func TestRunPlotTwoColumnsNoWarning(t *testing.T) {
	setup(t, 3989*40+25*20, 25)
	buf := captureLog(t)

	require.NoError(t, runPlot())
	assert.NotContains(t, buf.String(), "extra columns")
}
