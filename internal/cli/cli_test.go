package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosst-scope/internal/failure"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadConfigExplicitFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "qosst.yaml")
	writeFile(t, path, "frame:\n  zc_length: 63\n")

	used, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 63, viper.GetInt("frame.zc_length"))
}

func TestReadConfigMalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "qosst.yaml")
	writeFile(t, path, "frame:\n  zc_length: [63\n")

	_, err := ReadConfig(path)
	assert.ErrorIs(t, err, failure.ErrConfig)
}

func TestReadConfigMissingExplicitFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, failure.ErrConfig)
}

func TestReadConfigNoDefaultFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	used, err := ReadConfig("")
	require.NoError(t, err)
	assert.Empty(t, used)
}

func TestReadConfigMalformedDefaultFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "config.yaml"), "frame: [\n")

	_, err := ReadConfig("")
	assert.ErrorIs(t, err, failure.ErrConfig)
}

func TestReadConfigLoadsDotEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "QOSST_FRAME_DECIMATION=7\n")
	t.Setenv("QOSST_FRAME_DECIMATION", "")
	require.NoError(t, os.Unsetenv("QOSST_FRAME_DECIMATION"))

	_, err := ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, viper.GetInt("frame.decimation"))
}

func TestBindFlags(t *testing.T) {
	t.Cleanup(viper.Reset)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("zc-length", 3989, "")
	require.NoError(t, flags.Parse([]string{"--zc-length", "127"}))

	require.NoError(t, BindFlags(flags, map[string]string{"frame.zc_length": "zc-length"}))
	assert.Equal(t, 127, viper.GetInt("frame.zc_length"))
}

func TestBindFlagsUnknownFlag(t *testing.T) {
	t.Cleanup(viper.Reset)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("zc-length", 3989, "")

	err := BindFlags(flags, map[string]string{"frame.num_symbols": "num-symbol"})
	assert.ErrorIs(t, err, failure.ErrConfig)
	assert.Contains(t, err.Error(), "num-symbol")
}
