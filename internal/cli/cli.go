// Package cli holds the viper wiring shared by the qosst commands.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"qosst-scope/internal/failure"
)

// ReadConfig points viper at cfgFile, or at ./config.yaml when cfgFile is
// empty, loads ./.env and enables QOSST_ environment overrides. It returns
// the path of the file that was read, or "" when no default config exists.
// A file given explicitly must exist and parse.
func ReadConfig(cfgFile string) (string, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// Variables from ./.env are visible to AutomaticEnv, the real
	// environment wins
	_ = godotenv.Load()

	// QOSST_FRAME_ZC_LENGTH overrides frame.zc_length and so on
	viper.SetEnvPrefix("QOSST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: failed to read config file: %w", failure.ErrConfig, err)
	}
	return viper.ConfigFileUsed(), nil
}

// BindFlags binds each viper key to the flag of the given name
func BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("%w: no flag --%s to bind to %s", failure.ErrConfig, name, key)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("%w: failed to bind --%s to %s: %w", failure.ErrConfig, name, key, err)
		}
	}
	return nil
}
