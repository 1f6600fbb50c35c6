// Package config resolves global CLI settings from a .env file, the
// awsutils config file and AWSUTILS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. AWSUTILS_MAX_PAGES.
	EnvPrefix = "AWSUTILS"
	// FileName is the config file searched for in the working directory and $HOME.
	FileName = ".awsutils"
	// DefaultEnvFile is loaded when present and --env-file is not set.
	DefaultEnvFile = ".env"
)

// Keys lists the persistent flags that may come from the environment or the config file.
var Keys = []string{
	"profile",
	"region",
	"output",
	"no-confirm",
	"max-pages",
	"timeout",
	"allow-partial",
	"log-level",
	"log-format",
}

// LoadOptions points Load at explicit files.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Load resolves every key in Keys and writes the result into the matching
// flag unless the user set that flag explicitly. Precedence is flag, then
// environment, then config file, then flag default.
//
// It returns the config file that was read, or "" when none was found.
func Load(flags *pflag.FlagSet, opts LoadOptions) (string, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return "", err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return "", fmt.Errorf("read config file: %w", err)
		}
	}

	for _, key := range Keys {
		flag := flags.Lookup(key)
		if flag == nil || flag.Changed || !v.IsSet(key) {
			continue
		}
		if err := flags.Set(key, v.GetString(key)); err != nil {
			return "", fmt.Errorf("apply %s from config: %w", key, err)
		}
	}

	return v.ConfigFileUsed(), nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}
