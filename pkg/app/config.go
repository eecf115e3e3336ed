package app

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFlagName = "config"

// addConfigFlag registers the --config flag used to point the command at a
// configuration file.
func addConfigFlag(basename string, fs *pflag.FlagSet) {
	fs.StringP(configFlagName, "c", "",
		fmt.Sprintf("Path to the %s configuration file (YAML, JSON, or TOML).", basename))
}

// applyConfig merges the configuration file and environment variables into
// the option struct. Explicitly set command line flags keep the highest
// precedence, followed by environment variables, the config file, and
// finally the flag defaults.
func applyConfig(basename string, fs *pflag.FlagSet, opts NamedFlagSetOptions) error {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(strings.ReplaceAll(strings.ToUpper(basename), "-", "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfgFile, err := fs.GetString(configFlagName)
	if err != nil {
		return err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	}

	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("unmarshal configuration: %w", err)
	}

	return nil
}
