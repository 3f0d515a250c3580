package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".domedit"

const configType = "yaml"

// envPrefix is the environment variable prefix for domedit settings.
const envPrefix = "DOMEDIT"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty it names the config file, which must exist.
// Otherwise .domedit.yaml is searched in the working directory and $HOME,
// and a missing file means defaults only.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("serialization.resolve_urls", DefaultResolveURLs)
	v.SetDefault("serialization.annotate", DefaultAnnotate)
	v.SetDefault("serialization.xml_fragment", DefaultXMLFragment)
	v.SetDefault("serialization.skip_tags", []string{})

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
