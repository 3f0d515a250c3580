// Package config loads domedit settings from defaults, an optional YAML
// file and DOMEDIT_ environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/domedit/markup"
)

// Sentinel validation errors.
var (
	ErrInvalidResolveURLs = errors.New("invalid URL resolution policy")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrEmptySkipTag       = errors.New("skip tag must not be empty")
)

// Default configuration values.
const (
	DefaultResolveURLs = "none"
	DefaultAnnotate    = false
	DefaultXMLFragment = false
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config holds all domedit settings.
type Config struct {
	Serialization SerializationConfig `mapstructure:"serialization"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// SerializationConfig holds the markup policy used by the CLI.
type SerializationConfig struct {
	ResolveURLs string   `mapstructure:"resolve_urls"`
	SkipTags    []string `mapstructure:"skip_tags"`
	Annotate    bool     `mapstructure:"annotate"`
	XMLFragment bool     `mapstructure:"xml_fragment"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := markup.ParseResolveURLs(c.Serialization.ResolveURLs); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidResolveURLs, c.Serialization.ResolveURLs)
	}
	for _, tag := range c.Serialization.SkipTags {
		if strings.TrimSpace(tag) == "" {
			return ErrEmptySkipTag
		}
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// ResolvePolicy returns the parsed URL policy of a validated config.
func (s SerializationConfig) ResolvePolicy() markup.ResolveURLs {
	policy, _ := markup.ParseResolveURLs(s.ResolveURLs)
	return policy
}

// Fragment returns the markup syntax selected by xml_fragment.
func (s SerializationConfig) Fragment() markup.FragmentSerialization {
	if s.XMLFragment {
		return markup.XMLFragmentSerialization
	}
	return markup.HTMLFragmentSerialization
}

// Apply configures logger from the settings.
func (l LoggingConfig) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}
