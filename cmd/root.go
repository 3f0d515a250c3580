// Package cmd implements the domedit command line.
package cmd

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heathj/domedit/config"
)

var headingStyle = color.New(color.Bold, color.FgHiBlue)

// rootOptions carries the persistent flags and the configuration loaded
// from them before any subcommand runs.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg *config.Config
}

// NewRootCommand builds the domedit command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "domedit",
		Short: "Edit document trees through live ranges and serialize them to markup",
		Long: `domedit parses an HTML or XML file, applies range operations to it
(clone, extract, delete) and writes the result back out as markup.

Node paths are child indexes from the document, for example /0/1/0.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default .domedit.yaml in . or $HOME)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level, overrides logging.level")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text|json), overrides logging.format")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored headings")

	root.AddCommand(newSerializeCommand(opts))
	root.AddCommand(newRangeCommand(opts))
	root.AddCommand(newVersionCommand())

	return root
}

func (o *rootOptions) load() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Logging.Apply(logrus.StandardLogger()); err != nil {
		return err
	}
	if o.noColor {
		headingStyle.DisableColor()
	}

	logrus.WithFields(logrus.Fields{
		"config":       o.configPath,
		"resolve_urls": cfg.Serialization.ResolveURLs,
	}).Debug("configuration loaded")
	o.cfg = cfg
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
