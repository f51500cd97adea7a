package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/code4ward/JSOI/config"
)

// globalFlags holds flags available to all commands.
type globalFlags struct {
	ConfigFile string
	LogLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "jsoi",
		Short: "Interpolate {{key}} tags in files and JSON/YAML trees",
		Long: `jsoi replaces {{key}} tags with values.

Text files are rendered with "jsoi render"; JSON and YAML documents are
interpolated key by key with "jsoi tree", including function tags,
copy commands and conditional keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.ConfigFile, "config", "", "Path to config file (TOML, YAML or JSON)")
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level (debug|info|warn|error), overrides the config")

	cmd.AddCommand(newRenderCmd(g), newTreeCmd(g), newSchemaCmd())
	return cmd
}

// load builds the effective configuration: defaults, then the config file,
// then JSOI_ variables, then flags.
func (g *globalFlags) load() (config.Config, error) {
	cfg := config.Default()
	if g.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(g.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg.LoadFromEnv()
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger writes text logs to w at the configured level.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Schema()
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
