package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/template"
)

type renderFlags struct {
	Watch      bool
	Interval   time.Duration
	RequireAll bool
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <template> <output> <Key1=value1; Key2=value2; ...>",
		Short: "Replace template parameters in a file",
		Long: `Replace {{key}} tags in a UTF-8 text file and write the result.

Parameters are key=value pairs separated by ";". They may span several
arguments, which are joined with spaces. Tags with unknown keys are left
as they are.`,
		Example: `  jsoi render app.conf.tmpl app.conf "Host=example.org; Port=8080"`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRender(cmd, g, f, args)
			if err != nil {
				_ = cmd.Usage()
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&f.Watch, "watch", "w", false, "Render again whenever the template changes")
	cmd.Flags().DurationVar(&f.Interval, "poll-interval", 250*time.Millisecond, "Polling interval when file events are unavailable")
	cmd.Flags().BoolVar(&f.RequireAll, "require-all", false, "Fail when the template uses a key without a parameter")
	return cmd
}

func runRender(cmd *cobra.Command, g *globalFlags, f *renderFlags, args []string) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	r := &renderer{
		in:   args[0],
		out:  args[1],
		vars: parseParams(strings.Join(args[2:], " ")),
		engine: template.New(cfg.TemplateOptions(
			template.WithEnclosureTracking(false),
			template.WithFunctions(template.Functions()),
			template.WithLogger(logger),
		)...),
		requireAll: f.RequireAll,
		logger:     logger,
	}

	ctx := cmd.Context()
	if err := r.render(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "File content written successfully to: %s\n", r.out)
	if !f.Watch {
		return nil
	}

	logger.Info("watching template", slog.String("path", r.in))
	return watchFile(ctx, r.in, f.Interval, logger, func() {
		if err := r.render(ctx); err != nil {
			logger.Error("render failed", slog.String("path", r.in), slog.Any("error", err))
			return
		}
		logger.Info("rendered", slog.String("output", r.out))
	})
}

// renderer renders one template file to one output file.
type renderer struct {
	in, out    string
	vars       map[string]any
	engine     *template.Engine
	requireAll bool
	logger     *slog.Logger
}

func (r *renderer) render(ctx context.Context) error {
	data, err := os.ReadFile(r.in)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	text := string(data)

	if r.requireAll {
		keys, err := r.engine.Variables(text)
		if err != nil {
			return fmt.Errorf("scan template: %w", err)
		}
		if err := template.ValidateVariables(keys, lookup.Map(r.vars)); err != nil {
			return err
		}
	}

	out, err := r.engine.Render(ctx, text, r.vars)
	if err != nil {
		return fmt.Errorf("render %s: %w", r.in, err)
	}
	if err := os.WriteFile(r.out, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	r.logger.Debug("rendered template", slog.String("template", r.in), slog.Int("bytes", len(out)))
	return nil
}
