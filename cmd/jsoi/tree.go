package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/code4ward/JSOI/lookup"
	"github.com/code4ward/JSOI/template"
	"github.com/code4ward/JSOI/tree"
	"github.com/code4ward/JSOI/value"
)

type treeFlags struct {
	VarFiles []string
	Sets     []string
	Out      string
	Format   string
	Converge bool
	JSONPath bool
}

func newTreeCmd(g *globalFlags) *cobra.Command {
	f := &treeFlags{}
	cmd := &cobra.Command{
		Use:   "tree <input>",
		Short: "Interpolate a JSON or YAML document",
		Long: `Interpolate every key and string value of a JSON or YAML document.

Lookups see the members of the enclosing object first, then the values
given with --vars and --set. With a separator configured, keys are paths
into the values ("server.port"); with --jsonpath they are JSONPath
expressions ("$.servers[0].port").`,
		Example: `  jsoi tree deploy.json --vars env.yaml --set Region=eu-west-1
  jsoi tree app.yaml --converge --format json --out app.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, g, f, args[0])
		},
	}
	cmd.Flags().StringArrayVar(&f.VarFiles, "vars", nil, "JSON or YAML file of lookup values (repeatable, later files win)")
	cmd.Flags().StringArrayVar(&f.Sets, "set", nil, "Lookup value as key=value (repeatable, wins over --vars)")
	cmd.Flags().StringVarP(&f.Out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&f.Format, "format", "", "Output format: json or yaml (default from the output or input extension)")
	cmd.Flags().BoolVar(&f.Converge, "converge", false, "Repeat walks until nothing changes")
	cmd.Flags().BoolVar(&f.JSONPath, "jsonpath", false, "Resolve keys as JSONPath expressions")
	return cmd
}

func runTree(cmd *cobra.Command, g *globalFlags, f *treeFlags, input string) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	root, err := readDocument(input)
	if err != nil {
		return err
	}
	vars, err := loadVars(f.VarFiles, f.Sets)
	if err != nil {
		return err
	}

	var values lookup.Context
	switch {
	case f.JSONPath:
		values = lookup.NewJSONPath(vars)
	case cfg.Separator != "":
		values = lookup.NewQuery(vars, cfg.Separator)
	default:
		values = lookup.FromObject(vars)
	}

	i, err := tree.New(root, values, cfg.TreeOptions(
		tree.WithFunctions(template.Functions()),
		tree.WithLogger(logger),
	)...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var res tree.Result
	rounds := 1
	if f.Converge {
		res, rounds, err = i.InterpolateUntilStable(ctx, cfg.MaxRounds)
	} else {
		res, err = i.Interpolate(ctx)
	}
	if err != nil {
		return fmt.Errorf("interpolate %s: %w", input, err)
	}
	logger.Info("interpolated", slog.String("input", input),
		slog.Int("replaced", res.Replaced), slog.Int("rounds", rounds))

	format := f.Format
	if format == "" {
		format = formatOf(f.Out)
		if format == "" {
			format = formatOf(input)
		}
	}
	data, err := encodeDocument(res.Tree, format)
	if err != nil {
		return err
	}

	if f.Out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(f.Out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// formatOf maps a file extension to "json" or "yaml". Unknown extensions
// yield "".
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// readDocument parses a JSON or YAML file, keeping key order. Files without
// a YAML extension are read as JSON.
func readDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v any
	if formatOf(path) == "yaml" {
		v, err = value.ParseYAML(data)
	} else {
		v, err = value.ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

// loadVars merges the objects in files, then applies key=value pairs.
func loadVars(files, sets []string) (*value.Object, error) {
	vars := value.NewObject()
	for _, path := range files {
		v, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		obj, ok := v.(*value.Object)
		if !ok {
			return nil, fmt.Errorf("%s: vars must be an object, got %s", path, value.KindOf(v))
		}
		vars.Merge(obj)
	}
	for _, s := range sets {
		k, v, err := parseSet(s)
		if err != nil {
			return nil, err
		}
		vars.Set(k, v)
	}
	return vars, nil
}

func encodeDocument(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return value.ToYAML(v)
	case "json", "":
		raw, err := value.ToJSON(v)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
			return nil, fmt.Errorf("format json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

