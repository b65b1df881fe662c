package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/internal/cli/config"
	"github.com/leapstack-labs/leaptable/internal/cli/output"
	starctx "github.com/leapstack-labs/leaptable/internal/starlark"
	"github.com/leapstack-labs/leaptable/pkg/aggregate"
	"github.com/leapstack-labs/leaptable/pkg/source"
	"github.com/leapstack-labs/leaptable/pkg/transform"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *transform.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an engine whose registry
// holds the built-in and configured aggregations.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cctx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cctx.Cfg, cctx.Logger)
	if err != nil {
		return nil, err
	}
	cctx.Engine = eng
	return cctx, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*transform.Engine, error) {
	reg := aggregate.NewRegistry()

	scripts, err := loadScripts(cfg.Aggregations)
	if err != nil {
		return nil, err
	}
	if len(scripts) > 0 {
		compiler := starctx.NewCompiler(starctx.CompilerConfig{Logger: logger})
		if err := compiler.Register(reg, scripts...); err != nil {
			return nil, err
		}
		logger.Debug("registered scripted aggregations", "count", len(scripts))
	}

	return transform.New(transform.Config{
		Aggregations: reg,
		Logger:       logger,
	}), nil
}

// loadScripts reads the configured aggregation scripts in key order.
func loadScripts(aggs map[string]config.AggregationConfig) ([]starctx.Script, error) {
	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	scripts := make([]starctx.Script, 0, len(keys))
	for _, k := range keys {
		a := aggs[k]
		s := starctx.Script{Key: k, Text: a.Text, Source: a.Script}
		if a.File != "" {
			data, err := os.ReadFile(a.File)
			if err != nil {
				return nil, fmt.Errorf("aggregations.%s: %w", k, err)
			}
			s.Source = string(data)
			s.Filename = filepath.Base(a.File)
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// readResults decodes a results file. "-" reads stdin.
func readResults(cmd *cobra.Command, path string) (source.ResultSet, error) {
	if path == "-" {
		rs, err := source.Decode(cmd.InOrStdin())
		if err != nil {
			return source.ResultSet{}, fmt.Errorf("stdin: %w", err)
		}
		return rs, nil
	}

	f, err := os.Open(path) //nolint:gosec // path is a user-supplied input file
	if err != nil {
		return source.ResultSet{}, fmt.Errorf("failed to open results: %w", err)
	}
	defer func() { _ = f.Close() }()

	rs, err := source.Decode(f)
	if err != nil {
		return source.ResultSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// effectivePanel builds the panel from config, with --column flags
// replacing the configured column selection.
func effectivePanel(cfg *config.Config, columnFlags []string) (transform.Panel, error) {
	pc := cfg.Panel
	if len(columnFlags) > 0 {
		pc.Columns = make([]config.ColumnConfig, 0, len(columnFlags))
		for _, f := range columnFlags {
			c, err := config.ParseColumnFlag(f)
			if err != nil {
				return transform.Panel{}, err
			}
			pc.Columns = append(pc.Columns, c)
		}
	}
	return pc.TransformPanel()
}

// addPanelFlags registers the flags that override panel.* config keys.
func addPanelFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("transform", "t", "", "Transform to apply (see 'leaptable transforms')")
	cmd.Flags().Int("sort-col", 0, "Sort output rows by this column index")
	cmd.Flags().Bool("sort-desc", false, "Sort descending")
	cmd.Flags().StringArrayP("column", "c", nil, "Select a column as text=value (aggregation key or document path); repeatable")

	_ = cmd.RegisterFlagCompletionFunc("transform", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := transform.Names()
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = n.String()
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}
