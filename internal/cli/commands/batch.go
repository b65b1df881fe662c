package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaptable/internal/cli/config"
	"github.com/leapstack-labs/leaptable/pkg/table"
	"github.com/leapstack-labs/leaptable/pkg/transform"
)

// PanelFile is one panel definition read by the batch command.
type PanelFile struct {
	// Name is the heading printed above the table (default: file name)
	Name string `yaml:"name"`
	// Input is the results file, relative to the panel file
	Input string `yaml:"input"`

	transform.Panel `yaml:",inline"`
}

// LoadPanelFile reads and validates a panel file. A missing transform
// falls back to the configured default.
func LoadPanelFile(path string, defaults config.PanelConfig) (*PanelFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user-supplied panel file
	if err != nil {
		return nil, fmt.Errorf("failed to read panel: %w", err)
	}

	var pf PanelFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%s: invalid panel: %w", path, err)
	}

	if pf.Name == "" {
		pf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if pf.Input == "" {
		return nil, fmt.Errorf("%s: input is required", path)
	}
	if !filepath.IsAbs(pf.Input) {
		pf.Input = filepath.Join(filepath.Dir(path), pf.Input)
	}

	if pf.Transform == "" {
		pf.Transform = transform.Name(defaults.Transform)
	}
	if _, err := transform.ParseName(string(pf.Transform)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &pf, nil
}

// batchResult is the outcome of one panel.
type batchResult struct {
	table *table.Table
	err   error
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <panel.yaml>...",
		Short: "Render several panels concurrently",
		Long: `Run every panel file concurrently and render the tables in the order
the files were given, each under its own heading.

A panel file names its results input and the panel settings:

  name: CPU by host
  input: cpu.json
  transform: timeseries_aggregations
  sort: {col: 1, desc: true}
  columns:
    - {text: Max, value: max}

Failed panels are reported after the successful ones are rendered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			panels := make([]*PanelFile, len(args))
			for i, path := range args {
				if panels[i], err = LoadPanelFile(path, cctx.Cfg.Panel); err != nil {
					return err
				}
			}

			results := make([]batchResult, len(panels))
			var g errgroup.Group
			g.SetLimit(cctx.Cfg.Batch.Concurrency)

			for i, pf := range panels {
				g.Go(func() error {
					logger := cctx.Logger.With("job", uuid.New().String(), "panel", pf.Name)
					start := time.Now()

					rs, err := readResults(cmd, pf.Input)
					if err == nil {
						results[i].table, err = cctx.Engine.Transform(rs, pf.Panel)
					}
					if err != nil {
						results[i].err = fmt.Errorf("panel %q: %w", pf.Name, err)
						logger.Warn("panel failed", "error", err)
						return nil
					}
					logger.Debug("panel done", "rows", results[i].table.Len(), "duration", time.Since(start))
					return nil
				})
			}
			_ = g.Wait()

			var errs []error
			for i, res := range results {
				if res.err != nil {
					errs = append(errs, res.err)
					continue
				}
				cctx.Renderer.Heading(panels[i].Name)
				if err := cctx.Renderer.Table(res.table); err != nil {
					return err
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().Int("concurrency", config.DefaultBatchConcurrency, "Maximum panels transformed at once")
	return cmd
}
