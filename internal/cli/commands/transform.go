package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/internal/cli/output"
)

// watchDebounce is how long the watcher waits for writes to settle.
const watchDebounce = 100 * time.Millisecond

// NewTransformCommand creates the transform command.
func NewTransformCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "transform <results.json>",
		Short: "Transform query results into a table",
		Long: `Decode a query results file and render it as one normalized table.

The panel (transform, sort and column selection) comes from leaptable.yaml,
LEAPTABLE_PANEL__* environment variables and the flags below. Pass "-" to
read results from stdin.`,
		Example: `  # Pivot series into one column per target
  leaptable transform results.json -t timeseries_to_columns

  # Aggregate series, biggest max first
  leaptable transform results.json -t timeseries_aggregations -c Max=max -c Avg=avg --sort-col 1 --sort-desc

  # Flatten documents, re-rendering on every change
  leaptable transform docs.json -t json --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, _ := cmd.Flags().GetStringArray("column")
			if !watch {
				return runTransform(cmd, args[0], columns)
			}
			if args[0] == "-" {
				return fmt.Errorf("--watch needs a results file, not stdin")
			}
			return watchTransform(cmd, args[0], columns)
		},
	}

	addPanelFlags(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever the results file changes")

	return cmd
}

func runTransform(cmd *cobra.Command, path string, columns []string) error {
	cctx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	panel, err := effectivePanel(cctx.Cfg, columns)
	if err != nil {
		return err
	}

	rs, err := readResults(cmd, path)
	if err != nil {
		return err
	}

	t, err := cctx.Engine.Transform(rs, panel)
	if err != nil {
		return err
	}
	return cctx.Renderer.Table(t)
}

// watchTransform renders once, then again after every settled change to
// path until interrupted. Errors after the first render are reported and
// the watch continues.
func watchTransform(cmd *cobra.Command, path string, columns []string) error {
	if err := runTransform(cmd, path, columns); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	cctx := NewCommandContextWithoutEngine(cmd)
	cctx.Logger.Debug("watching results file", "path", abs)
	cctx.Renderer.Info("Watching %s for changes (Ctrl+C to stop)", path)

	return watchLoop(ctx, watcher, abs, rerender(cmd, cctx.Renderer, path, columns))
}

// rerender returns the watch callback: it renders path again and reports
// the outcome on the diagnostic writer.
func rerender(cmd *cobra.Command, r *output.Renderer, path string, columns []string) func() {
	return func() {
		if err := runTransform(cmd, path, columns); err != nil {
			r.Error(err)
			return
		}
		r.Info("Re-rendered %s at %s", path, time.Now().Format(time.TimeOnly))
	}
}

// watchLoop calls rerun after write or create events on target settle.
// It returns when ctx is done or the watcher closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, rerun func()) error {
	var debounceTimer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}
