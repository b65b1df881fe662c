package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/internal/cli/config"
	"github.com/leapstack-labs/leaptable/internal/testutil"
)

// runCommand executes sub under a minimal root that loads config the way
// the real root does, and returns stdout and stderr.
func runCommand(t *testing.T, sub *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	root := &cobra.Command{
		Use:           "leaptable",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig("", cmd.Flags())
			if err != nil {
				return err
			}
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.PersistentFlags().StringP("output", "o", "", "")
	root.AddCommand(sub)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.Execute()
	return out.String(), errOut.String(), err
}
