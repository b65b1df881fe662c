package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/pkg/source"
)

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns [results.json]",
		Short: "List the columns a transform can offer",
		Long: `List the columns the selected transform produces or can select for the
given results. For timeseries_aggregations the listing is the registered
aggregations and needs no results file.`,
		Example: `  leaptable columns docs.json -t json
  leaptable columns -t timeseries_aggregations`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			columnFlags, _ := cmd.Flags().GetStringArray("column")
			panel, err := effectivePanel(cctx.Cfg, columnFlags)
			if err != nil {
				return err
			}

			var rs source.ResultSet
			if len(args) == 1 {
				if rs, err = readResults(cmd, args[0]); err != nil {
					return err
				}
			}

			cols, err := cctx.Engine.Columns(rs, panel)
			if err != nil {
				return err
			}

			rows := make([][]string, len(cols))
			for i, c := range cols {
				value := c.Key
				if value == "" {
					value = c.Text
				}
				rows[i] = []string{strconv.Itoa(i), c.Text, value, c.Type}
			}
			return cctx.Renderer.List([]string{"#", "Text", "Value", "Type"}, rows)
		},
	}

	addPanelFlags(cmd)
	return cmd
}
