package commands

import (
	"github.com/spf13/cobra"
)

// NewAggregationsCommand creates the aggregations command.
func NewAggregationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "aggregations",
		Aliases: []string{"aggs"},
		Short:   "List registered aggregations",
		Long: `List the aggregation keys usable as column values with the
timeseries_aggregations transform: the built-ins followed by scripted
aggregations from the aggregations section of leaptable.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			descs := cctx.Engine.Aggregations().Descriptors()
			rows := make([][]string, len(descs))
			for i, d := range descs {
				kind := "builtin"
				if _, ok := cctx.Cfg.Aggregations[d.Key]; ok {
					kind = "script"
				}
				rows[i] = []string{d.Key, d.Text, kind}
			}
			return cctx.Renderer.List([]string{"Key", "Text", "Source"}, rows)
		},
	}
}
