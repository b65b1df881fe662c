package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/pkg/transform"
)

// NewTransformsCommand creates the transforms command.
func NewTransformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transforms",
		Short: "List available transforms",
		Long:  `List every transform name accepted by --transform and panel.transform.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx := NewCommandContextWithoutEngine(cmd)

			descs := transform.Descriptors()
			rows := make([][]string, len(descs))
			for i, d := range descs {
				rows[i] = []string{d.Name.String(), d.Description}
			}
			return cctx.Renderer.List([]string{"Name", "Description"}, rows)
		},
	}
}
