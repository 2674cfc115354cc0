package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// MapsCmd returns the maps command
func MapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maps",
		Short: "List the hexes of the latest war",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.MapAdapter(cmd.OutOrStdout()).Maps(ctx)
			})
		},
	}
}

// LabelsCmd returns the labels command
func LabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels [hex]",
		Short: "List a hex's labels in the latest war",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.MapAdapter(cmd.OutOrStdout()).Labels(ctx, args[0])
			})
		},
	}
}

// IconsCmd returns the icons command
func IconsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "icons [hex]",
		Short: "List a hex's icons in the latest war",
		Long: `List a hex's icons in the latest war, each described by the
nearest label, e.g. "the Storage Depot near Captain's Dread".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.MapAdapter(cmd.OutOrStdout()).Icons(ctx, args[0])
			})
		},
	}
}
