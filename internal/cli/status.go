package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize what is recorded for the latest war",
		Long: `Display the latest war on record with its hex, label, icon and ticket counts.

Nothing is fetched; run 'pfltk sync' to refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.WarAdapter(cmd.OutOrStdout()).Status(ctx)
			})
		},
	}
}

// WarCmd returns the war command
func WarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "war",
		Short: "Show the latest war on record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.WarAdapter(cmd.OutOrStdout()).War(ctx)
			})
		},
	}
}

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ingest the current war from the War API",
		Long: `Fetch the current war and, if it is newer than the latest on record,
store its hexes, labels and icons in one transaction.

A war that hasn't advanced is reported and left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.WarAdapter(cmd.OutOrStdout()).Sync(ctx)
			})
		},
	}
}
