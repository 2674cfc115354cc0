package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// RoleCmd returns the role command
func RoleCmd() *cobra.Command {
	var guild string

	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage guild roles",
		Long: `Show, grant and revoke guild roles (teamster, submitter, supervisor, admin).

The CLI acts as the local operator, so changes made here skip the
acting-user checks chat commands go through.`,
	}
	cmd.PersistentFlags().StringVar(&guild, "guild", "", "guild the role applies to")
	cmd.MarkPersistentFlagRequired("guild")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [user-id]",
		Short: "Show a user's role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.RoleAdapter(cmd.OutOrStdout()).Show(ctx, guild, userID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [user-id] [role]",
		Short: "Grant a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.RoleAdapter(cmd.OutOrStdout()).Set(ctx, guild, userID, args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [user-id]",
		Short: "Revoke a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.RoleAdapter(cmd.OutOrStdout()).Remove(ctx, guild, userID)
			})
		},
	})

	return cmd
}

// ExecCmd returns the exec command
func ExecCmd() *cobra.Command {
	var (
		userID  int64
		guild   string
		channel string
	)

	cmd := &cobra.Command{
		Use:   "exec [chat message]",
		Short: "Run a chat command as a user",
		Long: `Run a chat command exactly as the chat front-end would, including role
checks and the command audit record.

Example:
  pfltk exec --user 42 --guild logi-corps -- '!icons TheFingersHex'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.app.ExecAdapter(cmd.OutOrStdout()).Exec(ctx, primary.CommandRequest{
					UserID:  userID,
					Guild:   guild,
					Channel: channel,
					Content: strings.Join(args, " "),
				})
			})
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "acting user id")
	cmd.Flags().StringVar(&guild, "guild", "", "guild the message was sent in")
	cmd.Flags().StringVar(&channel, "channel", "cli", "channel the message was sent in")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("guild")

	return cmd
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.InvalidArgument, "%q is not a user id", s)
	}
	return id, nil
}
