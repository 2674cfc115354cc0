package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenth-speed-writer/PFLTK/internal/config"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var writeConfig string
	var schemaOnly bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the PFL-TK database",
		Long: `Create the database schema, seed the icon codebook and ingest the current war.

Safe to run repeatedly. With --write-config a pfltk.yaml holding every
default is written first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if writeConfig != "" {
				if err := config.WriteDefault(writeConfig); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Config written to %s\n", writeConfig)
				if !cmd.Flags().Changed("config") {
					if err := cmd.Flags().Set("config", writeConfig); err != nil {
						return err
					}
				}
			}

			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				fmt.Fprintf(out, "Database ready at %s\n", rt.cfg.Database.Path)
				if schemaOnly {
					return nil
				}
				if err := rt.app.WarAdapter(out).Init(ctx); err != nil {
					return err
				}

				fmt.Fprintln(out)
				fmt.Fprintln(out, "Next steps:")
				fmt.Fprintln(out, "  pfltk role set <user-id> admin --guild <guild>")
				fmt.Fprintln(out, "  pfltk serve")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&writeConfig, "write-config", "", "write a default config file to this path first")
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "create the schema without contacting the War API")

	return cmd
}
