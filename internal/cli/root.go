// Package cli holds the cobra commands of the pfltk binary.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tenth-speed-writer/PFLTK/internal/config"
	"github.com/tenth-speed-writer/PFLTK/internal/logging"
	"github.com/tenth-speed-writer/PFLTK/internal/version"
	"github.com/tenth-speed-writer/PFLTK/internal/wire"
)

// NewRootCmd builds the pfltk command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pfltk",
		Short:   "PFL-TK - Foxhole war state and logistics tickets",
		Version: version.String(),
		Long: `PFL-TK mirrors the Foxhole War API into a local database and files
logistics tickets against the current war's hexes.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default: pfltk.yaml in ./, ./config or $HOME/.pfltk)")

	// War state
	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(SyncCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(WarCmd())
	rootCmd.AddCommand(MapsCmd())
	rootCmd.AddCommand(LabelsCmd())
	rootCmd.AddCommand(IconsCmd())

	// Tickets and roles
	rootCmd.AddCommand(TicketCmd())
	rootCmd.AddCommand(RoleCmd())
	rootCmd.AddCommand(ExecCmd())

	// Long-running
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

// runtime is what a command gets once the application is wired.
type runtime struct {
	cfg    *config.Config
	logger *logrus.Logger
	app    *wire.App
}

// loadConfig reads the config named by --config, or the searched default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// withApp loads config, wires the application and runs fn against it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewWithOutput(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a, err := wire.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, &runtime{cfg: cfg, logger: logger, app: a})
}
