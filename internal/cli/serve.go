package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var (
		addr        string
		noScheduler bool
		syncOnStart bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic war sync",
		Long: `Serve the HTTP API (maps, icons, tickets and the chat command webhook)
and sync the war every sync.interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, rt *runtime) error {
				if addr == "" {
					addr = rt.cfg.Server.Addr
				}
				log := rt.logger.WithField("addr", addr)

				if syncOnStart {
					if _, err := rt.app.Sync.ExecuteColdStart(ctx); err != nil {
						log.WithError(err).Warn("startup sync failed; serving what is on record")
					}
				}

				srv := &http.Server{
					Addr:              addr,
					Handler:           rt.app.Router(),
					ReadHeaderTimeout: 10 * time.Second,
				}

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					log.Info("http api listening")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("failed to serve: %w", err)
					}
					return nil
				})
				if !noScheduler {
					g.Go(func() error {
						return rt.app.Scheduler.Run(gctx)
					})
				}
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					log.Info("http api shutting down")
					return srv.Shutdown(shutdownCtx)
				})

				return g.Wait()
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().BoolVar(&noScheduler, "no-sync", false, "serve without the periodic war sync")
	cmd.Flags().BoolVar(&syncOnStart, "sync-on-start", true, "run a cold start before serving")

	return cmd
}
