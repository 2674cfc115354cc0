// Package wire provides dependency injection for PFL-TK.
// Open builds every service from a Config; the returned App owns the
// database handle and must be closed.
package wire

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	cliadapter "github.com/tenth-speed-writer/PFLTK/internal/adapters/cli"
	"github.com/tenth-speed-writer/PFLTK/internal/adapters/httpapi"
	"github.com/tenth-speed-writer/PFLTK/internal/adapters/sqlite"
	"github.com/tenth-speed-writer/PFLTK/internal/adapters/warapi"
	"github.com/tenth-speed-writer/PFLTK/internal/app"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/config"
	"github.com/tenth-speed-writer/PFLTK/internal/db"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// App holds the wired services.
type App struct {
	Maps     primary.MapService
	Tickets  primary.TicketService
	Users    primary.UserService
	Sync     primary.WarSyncService
	Commands primary.CommandService

	Scheduler *app.SyncScheduler

	cfg      *config.Config
	database *sql.DB
	logger   logrus.FieldLogger
}

// Open wires the application against the real clock.
func Open(cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	return OpenWithClock(cfg, clock.Real(), logger)
}

// OpenWithClock wires the application with an explicit clock.
func OpenWithClock(cfg *config.Config, clk clock.Clock, logger logrus.FieldLogger) (*App, error) {
	codebook, err := iconCodebook()
	if err != nil {
		return nil, err
	}

	source, err := warapi.NewClient(warapi.Config{
		Shard:             cfg.WarAPI.Shard,
		BaseURL:           cfg.WarAPI.BaseURL,
		Timeout:           cfg.WarAPI.Timeout,
		RequestsPerSecond: cfg.WarAPI.RequestsPerSecond,
		Burst:             cfg.WarAPI.Burst,
	}, clk, logger.WithField("component", "warapi"))
	if err != nil {
		return nil, fmt.Errorf("failed to create war api client: %w", err)
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	// Create repository adapters (secondary ports) behind one store
	store := sqlite.NewStore(database)

	// Create services (primary ports implementation)
	maps := app.NewMapService(store, logger.WithField("component", "maps"))
	tickets := app.NewTicketService(store, maps, clk, logger.WithField("component", "tickets"))
	users := app.NewUserService(store, clk, logger.WithField("component", "users"))
	sync := app.NewWarSyncService(store, source, clk, logger.WithField("component", "sync"), app.WarSyncOptions{
		Concurrency: cfg.Sync.Concurrency,
		Codebook:    codebook,
	})
	commands := app.NewCommandService(store, maps, tickets, users, sync, clk, logger.WithField("component", "commands"))

	return &App{
		Maps:      maps,
		Tickets:   tickets,
		Users:     users,
		Sync:      sync,
		Commands:  commands,
		Scheduler: app.NewSyncScheduler(sync, clk, cfg.Sync.Interval, logger.WithField("component", "scheduler")),
		cfg:       cfg,
		database:  database,
		logger:    logger,
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if err := a.database.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Router returns the HTTP API over the wired services.
func (a *App) Router() *gin.Engine {
	return httpapi.NewRouter(httpapi.Services{
		Maps:     a.Maps,
		Tickets:  a.Tickets,
		Users:    a.Users,
		Sync:     a.Sync,
		Commands: a.Commands,
	}, httpapi.Options{
		Mode:  a.cfg.Server.Mode,
		Pprof: a.cfg.Server.Pprof,
	}, a.logger.WithField("component", "http"))
}

// Config returns the configuration the application was opened with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// WarAdapter returns a WarAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func (a *App) WarAdapter(out io.Writer) *cliadapter.WarAdapter {
	return cliadapter.NewWarAdapter(a.Sync, a.Maps, out)
}

// MapAdapter returns a MapAdapter writing to out.
func (a *App) MapAdapter(out io.Writer) *cliadapter.MapAdapter {
	return cliadapter.NewMapAdapter(a.Maps, out)
}

// TicketAdapter returns a TicketAdapter writing to out.
func (a *App) TicketAdapter(out io.Writer) *cliadapter.TicketAdapter {
	return cliadapter.NewTicketAdapter(a.Tickets, out)
}

// RoleAdapter returns a RoleAdapter writing to out.
func (a *App) RoleAdapter(out io.Writer) *cliadapter.RoleAdapter {
	return cliadapter.NewRoleAdapter(a.Users, out)
}

// ExecAdapter returns an ExecAdapter writing to out.
func (a *App) ExecAdapter(out io.Writer) *cliadapter.ExecAdapter {
	return cliadapter.NewExecAdapter(a.Commands, out)
}

func iconCodebook() ([]secondary.IconTypeRecord, error) {
	types, err := db.IconCodebook()
	if err != nil {
		return nil, err
	}
	records := make([]secondary.IconTypeRecord, len(types))
	for i, t := range types {
		records[i] = secondary.IconTypeRecord{IconType: t.ID, Name: t.Name}
	}
	return records, nil
}
