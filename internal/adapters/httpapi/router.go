// Package httpapi exposes the map, ticket and command services over HTTP.
package httpapi

import (
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// Services are the primary ports the API serves.
type Services struct {
	Maps     primary.MapService
	Tickets  primary.TicketService
	Users    primary.UserService
	Sync     primary.WarSyncService
	Commands primary.CommandService
}

// Options tune the router.
type Options struct {
	Mode  string // gin mode: debug, release or test
	Pprof bool   // mount /debug/pprof
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Services, opts Options, logger logrus.FieldLogger) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if opts.Pprof {
		pprof.Register(r)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	maps := &mapHandler{maps: svc.Maps, logger: logger}
	tickets := &ticketHandler{tickets: svc.Tickets, maps: svc.Maps, users: svc.Users, logger: logger}
	sync := &syncHandler{sync: svc.Sync, users: svc.Users, logger: logger}
	commands := &commandHandler{commands: svc.Commands, logger: logger}

	api := r.Group("/api")
	api.GET("/war", maps.War)
	api.GET("/maps", maps.ListMaps)
	api.GET("/maps/:map/labels", maps.ListLabels)
	api.GET("/maps/:map/icons", maps.ListIcons)
	api.GET("/tickets", tickets.List)
	api.GET("/tickets/:id", tickets.Get)
	api.POST("/tickets", tickets.Create)
	api.POST("/sync", sync.Sync)
	api.POST("/commands", commands.Execute)

	return r
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
