package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
)

// SyncScheduler calls SyncWar on a fixed interval.
type SyncScheduler struct {
	sync     primary.WarSyncService
	clock    clock.Clock
	interval time.Duration
	logger   logrus.FieldLogger
}

// NewSyncScheduler creates a scheduler. interval must be positive.
func NewSyncScheduler(sync primary.WarSyncService, clk clock.Clock, interval time.Duration, logger logrus.FieldLogger) *SyncScheduler {
	return &SyncScheduler{
		sync:     sync,
		clock:    clk,
		interval: interval,
		logger:   logger,
	}
}

// Run syncs once per interval until ctx is cancelled. A failed sync is
// logged and left for the next tick.
func (s *SyncScheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("sync scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return nil
		case <-ticker.C():
			s.tick(ctx)
		}
	}
}

func (s *SyncScheduler) tick(ctx context.Context) {
	result, err := s.sync.SyncWar(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.WithError(err).Error("scheduled war sync failed")
		return
	}

	log := s.logger.WithFields(logrus.Fields{"run_id": result.RunID, "war": result.WarNumber})
	if result.Skipped {
		log.Debug("scheduled sync: war unchanged")
		return
	}
	log.Info("scheduled sync ingested a new war")
}
