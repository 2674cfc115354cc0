package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// WarSyncOptions tunes the synchronizer.
type WarSyncOptions struct {
	// Concurrency bounds the number of hexes fetched at once.
	Concurrency int

	// Codebook is seeded into icon_types on cold start.
	Codebook []secondary.IconTypeRecord
}

// WarSyncServiceImpl implements the WarSyncService interface.
type WarSyncServiceImpl struct {
	// mu serializes syncs started by the scheduler, the API and chat.
	mu sync.Mutex

	store  secondary.Store
	source secondary.MapDataSource
	clock  clock.Clock
	logger logrus.FieldLogger
	opts   WarSyncOptions
}

var _ primary.WarSyncService = (*WarSyncServiceImpl)(nil)

// NewWarSyncService creates a new WarSyncService with injected dependencies.
func NewWarSyncService(
	store secondary.Store,
	source secondary.MapDataSource,
	clk clock.Clock,
	logger logrus.FieldLogger,
	opts WarSyncOptions,
) *WarSyncServiceImpl {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &WarSyncServiceImpl{
		store:  store,
		source: source,
		clock:  clk,
		logger: logger,
		opts:   opts,
	}
}

// hexSnapshot is everything fetched for one hex.
type hexSnapshot struct {
	name   string
	labels []secondary.LabelData
	icons  []secondary.IconData
}

// warSnapshot is a fully fetched war, ready to be written.
type warSnapshot struct {
	war   *secondary.WarRecord
	hexes []hexSnapshot
}

// SyncWar ingests the remote war if it is newer than the latest on record.
func (s *WarSyncServiceImpl) SyncWar(ctx context.Context) (*primary.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock.Now()
	result := &primary.SyncResult{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", result.RunID)

	current, fetchedAt, err := s.source.FetchCurrentWar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current war: %w", err)
	}
	result.WarNumber = current
	result.FetchedAt = fetchedAt
	log = log.WithField("war", current)

	latest, err := s.store.Repos().Wars.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest war: %w", err)
	}
	if latest != nil {
		result.HadBaseline = true
		result.PreviousWar = latest.WarNumber
		if current <= latest.WarNumber {
			result.Skipped = true
			result.Duration = s.clock.Now().Sub(start)
			log.WithField("latest", latest.WarNumber).Info("war has not advanced; nothing to sync")
			return result, nil
		}
	}

	log.Info("syncing war")

	snapshot, err := s.fetchSnapshot(ctx, log, current, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch war #%d: %w", current, err)
	}

	err = s.store.InTx(ctx, func(repos *secondary.Repositories) error {
		// Another writer on the same database may have recorded the war
		// while this one was fetching.
		latest, err := repos.Wars.Latest(ctx)
		if err != nil {
			return err
		}
		if latest != nil && current <= latest.WarNumber {
			result.HadBaseline = true
			result.PreviousWar = latest.WarNumber
			result.Skipped = true
			return nil
		}
		return writeSnapshot(ctx, repos, snapshot, result)
	})
	if err != nil {
		log.WithError(err).Warn("war sync rolled back")
		return nil, fmt.Errorf("failed to write war #%d: %w", current, err)
	}
	if result.Skipped {
		result.Duration = s.clock.Now().Sub(start)
		log.WithField("latest", result.PreviousWar).Info("war was recorded while fetching; nothing to write")
		return result, nil
	}

	result.Duration = s.clock.Now().Sub(start)
	log.WithFields(logrus.Fields{
		"maps":     result.Maps,
		"labels":   result.Labels,
		"icons":    result.Icons,
		"duration": result.Duration,
	}).Info("war sync committed")

	return result, nil
}

// ExecuteColdStart ensures the schema and icon codebook, then syncs.
func (s *WarSyncServiceImpl) ExecuteColdStart(ctx context.Context) (*primary.SyncResult, error) {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	if len(s.opts.Codebook) > 0 {
		err := s.store.InTx(ctx, func(repos *secondary.Repositories) error {
			return repos.IconTypes.Seed(ctx, s.opts.Codebook)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed icon codebook: %w", err)
		}
		s.logger.WithField("icon_types", len(s.opts.Codebook)).Debug("icon codebook seeded")
	}

	return s.SyncWar(ctx)
}

// fetchSnapshot pulls every hex of the war before anything is written, so a
// network failure can never leave a partial war behind.
func (s *WarSyncServiceImpl) fetchSnapshot(ctx context.Context, log logrus.FieldLogger, current int, fetchedAt time.Time) (*warSnapshot, error) {
	hexes, err := s.source.FetchHexNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hex names: %w", err)
	}

	snapshot := &warSnapshot{
		war:   &secondary.WarRecord{WarNumber: current, ObservedAt: fetchedAt},
		hexes: make([]hexSnapshot, len(hexes)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, hex := range hexes {
		g.Go(func() error {
			labels, err := s.source.FetchLabels(gctx, hex, secondary.LabelsBoth)
			if err != nil {
				return fmt.Errorf("failed to fetch labels for %s: %w", hex, err)
			}
			icons, err := s.source.FetchIcons(gctx, hex)
			if err != nil {
				return fmt.Errorf("failed to fetch icons for %s: %w", hex, err)
			}

			labels, droppedLabels := dedupeLabels(labels)
			icons, droppedIcons := dedupeIcons(icons)
			if droppedLabels+droppedIcons > 0 {
				log.WithFields(logrus.Fields{
					"hex":    hex,
					"labels": droppedLabels,
					"icons":  droppedIcons,
				}).Debug("dropped duplicate map items")
			}

			snapshot.hexes[i] = hexSnapshot{name: hex, labels: labels, icons: icons}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// writeSnapshot inserts the war, then each hex with its labels and icons.
func writeSnapshot(ctx context.Context, repos *secondary.Repositories, snapshot *warSnapshot, result *primary.SyncResult) error {
	war := snapshot.war.WarNumber
	if err := repos.Wars.Insert(ctx, snapshot.war); err != nil {
		return err
	}

	for _, hex := range snapshot.hexes {
		if err := repos.Maps.Insert(ctx, &secondary.MapRecord{MapName: hex.name, WarNumber: war}); err != nil {
			return err
		}
		result.Maps++

		for _, l := range hex.labels {
			err := repos.Labels.Insert(ctx, &secondary.LabelRecord{
				MapName:   hex.name,
				WarNumber: war,
				Label:     l.Text,
				X:         l.X,
				Y:         l.Y,
				Kind:      l.Kind,
			})
			if err != nil {
				return err
			}
			result.Labels++
		}

		for _, i := range hex.icons {
			err := repos.Icons.Insert(ctx, &secondary.IconRecord{
				MapName:   hex.name,
				WarNumber: war,
				X:         i.X,
				Y:         i.Y,
				IconType:  i.IconType,
				Flags:     i.Flags,
			})
			if err != nil {
				return err
			}
			result.Icons++
		}
	}
	return nil
}

// dedupeLabels keeps the first label for each text on a hex.
func dedupeLabels(labels []secondary.LabelData) ([]secondary.LabelData, int) {
	seen := make(map[string]bool, len(labels))
	out := labels[:0:0]
	for _, l := range labels {
		if seen[l.Text] {
			continue
		}
		seen[l.Text] = true
		out = append(out, l)
	}
	return out, len(labels) - len(out)
}

// dedupeIcons keeps the first icon for each position on a hex.
func dedupeIcons(icons []secondary.IconData) ([]secondary.IconData, int) {
	type point struct{ x, y float64 }
	seen := make(map[point]bool, len(icons))
	out := icons[:0:0]
	for _, i := range icons {
		p := point{i.X, i.Y}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, i)
	}
	return out, len(icons) - len(out)
}
