package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/core/location"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// MapServiceImpl implements the MapService interface.
type MapServiceImpl struct {
	store  secondary.Store
	logger logrus.FieldLogger
}

var _ primary.MapService = (*MapServiceImpl)(nil)

// NewMapService creates a new MapService with injected dependencies.
func NewMapService(store secondary.Store, logger logrus.FieldLogger) *MapServiceImpl {
	return &MapServiceImpl{store: store, logger: logger}
}

// CurrentWar returns the latest war on record, or nil when none exists.
func (s *MapServiceImpl) CurrentWar(ctx context.Context) (*primary.War, error) {
	record, err := s.store.Repos().Wars.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current war: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	return &primary.War{Number: record.WarNumber, ObservedAt: record.ObservedAt}, nil
}

// LatestMaps returns the hexes of the latest war.
func (s *MapServiceImpl) LatestMaps(ctx context.Context) ([]*primary.Map, error) {
	records, err := s.store.Repos().Maps.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}

	maps := make([]*primary.Map, len(records))
	for i, r := range records {
		maps[i] = &primary.Map{Name: r.MapName, WarNumber: r.WarNumber}
	}
	return maps, nil
}

// LatestLabels returns a hex's labels in the latest war.
func (s *MapServiceImpl) LatestLabels(ctx context.Context, mapName string) ([]*primary.Label, error) {
	records, err := s.store.Repos().Labels.LatestForMap(ctx, mapName)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels for %s: %w", mapName, err)
	}

	labels := make([]*primary.Label, len(records))
	for i, r := range records {
		labels[i] = &primary.Label{Text: r.Label, X: r.X, Y: r.Y, Kind: r.Kind}
	}
	return labels, nil
}

// LatestIcons returns a hex's icons in the latest war, each described by
// its type and nearest label.
func (s *MapServiceImpl) LatestIcons(ctx context.Context, mapName string) ([]*primary.Icon, error) {
	var icons []*primary.Icon
	err := s.store.InReadTx(ctx, func(repos *secondary.Repositories) error {
		records, err := repos.Icons.LatestForMap(ctx, mapName)
		if err != nil {
			return err
		}
		labels, err := hexLabels(ctx, repos, mapName)
		if err != nil {
			return err
		}

		names := map[int]string{}
		icons = make([]*primary.Icon, len(records))
		for i, r := range records {
			name, ok := names[r.IconType]
			if !ok {
				name, err = repos.IconTypes.Name(ctx, r.IconType)
				if err != nil {
					return err
				}
				names[r.IconType] = name
			}
			icons[i] = &primary.Icon{
				MapName:     r.MapName,
				X:           r.X,
				Y:           r.Y,
				IconType:    r.IconType,
				TypeName:    name,
				Flags:       r.Flags,
				FlagNames:   location.Flags(r.Flags).String(),
				Description: location.DescribePoint(labels, name, r.X, r.Y),
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list icons for %s: %w", mapName, err)
	}
	return icons, nil
}

// DescribeLocation renders a point on a hex as "the <thing> near <label>",
// naming the icon at the point when there is one.
func (s *MapServiceImpl) DescribeLocation(ctx context.Context, mapName string, x, y float64) (string, error) {
	var description string
	err := s.store.InReadTx(ctx, func(repos *secondary.Repositories) error {
		records, err := repos.Icons.LatestForMap(ctx, mapName)
		if err != nil {
			return err
		}
		labels, err := hexLabels(ctx, repos, mapName)
		if err != nil {
			return err
		}

		icons := make([]location.Icon, len(records))
		for i, r := range records {
			icons[i] = location.Icon{X: r.X, Y: r.Y, IconType: r.IconType, Flags: location.Flags(r.Flags)}
		}

		var thing string
		if icon, ok := location.IconAt(icons, x, y, location.IconRadius); ok {
			thing, err = repos.IconTypes.Name(ctx, icon.IconType)
			if err != nil {
				return err
			}
		}
		description = location.DescribePoint(labels, thing, x, y)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe location on %s: %w", mapName, err)
	}
	return description, nil
}

// Status summarizes what is recorded for the latest war.
func (s *MapServiceImpl) Status(ctx context.Context) (*primary.Status, error) {
	status := &primary.Status{}
	err := s.store.InReadTx(ctx, func(repos *secondary.Repositories) error {
		war, err := repos.Wars.Latest(ctx)
		if err != nil || war == nil {
			return err
		}
		status.War = &primary.War{Number: war.WarNumber, ObservedAt: war.ObservedAt}

		counts, err := repos.Wars.CountMapData(ctx, war.WarNumber)
		if err != nil {
			return err
		}
		status.Maps = counts.Maps
		status.Labels = counts.Labels
		status.Icons = counts.Icons
		status.Tickets = counts.Tickets
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return status, nil
}

// hexLabels loads a hex's labels for nearest-label resolution. A hex
// without labels yields none rather than an error.
func hexLabels(ctx context.Context, repos *secondary.Repositories, mapName string) ([]location.Label, error) {
	records, err := repos.Labels.LatestForMap(ctx, mapName)
	if apperr.IsKind(err, apperr.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	labels := make([]location.Label, len(records))
	for i, r := range records {
		labels[i] = location.Label{Text: r.Label, X: r.X, Y: r.Y}
	}
	return labels, nil
}
