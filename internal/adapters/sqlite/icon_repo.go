package sqlite

import (
	"context"
	"fmt"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// IconRepository implements secondary.IconRepository with SQLite.
type IconRepository struct {
	db DBTX
}

var _ secondary.IconRepository = (*IconRepository)(nil)

// NewIconRepository creates a new SQLite icon repository.
func NewIconRepository(db DBTX) *IconRepository {
	return &IconRepository{db: db}
}

// Insert records an icon on a hex.
func (r *IconRepository) Insert(ctx context.Context, icon *secondary.IconRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO icons (map_name, war_number, x, y, icon_type, flags) VALUES (?, ?, ?, ?, ?, ?)",
		icon.MapName, icon.WarNumber, icon.X, icon.Y, icon.IconType, icon.Flags,
	)
	if err != nil {
		return classify(err, "failed to insert icon at (%g, %g) on %s", icon.X, icon.Y, icon.MapName)
	}
	return nil
}

// LatestForMap returns the icons of a hex in the latest war.
func (r *IconRepository) LatestForMap(ctx context.Context, mapName string) ([]*secondary.IconRecord, error) {
	maps, err := latestMaps(ctx, r.db)
	if err != nil {
		return nil, err
	}

	current := maps[0].WarNumber
	found := false
	for _, m := range maps {
		if m.MapName == mapName {
			found = true
			break
		}
	}
	if !found {
		// Best effort: a failed lookup still reports the map as missing.
		seen, err := lastSeenWar(ctx, r.db, mapName)
		if err != nil {
			seen = 0
		}
		return nil, apperr.NewMapNotInCurrentWar(mapName, current, seen)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT map_name, war_number, x, y, icon_type, flags FROM icons WHERE map_name = ? AND war_number = ? ORDER BY x, y",
		mapName, current,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list icons: %w", err)
	}
	defer rows.Close()

	icons := []*secondary.IconRecord{}
	for rows.Next() {
		i := &secondary.IconRecord{}
		if err := rows.Scan(&i.MapName, &i.WarNumber, &i.X, &i.Y, &i.IconType, &i.Flags); err != nil {
			return nil, fmt.Errorf("failed to scan icon: %w", err)
		}
		icons = append(icons, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate icons: %w", err)
	}
	return icons, nil
}
