package sqlite

import (
	"context"
	"fmt"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// MapRepository implements secondary.MapRepository with SQLite.
type MapRepository struct {
	db DBTX
}

var _ secondary.MapRepository = (*MapRepository)(nil)

// NewMapRepository creates a new SQLite map repository.
func NewMapRepository(db DBTX) *MapRepository {
	return &MapRepository{db: db}
}

// Insert records a hex for a war.
func (r *MapRepository) Insert(ctx context.Context, m *secondary.MapRecord) error {
	if m.MapName == "" {
		return apperr.New(apperr.InvalidArgument, "map name is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO maps (map_name, war_number) VALUES (?, ?)",
		m.MapName, m.WarNumber,
	)
	if err != nil {
		return classify(err, "failed to insert map %s for war #%d", m.MapName, m.WarNumber)
	}
	return nil
}

// Latest returns the hexes of the latest war, ordered by name.
func (r *MapRepository) Latest(ctx context.Context) ([]*secondary.MapRecord, error) {
	return latestMaps(ctx, r.db)
}

// Exists reports whether a hex was recorded for the given war.
func (r *MapRepository) Exists(ctx context.Context, mapName string, warNumber int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM maps WHERE map_name = ? AND war_number = ?",
		mapName, warNumber,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check map %s: %w", mapName, err)
	}
	return n > 0, nil
}

// LastSeenWar returns the most recent war a hex was recorded in, or 0.
func (r *MapRepository) LastSeenWar(ctx context.Context, mapName string) (int, error) {
	return lastSeenWar(ctx, r.db, mapName)
}

func latestMaps(ctx context.Context, db DBTX) ([]*secondary.MapRecord, error) {
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM maps").Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count maps: %w", err)
	}
	if total == 0 {
		return nil, apperr.New(apperr.NoData, "no maps have been recorded")
	}

	latest, ok, err := latestWarNumber(ctx, db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.StaleData, "maps exist but no war is on record")
	}

	rows, err := db.QueryContext(ctx,
		"SELECT map_name, war_number FROM maps WHERE war_number = ? ORDER BY map_name",
		latest,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var maps []*secondary.MapRecord
	for rows.Next() {
		m := &secondary.MapRecord{}
		if err := rows.Scan(&m.MapName, &m.WarNumber); err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maps: %w", err)
	}

	if len(maps) == 0 {
		e := apperr.New(apperr.StaleData, "%d maps on record but none for latest war #%d; the last sync may be incomplete", total, latest)
		e.WarNumber = latest
		return nil, e
	}
	return maps, nil
}

func lastSeenWar(ctx context.Context, db DBTX, mapName string) (int, error) {
	var war int
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(war_number), 0) FROM maps WHERE map_name = ?",
		mapName,
	).Scan(&war)
	if err != nil {
		return 0, fmt.Errorf("failed to look up last war for map %s: %w", mapName, err)
	}
	return war, nil
}
