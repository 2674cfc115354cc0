package sqlite

import (
	"context"
	"fmt"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// LabelRepository implements secondary.LabelRepository with SQLite.
type LabelRepository struct {
	db DBTX
}

var _ secondary.LabelRepository = (*LabelRepository)(nil)

// NewLabelRepository creates a new SQLite label repository.
func NewLabelRepository(db DBTX) *LabelRepository {
	return &LabelRepository{db: db}
}

// Insert records a label on a hex. An empty kind is stored as Major.
func (r *LabelRepository) Insert(ctx context.Context, label *secondary.LabelRecord) error {
	kind := label.Kind
	if kind == "" {
		kind = secondary.LabelKindMajor
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO labels (map_name, war_number, label, x, y, kind) VALUES (?, ?, ?, ?, ?, ?)",
		label.MapName, label.WarNumber, label.Label, label.X, label.Y, kind,
	)
	if err != nil {
		return classify(err, "failed to insert label %q on %s", label.Label, label.MapName)
	}
	return nil
}

// LatestForMap returns the labels of a hex in the latest war, ordered by text.
func (r *LabelRepository) LatestForMap(ctx context.Context, mapName string) ([]*secondary.LabelRecord, error) {
	latest, ok, err := latestWarNumber(ctx, r.db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.NoData, "no war has been recorded")
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT map_name, war_number, label, x, y, kind FROM labels WHERE map_name = ? AND war_number = ? ORDER BY label",
		mapName, latest,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []*secondary.LabelRecord
	for rows.Next() {
		l := &secondary.LabelRecord{}
		if err := rows.Scan(&l.MapName, &l.WarNumber, &l.Label, &l.X, &l.Y, &l.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labels: %w", err)
	}

	if len(labels) == 0 {
		e := apperr.New(apperr.NotFound, "no labels for map %s in war #%d", mapName, latest)
		e.MapName = mapName
		e.WarNumber = latest
		return nil, e
	}
	return labels, nil
}
