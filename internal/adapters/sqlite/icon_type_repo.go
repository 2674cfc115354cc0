package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// IconTypeRepository implements secondary.IconTypeRepository with SQLite.
type IconTypeRepository struct {
	db DBTX
}

var _ secondary.IconTypeRepository = (*IconTypeRepository)(nil)

// NewIconTypeRepository creates a new SQLite icon codebook repository.
func NewIconTypeRepository(db DBTX) *IconTypeRepository {
	return &IconTypeRepository{db: db}
}

// Seed upserts the codebook entries.
func (r *IconTypeRepository) Seed(ctx context.Context, types []secondary.IconTypeRecord) error {
	for _, t := range types {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO icon_types (icon_type, name) VALUES (?, ?)
			ON CONFLICT(icon_type) DO UPDATE SET name = excluded.name`,
			t.IconType, t.Name,
		)
		if err != nil {
			return classify(err, "failed to seed icon type %d", t.IconType)
		}
	}
	return nil
}

// Name returns the display name for an icon type, or "" when unknown.
func (r *IconTypeRepository) Name(ctx context.Context, iconType int) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, "SELECT name FROM icon_types WHERE icon_type = ?", iconType).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get icon type %d: %w", iconType, err)
	}
	return name, nil
}
