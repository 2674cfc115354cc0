package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// WarRepository implements secondary.WarRepository with SQLite.
type WarRepository struct {
	db DBTX
}

var _ secondary.WarRepository = (*WarRepository)(nil)

// NewWarRepository creates a new SQLite war repository.
func NewWarRepository(db DBTX) *WarRepository {
	return &WarRepository{db: db}
}

// Insert records a new war.
func (r *WarRepository) Insert(ctx context.Context, war *secondary.WarRecord) error {
	if war.WarNumber < 0 {
		return apperr.New(apperr.InvalidArgument, "war number must be non-negative, got %d", war.WarNumber)
	}

	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM wars WHERE war_number = ?", war.WarNumber).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check war: %w", err)
	}
	if exists > 0 {
		return apperr.New(apperr.AlreadyExists, "war #%d has already been recorded", war.WarNumber)
	}

	latest, err := r.Latest(ctx)
	if err != nil {
		return err
	}
	if latest != nil {
		if latest.WarNumber > war.WarNumber {
			return apperr.NewStaleWar(war.WarNumber, latest.WarNumber)
		}
		if war.ObservedAt.Before(latest.ObservedAt) {
			e := apperr.NewStaleWar(war.WarNumber, latest.WarNumber)
			e.Message = fmt.Sprintf("cannot record war #%d observed at %s; war #%d was observed later at %s",
				war.WarNumber, war.ObservedAt.UTC().Format(time.RFC3339), latest.WarNumber, latest.ObservedAt.UTC().Format(time.RFC3339))
			return e
		}
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO wars (war_number, observed_at) VALUES (?, ?)",
		war.WarNumber, war.ObservedAt.UTC(),
	)
	if err != nil {
		return classify(err, "failed to insert war #%d", war.WarNumber)
	}

	return nil
}

// Latest returns the war with the highest number, or nil when none exist.
func (r *WarRepository) Latest(ctx context.Context) (*secondary.WarRecord, error) {
	record := &secondary.WarRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT war_number, observed_at FROM wars ORDER BY war_number DESC LIMIT 1",
	).Scan(&record.WarNumber, &record.ObservedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest war: %w", err)
	}

	return record, nil
}

// CountMapData returns summary counts of the rows recorded for a war.
func (r *WarRepository) CountMapData(ctx context.Context, warNumber int) (*secondary.MapDataCounts, error) {
	counts := &secondary.MapDataCounts{WarNumber: warNumber}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM maps WHERE war_number = ?),
			(SELECT COUNT(*) FROM labels WHERE war_number = ?),
			(SELECT COUNT(*) FROM icons WHERE war_number = ?),
			(SELECT COUNT(*) FROM tickets WHERE war_number = ?)`,
		warNumber, warNumber, warNumber, warNumber,
	).Scan(&counts.Maps, &counts.Labels, &counts.Icons, &counts.Tickets)
	if err != nil {
		return nil, fmt.Errorf("failed to count map data for war #%d: %w", warNumber, err)
	}
	return counts, nil
}
