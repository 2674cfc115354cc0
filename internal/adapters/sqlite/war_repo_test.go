package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenth-speed-writer/PFLTK/internal/adapters/sqlite"
	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

func TestWarRepository_LatestEmpty(t *testing.T) {
	repo := sqlite.NewWarRepository(setupTestDB(t))

	war, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, war, "empty table should report no war, not an error")
}

func TestWarRepository_OrderingScenario(t *testing.T) {
	repo := sqlite.NewWarRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &secondary.WarRecord{WarNumber: 10, ObservedAt: t0}))

	err := repo.Insert(ctx, &secondary.WarRecord{WarNumber: 9, ObservedAt: t0.Add(time.Hour)})
	assert.True(t, apperr.IsKind(err, apperr.StaleWar), "war 9 after 10: got %v", err)

	err = repo.Insert(ctx, &secondary.WarRecord{WarNumber: 10, ObservedAt: t0.Add(time.Hour)})
	assert.True(t, apperr.IsKind(err, apperr.AlreadyExists), "war 10 twice: got %v", err)

	require.NoError(t, repo.Insert(ctx, &secondary.WarRecord{WarNumber: 11, ObservedAt: t0.Add(2 * time.Hour)}))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 11, latest.WarNumber)
	assert.True(t, latest.ObservedAt.Equal(t0.Add(2*time.Hour)), "observed_at = %v", latest.ObservedAt)
}

func TestWarRepository_InsertRejections(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		insert   secondary.WarRecord
		wantKind apperr.Kind
	}{
		{
			name:     "negative war number",
			insert:   secondary.WarRecord{WarNumber: -1, ObservedAt: t0},
			wantKind: apperr.InvalidArgument,
		},
		{
			name:     "duplicate of an older war",
			existing: []int{3, 4},
			insert:   secondary.WarRecord{WarNumber: 3, ObservedAt: t0.Add(48 * time.Hour)},
			wantKind: apperr.AlreadyExists,
		},
		{
			name:     "lower than many existing wars",
			existing: []int{20, 21, 22, 23},
			insert:   secondary.WarRecord{WarNumber: 19, ObservedAt: t0.Add(48 * time.Hour)},
			wantKind: apperr.StaleWar,
		},
		{
			name:     "newer number observed earlier",
			existing: []int{5},
			insert:   secondary.WarRecord{WarNumber: 6, ObservedAt: t0.Add(-time.Hour)},
			wantKind: apperr.StaleWar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := setupTestDB(t)
			for _, n := range tt.existing {
				seedWar(t, database, n)
			}
			repo := sqlite.NewWarRepository(database)

			err := repo.Insert(context.Background(), &tt.insert)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err), "error: %v", err)
		})
	}
}

func TestWarRepository_ZeroIsValid(t *testing.T) {
	repo := sqlite.NewWarRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &secondary.WarRecord{WarNumber: 0, ObservedAt: t0}))
	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, latest.WarNumber)
}

func TestWarRepository_CountMapData(t *testing.T) {
	database := setupTestDB(t)
	seedFoobarHex(t, database)
	seedMap(t, database, "OtherHex", 10)
	repo := sqlite.NewWarRepository(database)

	counts, err := repo.CountMapData(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, &secondary.MapDataCounts{WarNumber: 10, Maps: 2, Labels: 1, Icons: 1, Tickets: 0}, counts)
}
