package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenth-speed-writer/PFLTK/internal/adapters/sqlite"
	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

// Integration tests verify cross-repository workflows and constraints.

// ============================================================================
// War Lifecycle Tests
// ============================================================================

// ingestWar writes a war with its hexes in one transaction, as a sync does.
func ingestWar(t *testing.T, store *sqlite.Store, warNumber int, hexes ...string) {
	t.Helper()
	ctx := context.Background()
	err := store.InTx(ctx, func(repos *secondary.Repositories) error {
		if err := repos.Wars.Insert(ctx, &secondary.WarRecord{WarNumber: warNumber, ObservedAt: t0.Add(time.Duration(warNumber) * time.Hour)}); err != nil {
			return err
		}
		for i, hex := range hexes {
			if err := repos.Maps.Insert(ctx, &secondary.MapRecord{MapName: hex, WarNumber: warNumber}); err != nil {
				return err
			}
			label := &secondary.LabelRecord{MapName: hex, WarNumber: warNumber, Label: "Town " + hex, X: 0.5, Y: 0.5, Kind: secondary.LabelKindMajor}
			if err := repos.Labels.Insert(ctx, label); err != nil {
				return err
			}
			icon := &secondary.IconRecord{MapName: hex, WarNumber: warNumber, X: 0.5, Y: 0.5 + float64(i)/100, IconType: 33}
			if err := repos.Icons.Insert(ctx, icon); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestIntegration_WarAdvanceRescopesEverything(t *testing.T) {
	store := sqlite.NewStore(setupTestDB(t))
	repos := store.Repos()
	ctx := context.Background()

	ingestWar(t, store, 10, "DeadLandsHex", "FoobarHex")

	num, err := repos.Tickets.Insert(ctx, &secondary.TicketRecord{
		WarNumber:            10,
		Destination:          secondary.LocationRecord{MapName: "FoobarHex", X: 0.5, Y: 0.5, Description: "the depot"},
		ObjectiveDescription: "Shirts",
		CreatedOn:            t0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), num)

	ingestWar(t, store, 11, "DeadLandsHex")

	// Only the new war's hexes are current
	maps, err := repos.Maps.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, secondary.MapRecord{MapName: "DeadLandsHex", WarNumber: 11}, *maps[0])

	_, err = repos.Icons.LatestForMap(ctx, "FoobarHex")
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "got %v", err)
	assert.Equal(t, apperr.MapNotInCurrentWar, e.Kind)
	assert.Equal(t, 10, e.LastSeenWar)

	labels, err := repos.Labels.LatestForMap(ctx, "DeadLandsHex")
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, 11, labels[0].WarNumber)

	// Old tickets survive but are not listed for the new war
	tickets, err := repos.Tickets.ListByWar(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, tickets)

	old, err := repos.Tickets.GetByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, old.WarNumber)

	counts, err := repos.Wars.CountMapData(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, secondary.MapDataCounts{WarNumber: 11, Maps: 1, Labels: 1, Icons: 1, Tickets: 0}, *counts)
}

func TestIntegration_FailedIngestLeavesNothing(t *testing.T) {
	store := sqlite.NewStore(setupTestDB(t))
	ctx := context.Background()

	ingestWar(t, store, 10, "FoobarHex")

	err := store.InTx(ctx, func(repos *secondary.Repositories) error {
		if err := repos.Wars.Insert(ctx, &secondary.WarRecord{WarNumber: 11, ObservedAt: t0.Add(20 * time.Hour)}); err != nil {
			return err
		}
		if err := repos.Maps.Insert(ctx, &secondary.MapRecord{MapName: "FoobarHex", WarNumber: 11}); err != nil {
			return err
		}
		// Second insert of the same hex aborts the war
		return repos.Maps.Insert(ctx, &secondary.MapRecord{MapName: "FoobarHex", WarNumber: 11})
	})
	assert.True(t, apperr.IsKind(err, apperr.AlreadyExists), "got %v", err)

	latest, err := store.Repos().Wars.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, latest.WarNumber, "war 11 must be rolled back")

	// Retrying the same war now succeeds
	ingestWar(t, store, 11, "FoobarHex")
}

// ============================================================================
// Constraint Tests
// ============================================================================

func TestIntegration_ForeignKeys(t *testing.T) {
	store := sqlite.NewStore(setupTestDB(t))
	repos := store.Repos()
	ctx := context.Background()

	ingestWar(t, store, 10, "FoobarHex")

	tests := []struct {
		name   string
		insert func() error
	}{
		{"map for unknown war", func() error {
			return repos.Maps.Insert(ctx, &secondary.MapRecord{MapName: "FoobarHex", WarNumber: 12})
		}},
		{"label for unknown hex", func() error {
			return repos.Labels.Insert(ctx, &secondary.LabelRecord{MapName: "GhostHex", WarNumber: 10, Label: "Nowhere", X: 0.1, Y: 0.1})
		}},
		{"icon for unknown hex", func() error {
			return repos.Icons.Insert(ctx, &secondary.IconRecord{MapName: "GhostHex", WarNumber: 10, X: 0.1, Y: 0.1, IconType: 5})
		}},
		{"ticket origin on unknown hex", func() error {
			_, err := repos.Tickets.Insert(ctx, &secondary.TicketRecord{
				WarNumber:            10,
				Destination:          secondary.LocationRecord{MapName: "FoobarHex", X: 0.5, Y: 0.5, Description: "the depot"},
				Origin:               &secondary.LocationRecord{MapName: "GhostHex", X: 0.1, Y: 0.1, Description: "nowhere"},
				ObjectiveDescription: "Shirts",
				CreatedOn:            t0,
			})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.insert()
			assert.True(t, apperr.IsKind(err, apperr.ReferentialIntegrity), "got %v", err)
		})
	}
}

func TestIntegration_UsersAndCommandsAreIndependentOfWars(t *testing.T) {
	repos := sqlite.NewStore(setupTestDB(t)).Repos()
	ctx := context.Background()

	require.NoError(t, repos.Users.UpsertRole(ctx, &secondary.UserRoleRecord{UserID: 7, Guild: "logi-corps", Role: "ADMIN", UpdatedAt: t0}))
	require.NoError(t, repos.Commands.Insert(ctx, &secondary.CommandRecord{
		ID: "c1", Command: "war", UserID: 7, Guild: "logi-corps", Channel: "logi",
		Content: "!war", Outcome: secondary.OutcomeOK, CreatedAt: t0,
	}))

	got, err := repos.Users.GetRole(ctx, 7, "logi-corps")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", got.Role)

	recent, err := repos.Commands.ListRecent(ctx, "logi-corps", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "!war", recent[0].Content)
}
