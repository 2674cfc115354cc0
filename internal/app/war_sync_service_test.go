package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/primary"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

func newTestSyncService(t *testing.T, src *mockMapDataSource) (*WarSyncServiceImpl, secondary.Store) {
	t.Helper()
	store := newTestStore(t)
	logger, _ := newTestLogger()
	svc := NewWarSyncService(store, src, clock.NewFake(testStart), logger, WarSyncOptions{Concurrency: 3, Codebook: testCodebook})
	return svc, store
}

func TestExecuteColdStart_IngestsWar(t *testing.T) {
	svc, store := newTestSyncService(t, foobarSource())
	ctx := context.Background()

	result, err := svc.ExecuteColdStart(ctx)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.False(t, result.HadBaseline)
	assert.Equal(t, 10, result.WarNumber)
	assert.Equal(t, 2, result.Maps)
	assert.Equal(t, 3, result.Labels)
	assert.Equal(t, 2, result.Icons)
	assert.NotEmpty(t, result.RunID)

	war, err := store.Repos().Wars.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, war)
	assert.Equal(t, 10, war.WarNumber)
	assert.True(t, war.ObservedAt.Equal(testStart))

	maps, err := store.Repos().Maps.Latest(ctx)
	require.NoError(t, err)
	assert.Len(t, maps, 2)

	name, err := store.Repos().IconTypes.Name(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, "Travel Tent", name, "cold start seeds the codebook")
}

func TestExecuteColdStart_Repeatable(t *testing.T) {
	src := foobarSource()
	svc, _ := newTestSyncService(t, src)
	ctx := context.Background()

	_, err := svc.ExecuteColdStart(ctx)
	require.NoError(t, err)

	result, err := svc.ExecuteColdStart(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped, "second cold start should no-op")
	assert.Equal(t, 10, result.PreviousWar)
}

func TestSyncWar_SkipsWhenNotAdvanced(t *testing.T) {
	src := foobarSource()
	svc, _ := newTestSyncService(t, src)
	ctx := context.Background()

	_, err := svc.SyncWar(ctx)
	require.NoError(t, err)

	src.war = 9 // the source regressed
	result, err := svc.SyncWar(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 2, src.iconCalls, "no hex should be fetched for a skipped war")
}

func TestSyncWar_FetchFailureLeavesNoTrace(t *testing.T) {
	src := foobarSource()
	src.iconErrs["DepotHex"] = errors.New("connection reset")
	svc, store := newTestSyncService(t, src)
	ctx := context.Background()

	_, err := svc.SyncWar(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	war, err := store.Repos().Wars.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, war, "failed sync must not record the war")

	// Retrying after the fault clears behaves like a first attempt.
	delete(src.iconErrs, "DepotHex")
	result, err := svc.SyncWar(ctx)
	require.NoError(t, err)
	assert.False(t, result.HadBaseline)
	assert.Equal(t, 2, result.Maps)
}

func TestSyncWar_StorageRejectionRollsBack(t *testing.T) {
	src := foobarSource()
	// An out-of-range label on the second hex is rejected after the war
	// and the first hex have already been written.
	src.labels["DepotHex"] = append(src.labels["DepotHex"], secondary.LabelData{Text: "Off Map", X: 1.5, Y: 0.5, Kind: secondary.LabelKindMajor})
	svc, store := newTestSyncService(t, src)
	ctx := context.Background()

	_, err := svc.SyncWar(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument), "got %v", err)

	repos := store.Repos()
	war, err := repos.Wars.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, war)
	_, err = repos.Maps.Latest(ctx)
	assert.True(t, apperr.IsKind(err, apperr.NoData), "no map may survive the rollback: %v", err)

	counts, err := repos.Wars.CountMapData(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, &secondary.MapDataCounts{WarNumber: 10}, counts)

	src.labels["DepotHex"] = src.labels["DepotHex"][:1]
	result, err := svc.SyncWar(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, result.WarNumber)
	assert.Equal(t, 3, result.Labels)
}

func TestSyncWar_AdvanceScopesToNewWar(t *testing.T) {
	src := foobarSource()
	svc, store := newTestSyncService(t, src)
	ctx := context.Background()

	_, err := svc.SyncWar(ctx)
	require.NoError(t, err)

	src.advance(11, testStart.Add(24*time.Hour))
	src.addHex("NewHex", []secondary.LabelData{{Text: "Fresh", X: 0.5, Y: 0.5, Kind: secondary.LabelKindMajor}}, nil)

	result, err := svc.SyncWar(ctx)
	require.NoError(t, err)
	assert.True(t, result.HadBaseline)
	assert.Equal(t, 10, result.PreviousWar)
	assert.Equal(t, 11, result.WarNumber)

	maps, err := store.Repos().Maps.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "NewHex", maps[0].MapName)

	_, err = store.Repos().Icons.LatestForMap(ctx, "FoobarHex")
	e, ok := apperr.As(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperr.MapNotInCurrentWar, e.Kind)
	assert.Equal(t, 10, e.LastSeenWar)
}

func TestSyncWar_SourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*mockMapDataSource)
		want   string
	}{
		{
			name:   "war lookup fails",
			mutate: func(m *mockMapDataSource) { m.warErr = errors.New("timeout") },
			want:   "failed to fetch current war: timeout",
		},
		{
			name:   "hex list fails",
			mutate: func(m *mockMapDataSource) { m.hexErr = errors.New("503") },
			want:   "failed to fetch war #10: failed to fetch hex names: 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := foobarSource()
			tt.mutate(src)
			svc, store := newTestSyncService(t, src)

			_, err := svc.SyncWar(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			war, err := store.Repos().Wars.Latest(context.Background())
			require.NoError(t, err)
			assert.Nil(t, war)
		})
	}
}

func TestSyncWar_DropsDuplicateItems(t *testing.T) {
	src := newMockMapDataSource(3)
	src.addHex("DupHex",
		[]secondary.LabelData{
			{Text: "Twice", X: 0.1, Y: 0.1, Kind: secondary.LabelKindMajor},
			{Text: "Twice", X: 0.2, Y: 0.2, Kind: secondary.LabelKindMinor},
		},
		[]secondary.IconData{{X: 0.5, Y: 0.5, IconType: 33}, {X: 0.5, Y: 0.5, IconType: 34}},
	)
	svc, _ := newTestSyncService(t, src)

	result, err := svc.SyncWar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Labels)
	assert.Equal(t, 1, result.Icons)
}

// syncConcurrently runs each service's SyncWar at once. entered is how many
// calls must reach FetchHexNames before the gate opens.
func syncConcurrently(t *testing.T, src *mockMapDataSource, entered int, services ...*WarSyncServiceImpl) ([]*primary.SyncResult, []error) {
	t.Helper()
	src.hexGate = make(chan struct{})
	src.hexEntered = make(chan struct{}, len(services))

	results := make([]*primary.SyncResult, len(services))
	errs := make([]error, len(services))
	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.SyncWar(context.Background())
		}()
	}

	for range entered {
		select {
		case <-src.hexEntered:
		case <-time.After(5 * time.Second):
			t.Fatal("sync never reached FetchHexNames")
		}
	}
	close(src.hexGate)
	wg.Wait()
	return results, errs
}

func assertOneSyncWrote(t *testing.T, results []*primary.SyncResult, errs []error) {
	t.Helper()
	written := 0
	for i := range results {
		require.NoError(t, errs[i], "sync %d", i)
		if !results[i].Skipped {
			written++
			assert.Equal(t, 2, results[i].Maps)
		} else {
			assert.Equal(t, 10, results[i].PreviousWar)
		}
	}
	assert.Equal(t, 1, written, "exactly one sync writes the war")
}

func TestSyncWar_OverlappingCallsOnOneService(t *testing.T) {
	src := foobarSource()
	svc, store := newTestSyncService(t, src)

	results, errs := syncConcurrently(t, src, 1, svc, svc)
	assertOneSyncWrote(t, results, errs)

	counts, err := store.Repos().Wars.CountMapData(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, &secondary.MapDataCounts{WarNumber: 10, Maps: 2, Labels: 3, Icons: 2}, counts)
}

func TestSyncWar_WarRecordedWhileFetching(t *testing.T) {
	src := foobarSource()
	first, store := newTestSyncService(t, src)
	logger, _ := newTestLogger()
	second := NewWarSyncService(store, src, clock.NewFake(testStart), logger, WarSyncOptions{Concurrency: 3})

	// Both have read the latest war before either writes.
	results, errs := syncConcurrently(t, src, 2, first, second)
	assertOneSyncWrote(t, results, errs)

	war, err := store.Repos().Wars.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, war)
	assert.Equal(t, 10, war.WarNumber)
}
