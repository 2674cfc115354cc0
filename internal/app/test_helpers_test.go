package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/tenth-speed-writer/PFLTK/internal/adapters/sqlite"
	"github.com/tenth-speed-writer/PFLTK/internal/clock"
	"github.com/tenth-speed-writer/PFLTK/internal/db"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

var testStart = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

// newTestStore opens an in-memory store with the real schema.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	database, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return sqlite.NewStore(database)
}

// newTestLogger returns a logger that records entries instead of printing them.
func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// Ensure mockMapDataSource implements the interface
var _ secondary.MapDataSource = (*mockMapDataSource)(nil)

// mockMapDataSource implements secondary.MapDataSource for testing.
type mockMapDataSource struct {
	mu sync.Mutex

	war       int
	fetchedAt time.Time
	hexes     []string
	labels    map[string][]secondary.LabelData
	icons     map[string][]secondary.IconData

	warErr error
	hexErr error

	// hexGate, when set, holds FetchHexNames until closed; each caller
	// first signals hexEntered.
	hexGate    chan struct{}
	hexEntered chan struct{}

	iconErrs  map[string]error
	warCalls  int
	iconCalls int
}

func newMockMapDataSource(war int) *mockMapDataSource {
	return &mockMapDataSource{
		war:       war,
		fetchedAt: testStart,
		labels:    make(map[string][]secondary.LabelData),
		icons:     make(map[string][]secondary.IconData),
		iconErrs:  make(map[string]error),
	}
}

// addHex registers a hex with its labels and icons.
func (m *mockMapDataSource) addHex(name string, labels []secondary.LabelData, icons []secondary.IconData) {
	m.hexes = append(m.hexes, name)
	m.labels[name] = labels
	m.icons[name] = icons
}

// advance moves the source to a new war, dropping all hexes.
func (m *mockMapDataSource) advance(war int, at time.Time) {
	m.war = war
	m.fetchedAt = at
	m.hexes = nil
	m.labels = make(map[string][]secondary.LabelData)
	m.icons = make(map[string][]secondary.IconData)
}

func (m *mockMapDataSource) FetchCurrentWar(ctx context.Context) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warCalls++
	if m.warErr != nil {
		return 0, time.Time{}, m.warErr
	}
	return m.war, m.fetchedAt, nil
}

func (m *mockMapDataSource) FetchHexNames(ctx context.Context) ([]string, error) {
	if m.hexGate != nil {
		m.hexEntered <- struct{}{}
		<-m.hexGate
	}
	if m.hexErr != nil {
		return nil, m.hexErr
	}
	return append([]string(nil), m.hexes...), nil
}

func (m *mockMapDataSource) FetchLabels(ctx context.Context, hex string, filter secondary.LabelFilter) ([]secondary.LabelData, error) {
	if !filter.Valid() {
		return nil, fmt.Errorf("bad filter %q", filter)
	}
	var out []secondary.LabelData
	for _, l := range m.labels[hex] {
		if filter.Match(l.Kind) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockMapDataSource) FetchIcons(ctx context.Context, hex string) ([]secondary.IconData, error) {
	m.mu.Lock()
	m.iconCalls++
	err := m.iconErrs[hex]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.icons[hex], nil
}

// foobarSource is the standard fixture: war 10 with FoobarHex and DepotHex.
func foobarSource() *mockMapDataSource {
	src := newMockMapDataSource(10)
	src.addHex("FoobarHex",
		[]secondary.LabelData{
			{Text: "Thing A", X: 0.24, Y: 0.93, Kind: secondary.LabelKindMajor},
			{Text: "Loggerhead", X: 0.2, Y: 0.25, Kind: secondary.LabelKindMinor},
		},
		[]secondary.IconData{{X: 0.25, Y: 0.30, IconType: 25, Flags: 0}},
	)
	src.addHex("DepotHex",
		[]secondary.LabelData{{Text: "Port of Entry", X: 0.5, Y: 0.5, Kind: secondary.LabelKindMajor}},
		[]secondary.IconData{{X: 0.51, Y: 0.5, IconType: 33, Flags: 0x01}},
	)
	return src
}

var testCodebook = []secondary.IconTypeRecord{
	{IconType: 25, Name: "Travel Tent"},
	{IconType: 33, Name: "Storage Depot"},
	{IconType: 45, Name: "Relic Base"},
}

// newSyncedFixture builds a store synced from foobarSource.
func newSyncedFixture(t *testing.T) (*sqlite.Store, *mockMapDataSource, *clock.Fake) {
	t.Helper()
	store := newTestStore(t)
	src := foobarSource()
	clk := clock.NewFake(testStart)
	logger, _ := newTestLogger()

	svc := NewWarSyncService(store, src, clk, logger, WarSyncOptions{Concurrency: 2, Codebook: testCodebook})
	if _, err := svc.ExecuteColdStart(context.Background()); err != nil {
		t.Fatalf("cold start failed: %v", err)
	}
	return store, src, clk
}
