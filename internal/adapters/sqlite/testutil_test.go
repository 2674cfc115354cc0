// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// setupTestDB goes through db.Open so tests run against the authoritative
// schema and the same connection settings as production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/tenth-speed-writer/PFLTK/internal/db"
)

// t0 is the observation time used by seeded wars.
var t0 = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedWar inserts a war directly, bypassing ordering checks.
func seedWar(t *testing.T, database *sql.DB, warNumber int) {
	t.Helper()
	_, err := database.Exec("INSERT INTO wars (war_number, observed_at) VALUES (?, ?)",
		warNumber, t0.Add(time.Duration(warNumber)*time.Hour))
	if err != nil {
		t.Fatalf("failed to seed war: %v", err)
	}
}

// seedMap inserts a hex for a war.
func seedMap(t *testing.T, database *sql.DB, mapName string, warNumber int) {
	t.Helper()
	_, err := database.Exec("INSERT INTO maps (map_name, war_number) VALUES (?, ?)", mapName, warNumber)
	if err != nil {
		t.Fatalf("failed to seed map: %v", err)
	}
}

// seedLabel inserts a major label on a hex.
func seedLabel(t *testing.T, database *sql.DB, mapName string, warNumber int, label string, x, y float64) {
	t.Helper()
	_, err := database.Exec("INSERT INTO labels (map_name, war_number, label, x, y, kind) VALUES (?, ?, ?, ?, ?, 'Major')",
		mapName, warNumber, label, x, y)
	if err != nil {
		t.Fatalf("failed to seed label: %v", err)
	}
}

// seedIcon inserts an icon on a hex.
func seedIcon(t *testing.T, database *sql.DB, mapName string, warNumber int, x, y float64, iconType, flags int) {
	t.Helper()
	_, err := database.Exec("INSERT INTO icons (map_name, war_number, x, y, icon_type, flags) VALUES (?, ?, ?, ?, ?, ?)",
		mapName, warNumber, x, y, iconType, flags)
	if err != nil {
		t.Fatalf("failed to seed icon: %v", err)
	}
}

// seedFoobarHex builds the standard fixture: war 10 with FoobarHex holding
// one label and one icon.
func seedFoobarHex(t *testing.T, database *sql.DB) {
	t.Helper()
	seedWar(t, database, 10)
	seedMap(t, database, "FoobarHex", 10)
	seedLabel(t, database, "FoobarHex", 10, "Thing A", 0.24, 0.93)
	seedIcon(t, database, "FoobarHex", 10, 0.25, 0.30, 25, 0)
}
