package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	database, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	for _, table := range []string{"wars", "maps", "labels", "icon_types", "icons", "tickets", "users", "commands", "schema_version"} {
		var n int
		err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s missing", table)
	}

	version, err := CurrentVersion(database)
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), version)
}

func TestOpen_IdempotentOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pfltk.db")

	first, err := Open(path)
	require.NoError(t, err)
	_, err = first.Exec("INSERT INTO wars (war_number, observed_at) VALUES (100, CURRENT_TIMESTAMP)")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM wars").Scan(&count))
	assert.Equal(t, 1, count, "reopening must not drop data")
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	database, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec("INSERT INTO maps (map_name, war_number) VALUES ('DeadLandsHex', 999)")
	assert.Error(t, err, "map referencing an unknown war should be rejected")
}

func TestInitSchema_MigratesLegacyTables(t *testing.T) {
	database, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	// Simulate a pre-versioning database holding the legacy tables.
	_, err = database.Exec(`
		DELETE FROM schema_version;
		CREATE TABLE major_labels (map_name TEXT, war_number INTEGER, label TEXT, x REAL, y REAL);
		CREATE TABLE icon_type_names (icon_id INTEGER, icon_text TEXT);
		INSERT INTO wars (war_number, observed_at) VALUES (7, CURRENT_TIMESTAMP);
		INSERT INTO maps (map_name, war_number) VALUES ('FarranacCoastHex', 7);
		INSERT INTO major_labels VALUES ('FarranacCoastHex', 7, 'The Jade Cove', 0.4, 0.6);
		INSERT INTO icon_type_names VALUES (45, 'Relic Base');
	`)
	require.NoError(t, err)

	require.NoError(t, InitSchema(database))

	var label, kind string
	err = database.QueryRow("SELECT label, kind FROM labels WHERE map_name = 'FarranacCoastHex'").Scan(&label, &kind)
	require.NoError(t, err)
	assert.Equal(t, "The Jade Cove", label)
	assert.Equal(t, "Major", kind)

	var name string
	require.NoError(t, database.QueryRow("SELECT name FROM icon_types WHERE icon_type = 45").Scan(&name))
	assert.Equal(t, "Relic Base", name)

	var legacy int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name IN ('major_labels', 'icon_type_names')").Scan(&legacy))
	assert.Zero(t, legacy)
}

// originalSchema is the layout written by the first PFL-TK release.
const originalSchema = `
CREATE TABLE wars (
	war_number INTEGER PRIMARY KEY NOT NULL,
	last_fetched_on TEXT NOT NULL
);
CREATE TABLE maps (
	map_name TEXT NOT NULL,
	war_number INTEGER NOT NULL,
	CONSTRAINT pk_maps PRIMARY KEY (map_name, war_number),
	CONSTRAINT fk_map_war FOREIGN KEY (war_number) REFERENCES wars (war_number)
		ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE major_labels (
	map_name TEXT NOT NULL,
	war_number INTEGER NOT NULL,
	label TEXT NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	CONSTRAINT pk_labels PRIMARY KEY (map_name, war_number, label),
	CONSTRAINT fk_label_map_name FOREIGN KEY (map_name, war_number) REFERENCES maps (map_name, war_number)
		ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE icon_type_names (
	icon_id INTEGER PRIMARY KEY,
	icon_text TEXT NOT NULL
);
CREATE TABLE icons (
	map_name TEXT NOT NULL,
	war_number INTEGER NOT NULL,
	x REAL NOT NULL,
	y REAL NOT NULL,
	icon_type INTEGER NOT NULL,
	CONSTRAINT pk_icons PRIMARY KEY (map_name, war_number, x, y),
	CONSTRAINT fk_icon_map_name FOREIGN KEY (map_name, war_number) REFERENCES maps (map_name, war_number)
		ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE tickets (
	ticket_number INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	war_number INT NOT NULL,
	destination_map_name TEXT NOT NULL,
	destination_x REAL NOT NULL,
	destination_y REAL NOT NULL,
	destination_description TEXT,
	origin_map_name TEXT,
	origin_x REAL,
	origin_y REAL,
	origin_description TEXT,
	objective_description TEXT NOT NULL,
	created_on TEXT NOT NULL,
	CONSTRAINT fk_ticket_destination_map FOREIGN KEY (destination_map_name, war_number, destination_x, destination_y)
		REFERENCES icons (map_name, war_number, x, y) ON UPDATE CASCADE ON DELETE CASCADE,
	CONSTRAINT fk_ticket_origin_map FOREIGN KEY (origin_map_name, war_number, origin_x, origin_y)
		REFERENCES icons (map_name, war_number, x, y) ON UPDATE CASCADE ON DELETE CASCADE
);

INSERT INTO wars VALUES (97, '2024-03-01 18:30:00.123456');
INSERT INTO maps VALUES ('FarranacCoastHex', 97);
INSERT INTO major_labels VALUES ('FarranacCoastHex', 97, 'The Jade Cove', 0.4, 0.6);
INSERT INTO icon_type_names VALUES (45, 'Relic Base');
INSERT INTO icons VALUES ('FarranacCoastHex', 97, 0.41, 0.62, 45);
INSERT INTO icons VALUES ('FarranacCoastHex', 97, 0.8, 0.1, 33);
INSERT INTO tickets VALUES (1, 97, 'FarranacCoastHex', 0.41, 0.62, NULL,
	'FarranacCoastHex', 0.8, 0.1, NULL, 'Shirts', '2024-03-01 19:00:00.5');
`

func TestOpen_MigratesOriginalDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(originalSchema)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	database, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	version, err := CurrentVersion(database)
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), version)

	var observedAt time.Time
	require.NoError(t, database.QueryRow("SELECT observed_at FROM wars WHERE war_number = 97").Scan(&observedAt))
	assert.Equal(t, time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC), observedAt.UTC())

	var flags int
	require.NoError(t, database.QueryRow("SELECT flags FROM icons WHERE icon_type = 45").Scan(&flags))
	assert.Zero(t, flags)

	var destDesc string
	var originMap sql.NullString
	err = database.QueryRow("SELECT destination_description, origin_map_name FROM tickets WHERE ticket_number = 1").Scan(&destDesc, &originMap)
	require.NoError(t, err)
	assert.Empty(t, destDesc)
	assert.False(t, originMap.Valid, "an origin without a description is dropped")

	// The next war and its data go in with the current column set.
	_, err = database.Exec("INSERT INTO wars (war_number, observed_at) VALUES (98, ?)", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO maps (map_name, war_number) VALUES ('FarranacCoastHex', 98)")
	require.NoError(t, err)
	_, err = database.Exec("INSERT INTO icons (map_name, war_number, x, y, icon_type, flags) VALUES ('FarranacCoastHex', 98, 0.5, 0.5, 33, 1)")
	require.NoError(t, err)

	// Tickets reference maps now, so a point with no icon is accepted.
	_, err = database.Exec(`INSERT INTO tickets (war_number, destination_map_name, destination_x, destination_y,
		destination_description, objective_description, created_on)
		VALUES (98, 'FarranacCoastHex', 0.2, 0.2, 'the beach', 'Bmats', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var next int
	require.NoError(t, database.QueryRow("SELECT MAX(ticket_number) FROM tickets").Scan(&next))
	assert.Equal(t, 2, next)

	_, err = database.Exec("INSERT INTO maps (map_name, war_number) VALUES ('GhostHex', 999)")
	assert.Error(t, err, "foreign keys are enforced again after migrating")
}

func TestParseIconCodebook(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "valid", input: "icon_types:\n  - {id: 1, name: A}\n  - {id: 2, name: B}\n", want: 2},
		{name: "duplicate id", input: "icon_types:\n  - {id: 1, name: A}\n  - {id: 1, name: B}\n", wantErr: true},
		{name: "blank name", input: "icon_types:\n  - {id: 3}\n", wantErr: true},
		{name: "malformed", input: "icon_types: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIconCodebook([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestIconCodebook_Embedded(t *testing.T) {
	book, err := IconCodebook()
	require.NoError(t, err)
	require.NotEmpty(t, book)

	names := map[int]string{}
	for _, entry := range book {
		names[entry.ID] = entry.Name
	}
	assert.Equal(t, "Relic Base", names[45])
	assert.Equal(t, "Storage Depot", names[33])
}
