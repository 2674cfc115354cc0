package db

// SchemaSQL is the complete schema for fresh PFL-TK installs.
// This schema reflects the current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load it
// through Open(":memory:") or GetSchemaSQL() instead of hardcoding tables, so
// a repository referencing a column that doesn't exist here fails immediately.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Bump the version list in migrations
const SchemaSQL = `
-- Wars: one row per war observed on the configured shard.
-- war_number is monotonic; repositories reject regressions before insert.
CREATE TABLE IF NOT EXISTS wars (
	war_number INTEGER PRIMARY KEY NOT NULL CHECK(war_number >= 0),
	observed_at DATETIME NOT NULL
);

-- Maps: a hex tile scoped to the war it was observed in.
CREATE TABLE IF NOT EXISTS maps (
	map_name TEXT NOT NULL,
	war_number INTEGER NOT NULL,
	PRIMARY KEY (map_name, war_number),
	FOREIGN KEY (war_number) REFERENCES wars(war_number) ON UPDATE CASCADE ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_maps_war ON maps(war_number);

-- Labels: named sub-zone anchors on a hex, used for nearest-label descriptions.
-- Coordinates are relative to the hex, in [0, 1].
CREATE TABLE IF NOT EXISTS labels (
	map_name TEXT NOT NULL,
	war_number INTEGER NOT NULL,
	label TEXT NOT NULL,
	x REAL NOT NULL CHECK(x >= 0 AND x <= 1),
	y REAL NOT NULL CHECK(y >= 0 AND y <= 1),
	kind TEXT NOT NULL CHECK(kind IN ('Major', 'Minor')) DEFAULT 'Major',
	PRIMARY KEY (map_name, war_number, label),
	FOREIGN KEY (map_name, war_number) REFERENCES maps(map_name, war_number) ON UPDATE CASCADE ON DELETE CASCADE
);

-- Icon type codebook, seeded from icon_types.yaml.
CREATE TABLE IF NOT EXISTS icon_types (
	icon_type INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

-- Icons: points of interest (bases, depots, fields) on a hex during a war.
-- flags is the War API's 6-bit mask.
CREATE TABLE IF NOT EXISTS icons (
	map_name TEXT NOT NULL,
	war_number INTEGER NOT NULL,
	x REAL NOT NULL CHECK(x >= 0 AND x <= 1),
	y REAL NOT NULL CHECK(y >= 0 AND y <= 1),
	icon_type INTEGER NOT NULL,
	flags INTEGER NOT NULL CHECK(flags >= 0 AND flags <= 63) DEFAULT 0,
	PRIMARY KEY (map_name, war_number, x, y),
	FOREIGN KEY (map_name, war_number) REFERENCES maps(map_name, war_number) ON UPDATE CASCADE ON DELETE CASCADE
);

-- Tickets: hauling or touch tasks. A destination is required; the origin
-- columns are either all set or all NULL.
CREATE TABLE IF NOT EXISTS tickets (
	ticket_number INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
	war_number INTEGER NOT NULL,

	destination_map_name TEXT NOT NULL,
	destination_x REAL NOT NULL,
	destination_y REAL NOT NULL,
	destination_description TEXT NOT NULL,

	origin_map_name TEXT,
	origin_x REAL,
	origin_y REAL,
	origin_description TEXT,

	objective_description TEXT NOT NULL,
	created_on DATETIME NOT NULL,

	CHECK (
		(origin_map_name IS NULL AND origin_x IS NULL AND origin_y IS NULL AND origin_description IS NULL)
		OR (origin_map_name IS NOT NULL AND origin_x IS NOT NULL AND origin_y IS NOT NULL AND origin_description IS NOT NULL)
	),
	FOREIGN KEY (war_number) REFERENCES wars(war_number),
	FOREIGN KEY (destination_map_name, war_number) REFERENCES maps(map_name, war_number),
	FOREIGN KEY (origin_map_name, war_number) REFERENCES maps(map_name, war_number)
);

CREATE INDEX IF NOT EXISTS idx_tickets_war ON tickets(war_number);

-- Users: one role per user per guild.
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER NOT NULL,
	guild TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('TEAMSTER', 'SUBMITTER', 'SUPERVISOR', 'ADMIN')),
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, guild)
);

-- Commands: audit trail of chat commands received by the dispatcher.
CREATE TABLE IF NOT EXISTS commands (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	guild TEXT NOT NULL,
	channel TEXT,
	content TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('ok', 'rejected', 'error')),
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_commands_user ON commands(user_id, guild);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
