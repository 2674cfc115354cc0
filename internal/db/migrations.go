package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "fold_major_labels_into_labels",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "rename_icon_type_names_to_icon_types",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "rebuild_wars_with_observed_at",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "add_icon_flags",
		Up:      migrationV5,
	},
	{
		Version: 6,
		Name:    "rebuild_tickets_against_maps",
		Up:      migrationV6,
	},
}

// LatestVersion returns the highest known migration version.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// InitSchema creates the schema on a fresh database, or brings an existing
// one up to date. Idempotent.
func InitSchema(database *sql.DB) error {
	if err := ensureVersionTable(database); err != nil {
		return err
	}

	fresh, err := isFreshInstall(database)
	if err != nil {
		return err
	}

	if fresh {
		// Completely fresh install - create modern schema directly and mark
		// every migration as applied so none of them run.
		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin schema transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(SchemaSQL); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		for _, m := range migrations {
			if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
		}
		return tx.Commit()
	}

	return RunMigrations(database)
}

// RunMigrations executes all pending migrations, each in its own transaction.
// Foreign keys are off while migrations rebuild tables and are checked before
// each commit; this relies on Open limiting the pool to one connection.
func RunMigrations(database *sql.DB) error {
	if err := ensureVersionTable(database); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(database)
	if err != nil {
		return err
	}
	if currentVersion >= LatestVersion() {
		return nil
	}

	if _, err := database.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys for migration: %w", err)
	}
	defer database.Exec("PRAGMA foreign_keys = ON")

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if err := checkForeignKeys(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(database *sql.DB) (int, error) {
	var version int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

func ensureVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// isFreshInstall reports whether neither versions nor any known table exist.
func isFreshInstall(database *sql.DB) (bool, error) {
	var applied int
	if err := database.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied); err != nil {
		return false, fmt.Errorf("failed to count applied migrations: %w", err)
	}
	if applied > 0 {
		return false, nil
	}

	var tables int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('wars', 'maps', 'major_labels', 'icon_type_names')",
	).Scan(&tables)
	if err != nil {
		return false, fmt.Errorf("failed to inspect existing tables: %w", err)
	}
	return tables == 0, nil
}

func tableExists(tx *sql.Tx, name string) (bool, error) {
	var n int
	err := tx.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	var n int
	err := tx.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// checkForeignKeys fails if any row references a missing parent.
func checkForeignKeys(tx *sql.Tx) error {
	rows, err := tx.Query("PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("failed to check foreign keys: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var table, parent string
		var rowid sql.NullInt64
		var fkid int
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("failed to read foreign key violation: %w", err)
		}
		return fmt.Errorf("row %d of %s references a missing %s row", rowid.Int64, table, parent)
	}
	return rows.Err()
}

// migrationV1 creates every table that doesn't exist yet.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(SchemaSQL)
	return err
}

// migrationV2 copies rows from the legacy major_labels table into labels.
func migrationV2(tx *sql.Tx) error {
	exists, err := tableExists(tx, "major_labels")
	if err != nil || !exists {
		return err
	}

	_, err = tx.Exec(`
		INSERT OR IGNORE INTO labels (map_name, war_number, label, x, y, kind)
		SELECT map_name, war_number, label, x, y, 'Major' FROM major_labels
	`)
	if err != nil {
		return fmt.Errorf("failed to copy major_labels: %w", err)
	}

	_, err = tx.Exec("DROP TABLE major_labels")
	return err
}

// migrationV3 copies the legacy icon_type_names codebook into icon_types.
func migrationV3(tx *sql.Tx) error {
	exists, err := tableExists(tx, "icon_type_names")
	if err != nil || !exists {
		return err
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO icon_types (icon_type, name)
		SELECT icon_id, icon_text FROM icon_type_names
	`)
	if err != nil {
		return fmt.Errorf("failed to copy icon_type_names: %w", err)
	}

	_, err = tx.Exec("DROP TABLE icon_type_names")
	return err
}

// migrationV4 rebuilds a legacy wars table, whose fetch time lived in a TEXT
// last_fetched_on column, with observed_at.
func migrationV4(tx *sql.Tx) error {
	legacy, err := columnExists(tx, "wars", "last_fetched_on")
	if err != nil || !legacy {
		return err
	}

	_, err = tx.Exec(`
		CREATE TABLE wars_rebuild (
			war_number INTEGER PRIMARY KEY NOT NULL CHECK(war_number >= 0),
			observed_at DATETIME NOT NULL
		);
		INSERT INTO wars_rebuild (war_number, observed_at)
		SELECT war_number, COALESCE(datetime(last_fetched_on), CURRENT_TIMESTAMP) FROM wars;
		DROP TABLE wars;
		ALTER TABLE wars_rebuild RENAME TO wars;
	`)
	if err != nil {
		return fmt.Errorf("failed to rebuild wars: %w", err)
	}
	return nil
}

// migrationV5 adds the flags mask to a legacy icons table.
func migrationV5(tx *sql.Tx) error {
	exists, err := columnExists(tx, "icons", "flags")
	if err != nil || exists {
		return err
	}

	_, err = tx.Exec("ALTER TABLE icons ADD COLUMN flags INTEGER NOT NULL DEFAULT 0 CHECK(flags >= 0 AND flags <= 63)")
	if err != nil {
		return fmt.Errorf("failed to add icons.flags: %w", err)
	}
	return nil
}

// migrationV6 rebuilds a legacy tickets table whose locations referenced
// icons. Locations now reference maps, descriptions are required and a
// partial origin is dropped.
func migrationV6(tx *sql.Tx) error {
	var legacy int
	err := tx.QueryRow(`SELECT COUNT(*) FROM pragma_foreign_key_list('tickets') WHERE "table" = 'icons'`).Scan(&legacy)
	if err != nil || legacy == 0 {
		return err
	}

	_, err = tx.Exec(`
		CREATE TABLE tickets_rebuild (
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
		INSERT INTO tickets_rebuild
		SELECT
			ticket_number, war_number,
			destination_map_name, destination_x, destination_y, COALESCE(destination_description, ''),
			CASE WHEN complete THEN origin_map_name END,
			CASE WHEN complete THEN origin_x END,
			CASE WHEN complete THEN origin_y END,
			CASE WHEN complete THEN origin_description END,
			objective_description, COALESCE(datetime(created_on), CURRENT_TIMESTAMP)
		FROM (
			SELECT *, (origin_map_name IS NOT NULL AND origin_x IS NOT NULL
				AND origin_y IS NOT NULL AND origin_description IS NOT NULL) AS complete
			FROM tickets
		);
		DROP TABLE tickets;
		ALTER TABLE tickets_rebuild RENAME TO tickets;
		CREATE INDEX IF NOT EXISTS idx_tickets_war ON tickets(war_number);
	`)
	if err != nil {
		return fmt.Errorf("failed to rebuild tickets: %w", err)
	}
	return nil
}
