// Package db owns the SQLite schema and connection setup for PFL-TK.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database. Used by tests.
const MemoryPath = ":memory:"

// Open creates or opens the SQLite database at path and ensures the schema.
// Safe to call repeatedly against the same file.
//
// The handle is limited to a single connection: PFL-TK is a single-writer
// application, and one connection keeps an in-memory database coherent.
// Callers must therefore run every statement of a transaction on the *sql.Tx.
func Open(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	database, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)
	database.SetConnMaxLifetime(0)

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(database, path); err != nil {
		database.Close()
		return nil, err
	}

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// dsn builds the driver connection string. Foreign keys are requested in the
// DSN as well as by pragma so a recycled connection keeps enforcing them.
func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func applyPragmas(database *sql.DB, path string) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}

	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
