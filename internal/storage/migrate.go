package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp brings the schema to the latest version. Scripts run in lexical
// order inside one transaction so a half-applied schema never survives.
func MigrateUp(db *sql.DB) error {
	return runScripts(db, ".up.sql", false)
}

// MigrateDown tears the schema back down, newest script first.
func MigrateDown(db *sql.DB) error {
	return runScripts(db, ".down.sql", true)
}

func runScripts(db *sql.DB, suffix string, reverse bool) error {
	names, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("storage: glob migrations: %w", err)
	}
	sort.Strings(names)
	if reverse {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin migration tx: %w", err)
	}
	for _, name := range names {
		script, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage: read migration %s: %w", name, readErr)
		}
		if _, execErr := tx.Exec(string(script)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage: apply migration %s: %w", name, execErr)
		}
	}
	return tx.Commit()
}
