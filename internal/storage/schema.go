package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed migrations/001_initial.sql
var initialSchema string

type migration struct {
	version int
	sql     string
}

// migrations in ascending version order. Each one records its own version
// in schema_version.
var migrations = []migration{
	{version: 1, sql: initialSchema},
}

// migrate applies every migration newer than the stored version, each in
// its own transaction.
func (db *DB) migrate() error {
	current, err := schemaVersion(db.DB)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.Transaction(func(tx *sql.Tx) error {
			_, err := tx.Exec(m.sql)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}
	}
	return nil
}

// schemaVersion is 0 for an empty database.
func schemaVersion(q interface {
	QueryRow(query string, args ...any) *sql.Row
}) (int, error) {
	var version int
	err := q.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err == nil {
		return version, nil
	}

	var tables int
	if err := q.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = 'schema_version'
	`).Scan(&tables); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	return 0, fmt.Errorf("failed to read schema version: %w", err)
}
