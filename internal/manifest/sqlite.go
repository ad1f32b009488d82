package manifest

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	createManifestTable = `CREATE TABLE IF NOT EXISTS manifest_columns (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE
)`
	selectManifest = `SELECT name FROM manifest_columns ORDER BY position`
)

// LoadSQLite reads manifest_columns ordered by position.
func LoadSQLite(ctx context.Context, path string) (*Manifest, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest db: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectManifest)
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan manifest row: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manifest: %w", err)
	}
	return New(path, columns)
}

// SaveSQLite replaces the contents of manifest_columns at path with m.
func SaveSQLite(ctx context.Context, path string, m *Manifest) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open manifest db: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, createManifestTable); err != nil {
		return fmt.Errorf("create manifest table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM manifest_columns`); err != nil {
		return fmt.Errorf("clear manifest: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO manifest_columns (position, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, c := range m.columns {
		if _, err := stmt.ExecContext(ctx, i, c); err != nil {
			return fmt.Errorf("insert %q: %w", c, err)
		}
	}
	return tx.Commit()
}
