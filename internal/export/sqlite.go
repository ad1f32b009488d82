package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// WriteSQLite replaces table in the SQLite database at path with the rows of c.
// Indicators are stored as INTEGER and the label as REAL.
func (s *Service) WriteSQLite(ctx context.Context, path, table string, c *frame.Combined) error {
	start := time.Now()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, c, "INTEGER", "REAL")); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	header := c.Header()
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for r := 0; r < c.NumRows(); r++ {
		if _, err := stmt.ExecContext(ctx, c.Values(r)...); err != nil {
			return fmt.Errorf("insert %s: %w", c.RowID(r), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	common.LoggerFromContext(ctx, s.logger).Info("export.sqlite.ok",
		"path", path,
		"table", table,
		"rows", c.NumRows(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// createTableSQL builds a CREATE TABLE statement for the header of c.
func createTableSQL(table string, c *frame.Combined, indicatorType, labelType string) string {
	header := c.Header()
	defs := make([]string, len(header))
	for i, h := range header {
		typ := indicatorType
		if i == len(header)-1 {
			typ = labelType
		}
		defs[i] = quoteIdent(h) + " " + typ + " NOT NULL"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
