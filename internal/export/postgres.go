package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// OpenPostgres creates a pgx pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "survey-features"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("database ping failed", "error", err)
		return nil, fmt.Errorf("ping: %w", err)
	}
	logger.Info("successfully connected to database")
	return pool, nil
}

// CopyToPostgres replaces table with the rows of c using COPY. The whole
// write happens in one transaction.
func (s *Service) CopyToPostgres(ctx context.Context, pool *pgxpool.Pool, table string, c *frame.Combined) error {
	start := time.Now()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident := pgx.Identifier{table}.Sanitize()
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(table, c, "smallint", "real")); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, c.Header(), pgx.CopyFromRows(pgRows(c)))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	common.LoggerFromContext(ctx, s.logger).Info("export.postgres.ok",
		"table", table,
		"rows", n,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// pgRows converts c to COPY rows: int16 indicators and a float32 label.
func pgRows(c *frame.Combined) [][]any {
	features := c.Features()
	labels := c.Labels()
	rows := make([][]any, c.NumRows())
	for r := range rows {
		row := make([]any, 0, features.NumCols()+1)
		for col := 0; col < features.NumCols(); col++ {
			row = append(row, int16(features.At(r, col)))
		}
		rows[r] = append(row, labels.At(r))
	}
	return rows
}
