package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/core/clean"
	"github.com/joseph-ayodele/survey-features/internal/core/encode"
	"github.com/joseph-ayodele/survey-features/internal/core/rowfilter"
	"github.com/joseph-ayodele/survey-features/internal/export"
	"github.com/joseph-ayodele/survey-features/internal/ingest"
	"github.com/joseph-ayodele/survey-features/internal/manifest"
	"github.com/joseph-ayodele/survey-features/internal/pipeline"
)

type runFlags struct {
	dir         string
	manifest    string
	out         string
	sqlite      string
	sqliteTable string
	pgDSN       string
	pgTable     string
	workers     int
	harmonize   string
	match       string
	separator   string
	skipFailed  bool
	preview     int
	runID       string
	watch       bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean, encode and combine every survey export under a directory",
		Long: `Discover every survey_results_public export under --dir, clean each one,
harmonize their indicator columns and write the combined matrix.

A preview is printed to stdout. Use --out (.csv or .xlsx), --sqlite or
--pg-dsn to persist the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if f.watch {
				if f.runID != "" {
					return common.NewAppError(common.CodeConfig, "--run-id cannot be combined with --watch", common.ErrInvalidInput)
				}
				return watchPipeline(cmd, cfg)
			}
			if f.runID != "" {
				if verr := common.UUID("run-id", f.runID); verr != nil {
					return common.NewAppError(common.CodeConfig, verr.Error(), common.ErrInvalidInput)
				}
			}
			return runPipeline(cmd, cfg, f.runID)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.dir, "dir", "", "root directory holding the survey exports")
	fl.StringVar(&f.manifest, "manifest", "", "column manifest (.json, .txt or .db)")
	fl.StringVar(&f.out, "out", "", "write the matrix to this .csv or .xlsx file")
	fl.StringVar(&f.sqlite, "sqlite", "", "write the matrix to this SQLite database")
	fl.StringVar(&f.sqliteTable, "sqlite-table", "", "SQLite table name")
	fl.StringVar(&f.pgDSN, "pg-dsn", "", "copy the matrix into this Postgres database")
	fl.StringVar(&f.pgTable, "pg-table", "", "Postgres table name")
	fl.IntVar(&f.workers, "workers", 0, "files processed concurrently")
	fl.StringVar(&f.harmonize, "harmonize", "", "column harmonization: intersect or union")
	fl.StringVar(&f.match, "match", "", "indicator matching: substring or token")
	fl.StringVar(&f.separator, "separator", "", "multi-value separator")
	fl.BoolVar(&f.skipFailed, "skip-failed", false, "drop files that fail instead of aborting")
	fl.IntVar(&f.preview, "preview", -1, "rows to print (0 disables the preview)")
	fl.StringVar(&f.runID, "run-id", "", "run identifier (UUID); generated when empty")
	fl.BoolVar(&f.watch, "watch", false, "keep running and rebuild whenever a survey export changes")
	return cmd
}

// apply overrides cfg with every flag set on the command line.
func (f *runFlags) apply(cmd *cobra.Command, cfg *common.Config) {
	fl := cmd.Flags()
	if fl.Changed("dir") {
		cfg.Input.Dir = f.dir
	}
	if fl.Changed("manifest") {
		cfg.Manifest.Path = f.manifest
	}
	if fl.Changed("out") {
		cfg.Export.OutPath = f.out
	}
	if fl.Changed("sqlite") {
		cfg.Export.SQLitePath = f.sqlite
	}
	if fl.Changed("sqlite-table") {
		cfg.Export.SQLiteTable = f.sqliteTable
	}
	if fl.Changed("pg-dsn") {
		cfg.Export.Database.DSN = f.pgDSN
	}
	if fl.Changed("pg-table") {
		cfg.Export.Database.Table = f.pgTable
	}
	if fl.Changed("workers") {
		cfg.Pipeline.Workers = f.workers
	}
	if fl.Changed("harmonize") {
		cfg.Pipeline.Harmonize = f.harmonize
	}
	if fl.Changed("match") {
		cfg.Clean.MatchMode = f.match
	}
	if fl.Changed("separator") {
		cfg.Clean.Separator = f.separator
	}
	if fl.Changed("skip-failed") {
		cfg.Pipeline.SkipFailed = f.skipFailed
	}
	if fl.Changed("preview") {
		cfg.Export.Preview = f.preview
	}
}

func runPipeline(cmd *cobra.Command, cfg *common.Config, runID string) error {
	ctx := cmd.Context()
	if runID != "" {
		ctx = common.WithRunID(ctx, runID)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	out := cmd.OutOrStdout()

	m, err := manifest.Load(ctx, cfg.Manifest.Path)
	if err != nil {
		return common.WrapError(err, "load manifest")
	}
	logger.Info("manifest.load.ok", "source", m.Source(), "columns", m.Len())

	cleaner, err := clean.NewCleaner(clean.Config{
		Manifest:           m,
		ReservedColumns:    cfg.Clean.ReservedColumns,
		CompensationColumn: cfg.Clean.CompensationColumn,
		MissingSentinel:    cfg.Clean.MissingSentinel,
		NullMarkers:        cfg.Clean.NullMarkers,
		Filters:            rowfilter.FilterSpec(cfg.Clean.Filters),
		Encoding: encode.Options{
			Separator: cfg.Clean.Separator,
			Match:     encode.Match(cfg.Clean.MatchMode),
		},
	}, logger)
	if err != nil {
		return err
	}

	driver := pipeline.NewDriver(cleaner, pipeline.Options{
		FilePattern: cfg.Input.FilePattern,
		Harmonize:   cfg.Pipeline.Harmonize,
		Workers:     cfg.Pipeline.Workers,
		SkipFailed:  cfg.Pipeline.SkipFailed,
		SkipHidden:  true,
	}, logger)

	res, err := driver.Run(ctx, cfg.Input.Dir)
	if res != nil {
		printSummary(out, res)
	}
	if err != nil {
		return err
	}

	if cfg.Export.Preview > 0 {
		fmt.Fprintln(out)
		if err := export.Preview(out, res.Combined, cfg.Export.Preview); err != nil {
			return err
		}
	}

	svc := export.NewService(logger)
	exportCtx := common.WithRunID(ctx, res.RunID)
	if cfg.Export.OutPath != "" {
		if err := svc.WriteFile(exportCtx, cfg.Export.OutPath, res.Combined); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", cfg.Export.OutPath)
	}
	if cfg.Export.SQLitePath != "" {
		if err := svc.WriteSQLite(exportCtx, cfg.Export.SQLitePath, cfg.Export.SQLiteTable, res.Combined); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (table %s)\n", cfg.Export.SQLitePath, cfg.Export.SQLiteTable)
	}
	if cfg.Export.Database.DSN != "" {
		pool, err := export.OpenPostgres(ctx, export.PostgresConfig{
			DSN:         cfg.Export.Database.DSN,
			MaxConns:    cfg.Export.Database.MaxConns,
			DialTimeout: cfg.Export.Database.DialTimeout,
		}, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := svc.CopyToPostgres(exportCtx, pool, cfg.Export.Database.Table, res.Combined); err != nil {
			return err
		}
		fmt.Fprintf(out, "copied %d rows into %s\n", res.Combined.NumRows(), cfg.Export.Database.Table)
	}
	return nil
}

// watchPipeline runs once, then again after every burst of changes under the
// input directory, until interrupted. Failed runs are logged and the watch
// continues.
func watchPipeline(cmd *cobra.Command, cfg *common.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

	events, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:       cfg.Input.Dir,
		Pattern:    cfg.Input.FilePattern,
		SkipHidden: true,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watch.start", "dir", cfg.Input.Dir)

	if err := runPipeline(cmd, cfg, ""); err != nil {
		logger.Error("watch.run.failed", "error", err)
	}
	for changed := range events {
		logger.Info("watch.rerun", "changed", len(changed))
		if err := runPipeline(cmd, cfg, ""); err != nil {
			logger.Error("watch.run.failed", "error", err)
		}
	}
	logger.Info("watch.stop")
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "Files: %d matched of %d scanned\n", res.Dir.Matched, res.Dir.Scanned)
	for _, f := range res.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "  %-40s FAILED: %v\n", f.Source, f.Err)
			continue
		}
		s := f.Stats
		fmt.Fprintf(w, "  %-40s read=%d with_comp=%d roles=%d complete=%d indicators=%d\n",
			f.Source, s.RowsRead, s.AfterCompensation, s.AfterFilter, s.AfterNullDrop, s.Indicators)
	}
	if res.Combined != nil {
		fmt.Fprintf(w, "Combined: %d rows, %d indicator columns\n", res.Combined.NumRows(), len(res.Columns))
	}
	for _, msg := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}
