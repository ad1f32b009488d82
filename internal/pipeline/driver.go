// Package pipeline discovers survey exports, cleans each one and combines the
// results into a single feature matrix with its label column.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/survey-features/internal/async"
	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/core/clean"
	"github.com/joseph-ayodele/survey-features/internal/core/encode"
	"github.com/joseph-ayodele/survey-features/internal/core/harmonize"
	"github.com/joseph-ayodele/survey-features/internal/frame"
	"github.com/joseph-ayodele/survey-features/internal/ingest"
)

// ErrNotProcessed marks files left untouched because an earlier file failed.
var ErrNotProcessed = errors.New("not processed")

// Options controls a run.
type Options struct {
	FilePattern string
	// Harmonize is common.HarmonizeIntersect or common.HarmonizeUnion.
	Harmonize  string
	Workers    int
	SkipFailed bool
	SkipHidden bool
	JobTimeout time.Duration
}

// FileReport records how one file fared.
type FileReport struct {
	Source string
	Path   string
	Stats  clean.Stats
	Err    error
}

// Result is the outcome of a run.
type Result struct {
	RunID    string
	Combined *frame.Combined
	Columns  []string
	Files    []FileReport
	Dir      ingest.DirStats
	Warnings []string
}

// Driver runs the whole batch.
type Driver struct {
	proc   *Processor
	opts   Options
	logger *slog.Logger
}

func NewDriver(cleaner *clean.Cleaner, opts Options, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Harmonize == "" {
		opts.Harmonize = common.HarmonizeIntersect
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Driver{proc: NewProcessor(logger, cleaner), opts: opts, logger: logger}
}

// Run processes every matching file under dir. Files are handled in sorted
// order and their rows appear in that order in the result.
func (d *Driver) Run(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = common.WithRunID(ctx, runID)
	}
	logger := common.LoggerFromContext(ctx, d.logger)
	res := &Result{RunID: runID}

	files, dirStats, err := ingest.Discover(dir, d.opts.FilePattern, d.opts.SkipHidden)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	res.Dir = dirStats
	logger.Info("pipeline.discover.ok", "dir", dir, "scanned", dirStats.Scanned, "matched", dirStats.Matched)
	if len(files) == 0 {
		res.warn(logger, fmt.Sprintf("no files matching %q in %s", d.opts.FilePattern, dir))
	}

	encodeEach := d.opts.Harmonize != common.HarmonizeUnion
	outcomes, reports, err := d.processAll(ctx, files, encodeEach)
	res.Files = reports
	if err != nil {
		return res, err
	}

	results, err := d.encodeAll(ctx, outcomes)
	if err != nil {
		return res, err
	}
	reportIdx := make(map[string]int, len(res.Files))
	for j, f := range res.Files {
		reportIdx[f.Source] = j
	}
	for _, r := range results {
		res.Files[reportIdx[r.Stats.Source]].Stats = r.Stats
		if r.Features.NumRows() == 0 {
			res.warn(logger, fmt.Sprintf("%s: no rows left after filtering", r.Stats.Source))
		}
	}

	combined, cols, err := d.combine(results)
	if err != nil {
		return res, err
	}
	if len(results) > 0 && len(cols) == 0 {
		res.warn(logger, "no indicator columns shared by all files")
	}
	res.Combined = combined
	res.Columns = cols

	logger.Info("pipeline.run.ok",
		"files", len(results),
		"rows", combined.NumRows(),
		"columns", len(cols),
		"harmonize", d.opts.Harmonize,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (r *Result) warn(logger *slog.Logger, msg string) {
	logger.Warn("pipeline.degenerate", "reason", msg)
	r.Warnings = append(r.Warnings, msg)
}

// processAll returns the successful outcomes in discovery order and a report
// for every file.
func (d *Driver) processAll(ctx context.Context, files []ingest.FileResult, encodeEach bool) ([]*FileOutcome, []FileReport, error) {
	outcomes := make([]*FileOutcome, len(files))
	errs := make([]error, len(files))

	if d.opts.Workers > 1 && len(files) > 1 {
		d.processParallel(ctx, files, encodeEach, outcomes, errs)
	} else {
		for i, f := range files {
			outcomes[i], errs[i] = d.proc.ProcessFile(ctx, f, encodeEach)
			if errs[i] != nil && !d.opts.SkipFailed {
				break
			}
		}
	}

	reports := make([]FileReport, len(files))
	var failed error
	for i, f := range files {
		reports[i] = FileReport{Source: f.Source, Path: f.Path, Err: errs[i]}
		switch {
		case errs[i] != nil:
			if failed == nil && !d.opts.SkipFailed {
				failed = errs[i]
			}
		case outcomes[i] == nil:
			reports[i].Err = ErrNotProcessed
		default:
			reports[i].Stats = outcomes[i].Prepared.Stats
		}
	}
	if failed != nil {
		return nil, reports, failed
	}

	var kept []*FileOutcome
	for i, f := range files {
		if errs[i] != nil {
			d.logger.Warn("pipeline.file.skipped", "source", f.Source, "err", errs[i])
			continue
		}
		kept = append(kept, outcomes[i])
	}
	return kept, reports, nil
}

func (d *Driver) processParallel(ctx context.Context, files []ingest.FileResult, encodeEach bool, outcomes []*FileOutcome, errs []error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := async.NewPool(ctx, func(ctx context.Context, job async.Job) error {
		out, err := d.proc.ProcessFile(ctx, files[job.Index], encodeEach)
		outcomes[job.Index], errs[job.Index] = out, err
		if err != nil && !d.opts.SkipFailed {
			cancel()
		}
		return err
	}, d.logger, async.WithWorkers(d.opts.Workers), async.WithJobTimeout(d.opts.JobTimeout))

	for i, f := range files {
		if err := pool.Enqueue(ctx, async.Job{Index: i, Path: f.Path, Source: f.Source}); err != nil {
			break
		}
	}
	// per-file errors are already recorded in errs
	_ = pool.Shutdown(context.Background())
	if !d.opts.SkipFailed {
		// report the real failure rather than the cancellations it caused
		first := -1
		for i, err := range errs {
			if err != nil && !errors.Is(err, context.Canceled) {
				first = i
				break
			}
		}
		if first >= 0 {
			for i := range errs {
				if i != first && errors.Is(errs[i], context.Canceled) {
					errs[i] = nil
					outcomes[i] = nil
				}
			}
		}
	}
}

func (d *Driver) encodeAll(ctx context.Context, outcomes []*FileOutcome) ([]*clean.Result, error) {
	results := make([]*clean.Result, len(outcomes))
	if d.opts.Harmonize != common.HarmonizeUnion {
		for i, o := range outcomes {
			results[i] = o.Result
		}
		return results, nil
	}

	sep := d.proc.Cleaner.Separator()
	vocabs := make([]encode.Vocabulary, len(outcomes))
	for i, o := range outcomes {
		vocabs[i] = encode.BuildVocabulary(o.Prepared.Features, sep)
	}
	vocab := harmonize.UnionVocabulary(vocabs...)
	for i, o := range outcomes {
		r, err := d.proc.Cleaner.Encode(common.WithSource(ctx, o.File.Source), o.Prepared, vocab)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", o.File.Source, err)
		}
		results[i] = r
	}
	return results, nil
}

// combine harmonizes the per-file tables, stacks them and joins the labels.
func (d *Driver) combine(results []*clean.Result) (*frame.Combined, []string, error) {
	features := make([]*frame.FeatureTable, len(results))
	labels := make([]*frame.LabelTable, len(results))
	for i, r := range results {
		features[i] = r.Features
		labels[i] = r.Labels
	}

	var cols []string
	if d.opts.Harmonize == common.HarmonizeUnion && len(features) > 0 {
		cols = features[0].Columns()
	} else {
		cols = harmonize.IntersectColumns(features)
	}
	projected, err := harmonize.Project(features, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("project: %w", err)
	}

	allFeatures, err := frame.ConcatFeatures(projected...)
	if err != nil {
		return nil, nil, fmt.Errorf("concat features: %w", err)
	}
	allLabels, err := frame.ConcatLabels(d.proc.Cleaner.LabelColumn(), labels...)
	if err != nil {
		return nil, nil, fmt.Errorf("concat labels: %w", err)
	}
	combined, err := frame.Join(allFeatures, allLabels)
	if err != nil {
		return nil, nil, err
	}
	return combined, cols, nil
}
