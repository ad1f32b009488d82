// Package clean turns one raw survey export into an aligned pair of indicator
// features and compensation labels.
package clean

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/core/encode"
	"github.com/joseph-ayodele/survey-features/internal/core/rowfilter"
	"github.com/joseph-ayodele/survey-features/internal/frame"
	"github.com/joseph-ayodele/survey-features/internal/manifest"
)

// Config holds everything a Cleaner needs. The manifest is loaded once by the
// caller and shared read-only.
type Config struct {
	Manifest           *manifest.Manifest
	ReservedColumns    []string
	CompensationColumn string
	MissingSentinel    string
	NullMarkers        []string
	Filters            rowfilter.FilterSpec
	Encoding           encode.Options
}

// Stats counts rows surviving each stage of one file.
type Stats struct {
	Source            string
	RowsRead          int
	AfterCompensation int
	AfterFilter       int
	AfterNullDrop     int
	Indicators        int
}

// Prepared is a file after filtering and null-dropping, before encoding.
type Prepared struct {
	Features *frame.Table
	Labels   *frame.LabelTable
	Stats    Stats
}

// Result is a fully cleaned file.
type Result struct {
	Features *frame.FeatureTable
	Labels   *frame.LabelTable
	Stats    Stats
}

// Cleaner runs the per-file cleaning stages.
type Cleaner struct {
	cfg      Config
	selected []string
	nulls    map[string]struct{}
	logger   *slog.Logger
}

func NewCleaner(cfg Config, logger *slog.Logger) (*Cleaner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Manifest == nil {
		return nil, fmt.Errorf("manifest is required: %w", common.ErrInvalidInput)
	}
	if cfg.CompensationColumn == "" {
		return nil, fmt.Errorf("compensation column is required: %w", common.ErrInvalidInput)
	}

	// the label column is carried even when the manifest leaves it out
	cols := cfg.Manifest.Without(cfg.ReservedColumns...).Columns()
	if !cfg.Manifest.Contains(cfg.CompensationColumn) {
		cols = append([]string{cfg.CompensationColumn}, cols...)
	}

	nulls := make(map[string]struct{}, len(cfg.NullMarkers))
	for _, n := range cfg.NullMarkers {
		nulls[n] = struct{}{}
	}
	return &Cleaner{cfg: cfg, selected: cols, nulls: nulls, logger: logger}, nil
}

// SelectedColumns returns the columns read from every file, label included.
func (c *Cleaner) SelectedColumns() []string {
	return append([]string(nil), c.selected...)
}

// LabelColumn is the name of the compensation column used as the label.
func (c *Cleaner) LabelColumn() string { return c.cfg.CompensationColumn }

// Separator is the multi-value delimiter used when encoding.
func (c *Cleaner) Separator() string { return c.cfg.Encoding.Separator }

// Clean prepares and encodes raw using raw's own token vocabulary.
func (c *Cleaner) Clean(ctx context.Context, raw *frame.Table) (*Result, error) {
	p, err := c.Prepare(ctx, raw)
	if err != nil {
		return nil, err
	}
	return c.Encode(ctx, p, nil)
}

// Prepare runs the compensation filter, role filter, manifest selection,
// label split and null drop.
func (c *Cleaner) Prepare(ctx context.Context, raw *frame.Table) (*Prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := common.LoggerFromContext(ctx, c.logger)
	stats := Stats{Source: raw.Name(), RowsRead: raw.NumRows()}

	withComp, err := c.dropMissingCompensation(raw)
	if err != nil {
		return nil, err
	}
	compensation, err := c.labels(withComp)
	if err != nil {
		return nil, err
	}
	stats.AfterCompensation = withComp.NumRows()

	filtered, err := rowfilter.Apply(withComp, c.cfg.Filters)
	if err != nil {
		return nil, err
	}
	stats.AfterFilter = filtered.NumRows()

	selected, err := filtered.Select(c.selected...)
	if err != nil {
		return nil, err
	}
	working := selected.Drop(c.cfg.CompensationColumn)

	features := c.dropNulls(working)
	labels, err := compensation.Restrict(features.RowIDs())
	if err != nil {
		return nil, err
	}
	stats.AfterNullDrop = features.NumRows()

	if features.NumRows() == 0 {
		logger.Warn("clean.file.degenerate", "reason", "no rows left after filtering",
			"rows_read", stats.RowsRead)
	}
	return &Prepared{Features: features, Labels: labels, Stats: stats}, nil
}

// Encode expands p's features. A nil vocab uses the tokens found in p.
func (c *Cleaner) Encode(ctx context.Context, p *Prepared, vocab encode.Vocabulary) (*Result, error) {
	var (
		features *frame.FeatureTable
		err      error
	)
	if vocab == nil {
		features, err = encode.Encode(p.Features, c.cfg.Encoding)
	} else {
		features, err = encode.EncodeWithVocabulary(p.Features, vocab, c.cfg.Encoding)
	}
	if err != nil {
		return nil, err
	}
	if features.NumRows() != p.Labels.NumRows() {
		return nil, common.NewAlignmentError(fmt.Sprintf("%s: %d feature rows but %d labels",
			p.Stats.Source, features.NumRows(), p.Labels.NumRows()))
	}

	stats := p.Stats
	stats.Indicators = features.NumCols()
	common.LoggerFromContext(ctx, c.logger).Info("clean.file.ok",
		"rows_read", stats.RowsRead,
		"after_compensation", stats.AfterCompensation,
		"after_filter", stats.AfterFilter,
		"after_null_drop", stats.AfterNullDrop,
		"indicators", stats.Indicators,
	)
	return &Result{Features: features, Labels: p.Labels, Stats: stats}, nil
}

func (c *Cleaner) dropMissingCompensation(t *frame.Table) (*frame.Table, error) {
	comp, err := t.Column(c.cfg.CompensationColumn)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(row int) bool {
		return !c.isMissing(comp[row])
	}), nil
}

func (c *Cleaner) isMissing(v string) bool {
	if v == c.cfg.MissingSentinel {
		return true
	}
	_, null := c.nulls[v]
	return null
}

func (c *Cleaner) labels(t *frame.Table) (*frame.LabelTable, error) {
	comp, err := t.Column(c.cfg.CompensationColumn)
	if err != nil {
		return nil, err
	}
	rows := t.RowIDs()
	values := make([]float32, len(comp))
	for i, v := range comp {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			return nil, common.NewDataError(t.Name(), c.cfg.CompensationColumn, v, rows[i].Index, err)
		}
		values[i] = float32(f)
	}
	return frame.NewLabelTable(t.Name(), c.cfg.CompensationColumn, rows, values)
}

func (c *Cleaner) dropNulls(t *frame.Table) *frame.Table {
	cols := t.Columns()
	cells := make([][]string, len(cols))
	for i, col := range cols {
		cells[i], _ = t.Column(col)
	}
	return t.Filter(func(row int) bool {
		for _, col := range cells {
			if _, null := c.nulls[col[row]]; null {
				return false
			}
		}
		return true
	})
}
