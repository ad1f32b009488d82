package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/core/clean"
	"github.com/joseph-ayodele/survey-features/internal/ingest"
)

// Processor reads one survey export and runs it through the cleaner.
type Processor struct {
	Logger  *slog.Logger
	Cleaner *clean.Cleaner
}

func NewProcessor(logger *slog.Logger, cleaner *clean.Cleaner) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Cleaner: cleaner}
}

// FileOutcome is what processing one file produced. Result is nil when the
// file was only prepared.
type FileOutcome struct {
	File     ingest.FileResult
	Prepared *clean.Prepared
	Result   *clean.Result
}

// ProcessFile reads file and prepares it. With encode set it also encodes the
// file against its own vocabulary.
func (p *Processor) ProcessFile(ctx context.Context, file ingest.FileResult, encode bool) (*FileOutcome, error) {
	ctx = common.WithSource(ctx, file.Source)
	logger := common.LoggerFromContext(ctx, p.Logger)

	raw, err := ingest.ReadFile(file.Path, file.Source)
	if err != nil {
		logger.Error("processor.read.failed", "path", file.Path, "err", err)
		return nil, fmt.Errorf("read %s: %w", file.Source, err)
	}
	logger.Debug("processor.read.ok", "rows", raw.NumRows(), "columns", raw.NumCols())

	prepared, err := p.Cleaner.Prepare(ctx, raw)
	if err != nil {
		logger.Error("processor.clean.failed", "err", err)
		return nil, fmt.Errorf("clean %s: %w", file.Source, err)
	}
	out := &FileOutcome{File: file, Prepared: prepared}
	if !encode {
		return out, nil
	}

	res, err := p.Cleaner.Encode(ctx, prepared, nil)
	if err != nil {
		logger.Error("processor.encode.failed", "err", err)
		return nil, fmt.Errorf("encode %s: %w", file.Source, err)
	}
	out.Result = res
	return out, nil
}
