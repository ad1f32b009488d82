// Package export writes a combined feature matrix to files and databases.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/survey-features/constants"
	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// SheetName is the worksheet written by XLSX exports.
const SheetName = "Features"

// Service writes combined results to the supported file formats.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteFile writes c to path, choosing the format from the extension.
func (s *Service) WriteFile(ctx context.Context, path string, c *frame.Combined) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	var data []byte
	format := constants.MapExtToFormat(filepath.Ext(path))
	switch format {
	case constants.FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, c); err != nil {
			return err
		}
		data = buf.Bytes()
	case constants.FormatXLSX:
		b, err := s.XLSX(c)
		if err != nil {
			return err
		}
		data = b
	default:
		return fmt.Errorf("export %s: unsupported extension: %w", path, common.ErrInvalidInput)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	common.LoggerFromContext(ctx, s.logger).Info("export.file.ok",
		"path", path,
		"format", format,
		"rows", c.NumRows(),
		"columns", len(c.Header()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// XLSX returns a workbook (as bytes) with one header row followed by one row
// per respondent. Indicators are written as numbers.
func (s *Service) XLSX(c *frame.Combined) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(SheetName); index == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx stream: %w", err)
	}

	header := c.Header()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	for r := 0; r < c.NumRows(); r++ {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, c.Values(r)); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", r+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("xlsx flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
