package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/survey-features/constants"
	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// ReadFile reads a survey export into a string table. source names the table
// and its row ids.
func ReadFile(path, source string) (*frame.Table, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f, source)
	case constants.FormatXLSX:
		return ReadXLSX(path, source, "")
	default:
		return nil, fmt.Errorf("unsupported file type %q: %w", filepath.Ext(path), common.ErrInvalidInput)
	}
}

// ReadCSV reads a header row followed by data rows.
func ReadCSV(r io.Reader, source string) (*frame.Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty file: %w", source, common.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}
	header = normalizeHeader(header)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: read records: %w", source, err)
	}
	return frame.New(source, header, records)
}

// ReadXLSX reads sheet (the first sheet when empty) of a workbook. The first
// row is the header.
func ReadXLSX(path, source, sheet string) (*frame.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: read sheet %q: %w", source, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty sheet %q: %w", source, sheet, common.ErrInvalidInput)
	}

	header := normalizeHeader(rows[0])
	records := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%s: row %d has %d cells, header has %d: %w",
				source, i+2, len(row), len(header), common.ErrInvalidInput)
		}
		// GetRows drops trailing empty cells.
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		records = append(records, row)
	}
	return frame.New(source, header, records)
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}
