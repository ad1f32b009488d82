package frame

import (
	"fmt"
	"slices"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

// FeatureTable is a table of 0/1 indicator columns, stored column-major.
type FeatureTable struct {
	source  string
	columns []string
	index   map[string]int
	values  [][]uint8
	rows    []RowID
}

// NewFeatureTable validates shapes and builds a FeatureTable. values[c] holds
// column c and must have one entry per row.
func NewFeatureTable(source string, rows []RowID, columns []string, values [][]uint8) (*FeatureTable, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("%s: %d column names for %d columns: %w", source, len(columns), len(values), common.ErrInvalidInput)
	}
	for c, v := range values {
		if len(v) != len(rows) {
			return nil, fmt.Errorf("%s: column %q has %d values for %d rows: %w",
				source, columns[c], len(v), len(rows), common.ErrInvalidInput)
		}
	}
	index, err := buildIndex(source, columns)
	if err != nil {
		return nil, err
	}
	return &FeatureTable{
		source:  source,
		columns: append([]string(nil), columns...),
		index:   index,
		values:  values,
		rows:    append([]RowID(nil), rows...),
	}, nil
}

func (f *FeatureTable) Source() string { return f.source }

func (f *FeatureTable) NumRows() int { return len(f.rows) }

func (f *FeatureTable) NumCols() int { return len(f.columns) }

func (f *FeatureTable) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f *FeatureTable) RowIDs() []RowID {
	return append([]RowID(nil), f.rows...)
}

func (f *FeatureTable) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Column returns the values of col. The slice must not be modified.
func (f *FeatureTable) Column(col string) ([]uint8, error) {
	i, ok := f.index[col]
	if !ok {
		return nil, common.NewSchemaError(f.source, col)
	}
	return f.values[i], nil
}

// At returns the value at row r, column c (by position).
func (f *FeatureTable) At(r, c int) uint8 {
	return f.values[c][r]
}

// Project returns a table with exactly cols, in that order, preserving rows.
func (f *FeatureTable) Project(cols []string) (*FeatureTable, error) {
	values := make([][]uint8, len(cols))
	for i, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return nil, common.NewSchemaError(f.source, c)
		}
		values[i] = f.values[j]
	}
	return NewFeatureTable(f.source, f.rows, cols, values)
}

// ConcatFeatures stacks tables vertically in argument order. All tables must
// have the same columns in the same order.
func ConcatFeatures(tables ...*FeatureTable) (*FeatureTable, error) {
	if len(tables) == 0 {
		return NewFeatureTable("combined", nil, nil, nil)
	}
	cols := tables[0].columns
	var rows []RowID
	for _, t := range tables {
		if !slices.Equal(t.columns, cols) {
			return nil, fmt.Errorf("concat %s: columns differ from %s: %w", t.source, tables[0].source, common.ErrInvalidInput)
		}
		rows = append(rows, t.rows...)
	}
	values := make([][]uint8, len(cols))
	for c := range cols {
		col := make([]uint8, 0, len(rows))
		for _, t := range tables {
			col = append(col, t.values[c]...)
		}
		values[c] = col
	}
	return NewFeatureTable("combined", rows, cols, values)
}
