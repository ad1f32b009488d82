// Package frame holds the immutable in-memory tables passed between pipeline
// stages. Every row carries a RowID assigned when its source file is read, so
// rows can be matched across independently transformed tables.
package frame

import (
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

// RowID identifies a respondent by source file and 0-based data-row index.
type RowID struct {
	Source string
	Index  int
}

func (r RowID) String() string {
	return r.Source + "#" + strconv.Itoa(r.Index)
}

// Table is a string-typed table as read from a survey export. Cells are stored
// column-major. A Table is never modified after construction.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	cells   [][]string
	rows    []RowID
}

// New builds a Table from row-major records. Row IDs are assigned from the
// record position, with name as the source.
func New(name string, columns []string, records [][]string) (*Table, error) {
	rows := make([]RowID, len(records))
	for i := range records {
		rows[i] = RowID{Source: name, Index: i}
	}
	return NewWithRows(name, columns, records, rows)
}

// NewWithRows is New with caller-supplied row identities.
func NewWithRows(name string, columns []string, records [][]string, rows []RowID) (*Table, error) {
	if len(rows) != len(records) {
		return nil, fmt.Errorf("%s: %d row ids for %d records: %w", name, len(rows), len(records), common.ErrInvalidInput)
	}
	index, err := buildIndex(name, columns)
	if err != nil {
		return nil, err
	}
	cells := make([][]string, len(columns))
	for c := range cells {
		cells[c] = make([]string, len(records))
	}
	for r, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("%s: record %d has %d fields, header has %d: %w",
				name, r, len(rec), len(columns), common.ErrInvalidInput)
		}
		for c, v := range rec {
			cells[c][r] = v
		}
	}
	return &Table{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   index,
		cells:   cells,
		rows:    append([]RowID(nil), rows...),
	}, nil
}

func buildIndex(name string, columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%s: duplicate column %q: %w", name, c, common.ErrInvalidInput)
		}
		index[c] = i
	}
	return index, nil
}

func (t *Table) Name() string { return t.name }

func (t *Table) NumRows() int { return len(t.rows) }

func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// RowIDs returns a copy of the row identities in table order.
func (t *Table) RowIDs() []RowID {
	return append([]RowID(nil), t.rows...)
}

// Has reports whether the table has a column named col.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Column returns the cells of col. The slice must not be modified.
func (t *Table) Column(col string) ([]string, error) {
	i, ok := t.index[col]
	if !ok {
		return nil, common.NewSchemaError(t.name, col)
	}
	return t.cells[i], nil
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	for c := range t.columns {
		out[c] = t.cells[c][i]
	}
	return out
}

// Select returns a table holding only cols, in the given order. Any missing
// column is a schema error naming the first one found.
func (t *Table) Select(cols ...string) (*Table, error) {
	cells := make([][]string, len(cols))
	for i, c := range cols {
		j, ok := t.index[c]
		if !ok {
			return nil, common.NewSchemaError(t.name, c)
		}
		cells[i] = t.cells[j]
	}
	index, err := buildIndex(t.name, cols)
	if err != nil {
		return nil, err
	}
	return &Table{
		name:    t.name,
		columns: append([]string(nil), cols...),
		index:   index,
		cells:   cells,
		rows:    t.rows,
	}, nil
}

// Drop returns a table without cols. Unknown names are ignored.
func (t *Table) Drop(cols ...string) *Table {
	skip := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		skip[c] = struct{}{}
	}
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if _, ok := skip[c]; !ok {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// Filter returns the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var idx []int
	for r := range t.rows {
		if keep(r) {
			idx = append(idx, r)
		}
	}
	return t.take(idx)
}

func (t *Table) take(idx []int) *Table {
	cells := make([][]string, len(t.columns))
	for c := range t.columns {
		col := make([]string, len(idx))
		for k, r := range idx {
			col[k] = t.cells[c][r]
		}
		cells[c] = col
	}
	rows := make([]RowID, len(idx))
	for k, r := range idx {
		rows[k] = t.rows[r]
	}
	return &Table{
		name:    t.name,
		columns: t.columns,
		index:   t.index,
		cells:   cells,
		rows:    rows,
	}
}
