package frame

import (
	"fmt"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

// LabelTable is a single float32 column keyed by row identity.
type LabelTable struct {
	source string
	column string
	values []float32
	rows   []RowID
}

func NewLabelTable(source, column string, rows []RowID, values []float32) (*LabelTable, error) {
	if len(rows) != len(values) {
		return nil, fmt.Errorf("%s: %d labels for %d rows: %w", source, len(values), len(rows), common.ErrInvalidInput)
	}
	return &LabelTable{
		source: source,
		column: column,
		values: append([]float32(nil), values...),
		rows:   append([]RowID(nil), rows...),
	}, nil
}

func (l *LabelTable) Source() string { return l.source }

func (l *LabelTable) Column() string { return l.column }

func (l *LabelTable) NumRows() int { return len(l.rows) }

func (l *LabelTable) Values() []float32 {
	return append([]float32(nil), l.values...)
}

func (l *LabelTable) RowIDs() []RowID {
	return append([]RowID(nil), l.rows...)
}

func (l *LabelTable) At(r int) float32 { return l.values[r] }

// Restrict returns the labels for rows, in the order given. Every id must be
// present in l.
func (l *LabelTable) Restrict(rows []RowID) (*LabelTable, error) {
	pos := make(map[RowID]int, len(l.rows))
	for i, id := range l.rows {
		pos[id] = i
	}
	values := make([]float32, len(rows))
	for k, id := range rows {
		i, ok := pos[id]
		if !ok {
			return nil, common.NewAlignmentError(fmt.Sprintf("%s: no label for row %s", l.source, id))
		}
		values[k] = l.values[i]
	}
	return NewLabelTable(l.source, l.column, rows, values)
}

// ConcatLabels stacks label tables in argument order.
func ConcatLabels(column string, tables ...*LabelTable) (*LabelTable, error) {
	var rows []RowID
	var values []float32
	for _, t := range tables {
		if t.column != column {
			return nil, fmt.Errorf("concat %s: label column %q, want %q: %w", t.source, t.column, column, common.ErrInvalidInput)
		}
		rows = append(rows, t.rows...)
		values = append(values, t.values...)
	}
	return NewLabelTable("combined", column, rows, values)
}
