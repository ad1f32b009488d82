// Package rowfilter keeps survey rows whose answers fall in allowed sets.
package rowfilter

import (
	"sort"

	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// FilterSpec maps a column to its allowed values. All entries must match for
// a row to be kept.
type FilterSpec map[string][]string

// Columns returns the constrained columns, sorted.
func (s FilterSpec) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Apply returns the rows of t satisfying every entry of spec, in their
// original order. A constrained column missing from t is a schema error.
func Apply(t *frame.Table, spec FilterSpec) (*frame.Table, error) {
	type constraint struct {
		cells   []string
		allowed map[string]struct{}
	}
	cols := spec.Columns()
	constraints := make([]constraint, 0, len(cols))
	for _, c := range cols {
		cells, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]struct{}, len(spec[c]))
		for _, v := range spec[c] {
			allowed[v] = struct{}{}
		}
		constraints = append(constraints, constraint{cells: cells, allowed: allowed})
	}

	return t.Filter(func(row int) bool {
		for _, k := range constraints {
			if _, ok := k.allowed[k.cells[row]]; !ok {
				return false
			}
		}
		return true
	}), nil
}
