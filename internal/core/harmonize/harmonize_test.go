package harmonize

import (
	"slices"
	"testing"

	"github.com/joseph-ayodele/survey-features/internal/core/encode"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

func features(t *testing.T, source string, columns ...string) *frame.FeatureTable {
	t.Helper()
	rows := []frame.RowID{{Source: source, Index: 0}, {Source: source, Index: 1}}
	values := make([][]uint8, len(columns))
	for i := range values {
		values[i] = []uint8{1, 0}
	}
	f, err := frame.NewFeatureTable(source, rows, columns, values)
	if err != nil {
		t.Fatalf("NewFeatureTable() error = %v", err)
	}
	return f
}

func TestIntersectColumns(t *testing.T) {
	a := features(t, "a", "A_x", "A_y", "B_z")
	b := features(t, "b", "A_x", "C_q")
	c := features(t, "c", "C_q", "A_x", "A_y")

	tests := []struct {
		name   string
		tables []*frame.FeatureTable
		want   []string
	}{
		{name: "two files", tables: []*frame.FeatureTable{a, b}, want: []string{"A_x"}},
		{name: "order does not matter", tables: []*frame.FeatureTable{c, b, a}, want: []string{"A_x"}},
		{name: "single table", tables: []*frame.FeatureTable{a}, want: []string{"A_x", "A_y", "B_z"}},
		{name: "no tables", tables: nil, want: []string{}},
		{name: "nothing shared", tables: []*frame.FeatureTable{features(t, "d", "D_1"), b}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntersectColumns(tt.tables); !slices.Equal(got, tt.want) {
				t.Errorf("IntersectColumns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_IdenticalColumns(t *testing.T) {
	tables := []*frame.FeatureTable{
		features(t, "a", "A_y", "A_x", "B_z"),
		features(t, "b", "A_x", "A_y"),
	}
	cols := IntersectColumns(tables)
	projected, err := Project(tables, cols)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for _, p := range projected {
		if got := p.Columns(); !slices.Equal(got, cols) {
			t.Errorf("%s columns = %v, want %v", p.Source(), got, cols)
		}
		if p.NumRows() != 2 {
			t.Errorf("%s rows = %d", p.Source(), p.NumRows())
		}
	}
}

func TestProject_EmptyIntersection(t *testing.T) {
	tables := []*frame.FeatureTable{features(t, "a", "A_x"), features(t, "b", "B_y")}
	projected, err := Project(tables, IntersectColumns(tables))
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for _, p := range projected {
		if p.NumCols() != 0 || p.NumRows() != 2 {
			t.Errorf("%s shape = (%d, %d), want (2, 0)", p.Source(), p.NumRows(), p.NumCols())
		}
	}
}

func TestUnionVocabulary(t *testing.T) {
	got := UnionVocabulary(
		encode.Vocabulary{"Lang": {"Go", "Python"}},
		encode.Vocabulary{"Lang": {"Rust", "Go"}, "DB": {"Redis"}},
	)
	if !slices.Equal(got["Lang"], []string{"Go", "Python", "Rust"}) {
		t.Errorf("Lang = %v", got["Lang"])
	}
	if !slices.Equal(got["DB"], []string{"Redis"}) {
		t.Errorf("DB = %v", got["DB"])
	}
}
