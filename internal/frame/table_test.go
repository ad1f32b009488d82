package frame

import (
	"errors"
	"slices"
	"testing"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New("survey_results_public.csv", []string{"A", "B", "C"}, [][]string{
		{"a0", "b0", "c0"},
		{"a1", "b1", "c1"},
		{"a2", "b2", "c2"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tbl
}

func TestNew(t *testing.T) {
	t.Run("assigns row ids from record position", func(t *testing.T) {
		tbl := newTestTable(t)
		ids := tbl.RowIDs()
		for i, id := range ids {
			if id.Index != i || id.Source != "survey_results_public.csv" {
				t.Errorf("row %d id = %v", i, id)
			}
		}
	})

	t.Run("rejects ragged records", func(t *testing.T) {
		_, err := New("x", []string{"A", "B"}, [][]string{{"1"}})
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects duplicate columns", func(t *testing.T) {
		_, err := New("x", []string{"A", "A"}, nil)
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestTable_Select(t *testing.T) {
	tbl := newTestTable(t)

	t.Run("orders columns as requested", func(t *testing.T) {
		out, err := tbl.Select("C", "A")
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if got := out.Columns(); !slices.Equal(got, []string{"C", "A"}) {
			t.Errorf("Columns() = %v", got)
		}
		if got := out.Row(1); !slices.Equal(got, []string{"c1", "a1"}) {
			t.Errorf("Row(1) = %v", got)
		}
	})

	t.Run("missing column is a schema error", func(t *testing.T) {
		_, err := tbl.Select("A", "Z")
		if !errors.Is(err, common.ErrSchema) {
			t.Fatalf("expected ErrSchema, got %v", err)
		}
		var appErr *common.AppError
		if !errors.As(err, &appErr) || appErr.Code != common.CodeSchema {
			t.Fatalf("expected AppError with schema code, got %v", err)
		}
	})
}

func TestTable_FilterKeepsRowIDs(t *testing.T) {
	tbl := newTestTable(t)
	col, _ := tbl.Column("A")
	out := tbl.Filter(func(r int) bool { return col[r] != "a1" })

	if out.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", out.NumRows())
	}
	ids := out.RowIDs()
	if ids[0].Index != 0 || ids[1].Index != 2 {
		t.Errorf("RowIDs() = %v", ids)
	}
	if tbl.NumRows() != 3 {
		t.Errorf("source table changed: %d rows", tbl.NumRows())
	}
}

func TestTable_Drop(t *testing.T) {
	out := newTestTable(t).Drop("B", "missing")
	if got := out.Columns(); !slices.Equal(got, []string{"A", "C"}) {
		t.Errorf("Columns() = %v", got)
	}
}
