package encode

import (
	"errors"
	"slices"
	"testing"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

var substring = Options{Separator: ";", Match: MatchSubstring}

func table(t *testing.T, columns []string, records [][]string) *frame.Table {
	t.Helper()
	tbl, err := frame.New("s.csv", columns, records)
	if err != nil {
		t.Fatalf("frame.New() error = %v", err)
	}
	return tbl
}

func column(t *testing.T, f *frame.FeatureTable, name string) []uint8 {
	t.Helper()
	col, err := f.Column(name)
	if err != nil {
		t.Fatalf("Column(%q) error = %v", name, err)
	}
	return col
}

func TestEncode_OneIndicatorPerDistinctToken(t *testing.T) {
	tbl := table(t, []string{"Lang", "DB"}, [][]string{
		{"Python;SQL", "Postgres"},
		{"SQL", "Postgres;Redis"},
		{"Go;Python", "Redis"},
	})

	out, err := Encode(tbl, substring)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := []string{"Lang_Go", "Lang_Python", "Lang_SQL", "DB_Postgres", "DB_Redis"}
	if got := out.Columns(); !slices.Equal(got, want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
	for _, orig := range []string{"Lang", "DB"} {
		if out.Has(orig) {
			t.Errorf("original column %q still present", orig)
		}
	}
	if got := column(t, out, "Lang_Python"); !slices.Equal(got, []uint8{1, 0, 1}) {
		t.Errorf("Lang_Python = %v", got)
	}
	if got := column(t, out, "DB_Redis"); !slices.Equal(got, []uint8{0, 1, 1}) {
		t.Errorf("DB_Redis = %v", got)
	}
	if out.NumRows() != tbl.NumRows() {
		t.Errorf("NumRows() = %d, want %d", out.NumRows(), tbl.NumRows())
	}
}

func TestEncode_EmptyCell(t *testing.T) {
	tbl := table(t, []string{"Lang"}, [][]string{{"Go"}, {""}})

	out, err := Encode(tbl, substring)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := out.Columns(); !slices.Equal(got, []string{"Lang_Go"}) {
		t.Fatalf("Columns() = %v", got)
	}
	if got := column(t, out, "Lang_Go"); !slices.Equal(got, []uint8{1, 0}) {
		t.Errorf("Lang_Go = %v", got)
	}
}

func TestEncode_SingleValueColumn(t *testing.T) {
	tbl := table(t, []string{"Remote"}, [][]string{{"Yes"}, {"Yes"}})

	out, err := Encode(tbl, substring)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := column(t, out, "Remote_Yes"); !slices.Equal(got, []uint8{1, 1}) {
		t.Errorf("Remote_Yes = %v", got)
	}
}

func TestEncode_BinaryColumnIsIdempotent(t *testing.T) {
	tbl := table(t, []string{"Flag"}, [][]string{{"1"}, {""}, {"1"}})

	out, err := Encode(tbl, substring)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if out.NumCols() != 1 {
		t.Fatalf("NumCols() = %d, want 1", out.NumCols())
	}
	if got := column(t, out, "Flag_1"); !slices.Equal(got, []uint8{1, 0, 1}) {
		t.Errorf("Flag_1 = %v", got)
	}
}

func TestEncode_MatchModes(t *testing.T) {
	tbl := table(t, []string{"Lang"}, [][]string{{"JavaScript"}, {"Java"}})

	tests := []struct {
		name string
		mode Match
		want []uint8
	}{
		{name: "substring over-matches", mode: MatchSubstring, want: []uint8{1, 1}},
		{name: "token is exact", mode: MatchToken, want: []uint8{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Encode(tbl, Options{Separator: ";", Match: tt.mode})
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got := column(t, out, "Lang_Java"); !slices.Equal(got, tt.want) {
				t.Errorf("Lang_Java = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeWithVocabulary(t *testing.T) {
	tbl := table(t, []string{"Lang"}, [][]string{{"Go"}, {"Rust"}})
	vocab := Vocabulary{"Lang": {"Go", "Python"}}

	out, err := EncodeWithVocabulary(tbl, vocab, substring)
	if err != nil {
		t.Fatalf("EncodeWithVocabulary() error = %v", err)
	}
	if got := out.Columns(); !slices.Equal(got, []string{"Lang_Go", "Lang_Python"}) {
		t.Fatalf("Columns() = %v", got)
	}
	if got := column(t, out, "Lang_Python"); !slices.Equal(got, []uint8{0, 0}) {
		t.Errorf("Lang_Python = %v", got)
	}

	_, err = EncodeWithVocabulary(tbl, Vocabulary{"Missing": {"x"}}, substring)
	if !errors.Is(err, common.ErrSchema) {
		t.Errorf("expected ErrSchema, got %v", err)
	}
}

func TestEncode_InvalidOptions(t *testing.T) {
	tbl := table(t, []string{"Lang"}, [][]string{{"Go"}})
	for _, opts := range []Options{{Separator: "", Match: MatchSubstring}, {Separator: ";", Match: "fuzzy"}} {
		if _, err := Encode(tbl, opts); !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("Encode(%+v) expected ErrInvalidInput, got %v", opts, err)
		}
	}
}

func TestEncode_NameCollision(t *testing.T) {
	tbl := table(t, []string{"A", "A_b"}, [][]string{{"b_c", "c"}})
	if _, err := Encode(tbl, substring); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
