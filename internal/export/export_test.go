package export

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

func sampleCombined(t *testing.T) *frame.Combined {
	t.Helper()
	rows := []frame.RowID{{Source: "2023.csv", Index: 0}, {Source: "2023.csv", Index: 2}}
	features, err := frame.NewFeatureTable("combined", rows,
		[]string{"Lang_Go", `Lang_C"`},
		[][]uint8{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("NewFeatureTable() error = %v", err)
	}
	labels, err := frame.NewLabelTable("combined", "ConvertedCompYearly", rows, []float32{120000, 80000.5})
	if err != nil {
		t.Fatalf("NewLabelTable() error = %v", err)
	}
	c, err := frame.Join(features, labels)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	return c
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleCombined(t)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "Lang_Go,\"Lang_C\"\"\",ConvertedCompYearly\n1,0,120000\n0,1,80000.5\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteFile_XLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "features.xlsx")
	if err := NewService(nil).WriteFile(context.Background(), path, sampleCombined(t)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !slices.Equal(rows[0], []string{"Lang_Go", `Lang_C"`, "ConvertedCompYearly"}) {
		t.Errorf("header = %v", rows[0])
	}
	if !slices.Equal(rows[2], []string{"0", "1", "80000.5"}) {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestWriteFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.CSV")
	if err := NewService(nil).WriteFile(context.Background(), path, sampleCombined(t)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(b), "Lang_Go,") {
		t.Errorf("unexpected content %q", b)
	}
}

func TestWriteFile_UnsupportedExtension(t *testing.T) {
	err := NewService(nil).WriteFile(context.Background(), filepath.Join(t.TempDir(), "x.parquet"), sampleCombined(t))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.db")
	s := NewService(nil)
	c := sampleCombined(t)
	// a second write replaces the table
	for i := 0; i < 2; i++ {
		if err := s.WriteSQLite(context.Background(), path, "features", c); err != nil {
			t.Fatalf("WriteSQLite() error = %v", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM features`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	var quoted int
	var label float64
	if err := db.QueryRow(`SELECT "Lang_C""", ConvertedCompYearly FROM features WHERE Lang_Go = 0`).Scan(&quoted, &label); err != nil {
		t.Fatalf("select: %v", err)
	}
	if quoted != 1 || label != 80000.5 {
		t.Errorf("got (%d, %v), want (1, 80000.5)", quoted, label)
	}
}

func TestPgRows(t *testing.T) {
	rows := pgRows(sampleCombined(t))
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	want := []any{int16(1), int16(0), float32(120000)}
	if !slices.Equal(rows[0], want) {
		t.Errorf("rows[0] = %#v, want %#v", rows[0], want)
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL("features", sampleCombined(t), "smallint", "real")
	want := `CREATE TABLE "features" ("Lang_Go" smallint NOT NULL, "Lang_C""" smallint NOT NULL, "ConvertedCompYearly" real NOT NULL)`
	if got != want {
		t.Errorf("createTableSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	if err := Preview(&buf, sampleCombined(t), 1); err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "120000") || strings.Contains(out, "80000.5") {
		t.Errorf("Preview() should show only the first row:\n%s", out)
	}
	if !strings.Contains(out, "[2 rows x 3 columns]") {
		t.Errorf("Preview() missing shape line:\n%s", out)
	}
}

func TestColumnLabel(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"Lang_Go", 24, "Lang_Go"},
		{"LanguageHaveWorkedWith_Español", 29, "LanguageHaveWorkedWith_Españ…"},
		{"Lang_日本語", 7, "Lang_日…"},
		{"Lang_Go", 0, "Lang_Go"},
	}
	for _, tt := range tests {
		got := columnLabel(tt.name, tt.n)
		if got != tt.want {
			t.Errorf("columnLabel(%q, %d) = %q, want %q", tt.name, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("columnLabel(%q, %d) is not valid UTF-8", tt.name, tt.n)
		}
	}
}
