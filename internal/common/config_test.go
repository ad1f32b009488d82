package common

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Clean.Separator != ";" || cfg.Clean.MissingSentinel != "NA" {
		t.Errorf("unexpected clean defaults: %+v", cfg.Clean)
	}
	if !slices.Equal(cfg.Clean.NullMarkers, []string{""}) {
		t.Errorf("NullMarkers = %q", cfg.Clean.NullMarkers)
	}
	if cfg.Pipeline.Harmonize != HarmonizeIntersect || cfg.Pipeline.Workers != 1 {
		t.Errorf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Export.Database.DialTimeout != 3*time.Second {
		t.Errorf("DialTimeout = %v", cfg.Export.Database.DialTimeout)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SURVEY_WORKERS", "4")
	t.Setenv("SURVEY_HARMONIZE", HarmonizeUnion)
	t.Setenv("SURVEY_NULL_MARKERS", " ,NaN, n/a ")
	t.Setenv("SURVEY_SKIP_FAILED", "true")
	t.Setenv("DB_DIAL_TIMEOUT", "not-a-duration")

	cfg := LoadConfig()
	if cfg.Pipeline.Workers != 4 || cfg.Pipeline.Harmonize != HarmonizeUnion || !cfg.Pipeline.SkipFailed {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if !slices.Equal(cfg.Clean.NullMarkers, []string{"", "NaN", "n/a"}) {
		t.Errorf("NullMarkers = %q", cfg.Clean.NullMarkers)
	}
	if cfg.Export.Database.DialTimeout != 3*time.Second {
		t.Errorf("bad duration should fall back to default, got %v", cfg.Export.Database.DialTimeout)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
input:
  dir: /surveys
clean:
  match_mode: token
  filters:
    Employment: ["Employed, full-time", "Employed, part-time"]
pipeline:
  workers: 8
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() error = %v", err)
	}
	if cfg.Input.Dir != "/surveys" || cfg.Clean.MatchMode != MatchToken || cfg.Pipeline.Workers != 8 {
		t.Errorf("overlay not applied: %+v", cfg)
	}
	if got := cfg.Clean.Filters["Employment"]; len(got) != 2 {
		t.Errorf("Employment filter = %v", got)
	}
	if len(cfg.Clean.Filters) != 1 {
		t.Errorf("filters should be replaced, got %v", cfg.Clean.Filters)
	}
	if cfg.Clean.Separator != ";" {
		t.Errorf("keys absent from the file should keep their value, got separator %q", cfg.Clean.Separator)
	}
}

func TestApplyFile_KeepsFiltersWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline:\n  workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig()
	want := len(cfg.Clean.Filters)
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() error = %v", err)
	}
	if len(cfg.Clean.Filters) != want || want == 0 {
		t.Errorf("filters = %v, want the %d defaults", cfg.Clean.Filters, want)
	}
}

func TestApplyFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pipeline: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	var appErr *AppError
	if err := LoadConfig().ApplyFile(path); !errors.As(err, &appErr) || appErr.Code != CodeConfig {
		t.Fatalf("expected config AppError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"harmonize", func(c *Config) { c.Pipeline.Harmonize = "outer" }, "pipeline.harmonize"},
		{"match", func(c *Config) { c.Clean.MatchMode = "regex" }, "clean.match_mode"},
		{"workers", func(c *Config) { c.Pipeline.Workers = 0 }, "pipeline.workers"},
		{"separator", func(c *Config) { c.Clean.Separator = " " }, "clean.separator"},
		{"sqlite table", func(c *Config) {
			c.Export.SQLitePath = "out.db"
			c.Export.SQLiteTable = "bad name"
		}, "export.sqlite_table"},
		{"pg table", func(c *Config) {
			c.Export.Database.DSN = "postgres://localhost/db"
			c.Export.Database.Table = ""
		}, "export.database.table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %s: %v", tt.field, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SURVEY_DOTENV_PROBE=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SURVEY_DOTENV_PROBE") })
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("SURVEY_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("SURVEY_DOTENV_PROBE = %q", got)
	}
}
