package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/survey-features/constants"
)

// Config holds all application configuration
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Manifest ManifestConfig `yaml:"manifest"`
	Clean    CleanConfig    `yaml:"clean"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Export   ExportConfig   `yaml:"export"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig holds survey discovery configuration
type InputConfig struct {
	Dir         string `yaml:"dir"`
	FilePattern string `yaml:"file_pattern"`
}

// ManifestConfig holds the location of the selected-columns manifest
type ManifestConfig struct {
	Path string `yaml:"path"`
}

// CleanConfig holds the per-file cleaning constants
type CleanConfig struct {
	Separator          string              `yaml:"separator"`
	MissingSentinel    string              `yaml:"missing_sentinel"`
	CompensationColumn string              `yaml:"compensation_column"`
	NullMarkers        []string            `yaml:"null_markers"`
	ReservedColumns    []string            `yaml:"reserved_columns"`
	Filters            map[string][]string `yaml:"filters"`
	MatchMode          string              `yaml:"match_mode"`
}

// PipelineConfig holds driver behaviour
type PipelineConfig struct {
	Workers    int    `yaml:"workers"`
	Harmonize  string `yaml:"harmonize"`
	SkipFailed bool   `yaml:"skip_failed"`
}

// ExportConfig holds output sinks
type ExportConfig struct {
	OutPath     string         `yaml:"out"`
	SQLitePath  string         `yaml:"sqlite_path"`
	SQLiteTable string         `yaml:"sqlite_table"`
	Database    DatabaseConfig `yaml:"database"`
	Preview     int            `yaml:"preview"`
}

// DatabaseConfig holds Postgres sink configuration
type DatabaseConfig struct {
	DSN         string        `yaml:"dsn"`
	Table       string        `yaml:"table"`
	MaxConns    int32         `yaml:"max_conns"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Harmonization modes.
const (
	HarmonizeIntersect = "intersect"
	HarmonizeUnion     = "union"
)

// Encoder match modes.
const (
	MatchSubstring = "substring"
	MatchToken     = "token"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir:         getEnv("SURVEY_DATA_DIR", "./data"),
			FilePattern: getEnv("SURVEY_FILE_PATTERN", constants.SurveyFilePattern),
		},
		Manifest: ManifestConfig{
			Path: getEnv("SURVEY_MANIFEST", "./data/selected_columns.json"),
		},
		Clean: CleanConfig{
			Separator:          getEnv("SURVEY_SEPARATOR", constants.DefaultSeparator),
			MissingSentinel:    getEnv("SURVEY_MISSING_SENTINEL", constants.MissingSentinel),
			CompensationColumn: getEnv("SURVEY_COMPENSATION_COLUMN", constants.ColumnCompensation),
			NullMarkers:        getEnvAsList("SURVEY_NULL_MARKERS", []string{""}),
			ReservedColumns:    getEnvAsList("SURVEY_RESERVED_COLUMNS", constants.ReservedManifestColumns),
			Filters:            constants.DefaultFilterSpec(),
			MatchMode:          getEnv("SURVEY_MATCH_MODE", MatchSubstring),
		},
		Pipeline: PipelineConfig{
			Workers:    getEnvAsInt("SURVEY_WORKERS", 1),
			Harmonize:  getEnv("SURVEY_HARMONIZE", HarmonizeIntersect),
			SkipFailed: getEnvAsBool("SURVEY_SKIP_FAILED", false),
		},
		Export: ExportConfig{
			OutPath:     getEnv("SURVEY_OUT", ""),
			SQLitePath:  getEnv("SURVEY_SQLITE_PATH", ""),
			SQLiteTable: getEnv("SURVEY_SQLITE_TABLE", "features"),
			Preview:     getEnvAsInt("SURVEY_PREVIEW", 5),
			Database: DatabaseConfig{
				DSN:         getEnv("DB_URL", ""),
				Table:       getEnv("DB_TABLE", "survey_features"),
				MaxConns:    getEnvAsInt32("DB_MAX_CONNS", 4),
				DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			},
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// ApplyFile overlays the YAML document at path onto c. Only keys present in
// the document are changed. A filters block replaces the current filters
// rather than merging into them.
func (c *Config) ApplyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	filters := c.Clean.Filters
	c.Clean.Filters = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		c.Clean.Filters = filters
		return NewAppError(CodeConfig, "parse "+path, err)
	}
	if c.Clean.Filters == nil {
		c.Clean.Filters = filters
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable. An unset variable yields a
// copy of defaultValue.
func getEnvAsList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		out := make([]string, len(defaultValue))
		copy(out, defaultValue)
		return out
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("input.dir", c.Input.Dir, Required).
		Field("input.file_pattern", c.Input.FilePattern, Required).
		Field("manifest.path", c.Manifest.Path, Required).
		Field("clean.separator", c.Clean.Separator, Required).
		Field("clean.compensation_column", c.Clean.CompensationColumn, Required).
		Field("clean.match_mode", c.Clean.MatchMode, OneOf(MatchSubstring, MatchToken)).
		Field("pipeline.harmonize", c.Pipeline.Harmonize, OneOf(HarmonizeIntersect, HarmonizeUnion)).
		Field("pipeline.workers", c.Pipeline.Workers, Positive)
	if c.Export.Database.DSN != "" {
		v.Field("export.database.table", c.Export.Database.Table, Required, Identifier)
	}
	if c.Export.SQLitePath != "" {
		v.Field("export.sqlite_table", c.Export.SQLiteTable, Required, Identifier)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
