// Package manifest loads the ordered list of survey columns selected as
// features. The list is read once by the caller and passed down explicitly.
package manifest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

// Manifest is an immutable ordered list of column names.
type Manifest struct {
	source  string
	columns []string
}

// New builds a manifest, rejecting blank and duplicate names.
func New(source string, columns []string) (*Manifest, error) {
	seen := make(map[string]struct{}, len(columns))
	out := make([]string, 0, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("manifest %s: entry %d is blank: %w", source, i, common.ErrInvalidInput)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("manifest %s: duplicate column %q: %w", source, c, common.ErrInvalidInput)
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return &Manifest{source: source, columns: out}, nil
}

func (m *Manifest) Source() string { return m.source }

func (m *Manifest) Len() int { return len(m.columns) }

// Columns returns a copy of the names in manifest order.
func (m *Manifest) Columns() []string {
	return append([]string(nil), m.columns...)
}

// Contains reports whether name is listed.
func (m *Manifest) Contains(name string) bool {
	for _, c := range m.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Without returns a manifest with names removed, keeping the remaining order.
func (m *Manifest) Without(names ...string) *Manifest {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := make([]string, 0, len(m.columns))
	for _, c := range m.columns {
		if _, ok := drop[c]; !ok {
			out = append(out, c)
		}
	}
	return &Manifest{source: m.source, columns: out}
}

// Load reads a manifest, choosing the decoder by extension: .json, .txt or
// .db/.sqlite/.sqlite3.
func Load(ctx context.Context, path string) (*Manifest, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".txt", "", ".db", ".sqlite", ".sqlite3":
	default:
		return nil, fmt.Errorf("manifest %s: unsupported extension: %w", path, common.ErrInvalidInput)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest %s: %w", path, common.ErrNotFound)
		}
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	switch ext {
	case ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		return ParseJSON(path, b)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path)
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		return ParseText(path, b)
	}
}

// ParseJSON accepts either a bare array of names or {"columns": [...]}.
func ParseJSON(source string, data []byte) (*Manifest, error) {
	if err := validateJSON(data); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "manifest "+source, err)
	}
	var columns []string
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &columns); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
	} else {
		var doc struct {
			Columns []string `json:"columns"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		columns = doc.Columns
	}
	return New(source, columns)
}

// ParseText reads one name per line. Blank lines and lines starting with '#'
// are skipped.
func ParseText(source string, data []byte) (*Manifest, error) {
	var columns []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		columns = append(columns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return New(source, columns)
}
