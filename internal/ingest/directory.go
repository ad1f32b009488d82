package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/survey-features/constants"
)

// FileResult is one discovered survey export.
type FileResult struct {
	Path   string
	Source string // path relative to the discovery root, used as row id source
	Format constants.FileFormat
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// Discover walks root and returns the files whose name contains pattern and
// whose extension is allowed, sorted by relative path so processing order is
// reproducible.
func Discover(root, pattern string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !Matches(path, pattern) {
			stats.Skipped++
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		stats.Matched++
		results = append(results, FileResult{
			Path:   path,
			Source: filepath.ToSlash(rel),
			Format: constants.MapExtToFormat(filepath.Ext(path)),
		})
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	return results, stats, nil
}
