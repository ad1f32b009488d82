package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/survey-features/constants"
)

// AllowedExt checks if a file extension is in the allowed set (csv/xlsx).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// Matches reports whether path names a survey export: an allowed extension and
// a base name containing pattern.
func Matches(path, pattern string) bool {
	return AllowedExt(filepath.Ext(path)) && strings.Contains(filepath.Base(path), pattern)
}
