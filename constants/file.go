package constants

import "strings"

// SurveyFilePattern is the substring a file name must contain to be treated as
// a primary survey-results export.
const SurveyFilePattern = "survey_results_public"

// FileFormat is the on-disk encoding of a survey export.
type FileFormat string

const (
	FormatCSV     FileFormat = "CSV"
	FormatXLSX    FileFormat = "XLSX"
	FormatUnknown FileFormat = ""
)

// AllowedExtensions holds the default allowed file extensions for survey ingestion.
var AllowedExtensions = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension (with or without dot) to its format.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "csv":
		return FormatCSV
	case "xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}
