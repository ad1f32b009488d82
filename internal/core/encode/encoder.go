// Package encode expands delimited multi-value survey answers into 0/1
// indicator columns named "{column}_{token}".
package encode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joseph-ayodele/survey-features/internal/common"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// Match selects how a cell is tested for a token.
type Match string

const (
	// MatchSubstring sets an indicator when the token text occurs anywhere in
	// the raw cell, so "Java" also matches "JavaScript".
	MatchSubstring Match = "substring"
	// MatchToken sets an indicator only when the token is one of the cell's
	// split values.
	MatchToken Match = "token"
)

// Options configures an encoding run.
type Options struct {
	Separator string
	Match     Match
}

func (o Options) validate() error {
	if o.Separator == "" {
		return fmt.Errorf("separator is empty: %w", common.ErrInvalidInput)
	}
	switch o.Match {
	case MatchSubstring, MatchToken:
		return nil
	default:
		return fmt.Errorf("unknown match mode %q: %w", o.Match, common.ErrInvalidInput)
	}
}

// Vocabulary maps a source column to its distinct tokens, sorted.
type Vocabulary map[string][]string

// Tokens splits cell on sep and drops empty pieces.
func Tokens(cell, sep string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BuildVocabulary collects the distinct tokens of every column of t.
func BuildVocabulary(t *frame.Table, sep string) Vocabulary {
	vocab := make(Vocabulary, t.NumCols())
	for _, col := range t.Columns() {
		cells, _ := t.Column(col)
		seen := make(map[string]struct{})
		for _, cell := range cells {
			for _, tok := range Tokens(cell, sep) {
				seen[tok] = struct{}{}
			}
		}
		tokens := make([]string, 0, len(seen))
		for tok := range seen {
			tokens = append(tokens, tok)
		}
		sort.Strings(tokens)
		vocab[col] = tokens
	}
	return vocab
}

// IndicatorName is the derived column name for token of column.
func IndicatorName(column, token string) string {
	return column + "_" + token
}

// Encode replaces every column of t with one indicator per distinct token
// observed in that column. Original columns are not kept.
func Encode(t *frame.Table, opts Options) (*frame.FeatureTable, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return EncodeWithVocabulary(t, BuildVocabulary(t, opts.Separator), opts)
}

// EncodeWithVocabulary encodes every column of t against vocab instead of the
// tokens t itself contains. Tokens absent from t yield all-zero columns;
// tokens of t absent from vocab are not encoded. Every vocab column must exist
// in t.
func EncodeWithVocabulary(t *frame.Table, vocab Vocabulary, opts Options) (*frame.FeatureTable, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	for col := range vocab {
		if !t.Has(col) {
			return nil, common.NewSchemaError(t.Name(), col)
		}
	}

	var names []string
	var values [][]uint8
	seen := make(map[string]string)
	for _, col := range t.Columns() {
		cells, _ := t.Column(col)
		for _, tok := range vocab[col] {
			name := IndicatorName(col, tok)
			if prev, dup := seen[name]; dup {
				return nil, fmt.Errorf("%s: indicator %q derived from both %q and %q: %w",
					t.Name(), name, prev, col, common.ErrInvalidInput)
			}
			seen[name] = col
			names = append(names, name)
			values = append(values, indicator(cells, tok, opts))
		}
	}
	return frame.NewFeatureTable(t.Name(), t.RowIDs(), names, values)
}

func indicator(cells []string, token string, opts Options) []uint8 {
	out := make([]uint8, len(cells))
	for r, cell := range cells {
		if matches(cell, token, opts) {
			out[r] = 1
		}
	}
	return out
}

func matches(cell, token string, opts Options) bool {
	if opts.Match == MatchToken {
		for _, t := range Tokens(cell, opts.Separator) {
			if t == token {
				return true
			}
		}
		return false
	}
	return strings.Contains(cell, token)
}
