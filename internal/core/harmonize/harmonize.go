// Package harmonize reconciles the indicator columns of feature tables that
// were encoded independently.
package harmonize

import (
	"sort"

	"github.com/joseph-ayodele/survey-features/internal/core/encode"
	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// IntersectColumns returns the columns present in every table, sorted. No
// tables, or tables sharing nothing, yield an empty result.
func IntersectColumns(tables []*frame.FeatureTable) []string {
	if len(tables) == 0 {
		return []string{}
	}
	common := toSet(tables[0].Columns())
	for _, t := range tables[1:] {
		common = intersect(common, toSet(t.Columns()))
	}
	out := make([]string, 0, len(common))
	for c := range common {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Project projects every table onto columns, preserving row order.
func Project(tables []*frame.FeatureTable, columns []string) ([]*frame.FeatureTable, error) {
	out := make([]*frame.FeatureTable, len(tables))
	for i, t := range tables {
		p, err := t.Project(columns)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// UnionVocabulary merges per-file vocabularies. Each column's tokens are the
// sorted union of that column's tokens across all inputs.
func UnionVocabulary(vocabs ...encode.Vocabulary) encode.Vocabulary {
	merged := make(map[string]map[string]struct{})
	for _, v := range vocabs {
		for col, tokens := range v {
			set, ok := merged[col]
			if !ok {
				set = make(map[string]struct{})
				merged[col] = set
			}
			for _, tok := range tokens {
				set[tok] = struct{}{}
			}
		}
	}
	out := make(encode.Vocabulary, len(merged))
	for col, set := range merged {
		tokens := make([]string, 0, len(set))
		for tok := range set {
			tokens = append(tokens, tok)
		}
		sort.Strings(tokens)
		out[col] = tokens
	}
	return out
}

func toSet(cols []string) map[string]struct{} {
	s := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
