package rag

import (
	"context"
	"sort"
	"strings"
)

// Document is one indexable entry for the in-memory searcher.
type Document struct {
	Text     string
	Metadata map[string]any
}

// MemorySearcher is a keyword-overlap Searcher for tests and offline runs.
// Scoring is the fraction of query terms present in the document text.
type MemorySearcher struct {
	docs []Document
}

func NewMemorySearcher(docs []Document) *MemorySearcher {
	return &MemorySearcher{docs: docs}
}

func (s *MemorySearcher) Available() bool { return true }

func (s *MemorySearcher) Search(_ context.Context, query string, limit int, filters map[string]string) ([]Hit, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var hits []Hit
	for _, doc := range s.docs {
		if !matchesFilters(doc.Metadata, filters) {
			continue
		}
		textLower := strings.ToLower(doc.Text)
		matched := 0
		for _, term := range terms {
			if strings.Contains(textLower, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, Hit{
			Text:     doc.Text,
			Score:    float64(matched) / float64(len(terms)),
			Metadata: doc.Metadata,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func matchesFilters(metadata map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := metadata[key].(string)
		if !ok || !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}
