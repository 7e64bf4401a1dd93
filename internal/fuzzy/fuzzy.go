// Package fuzzy provides "did you mean" term suggestions over a fixed BM25
// vocabulary, using an in-memory Bleve index built once at index-load time.
package fuzzy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bkeyword "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
)

type termDoc struct {
	Term string `json:"term"`
}

// Suggester answers misspelling suggestions against a closed vocabulary.
// It never mutates: the vocabulary is fixed at Build time, matching the
// fixed, offline corpus it is built from.
type Suggester struct {
	index bleve.Index
	freq  map[string]int
}

// Build indexes every term in vocabulary (term -> document frequency) for
// fuzzy lookup. Each term is stored as a single "keyword"-analyzed field so
// Bleve treats it as one atomic token rather than splitting on word
// boundaries a hyphenated or punctuated term might contain.
func Build(vocabulary map[string]int) (*Suggester, error) {
	termField := bleve.NewTextFieldMapping()
	termField.Analyzer = bkeyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("term", termField)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("build fuzzy index: %w", err)
	}

	freq := make(map[string]int, len(vocabulary))
	for term, df := range vocabulary {
		lower := strings.ToLower(term)
		freq[lower] = df
		if err := idx.Index(lower, termDoc{Term: lower}); err != nil {
			return nil, fmt.Errorf("index term %q: %w", lower, err)
		}
	}

	return &Suggester{index: idx, freq: freq}, nil
}

// Suggest returns up to maxResults vocabulary terms within a fuzzy edit
// distance of 2 of query, ranked by descending document frequency then
// lexical order. Returns nil if query is already an exact vocabulary term —
// there is nothing to suggest.
func (s *Suggester) Suggest(query string, maxResults int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if _, exact := s.freq[query]; exact {
		return nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	fq := bleve.NewFuzzyQuery(query)
	fq.SetFuzziness(2)
	req := bleve.NewSearchRequest(fq)
	req.Size = maxResults * 4 // overfetch before ranking by frequency

	result, err := s.index.Search(req)
	if err != nil || len(result.Hits) == 0 {
		return nil
	}

	type candidate struct {
		term string
		freq int
	}
	candidates := make([]candidate, 0, len(result.Hits))
	for _, hit := range result.Hits {
		candidates = append(candidates, candidate{term: hit.ID, freq: s.freq[hit.ID]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].freq != candidates[j].freq {
			return candidates[i].freq > candidates[j].freq
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.term
	}
	return out
}

// Close releases the in-memory index.
func (s *Suggester) Close() error {
	return s.index.Close()
}
