package rerank

import (
	"context"
	"strings"
)

// MockReranker is a deterministic reranker, used in tests and by the CLI
// bootstrap as the fallback when the ONNX reranker is unavailable. It scores
// each candidate by overlap of lowercased tokens with the query, so it is
// monotone and repeatable without a real cross-encoder model.
type MockReranker struct{}

// NewMockReranker returns a MockReranker.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Score returns a token-overlap score per candidate, in [0,1].
func (r *MockReranker) Score(ctx context.Context, query string, candidates []string) ([]float32, error) {
	queryTokens := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(query)) {
		queryTokens[t] = struct{}{}
	}
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		tokens := strings.Fields(strings.ToLower(c))
		if len(tokens) == 0 {
			continue
		}
		var hits int
		for _, t := range tokens {
			if _, ok := queryTokens[t]; ok {
				hits++
			}
		}
		scores[i] = float32(hits) / float32(len(tokens))
	}
	return scores, nil
}

// Close is a no-op for MockReranker.
func (r *MockReranker) Close() error { return nil }
