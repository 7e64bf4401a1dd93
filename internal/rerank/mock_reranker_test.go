package rerank

import (
	"context"
	"testing"
)

func TestMockReranker_Score(t *testing.T) {
	r := NewMockReranker()
	scores, err := r.Score(context.Background(), "data deletion policy", []string{
		"data deletion must be logged",
		"completely unrelated text about colors",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0] <= scores[1] {
		t.Errorf("expected candidate 0 to score higher (more overlap): got %v", scores)
	}
}

func TestMockReranker_EmptyCandidate(t *testing.T) {
	r := NewMockReranker()
	scores, err := r.Score(context.Background(), "query", []string{""})
	if err != nil {
		t.Fatal(err)
	}
	if scores[0] != 0 {
		t.Errorf("expected 0 score for empty candidate, got %f", scores[0])
	}
}
