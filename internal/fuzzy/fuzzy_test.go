package fuzzy

import "testing"

func TestSuggest_FindsCloseTerm(t *testing.T) {
	s, err := Build(map[string]int{"governance": 12, "retrieval": 5, "principle": 9})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()

	got := s.Suggest("governence", 3)
	if len(got) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	var found bool
	for _, g := range got {
		if g == "governance" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'governance' among suggestions, got %v", got)
	}
}

func TestSuggest_ExactTermReturnsNil(t *testing.T) {
	s, err := Build(map[string]int{"principle": 1})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()

	if got := s.Suggest("principle", 3); got != nil {
		t.Errorf("expected nil for exact vocabulary match, got %v", got)
	}
}

func TestSuggest_EmptyQuery(t *testing.T) {
	s, err := Build(map[string]int{"principle": 1})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()

	if got := s.Suggest("   ", 3); got != nil {
		t.Errorf("expected nil for empty query, got %v", got)
	}
}

func TestSuggest_RanksByFrequency(t *testing.T) {
	s, err := Build(map[string]int{"context": 50, "content": 3})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()

	got := s.Suggest("contxt", 2)
	if len(got) == 0 {
		t.Fatal("expected suggestions")
	}
	if got[0] != "context" {
		t.Errorf("expected higher-frequency term first, got %v", got)
	}
}
