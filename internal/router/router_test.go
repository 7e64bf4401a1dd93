package router

import (
	"testing"

	"github.com/hyperjump/govretrieve/internal/models"
)

type fakeIndex struct {
	domains   []models.Domain
	centroids map[string][]float32
}

func (f *fakeIndex) Domains() []models.Domain { return f.domains }
func (f *fakeIndex) DomainCentroid(name string) ([]float32, bool) {
	v, ok := f.centroids[name]
	return v, ok
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		domains: []models.Domain{
			{Name: "ai-coding", Priority: 1},
			{Name: "data-handling", Priority: 2},
			{Name: models.ConstitutionDomain, Priority: 0},
		},
		centroids: map[string][]float32{
			"ai-coding":               {1, 0, 0},
			"data-handling":           {0, 1, 0},
			models.ConstitutionDomain: {0, 0, 1},
		},
	}
}

func TestRoute_ThresholdFiltersDomains(t *testing.T) {
	idx := newFakeIndex()
	matches := Route(idx, []float32{1, 0, 0}, 0.5, "", true)
	var names []string
	for _, m := range matches {
		names = append(names, m.Domain)
	}
	if len(names) != 2 {
		t.Fatalf("expected ai-coding + constitution, got %v", names)
	}
	if names[0] != "ai-coding" {
		t.Errorf("expected ai-coding first, got %v", names)
	}
}

func TestRoute_ConstitutionAlwaysIncludedUnlessSuppressed(t *testing.T) {
	idx := newFakeIndex()
	withConst := Route(idx, []float32{1, 0, 0}, 0.5, "", true)
	withoutConst := Route(idx, []float32{1, 0, 0}, 0.5, "", false)
	if len(withConst) != len(withoutConst)+1 {
		t.Errorf("expected constitution to add exactly one domain: with=%d without=%d", len(withConst), len(withoutConst))
	}
}

func TestRoute_ExplicitDomainOverridesThreshold(t *testing.T) {
	idx := newFakeIndex()
	matches := Route(idx, []float32{0, 0, 0}, 0.9, "data-handling", false)
	if len(matches) != 1 || matches[0].Domain != "data-handling" {
		t.Errorf("expected only data-handling, got %v", matches)
	}
}

func TestRoute_NoPrefixCollision(t *testing.T) {
	idx := &fakeIndex{
		domains: []models.Domain{
			{Name: "mult", Priority: 1},
			{Name: "multi-agent", Priority: 2},
		},
		centroids: map[string][]float32{
			"mult":        {1, 0},
			"multi-agent": {0, 1},
		},
	}
	matches := Route(idx, []float32{1, 0}, 0.5, "", false)
	if len(matches) != 1 || matches[0].Domain != "mult" {
		t.Errorf("expected only 'mult' domain to match (no prefix collision with 'multi-agent'), got %v", matches)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestCosineSimilarity_MismatchedLengths(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %f", got)
	}
}
