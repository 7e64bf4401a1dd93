// Package router selects which domains a query should be retrieved
// against, by cosine similarity to each domain's centroid embedding.
package router

import (
	"sort"

	"github.com/hyperjump/govretrieve/internal/models"
)

// Index is the read-only view router needs: domain centroids by name.
type Index interface {
	Domains() []models.Domain
	DomainCentroid(name string) ([]float32, bool)
}

// Match is one routed domain with its similarity score.
type Match struct {
	Domain     string
	Similarity float64
}

// Route returns every domain whose centroid similarity to queryVec meets or
// exceeds threshold, ordered by descending similarity then domain priority,
// plus the constitution domain unioned in unconditionally unless
// includeConstitution is false. Dispatch is exhaustive (every domain is
// checked against the threshold) rather than prefix-based — a historical
// defect let a "multi" query prefix-match "mult" and route to the wrong
// domain; this never inspects domain name prefixes at all.
func Route(idx Index, queryVec []float32, threshold float64, explicitDomain string, includeConstitution bool) []Match {
	domains := idx.Domains()

	if explicitDomain != "" {
		for _, d := range domains {
			if d.Name == explicitDomain {
				matches := []Match{{Domain: d.Name, Similarity: 1.0}}
				return unionConstitution(matches, idx, includeConstitution)
			}
		}
		return unionConstitution(nil, idx, includeConstitution)
	}

	var matches []Match
	for _, d := range domains {
		if d.Name == models.ConstitutionDomain {
			continue // unioned separately, never threshold-gated
		}
		centroid, ok := idx.DomainCentroid(d.Name)
		if !ok {
			continue
		}
		sim := CosineSimilarity(queryVec, centroid)
		if sim >= threshold {
			matches = append(matches, Match{Domain: d.Name, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return priorityOf(domains, matches[i].Domain) < priorityOf(domains, matches[j].Domain)
	})

	return unionConstitution(matches, idx, includeConstitution)
}

func unionConstitution(matches []Match, idx Index, includeConstitution bool) []Match {
	if !includeConstitution {
		return matches
	}
	for _, m := range matches {
		if m.Domain == models.ConstitutionDomain {
			return matches
		}
	}
	if _, ok := idx.DomainCentroid(models.ConstitutionDomain); !ok {
		return matches
	}
	return append(matches, Match{Domain: models.ConstitutionDomain, Similarity: 1.0})
}

func priorityOf(domains []models.Domain, name string) int {
	for _, d := range domains {
		if d.Name == name {
			return d.Priority
		}
	}
	return 1 << 30
}

// CosineSimilarity returns the cosine similarity of two equal-length
// vectors, clamped to [0,1]. Adapted from the teacher's brute-force vector
// index similarity helper; vectors here are assumed L2-normalised already
// (the index builder guarantees this), so this reduces to a dot product.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}
