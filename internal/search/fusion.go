// Package search implements the hybrid BM25 + dense retrieval pipeline:
// per-domain fan-out, convex score fusion, top-K candidate collection,
// confidence banding, and the deterministic tie-break spec.md §4.8 requires.
package search

import (
	"math"
	"sort"

	"github.com/hyperjump/govretrieve/internal/models"
)

// FusedResult holds one item's fused keyword/semantic scores.
type FusedResult struct {
	ItemID        string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// DenseToUnit maps a cosine similarity in [-1,1] to [0,1].
func DenseToUnit(cosine float64) float64 {
	return (cosine + 1) / 2
}

// NormalizeRerankScore maps a cross-encoder's raw, uncalibrated logit onto
// [0,1] with a sigmoid. Reranker.Score's contract only promises a score
// monotone within one call, not a bounded scale, so the raw value cannot be
// used directly as a confidence-banded ScoredHit.Score.
func NormalizeRerankScore(raw float64) float64 {
	return 1 / (1 + math.Exp(-raw))
}

// Fuse merges normalised keyword and dense score maps with weight alpha on
// the dense term: s_fused = alpha*dense + (1-alpha)*lex. Grounded on the
// teacher's search.Fuse, generalised from a fixed keyword/semantic weight
// pair to the single alpha the spec's per-query override controls.
func Fuse(keywordScores, denseScores map[string]float64, alpha float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{ItemID: id, KeywordScore: score}
	}
	for id, score := range denseScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{ItemID: id, SemanticScore: score}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, r := range scoreMap {
		r.Score = alpha*r.SemanticScore + (1-alpha)*r.KeywordScore
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ItemID < results[j].ItemID
	})
	return results
}

// TopK truncates a fused result list already sorted descending by score.
func TopK(results []*FusedResult, k int) []*FusedResult {
	if k <= 0 || len(results) <= k {
		return results
	}
	return results[:k]
}

// ApplyFeedback applies a bounded per-item adjustment to fused scores. The
// adjustment magnitude is capped so it can never, by itself, move an item
// across the confidence threshold it started on the wrong side of.
func ApplyFeedback(results []*FusedResult, adjustments map[string]float64, maxAdjustment float64) {
	for _, r := range results {
		adj, ok := adjustments[r.ItemID]
		if !ok {
			continue
		}
		if adj > maxAdjustment {
			adj = maxAdjustment
		}
		if adj < -maxAdjustment {
			adj = -maxAdjustment
		}
		r.Score += adj
		if r.Score < 0 {
			r.Score = 0
		}
		if r.Score > 1 {
			r.Score = 1
		}
	}
}

// Confidence derives the confidence band for a final score given the
// configured thresholds. Returns ok=false if the score falls below the low
// threshold (the hit is dropped, not returned).
func Confidence(score, high, medium, low float64) (models.Confidence, bool) {
	switch {
	case score >= high:
		return models.ConfidenceHigh, true
	case score >= medium:
		return models.ConfidenceMedium, true
	case score >= low:
		return models.ConfidenceLow, true
	default:
		return "", false
	}
}

// seriesPriority orders series codes for the tie-break rule: safety first,
// then the remaining series in a fixed, documented order.
var seriesPriority = map[models.SeriesCode]int{
	models.SeriesSafety:     0,
	models.SeriesContext:    1,
	models.SeriesQuality:    2,
	models.SeriesOperations: 3,
	models.SeriesProcess:    4,
	models.SeriesMultiAgent: 5,
	models.SeriesGeneral:    6,
	models.SeriesMethod:     7,
	models.SeriesNone:       8,
}

// SortHits orders hits by descending score, breaking ties by
// (safety first, series priority, id lex asc) per spec.md §4.8.
func SortHits(hits []models.ScoredHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		aSafety, bSafety := a.Series.IsSafety(), b.Series.IsSafety()
		if aSafety != bSafety {
			return aSafety
		}
		if seriesPriority[a.Series] != seriesPriority[b.Series] {
			return seriesPriority[a.Series] < seriesPriority[b.Series]
		}
		return a.ID < b.ID
	})
}
