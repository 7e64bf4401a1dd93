// Package safety implements the S-Series veto check: a deterministic,
// NFKC-normalised keyword scan that forces ESCALATE and promotes safety
// principles into the result set regardless of their fused score.
package safety

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hyperjump/govretrieve/internal/models"
)

// Check is the outcome of scanning a query for safety triggers.
type Check struct {
	Triggered    bool
	MatchedTerms []string
}

// normalize applies NFKC normalisation and lowercases, defeating homoglyph
// and compatibility-character evasion of the keyword scan (e.g. fullwidth
// or ligature variants of ASCII letters collapsing to their ASCII form).
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Scan checks rawQuery against the configured keyword list. Matching is a
// plain substring test after normalisation — deliberately simple and
// auditable, not a classifier.
func Scan(rawQuery string, keywords []string) Check {
	normalized := normalize(rawQuery)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(normalized, normalize(kw)) {
			matched = append(matched, kw)
		}
	}
	return Check{Triggered: len(matched) > 0, MatchedTerms: matched}
}

// PromoteCandidates returns every S-Series principle whose trigger phrases
// or keywords overlap the (normalised) query text. Per spec, promotion runs
// after reranking — this function is pure and order-independent, so callers
// control when in the pipeline it is invoked.
func PromoteCandidates(rawQuery string, principles []models.Principle) []models.Principle {
	normalized := normalize(rawQuery)
	var promoted []models.Principle
	for _, p := range principles {
		if !p.SeriesCode.IsSafety() {
			continue
		}
		if overlaps(normalized, p.TriggerPhrases) || overlapsKeywords(normalized, p.Keywords) {
			promoted = append(promoted, p)
		}
	}
	return promoted
}

func overlaps(normalizedQuery string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(normalizedQuery, normalize(phrase)) {
			return true
		}
	}
	return false
}

func overlapsKeywords(normalizedQuery string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalizedQuery, normalize(kw)) {
			return true
		}
	}
	return false
}
