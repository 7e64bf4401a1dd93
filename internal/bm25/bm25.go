// Package bm25 implements Okapi BM25 lexical scoring over a fixed,
// per-domain document set, with a serialisable on-disk representation.
package bm25

import (
	"math"
	"sort"

	"github.com/hyperjump/govretrieve/pkg/utils"
)

// DefaultK1 and DefaultB are the Okapi BM25 defaults fixed by spec.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Posting is one (document, term frequency) pair in an inverted index.
type Posting struct {
	DocID string `json:"doc_id"`
	Freq  int    `json:"freq"`
}

// State is the serialisable BM25 state for a single domain: tokenised
// document lengths, inverted postings, and an IDF table. It round-trips
// into global_index.json without re-tokenising the corpus.
type State struct {
	K1           float64              `json:"k1"`
	B            float64              `json:"b"`
	DocLengths   map[string]int       `json:"doc_lengths"`
	AvgDocLength float64              `json:"avg_doc_length"`
	Postings     map[string][]Posting `json:"postings"` // term -> postings
	IDF          map[string]float64   `json:"idf"`       // term -> idf
	DocOrder     []string             `json:"doc_order"` // stable iteration order
}

// Index is the in-memory, query-able form of a State.
type Index struct {
	state State
}

// Result is a single BM25 hit.
type Result struct {
	DocID string
	Score float64
}

// Build computes BM25 state from a set of tokenised documents, keyed by
// document ID. docTokens must already be tokenised (see pkg/utils.Tokenize).
func Build(docTokens map[string][]string, k1, b float64) *Index {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b <= 0 {
		b = DefaultB
	}
	docIDs := make([]string, 0, len(docTokens))
	for id := range docTokens {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	docLengths := make(map[string]int, len(docIDs))
	termFreqByDoc := make(map[string]map[string]int, len(docIDs))
	docFreq := make(map[string]int) // term -> number of docs containing it

	var totalLength int
	for _, id := range docIDs {
		tokens := docTokens[id]
		docLengths[id] = len(tokens)
		totalLength += len(tokens)
		freqs := make(map[string]int)
		for _, tok := range tokens {
			freqs[tok]++
		}
		termFreqByDoc[id] = freqs
		for term := range freqs {
			docFreq[term]++
		}
	}

	avgDocLength := 0.0
	if len(docIDs) > 0 {
		avgDocLength = float64(totalLength) / float64(len(docIDs))
	}

	n := float64(len(docIDs))
	idf := make(map[string]float64, len(docFreq))
	postings := make(map[string][]Posting, len(docFreq))
	for term, df := range docFreq {
		// Okapi IDF: ln((N - df + 0.5) / (df + 0.5) + 1). Small corpora with
		// very common terms can still drive this negative before the +1
		// smoothing is applied in some formulations; we clamp at use-time in
		// Score, not here, so the stored IDF reflects the raw computation
		// and the clamp invariant has a single enforcement point.
		v := math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
		idf[term] = v
		for _, id := range docIDs {
			if freq, ok := termFreqByDoc[id][term]; ok {
				postings[term] = append(postings[term], Posting{DocID: id, Freq: freq})
			}
		}
	}

	return &Index{state: State{
		K1:           k1,
		B:            b,
		DocLengths:   docLengths,
		AvgDocLength: avgDocLength,
		Postings:     postings,
		IDF:          idf,
		DocOrder:     docIDs,
	}}
}

// FromState wraps an already-loaded State (e.g. deserialised from
// global_index.json) as a queryable Index.
func FromState(s State) *Index {
	return &Index{state: s}
}

// State returns the serialisable state for persistence.
func (idx *Index) State() State {
	return idx.state
}

// clampIDF enforces the negative-IDF invariant: BM25 IDF can go negative on
// small corpora where a term appears in most or all documents; a negative
// weight would penalise matches, which is wrong, so it is floored at 0.
func clampIDF(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Score computes the raw (unnormalised) BM25 score of a single document
// against a set of query terms.
func (idx *Index) Score(docID string, queryTerms []string) float64 {
	length, ok := idx.state.DocLengths[docID]
	if !ok {
		return 0
	}
	if idx.state.AvgDocLength == 0 {
		return 0
	}
	var score float64
	for _, term := range queryTerms {
		idf := clampIDF(idx.state.IDF[term])
		if idf == 0 {
			continue
		}
		freq := idx.termFreq(term, docID)
		if freq == 0 {
			continue
		}
		numerator := float64(freq) * (idx.state.K1 + 1)
		denominator := float64(freq) + idx.state.K1*(1-idx.state.B+idx.state.B*float64(length)/idx.state.AvgDocLength)
		score += idf * numerator / denominator
	}
	return score
}

func (idx *Index) termFreq(term, docID string) int {
	for _, p := range idx.state.Postings[term] {
		if p.DocID == docID {
			return p.Freq
		}
	}
	return 0
}

// Search scores every document that shares at least one query term and
// returns the top `limit` results sorted by descending raw BM25 score.
func (idx *Index) Search(queryTerms []string, limit int) []Result {
	candidates := make(map[string]struct{})
	for _, term := range queryTerms {
		for _, p := range idx.state.Postings[term] {
			candidates[p.DocID] = struct{}{}
		}
	}
	results := make([]Result, 0, len(candidates))
	for docID := range candidates {
		results = append(results, Result{DocID: docID, Score: idx.Score(docID, queryTerms)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// NormalizeScores normalises raw BM25 scores to [0,1] by max, clamping any
// negative score to 0 first (defence in depth alongside the IDF clamp: a
// historical defect let negative scores reach fusion unclamped).
func NormalizeScores(results []Result) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}
	maxScore := 0.0
	for _, r := range results {
		s := r.Score
		if s < 0 {
			s = 0
		}
		if s > maxScore {
			maxScore = s
		}
	}
	const epsilon = 1e-6
	for _, r := range results {
		s := r.Score
		if s < 0 {
			s = 0
		}
		if maxScore > epsilon {
			out[r.DocID] = clampUnit(s / maxScore)
		} else {
			out[r.DocID] = 0
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// QueryTerms tokenises a raw query string the same way documents were
// tokenised at build time.
func QueryTerms(query string) []string {
	return utils.Tokenize(query)
}

// Vocabulary returns the document frequency of every term in the index, for
// consumers (the fuzzy "did you mean" suggester) that need term popularity
// without re-deriving it from the postings list themselves.
func (idx *Index) Vocabulary() map[string]int {
	out := make(map[string]int, len(idx.state.Postings))
	for term, postings := range idx.state.Postings {
		out[term] = len(postings)
	}
	return out
}
