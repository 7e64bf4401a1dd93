package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/govretrieve/internal/bm25"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/index"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/internal/rerank"
	"github.com/hyperjump/govretrieve/internal/router"
	"github.com/hyperjump/govretrieve/internal/safety"
)

// Options configures a Searcher for the life of the process. Per-query
// overrides (domain, semantic_weight) come from the RetrievalQuery itself.
type Options struct {
	Alpha            float64 // default dense weight in fusion
	DomainThreshold  float64
	TopK             int
	ConfidenceHigh   float64
	ConfidenceMedium float64
	ConfidenceLow    float64
	SafetyKeywords   []string
	FeedbackMax      float64
}

// Searcher runs the hybrid retrieval pipeline against a loaded index.
type Searcher struct {
	idx      *index.Loaded
	embedder embedding.Embedder
	reranker rerank.Reranker
	opts     Options

	denseDisabled bool // sticky: set once on model-identity mismatch, never cleared
}

// New builds a Searcher. denseDisabled should already reflect the result of
// the index/embedder model-identity check performed at load time; once
// true, dense search stays off for the life of the process (the explicit
// fix for the "guard-then-reload" defect: a later successful embed call
// must never silently re-enable it).
func New(idx *index.Loaded, embedder embedding.Embedder, reranker rerank.Reranker, denseDisabled bool, opts Options) *Searcher {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	return &Searcher{idx: idx, embedder: embedder, reranker: reranker, denseDisabled: denseDisabled, opts: opts}
}

// Feedback, when non-nil, supplies a bounded score adjustment per item ID
// for one Retrieve call. Only wired when the deployment enables the
// optional feedback store.
type Feedback map[string]float64

// Retrieve runs the full query_governance pipeline: domain routing, hybrid
// BM25+dense fan-out per domain, fusion, reranking, safety promotion,
// confidence banding and assembly.
func (s *Searcher) Retrieve(ctx context.Context, q models.RetrievalQuery, feedback Feedback) (*models.RetrievalResult, error) {
	start := time.Now()
	var metadata models.RetrievalMetadata

	var queryVec []float32
	denseSkipped := s.denseDisabled
	if !denseSkipped {
		v, err := s.embedder.Embed(ctx, q.Query)
		if err != nil {
			denseSkipped = true
		} else {
			queryVec = v
		}
	}
	metadata.DenseSearchSkipped = denseSkipped

	var routed []router.Match
	if denseSkipped && q.Domain == "" {
		for _, d := range s.idx.Domains() {
			routed = append(routed, router.Match{Domain: d.Name, Similarity: 0})
		}
	} else {
		routed = router.Route(s.idx, queryVec, s.opts.DomainThreshold, q.Domain, q.IncludeConstitutionOrDefault())
	}
	for _, m := range routed {
		metadata.RoutedDomains = append(metadata.RoutedDomains, m.Domain)
	}

	alpha := s.opts.Alpha
	if q.SemanticWeight != nil {
		alpha = *q.SemanticWeight
	}

	fusedByID, err := s.fanOutDomains(ctx, q.Query, queryVec, routed, alpha, denseSkipped)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}

	fused := make([]*FusedResult, 0, len(fusedByID))
	for _, f := range fusedByID {
		fused = append(fused, f)
	}
	sortFused(fused)
	if feedback != nil {
		ApplyFeedback(fused, feedback, s.opts.FeedbackMax)
	}
	topK := TopK(fused, s.opts.TopK)

	candidates := s.resolveCandidates(topK, q.IncludeMethods)

	rerankSkipped := true
	if s.reranker != nil && len(candidates) > 0 {
		texts := make([]string, len(candidates))
		for i, c := range candidates {
			texts[i] = c.title + "\n" + c.snippet
		}
		scores, err := s.reranker.Score(ctx, q.Query, texts)
		if err == nil && len(scores) == len(candidates) {
			for i := range candidates {
				candidates[i].score = NormalizeRerankScore(float64(scores[i]))
			}
			rerankSkipped = false
		}
	}
	metadata.RerankSkipped = rerankSkipped

	safetyCheck := safety.Scan(q.Query, s.opts.SafetyKeywords)
	metadata.SafetyCheck.Triggered = safetyCheck.Triggered
	metadata.SafetyCheck.MatchedTerms = safetyCheck.MatchedTerms

	if safetyCheck.Triggered {
		promoted := safety.PromoteCandidates(q.Query, s.idx.AllPrinciples())
		candidates = mergePromoted(candidates, promoted)
		for _, p := range promoted {
			metadata.SafetyCheck.PromotedIDs = append(metadata.SafetyCheck.PromotedIDs, p.ID)
		}
	}

	hits := s.assembleHits(candidates, safetyCheck.Triggered)
	SortHits(hits)

	if q.MaxResults > 0 && len(hits) > q.MaxResults {
		hits = hits[:q.MaxResults]
	}

	metadata.QueryTimeMillis = time.Since(start).Milliseconds()

	return &models.RetrievalResult{Query: q.Query, Hits: hits, Metadata: metadata}, nil
}

// sortFused re-establishes the (score desc, id asc) order Fuse produces,
// since collecting fanOutDomains' per-domain maps into one slice loses it.
func sortFused(results []*FusedResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ItemID < results[j].ItemID
	})
}

type candidate struct {
	id       string
	kind     models.ItemKind
	title    string
	snippet  string
	score    float64
	keyword  float64
	semantic float64
}

func (s *Searcher) fanOutDomains(ctx context.Context, query string, queryVec []float32, routed []router.Match, alpha float64, denseSkipped bool) (map[string]*FusedResult, error) {
	type domainResult struct {
		keyword map[string]float64
		dense   map[string]float64
	}
	results := make([]domainResult, len(routed))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range routed {
		i, m := i, m
		g.Go(func() error {
			queryTerms := bm25.QueryTerms(query)
			kwScores := map[string]float64{}
			if idx, ok := s.idx.BM25(m.Domain); ok {
				kwScores = bm25.NormalizeScores(idx.Search(queryTerms, 0))
			}

			denseScores := map[string]float64{}
			if !denseSkipped {
				for _, p := range s.idx.PrinciplesByDomain(m.Domain) {
					if vec, ok := s.idx.EmbeddingRow(p.EmbeddingRow); ok {
						denseScores[p.ID] = DenseToUnit(router.CosineSimilarity(queryVec, vec))
					}
				}
				for _, method := range s.idx.MethodsByDomain(m.Domain) {
					if vec, ok := s.idx.EmbeddingRow(method.EmbeddingRow); ok {
						denseScores[method.ID] = DenseToUnit(router.CosineSimilarity(queryVec, vec))
					}
				}
			}

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i] = domainResult{keyword: kwScores, dense: denseScores}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mergedKeyword := make(map[string]float64)
	mergedDense := make(map[string]float64)
	for _, r := range results {
		for id, v := range r.keyword {
			mergedKeyword[id] = v
		}
		for id, v := range r.dense {
			mergedDense[id] = v
		}
	}

	fused := Fuse(mergedKeyword, mergedDense, alpha)
	out := make(map[string]*FusedResult, len(fused))
	for _, f := range fused {
		out[f.ItemID] = f
	}
	return out, nil
}

func (s *Searcher) resolveCandidates(fused []*FusedResult, includeMethods bool) []candidate {
	out := make([]candidate, 0, len(fused))
	for _, f := range fused {
		if p, ok := s.idx.Principle(f.ItemID); ok {
			out = append(out, candidate{
				id: p.ID, kind: models.ItemPrinciple, title: p.Title, snippet: p.Snippet(280),
				score: f.Score, keyword: f.KeywordScore, semantic: f.SemanticScore,
			})
			continue
		}
		if !includeMethods {
			continue
		}
		if m, ok := s.idx.Method(f.ItemID); ok {
			out = append(out, candidate{
				id: m.ID, kind: models.ItemMethod, title: m.Title, snippet: m.Snippet(280),
				score: f.Score, keyword: f.KeywordScore, semantic: f.SemanticScore,
			})
		}
	}
	return out
}

func mergePromoted(candidates []candidate, promoted []models.Principle) []candidate {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.id] = struct{}{}
	}
	for _, p := range promoted {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		candidates = append(candidates, candidate{
			id: p.ID, kind: models.ItemPrinciple, title: p.Title, snippet: p.Snippet(280),
			score: 1.0,
		})
	}
	return candidates
}

func (s *Searcher) assembleHits(candidates []candidate, safetyTriggered bool) []models.ScoredHit {
	promotedIDs := make(map[string]struct{})
	if safetyTriggered {
		for _, p := range s.idx.AllPrinciples() {
			if p.SeriesCode.IsSafety() {
				promotedIDs[p.ID] = struct{}{}
			}
		}
	}

	hits := make([]models.ScoredHit, 0, len(candidates))
	for _, c := range candidates {
		_, isPromoted := promotedIDs[c.id]
		score := c.score
		confidence, ok := Confidence(score, s.opts.ConfidenceHigh, s.opts.ConfidenceMedium, s.opts.ConfidenceLow)
		if isPromoted {
			confidence, ok = models.ConfidenceHigh, true
		}
		if !ok {
			continue
		}

		domain, series, sourceRange := s.lookupMeta(c.id, c.kind)
		hits = append(hits, models.ScoredHit{
			ID: c.id, Kind: c.kind, Domain: domain, Series: series, Title: c.title,
			Snippet: c.snippet, SourceRange: sourceRange,
			KeywordScore: c.keyword, SemanticScore: c.semantic, Score: score,
			Confidence: confidence, SafetyPromoted: isPromoted,
		})
	}
	return hits
}

func (s *Searcher) lookupMeta(id string, kind models.ItemKind) (domain string, series models.SeriesCode, sourceRange models.SourceRange) {
	if kind == models.ItemPrinciple {
		if p, ok := s.idx.Principle(id); ok {
			return p.Domain, p.SeriesCode, p.SourceRange
		}
	}
	if m, ok := s.idx.Method(id); ok {
		return m.Domain, models.SeriesMethod, m.SourceRange
	}
	return "", models.SeriesNone, models.SourceRange{}
}
