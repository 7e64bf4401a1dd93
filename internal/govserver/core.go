package govserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/govretrieve/internal/audit"
	"github.com/hyperjump/govretrieve/internal/config"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/fuzzy"
	"github.com/hyperjump/govretrieve/internal/governance"
	"github.com/hyperjump/govretrieve/internal/index"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/internal/rerank"
	"github.com/hyperjump/govretrieve/internal/search"
)

// Core is the explicit, passed-in server context: every dependency a request
// handler needs is a field here, constructed once at startup. There is no
// package-level singleton; a second Core can be built in the same process
// (for tests, or for serving two corpora) without interference.
type Core struct {
	idx       *index.Loaded
	searcher  *search.Searcher
	evaluator *governance.Evaluator
	store     *audit.Store
	suggester *fuzzy.Suggester
	embedder  embedding.Embedder
	reranker  rerank.Reranker
	cfg       *config.Config
	logger    *zap.Logger

	admission chan struct{} // capacity = cfg.Retrieval.MaxInFlightQueries
}

// New builds a Core from an already-loaded index and the configuration that
// governs thresholds, deadlines, and admission control. embedder and
// reranker may be nil or a stub implementation; the model-identity check
// below decides whether dense search is enabled for the process lifetime.
func New(cfg *config.Config, idx *index.Loaded, embedder embedding.Embedder, reranker rerank.Reranker, store *audit.Store, logger *zap.Logger) (*Core, error) {
	denseDisabled := modelIdentityMismatch(idx.Header, embedder, logger)

	opts := search.Options{
		Alpha:            cfg.Retrieval.SemanticWeight,
		DomainThreshold:  cfg.Retrieval.DomainThreshold,
		TopK:             cfg.Retrieval.TopKCandidates,
		ConfidenceHigh:   cfg.Retrieval.ConfidenceHigh,
		ConfidenceMedium: cfg.Retrieval.ConfidenceMedium,
		ConfidenceLow:    cfg.Retrieval.ConfidenceLow,
		SafetyKeywords:   cfg.Safety.Keywords,
		FeedbackMax:      cfg.Retrieval.FeedbackMaxAdjustment,
	}
	searcher := search.New(idx, embedder, reranker, denseDisabled, opts)
	evaluator := governance.New(searcher, embedder, store, cfg.Safety.Keywords, cfg.Retrieval.VerifyThreshold, cfg.Retrieval.VerifyPartialFloor)

	suggester, err := fuzzy.Build(vocabulary(idx))
	if err != nil {
		return nil, internalErr("build fuzzy suggester", err)
	}

	maxInFlight := cfg.Retrieval.MaxInFlightQueries
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Core{
		idx: idx, searcher: searcher, evaluator: evaluator, store: store,
		suggester: suggester, embedder: embedder, reranker: reranker,
		cfg: cfg, logger: logger,
		admission: make(chan struct{}, maxInFlight),
	}, nil
}

// modelIdentityMismatch reports whether the embedder's identity differs from
// the one the index vectors were built with. A mismatch sticks for the
// process lifetime: dense search stays off rather than risk comparing
// vectors across incompatible embedding spaces.
func modelIdentityMismatch(header index.Header, embedder embedding.Embedder, logger *zap.Logger) bool {
	if embedder == nil {
		return true
	}
	identity := embedder.Identity()
	if identity.Name != header.ModelName || identity.Version != header.ModelVersion {
		logger.Warn("embedder identity does not match index build identity, disabling dense search",
			zap.String("index_model", header.ModelName), zap.String("index_version", header.ModelVersion),
			zap.String("embedder_model", identity.Name), zap.String("embedder_version", identity.Version))
		return true
	}
	return false
}

func vocabulary(idx *index.Loaded) map[string]int {
	out := make(map[string]int)
	for _, d := range idx.Domains() {
		bm, ok := idx.BM25(d.Name)
		if !ok {
			continue
		}
		for term, df := range bm.Vocabulary() {
			out[term] += df
		}
	}
	return out
}

// acquire enforces the admission-control limit; it returns an Overloaded
// error immediately rather than queuing, since a queued request would just
// burn its deadline waiting for a slot.
func (c *Core) acquire() (*Error, func()) {
	select {
	case c.admission <- struct{}{}:
		return nil, func() { <-c.admission }
	default:
		return overloaded("maximum in-flight queries reached"), func() {}
	}
}

func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// QueryGovernance implements query_governance: hybrid retrieval over
// principles and methods, no governance evaluation or audit write.
func (c *Core) QueryGovernance(ctx context.Context, q models.RetrievalQuery) (*models.RetrievalResult, error) {
	admErr, release := c.acquire()
	if admErr != nil {
		return nil, admErr
	}
	defer release()
	if err := q.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}

	ctx, cancel := withDeadline(ctx, c.cfg.Retrieval.RetrievalDeadline)
	defer cancel()

	result, err := c.searcher.Retrieve(ctx, q, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, deadline("retrieval deadline exceeded")
		}
		return nil, internalErr("retrieve", err)
	}
	return result, nil
}

// EvaluateGovernance implements evaluate_governance: retrieval, compliance
// labelling, verdict decision, and an audit append on success.
func (c *Core) EvaluateGovernance(ctx context.Context, q models.GovernanceQuery) (*models.Assessment, error) {
	admErr, release := c.acquire()
	if admErr != nil {
		return nil, admErr
	}
	defer release()
	if err := q.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}

	ctx, cancel := withDeadline(ctx, c.cfg.Retrieval.GovernanceDeadline)
	defer cancel()

	assessment, err := c.evaluator.Evaluate(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return nil, deadline("governance evaluation deadline exceeded")
		}
		return nil, internalErr("evaluate governance", err)
	}
	return assessment, nil
}

// VerifyGovernanceCompliance implements verify_governance_compliance: a scan
// over the Audit Store, no retrieval and no new audit write.
func (c *Core) VerifyGovernanceCompliance(ctx context.Context, q models.VerificationQuery) (*models.VerificationResult, error) {
	admErr, release := c.acquire()
	if admErr != nil {
		return nil, admErr
	}
	defer release()
	if err := q.Validate(); err != nil {
		return nil, invalidInput("%v", err)
	}

	ctx, cancel := withDeadline(ctx, c.cfg.Retrieval.GovernanceDeadline)
	defer cancel()

	result, err := c.evaluator.Verify(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return nil, deadline("verification deadline exceeded")
		}
		return nil, internalErr("verify governance compliance", err)
	}
	return result, nil
}

// GetPrinciple implements get_principle: a direct lookup by ID across both
// principles and methods, with a fuzzy "did you mean" suggestion attached to
// the NotFound error when one is available.
func (c *Core) GetPrinciple(ctx context.Context, id string) (*models.Item, error) {
	if id == "" {
		return nil, invalidInput("id cannot be empty")
	}
	if len(id) > 100 {
		return nil, invalidInput("id exceeds maximum length of 100 characters")
	}
	if p, ok := c.idx.Principle(id); ok {
		return &models.Item{Kind: models.ItemPrinciple, Principle: p}, nil
	}
	if m, ok := c.idx.Method(id); ok {
		return &models.Item{Kind: models.ItemMethod, Method: m}, nil
	}
	suggestion := ""
	if suggestions := c.suggester.Suggest(id, 1); len(suggestions) > 0 {
		suggestion = suggestions[0]
	}
	if suggestion != "" {
		return nil, notFound("no principle or method with id %q (did you mean %q?)", id, suggestion)
	}
	return nil, notFound("no principle or method with id %q", id)
}

// ListDomains implements list_domains: the full domain table, in the order
// the index stores it.
func (c *Core) ListDomains(ctx context.Context) ([]models.Domain, error) {
	return c.idx.Domains(), nil
}

// GetDomainSummary implements get_domain_summary: a domain record plus every
// principle and method it contains.
func (c *Core) GetDomainSummary(ctx context.Context, domain string) (*models.DomainSummary, error) {
	if domain == "" {
		return nil, invalidInput("domain cannot be empty")
	}
	d, ok := c.idx.Domain(domain)
	if !ok {
		return nil, notFound("no domain named %q", domain)
	}
	principles := c.idx.PrinciplesByDomain(domain)
	methods := c.idx.MethodsByDomain(domain)

	out := &models.DomainSummary{Domain: *d, Principles: make([]models.Principle, len(principles)), Methods: make([]models.Method, len(methods))}
	for i, p := range principles {
		out.Principles[i] = *p
	}
	for i, m := range methods {
		out.Methods[i] = *m
	}
	return out, nil
}

// Close releases resources the Core holds (the fuzzy suggester's in-memory
// bleve index, the embedder, the reranker, and the audit store's optional
// bbolt handle), returning the first error encountered.
func (c *Core) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(c.suggester.Close())
	if c.embedder != nil {
		record(c.embedder.Close())
	}
	if c.reranker != nil {
		record(c.reranker.Close())
	}
	if c.store != nil {
		record(c.store.Close())
	}
	return firstErr
}
