// Package governance implements the evaluate_governance decision procedure
// and its post-hoc verify_governance_compliance counterpart, layered on top
// of the retrieval pipeline and the Audit Store.
package governance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/govretrieve/internal/audit"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/internal/router"
	"github.com/hyperjump/govretrieve/internal/safety"
	"github.com/hyperjump/govretrieve/internal/search"
)

// Evaluator runs evaluate_governance and verify_governance_compliance
// against a Searcher, an Audit Store, and a fixed safety-keyword list.
type Evaluator struct {
	searcher *search.Searcher
	embedder embedding.Embedder
	store    *audit.Store

	safetyKeywords     []string
	verifyThreshold    float64
	verifyPartialFloor float64
}

// New builds an Evaluator. embedder is used only for verify_governance_compliance's
// similarity fallback; a nil embedder (or one that errors) degrades verify to
// substring-only and principle-overlap matching.
func New(searcher *search.Searcher, embedder embedding.Embedder, store *audit.Store, safetyKeywords []string, verifyThreshold, verifyPartialFloor float64) *Evaluator {
	return &Evaluator{
		searcher: searcher, embedder: embedder, store: store,
		safetyKeywords: safetyKeywords, verifyThreshold: verifyThreshold, verifyPartialFloor: verifyPartialFloor,
	}
}

// Evaluate runs the full evaluate_governance procedure: retrieve principles
// relevant to the action, label each with a heuristic compliance status,
// decide a verdict, and append an audit record.
func (e *Evaluator) Evaluate(ctx context.Context, q models.GovernanceQuery) (*models.Assessment, error) {
	retrieval, err := e.searcher.Retrieve(ctx, models.RetrievalQuery{
		Query:          q.CombinedText(),
		IncludeMethods: true,
		MaxResults:     20,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve for governance evaluation: %w", err)
	}

	// The safety veto is decided on planned_action alone: context/concerns
	// must never be able to stuff a benign-sounding qualifier that tips an
	// otherwise-triggering action away from ESCALATE.
	safetyCheck := safety.Scan(q.PlannedAction, e.safetyKeywords)

	evaluations := make([]models.ComplianceEvaluation, 0, len(retrieval.Hits))
	relevantIDs := make([]string, 0, len(retrieval.Hits))
	var modifications []string
	var sawNeedsModification bool

	for _, hit := range retrieval.Hits {
		relevantIDs = append(relevantIDs, hit.ID)
		eval := labelHit(hit)
		evaluations = append(evaluations, eval)
		if eval.Status == models.ComplianceNeedsModification {
			sawNeedsModification = true
			modifications = append(modifications, eval.Finding)
		}
	}

	verdict := models.VerdictProceed
	switch {
	case safetyCheck.Triggered:
		verdict = models.VerdictEscalate
	case sawNeedsModification && len(modifications) > 0:
		verdict = models.VerdictProceedWithModifications
	}

	auditID := newAuditID()
	assessment := &models.Assessment{
		AuditID:                auditID,
		Verdict:                verdict,
		Evaluations:            evaluations,
		RequiredModifications:  modifications,
		RelevantPrincipleIDs:   relevantIDs,
		RequiresAIJudgment:     true,
		SafetyCheck: models.SafetyCheck{
			Triggered:    safetyCheck.Triggered,
			MatchedTerms: safetyCheck.MatchedTerms,
			PromotedIDs:  retrieval.Metadata.SafetyCheck.PromotedIDs,
		},
	}

	if e.store != nil {
		if err := e.store.Append(models.AuditRecord{
			AuditID:              auditID,
			Timestamp:            time.Now(),
			ActionReviewed:       q.PlannedAction,
			Assessment:           verdict,
			RelevantPrincipleIDs: relevantIDs,
			SSeriesTriggered:     safetyCheck.Triggered,
		}); err != nil {
			return nil, fmt.Errorf("append audit record: %w", err)
		}
	}

	return assessment, nil
}

// labelHit applies the heuristic per-principle compliance label: an explicit
// safety promotion is a VIOLATION, a high-confidence relevant hit needs
// modification, and everything else merely complies.
func labelHit(hit models.ScoredHit) models.ComplianceEvaluation {
	switch {
	case hit.SafetyPromoted:
		return models.ComplianceEvaluation{
			PrincipleID: hit.ID,
			Status:      models.ComplianceViolation,
			Finding:     fmt.Sprintf("%q is a safety-critical principle triggered by this action", hit.Title),
		}
	case hit.Confidence == models.ConfidenceHigh:
		return models.ComplianceEvaluation{
			PrincipleID: hit.ID,
			Status:      models.ComplianceNeedsModification,
			Finding:     fmt.Sprintf("address %q before proceeding", hit.Title),
		}
	default:
		return models.ComplianceEvaluation{
			PrincipleID: hit.ID,
			Status:      models.ComplianceComplies,
			Finding:     fmt.Sprintf("%q is relevant context, no action required", hit.Title),
		}
	}
}

// newAuditID allocates an audit_id in the "gov-" + 12 hex characters shape,
// drawing its randomness from a uuid rather than hand-rolling a CSPRNG call.
func newAuditID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "gov-" + hex[:12]
}

// Verify runs verify_governance_compliance: scan the Audit Store for the
// best-matching prior evaluation, by case-insensitive substring match,
// embedding similarity, or expected-principle overlap, whichever is
// strongest, and band the result against verifyThreshold / verifyPartialFloor.
func (e *Evaluator) Verify(ctx context.Context, q models.VerificationQuery) (*models.VerificationResult, error) {
	records := e.store.All()

	var actionVec []float32
	if e.embedder != nil {
		if v, err := e.embedder.Embed(ctx, q.ActionDescription); err == nil {
			actionVec = v
		}
	}

	lowered := strings.ToLower(q.ActionDescription)

	var best models.AuditRecord
	var bestSim float64
	var found bool

	for _, rec := range records {
		sim := textSimilarity(ctx, lowered, rec.ActionReviewed, actionVec, e.embedder)
		if overlap := principleOverlap(rec.RelevantPrincipleIDs, q.ExpectedPrinciples); overlap > sim {
			sim = overlap
		}
		if sim > bestSim {
			bestSim = sim
			best = rec
			found = true
		}
	}

	result := &models.VerificationResult{Timestamp: time.Now().Unix()}
	switch {
	case found && bestSim >= e.verifyThreshold:
		result.Status = models.VerificationCompliant
		result.MatchingAuditID = best.AuditID
		result.Finding = fmt.Sprintf("matches prior evaluation %s (similarity %.2f)", best.AuditID, bestSim)
	case found && bestSim >= e.verifyPartialFloor:
		result.Status = models.VerificationPartial
		result.MatchingAuditID = best.AuditID
		result.Finding = fmt.Sprintf("partially matches prior evaluation %s (similarity %.2f)", best.AuditID, bestSim)
	default:
		result.Status = models.VerificationNonCompliant
		result.Finding = "no prior evaluation matches this action description"
	}
	return result, nil
}

func textSimilarity(ctx context.Context, loweredQuery, candidate string, queryVec []float32, embedder embedding.Embedder) float64 {
	loweredCandidate := strings.ToLower(candidate)
	if strings.Contains(loweredCandidate, loweredQuery) || strings.Contains(loweredQuery, loweredCandidate) {
		return 1.0
	}
	if queryVec == nil || embedder == nil {
		return 0
	}
	candidateVec, err := embedder.Embed(ctx, candidate)
	if err != nil {
		return 0
	}
	return router.CosineSimilarity(queryVec, candidateVec)
}

func principleOverlap(have, want []string) float64 {
	if len(want) == 0 {
		return 0
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, id := range have {
		haveSet[id] = struct{}{}
	}
	var hits int
	for _, id := range want {
		if _, ok := haveSet[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}
