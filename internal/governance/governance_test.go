package governance

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/govretrieve/internal/audit"
	"github.com/hyperjump/govretrieve/internal/corpus"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/index"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/internal/rerank"
	"github.com/hyperjump/govretrieve/internal/search"
)

const governancePrinciples = `# Input Validation

All external input must be validated before use. **Validate all inputs** at the trust boundary.

# Credential Handling

Never commit secrets to version control. **Delete all user data** is an irreversible action requiring review.
`

func newTestEvaluator(t *testing.T) (*Evaluator, *audit.Store) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "principles.md"), []byte(governancePrinciples), 0600); err != nil {
		t.Fatal(err)
	}
	manifest := &corpus.Manifest{Domains: []corpus.DomainEntry{
		{Name: "ai-coding", Description: "coding governance", Priority: 1, Prefix: "coding", PrinciplesPath: "principles.md"},
	}}
	outDir := filepath.Join(dir, "index-out")
	embedder := embedding.NewMockEmbedder(16)
	if err := index.Build(context.Background(), outDir, index.BuildOptions{
		Manifest: manifest, CorpusDir: dir, Embedder: embedder, BM25K1: 1.5, BM25B: 0.75,
	}); err != nil {
		t.Fatalf("build index: %v", err)
	}
	loaded, err := index.Load(outDir)
	if err != nil {
		t.Fatalf("load index: %v", err)
	}

	opts := search.Options{
		Alpha: 0.6, DomainThreshold: 0.0, TopK: 20,
		ConfidenceHigh: 0.70, ConfidenceMedium: 0.40, ConfidenceLow: 0.30,
		SafetyKeywords: []string{"delete all user data"},
		FeedbackMax:    0.05,
	}
	searcher := search.New(loaded, embedding.NewMockEmbedder(16), rerank.NewMockReranker(), false, opts)

	store, err := audit.Open(100, "")
	if err != nil {
		t.Fatal(err)
	}

	eval := New(searcher, embedding.NewMockEmbedder(16), store, []string{"delete all user data"}, 0.80, 0.50)
	return eval, store
}

func TestEvaluate_SafetyActionEscalates(t *testing.T) {
	eval, store := newTestEvaluator(t)

	assessment, err := eval.Evaluate(context.Background(), models.GovernanceQuery{
		PlannedAction: "Delete all user data older than 30 days",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if assessment.Verdict != models.VerdictEscalate {
		t.Errorf("expected ESCALATE, got %s", assessment.Verdict)
	}
	if !assessment.SafetyCheck.Triggered {
		t.Error("expected safety check triggered")
	}
	if assessment.AuditID == "" {
		t.Error("expected audit_id to be allocated")
	}
	if _, ok := store.Get(assessment.AuditID); !ok {
		t.Error("expected audit record to be appended to the store")
	}
}

func TestEvaluate_BenignActionProceeds(t *testing.T) {
	eval, _ := newTestEvaluator(t)

	assessment, err := eval.Evaluate(context.Background(), models.GovernanceQuery{
		PlannedAction: "Add a README section describing the project",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if assessment.Verdict == models.VerdictEscalate {
		t.Error("did not expect escalation for a benign action")
	}
}

func TestVerify_ExactSubstringMatchIsCompliant(t *testing.T) {
	eval, _ := newTestEvaluator(t)
	ctx := context.Background()

	assessment, err := eval.Evaluate(ctx, models.GovernanceQuery{PlannedAction: "Add JWT auth to the login endpoint"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	result, err := eval.Verify(ctx, models.VerificationQuery{ActionDescription: "add jwt auth to the login endpoint"})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Status != models.VerificationCompliant {
		t.Errorf("expected COMPLIANT, got %s", result.Status)
	}
	if result.MatchingAuditID != assessment.AuditID {
		t.Errorf("expected matching audit id %s, got %s", assessment.AuditID, result.MatchingAuditID)
	}
}

func TestVerify_NoPriorRecordIsNonCompliant(t *testing.T) {
	eval, _ := newTestEvaluator(t)

	result, err := eval.Verify(context.Background(), models.VerificationQuery{ActionDescription: "something never evaluated before"})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Status != models.VerificationNonCompliant {
		t.Errorf("expected NON_COMPLIANT, got %s", result.Status)
	}
}
