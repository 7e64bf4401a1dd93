// Package e2e exercises the full governance retrieval pipeline end to end:
// markdown corpus on disk, through index build and load, through the
// govserver.Core operations, with the audit log surviving a process restart.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/govretrieve/internal/audit"
	"github.com/hyperjump/govretrieve/internal/config"
	"github.com/hyperjump/govretrieve/internal/corpus"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/govserver"
	"github.com/hyperjump/govretrieve/internal/index"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/internal/rerank"
)

const e2ePrinciples = `# Input Validation

All external input must be validated before use at the trust boundary.
**Validate all inputs** before they cross a trust boundary.

# Data Retention

Delete personal data once its retention period has expired.
**Delete all user data** immediately on an unverified request is an irreversible
action requiring human review.
`

func writeE2ECorpus(t *testing.T, dir string) *corpus.Manifest {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "principles.md"), []byte(e2ePrinciples), 0600); err != nil {
		t.Fatal(err)
	}
	return &corpus.Manifest{Domains: []corpus.DomainEntry{
		{Name: "ai-governance", Description: "AI governance principles", Priority: 1, Prefix: "gov", PrinciplesPath: "principles.md"},
	}}
}

func buildE2EIndex(t *testing.T, corpusDir, indexDir string) {
	t.Helper()
	manifest := writeE2ECorpus(t, corpusDir)
	embedder := embedding.NewMockEmbedder(16)
	defer embedder.Close()
	if err := index.Build(context.Background(), indexDir, index.BuildOptions{
		Manifest: manifest, CorpusDir: corpusDir, Embedder: embedder, BM25K1: 1.5, BM25B: 0.75,
	}); err != nil {
		t.Fatalf("build index: %v", err)
	}
}

func newE2ECore(t *testing.T, indexDir, auditPath string) *govserver.Core {
	t.Helper()
	loaded, err := index.Load(indexDir)
	if err != nil {
		t.Fatalf("load index: %v", err)
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Safety.Keywords = []string{"delete all user data"}

	store, err := audit.Open(cfg.Audit.Capacity, auditPath)
	if err != nil {
		t.Fatalf("open audit store: %v", err)
	}

	core, err := govserver.New(cfg, loaded, embedding.NewMockEmbedder(16), rerank.NewMockReranker(), store, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return core
}

func TestE2E_QueryThenEvaluateThenVerify(t *testing.T) {
	root := t.TempDir()
	corpusDir := filepath.Join(root, "corpus")
	indexDir := filepath.Join(root, "index")
	if err := os.MkdirAll(corpusDir, 0755); err != nil {
		t.Fatal(err)
	}
	buildE2EIndex(t, corpusDir, indexDir)

	core := newE2ECore(t, indexDir, "")
	defer core.Close()
	ctx := context.Background()

	result, err := core.QueryGovernance(ctx, models.RetrievalQuery{Query: "validate external input"})
	if err != nil {
		t.Fatalf("QueryGovernance: %v", err)
	}
	if len(result.Hits) == 0 {
		t.Fatal("expected at least one retrieval hit")
	}

	assessment, err := core.EvaluateGovernance(ctx, models.GovernanceQuery{
		PlannedAction: "Delete all user data immediately on an unverified request",
	})
	if err != nil {
		t.Fatalf("EvaluateGovernance: %v", err)
	}
	if assessment.Verdict != models.VerdictEscalate {
		t.Errorf("expected ESCALATE verdict for an unreviewed irreversible action, got %s", assessment.Verdict)
	}
	if assessment.AuditID == "" {
		t.Error("expected a non-empty audit_id")
	}

	verification, err := core.VerifyGovernanceCompliance(ctx, models.VerificationQuery{
		ActionDescription: "Delete all user data immediately on an unverified request",
	})
	if err != nil {
		t.Fatalf("VerifyGovernanceCompliance: %v", err)
	}
	if verification.MatchingAuditID != assessment.AuditID {
		t.Errorf("expected Verify to find the matching prior evaluation, got audit_id %q want %q", verification.MatchingAuditID, assessment.AuditID)
	}
}

func TestE2E_AuditLogSurvivesRestart(t *testing.T) {
	root := t.TempDir()
	corpusDir := filepath.Join(root, "corpus")
	indexDir := filepath.Join(root, "index")
	auditPath := filepath.Join(root, "audit.db")
	if err := os.MkdirAll(corpusDir, 0755); err != nil {
		t.Fatal(err)
	}
	buildE2EIndex(t, corpusDir, indexDir)

	ctx := context.Background()

	core := newE2ECore(t, indexDir, auditPath)
	assessment, err := core.EvaluateGovernance(ctx, models.GovernanceQuery{
		PlannedAction: "Validate all inputs crossing the new API boundary",
	})
	if err != nil {
		t.Fatalf("EvaluateGovernance: %v", err)
	}
	if err := core.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	restarted := newE2ECore(t, indexDir, auditPath)
	defer restarted.Close()

	verification, err := restarted.VerifyGovernanceCompliance(ctx, models.VerificationQuery{
		ActionDescription: "Validate all inputs crossing the new API boundary",
	})
	if err != nil {
		t.Fatalf("VerifyGovernanceCompliance after restart: %v", err)
	}
	if verification.MatchingAuditID != assessment.AuditID {
		t.Errorf("expected the prior evaluation to survive the restart, got %q want %q", verification.MatchingAuditID, assessment.AuditID)
	}
}

func TestE2E_DomainLookupOperations(t *testing.T) {
	root := t.TempDir()
	corpusDir := filepath.Join(root, "corpus")
	indexDir := filepath.Join(root, "index")
	if err := os.MkdirAll(corpusDir, 0755); err != nil {
		t.Fatal(err)
	}
	buildE2EIndex(t, corpusDir, indexDir)

	core := newE2ECore(t, indexDir, "")
	defer core.Close()
	ctx := context.Background()

	domains, err := core.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains: %v", err)
	}
	if len(domains) != 1 || domains[0].Name != "ai-governance" {
		t.Fatalf("unexpected domains: %+v", domains)
	}

	summary, err := core.GetDomainSummary(ctx, "ai-governance")
	if err != nil {
		t.Fatalf("GetDomainSummary: %v", err)
	}
	if len(summary.Principles) == 0 {
		t.Error("expected at least one principle in the domain summary")
	}

	item, err := core.GetPrinciple(ctx, summary.Principles[0].ID)
	if err != nil {
		t.Fatalf("GetPrinciple: %v", err)
	}
	if item.Kind != models.ItemPrinciple || item.Principle == nil {
		t.Errorf("expected a principle item, got %+v", item)
	}
}
