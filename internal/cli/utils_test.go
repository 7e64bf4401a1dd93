package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/govretrieve/internal/models"
)

func sampleResult() *models.RetrievalResult {
	return &models.RetrievalResult{
		Query: "input validation",
		Hits: []models.ScoredHit{
			{
				ID: "ai-coding-s-1", Kind: models.ItemPrinciple, Domain: "ai-coding",
				Series: models.SeriesSafety, Title: "Validate all inputs",
				Snippet: "All external input must be validated before use.",
				Score: 0.82, KeywordScore: 0.7, SemanticScore: 0.9,
				Confidence: models.ConfidenceHigh, SafetyPromoted: true,
			},
		},
		Metadata: models.RetrievalMetadata{
			QueryTimeMillis: 12,
			SafetyCheck:     models.SafetyCheck{Triggered: true, MatchedTerms: []string{"validate"}},
		},
	}
}

func TestWriteRetrievalResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), OutputJSON); err != nil {
		t.Fatalf("WriteRetrievalResult(json): %v", err)
	}
	var decoded models.RetrievalResult
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "input validation" || len(decoded.Hits) != 1 {
		t.Errorf("unexpected decoded result: %+v", decoded)
	}
}

func TestWriteRetrievalResult_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), OutputText); err != nil {
		t.Fatalf("WriteRetrievalResult(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 1 hits", "12ms", "Safety check triggered", "ai-coding-s-1", "SAFETY PROMOTED", "Validate all inputs"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteRetrievalResult_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), OutputCompact); err != nil {
		t.Fatalf("WriteRetrievalResult(compact): %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "!") {
		t.Errorf("compact output should flag a safety-promoted hit: %q", out)
	}
	if !strings.Contains(out, "ai-coding-s-1") {
		t.Errorf("compact output missing id: %q", out)
	}
}

func TestWriteAssessment(t *testing.T) {
	assessment := &models.Assessment{
		AuditID: "gov-abc123def456",
		Verdict: models.VerdictProceedWithModifications,
		Evaluations: []models.ComplianceEvaluation{
			{PrincipleID: "ai-coding-s-1", Status: models.ComplianceNeedsModification, Finding: "address before proceeding"},
		},
		RequiredModifications: []string{"address before proceeding"},
		RequiresAIJudgment:     true,
	}
	var buf bytes.Buffer
	if err := WriteAssessment(&buf, assessment, OutputText); err != nil {
		t.Fatalf("WriteAssessment: %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"PROCEED_WITH_MODIFICATIONS", "gov-abc123def456", "address before proceeding", "requires AI judgment"} {
		if !strings.Contains(out, sub) {
			t.Errorf("assessment output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteVerificationResult(t *testing.T) {
	result := &models.VerificationResult{Status: models.VerificationCompliant, MatchingAuditID: "gov-1", Finding: "matches prior evaluation"}
	var buf bytes.Buffer
	if err := WriteVerificationResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteVerificationResult: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "COMPLIANT") || !strings.Contains(out, "gov-1") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWriteItem_Principle(t *testing.T) {
	item := &models.Item{Kind: models.ItemPrinciple, Principle: &models.Principle{
		ID: "ai-coding-s-1", Domain: "ai-coding", SeriesCode: models.SeriesSafety,
		Title: "Validate all inputs", Content: "body text",
	}}
	var buf bytes.Buffer
	if err := WriteItem(&buf, item, OutputText); err != nil {
		t.Fatalf("WriteItem: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Validate all inputs") || !strings.Contains(out, "body text") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWriteDomains(t *testing.T) {
	domains := []models.Domain{{Name: "ai-coding", Priority: 1, PrincipleCount: 3, MethodCount: 1}}
	var buf bytes.Buffer
	if err := WriteDomains(&buf, domains, OutputText); err != nil {
		t.Fatalf("WriteDomains: %v", err)
	}
	if !strings.Contains(buf.String(), "ai-coding") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestSanitizeForLine(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want string
	}{
		{"empty", "", ""},
		{"no change", "hello world", "hello world"},
		{"newline", "a\nb", "a b"},
		{"tab", "a\tb", "a b"},
		{"leading trailing space", "  x  ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeForLine(tt.s)
			if got != tt.want {
				t.Errorf("SanitizeForLine(%q) = %q, want %q", tt.s, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
