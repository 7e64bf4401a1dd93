// Package cli provides terminal output formatting for govretrieve.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/govretrieve/internal/models"
)

// OutputFormat selects how a command's result is rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRetrievalResult writes query_governance's result to w in the given format.
func WriteRetrievalResult(w io.Writer, result *models.RetrievalResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return encodeJSON(w, result)
	case OutputCompact:
		writeHitsCompact(w, result.Hits)
		return nil
	default:
		writeRetrievalResultText(w, result)
		return nil
	}
}

func writeRetrievalResultText(w io.Writer, result *models.RetrievalResult) {
	fmt.Fprintf(w, "\nFound %d hits in %dms", len(result.Hits), result.Metadata.QueryTimeMillis)
	if result.Metadata.DenseSearchSkipped {
		fmt.Fprint(w, " (dense search skipped)")
	}
	if result.Metadata.RerankSkipped {
		fmt.Fprint(w, " (rerank skipped)")
	}
	fmt.Fprintln(w)
	if result.Metadata.SafetyCheck.Triggered {
		fmt.Fprintf(w, "Safety check triggered: %s\n", strings.Join(result.Metadata.SafetyCheck.MatchedTerms, ", "))
	}
	fmt.Fprintln(w)
	for _, hit := range result.Hits {
		writeOneHit(w, hit)
	}
}

func writeOneHit(w io.Writer, hit models.ScoredHit) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "[%s/%s] %s | score %.4f (keyword %.4f, semantic %.4f) | confidence %s",
		hit.Domain, hit.Series, hit.ID, hit.Score, hit.KeywordScore, hit.SemanticScore, hit.Confidence)
	if hit.SafetyPromoted {
		fmt.Fprint(w, " [SAFETY PROMOTED]")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", hit.Title)
	fmt.Fprintf(w, "\n%s\n\n", Truncate(hit.Snippet, 200))
}

func writeHitsCompact(w io.Writer, hits []models.ScoredHit) {
	for _, hit := range hits {
		flag := " "
		if hit.SafetyPromoted {
			flag = "!"
		}
		fmt.Fprintf(w, "%s %.4f [%s] %s | %s\n", flag, hit.Score, hit.Confidence, hit.ID, SanitizeForLine(hit.Title))
	}
}

// WriteAssessment writes evaluate_governance's result to w in the given format.
func WriteAssessment(w io.Writer, assessment *models.Assessment, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, assessment)
	}
	fmt.Fprintf(w, "\nVerdict: %s (audit_id: %s)\n", assessment.Verdict, assessment.AuditID)
	if assessment.SafetyCheck.Triggered {
		fmt.Fprintf(w, "Safety check triggered: %s\n", strings.Join(assessment.SafetyCheck.MatchedTerms, ", "))
	}
	if len(assessment.RequiredModifications) > 0 {
		fmt.Fprintln(w, "\nRequired modifications:")
		for _, m := range assessment.RequiredModifications {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
	fmt.Fprintln(w, "\nEvaluations:")
	for _, eval := range assessment.Evaluations {
		fmt.Fprintf(w, "  [%s] %s: %s\n", eval.Status, eval.PrincipleID, eval.Finding)
	}
	fmt.Fprintln(w, "\nThis assessment requires AI judgment; it is not a substitute for human review.")
	return nil
}

// WriteVerificationResult writes verify_governance_compliance's result to w.
func WriteVerificationResult(w io.Writer, result *models.VerificationResult, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, result)
	}
	fmt.Fprintf(w, "\nStatus: %s\n", result.Status)
	if result.MatchingAuditID != "" {
		fmt.Fprintf(w, "Matching audit record: %s\n", result.MatchingAuditID)
	}
	fmt.Fprintf(w, "%s\n", result.Finding)
	return nil
}

// WriteItem writes get_principle's result to w.
func WriteItem(w io.Writer, item *models.Item, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, item)
	}
	switch item.Kind {
	case models.ItemPrinciple:
		p := item.Principle
		fmt.Fprintf(w, "\n[%s/%s] %s\n\n%s\n", p.Domain, p.SeriesCode, p.Title, p.Content)
	case models.ItemMethod:
		m := item.Method
		fmt.Fprintf(w, "\n[%s/method] %s\n\n%s\n", m.Domain, m.Title, m.Content)
	}
	return nil
}

// WriteDomains writes list_domains' result to w.
func WriteDomains(w io.Writer, domains []models.Domain, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, domains)
	}
	for _, d := range domains {
		fmt.Fprintf(w, "%-20s priority=%d  principles=%d  methods=%d\n", d.Name, d.Priority, d.PrincipleCount, d.MethodCount)
	}
	return nil
}

// WriteDomainSummary writes get_domain_summary's result to w.
func WriteDomainSummary(w io.Writer, summary *models.DomainSummary, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, summary)
	}
	fmt.Fprintf(w, "\n%s: %s\n\n", summary.Domain.Name, summary.Domain.Description)
	for _, p := range summary.Principles {
		fmt.Fprintf(w, "  [%s] %s %s\n", p.SeriesCode, p.ID, p.Title)
	}
	for _, m := range summary.Methods {
		fmt.Fprintf(w, "  [method] %s %s\n", m.ID, m.Title)
	}
	return nil
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintRetrievalResult prints to stdout in text format.
func PrintRetrievalResult(result *models.RetrievalResult) {
	_ = WriteRetrievalResult(os.Stdout, result, OutputText)
}

// SanitizeForLine replaces newlines and tabs with spaces for single-line output.
func SanitizeForLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\t", " "))
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
