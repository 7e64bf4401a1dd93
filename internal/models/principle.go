// Package models defines the core typed records for governance retrieval:
// principles, methods, domains, queries, scored hits, and assessments.
package models

// SeriesCode classifies a Principle by its governance series.
type SeriesCode string

const (
	SeriesSafety     SeriesCode = "S"
	SeriesContext    SeriesCode = "C"
	SeriesQuality    SeriesCode = "Q"
	SeriesOperations SeriesCode = "O"
	SeriesProcess    SeriesCode = "P"
	SeriesGeneral    SeriesCode = "G"
	SeriesMultiAgent SeriesCode = "MA"
	SeriesMethod     SeriesCode = "method"
	SeriesNone       SeriesCode = "None"
)

// IsSafety reports whether the series code marks a safety-critical item.
func (s SeriesCode) IsSafety() bool {
	return s == SeriesSafety
}

// SourceRange identifies where a record was extracted from, for traceability.
type SourceRange struct {
	Path      string `json:"path"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

// Principle is a stable rule or norm retrievable by ID.
type Principle struct {
	ID             string      `json:"id"`
	Domain         string      `json:"domain"`
	SeriesCode     SeriesCode  `json:"series_code"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	Keywords       []string    `json:"keywords"`
	TriggerPhrases []string    `json:"trigger_phrases"`
	AppliesTo      string      `json:"applies_to,omitempty"`
	SourceRange    SourceRange `json:"source_range"`
	EmbeddingRow   int         `json:"embedding_row"`
}

// EmbeddingText returns the text fed to the embedder and BM25 tokeniser:
// title, content, and the high-signal "Applies To:" field when present.
func (p *Principle) EmbeddingText() string {
	if p.AppliesTo == "" {
		return p.Title + "\n" + p.Content
	}
	return p.Title + "\n" + p.Content + "\n" + p.AppliesTo
}

// Snippet returns a short content window for reranker candidate text and
// result display.
func (p *Principle) Snippet(maxRunes int) string {
	return truncateRunes(p.Content, maxRunes)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
