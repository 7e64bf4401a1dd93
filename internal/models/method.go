package models

// Method is a procedural description retrievable like a Principle, but
// always tagged SeriesMethod. It never carries safety-veto effect.
type Method struct {
	ID             string      `json:"id"`
	Domain         string      `json:"domain"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	Keywords       []string    `json:"keywords"`
	TriggerPhrases []string    `json:"trigger_phrases"`
	AppliesTo      string      `json:"applies_to,omitempty"`
	SourceRange    SourceRange `json:"source_range"`
	EmbeddingRow   int         `json:"embedding_row"`
}

// SeriesCodeValue always returns SeriesMethod for a Method; present for symmetry with
// Principle so callers can treat both uniformly where only the tag matters.
func (m *Method) SeriesCodeValue() SeriesCode {
	return SeriesMethod
}

// EmbeddingText mirrors Principle.EmbeddingText.
func (m *Method) EmbeddingText() string {
	if m.AppliesTo == "" {
		return m.Title + "\n" + m.Content
	}
	return m.Title + "\n" + m.Content + "\n" + m.AppliesTo
}

// Snippet mirrors Principle.Snippet.
func (m *Method) Snippet(maxRunes int) string {
	return truncateRunes(m.Content, maxRunes)
}
