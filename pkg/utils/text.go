// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// stopWords is the shared stop-word list used by keyword extraction and
// BM25 tokenisation. Deliberately small and domain-neutral.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"then": {}, "else": {}, "for": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "with": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "it": {}, "its": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "as": {}, "from": {}, "into": {}, "about": {},
	"do": {}, "does": {}, "did": {}, "can": {}, "could": {}, "should": {},
	"would": {}, "will": {}, "shall": {}, "may": {}, "might": {}, "must": {},
	"not": {}, "no": {}, "so": {}, "than": {}, "too": {}, "very": {},
	"you": {}, "your": {}, "we": {}, "our": {}, "they": {}, "their": {},
	"he": {}, "she": {}, "his": {}, "her": {}, "i": {}, "me": {}, "my": {},
}

// IsStopWord reports whether word (already lowercased) is a stop word.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Tokenize lowercases s and splits it into alphanumeric runs, discarding
// punctuation and whitespace. Used for BM25 document/query tokenisation.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TokenizeFiltered tokenizes s and drops stop words and tokens shorter than
// minLen. Order of first occurrence is preserved; duplicates are kept (the
// caller dedupes when it wants a keyword set, e.g. corpus.extractKeywords).
func TokenizeFiltered(s string, minLen int) []string {
	tokens := Tokenize(s)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) < minLen || IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
