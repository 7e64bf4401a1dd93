// Package corpus parses a manifest-described directory of markdown files
// into the flat Principle/Method/Domain records the index builder consumes.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

// DuplicateIdError reports that two extracted items resolved to the same ID.
type DuplicateIdError struct {
	ID       string
	FirstAt  models.SourceRange
	SecondAt models.SourceRange
}

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("duplicate id %q: first seen at %s:%d, again at %s:%d",
		e.ID, e.FirstAt.Path, e.FirstAt.LineStart, e.SecondAt.Path, e.SecondAt.LineStart)
}

// categoryToSeries maps the inferred heading category to a Principle series
// code. "core" sections (no series marker in the heading path) are tagged
// general rather than left blank, so every Principle carries a series.
var categoryToSeries = map[string]models.SeriesCode{
	"context": models.SeriesContext,
	"quality": models.SeriesQuality,
	"process": models.SeriesProcess,
	"safety":  models.SeriesSafety,
	"core":    models.SeriesGeneral,
}

// Result is the parsed corpus: flat record lists plus the domain table, as
// spec.md §4.1 requires: (Vec<Principle>, Vec<Method>, Vec<Domain>).
type Result struct {
	Principles []models.Principle
	Methods    []models.Method
	Domains    []models.Domain
}

// Extract parses every domain in the manifest relative to baseDir into a
// single flat Result. It fails closed: any ExtractorConfigError or
// DuplicateIdError aborts the whole build, matching spec.md's "fails the
// build" semantics — a partially extracted corpus is never returned.
func Extract(manifest *Manifest, baseDir string) (*Result, error) {
	if err := manifest.Validate(baseDir); err != nil {
		return nil, err
	}

	result := &Result{}
	seenIDs := make(map[string]models.SourceRange)

	for _, entry := range manifest.Domains {
		domain := models.Domain{
			Name:        entry.Name,
			Description: entry.Description,
			Priority:    entry.Priority,
			Prefix:      entry.Prefix,
		}

		if entry.PrinciplesPath != "" {
			principles, err := parsePrinciples(entry, baseDir)
			if err != nil {
				return nil, err
			}
			for _, p := range principles {
				if prior, dup := seenIDs[p.ID]; dup {
					return nil, &DuplicateIdError{ID: p.ID, FirstAt: prior, SecondAt: p.SourceRange}
				}
				seenIDs[p.ID] = p.SourceRange
				result.Principles = append(result.Principles, p)
			}
			domain.PrincipleCount = len(principles)
		}

		if entry.MethodsPath != "" {
			methods, err := parseMethods(entry, baseDir)
			if err != nil {
				return nil, err
			}
			for _, m := range methods {
				if prior, dup := seenIDs[m.ID]; dup {
					return nil, &DuplicateIdError{ID: m.ID, FirstAt: prior, SecondAt: m.SourceRange}
				}
				seenIDs[m.ID] = m.SourceRange
				result.Methods = append(result.Methods, m)
			}
			domain.MethodCount = len(methods)
		}

		result.Domains = append(result.Domains, domain)
	}

	return result, nil
}

func parsePrinciples(entry DomainEntry, baseDir string) ([]models.Principle, error) {
	path := joinIfRelative(baseDir, entry.PrinciplesPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractorConfigError{Errors: []error{fmt.Errorf("read %s: %w", path, err)}}
	}

	sections := splitSections(string(content))
	principles := make([]models.Principle, 0, len(sections))
	for _, sec := range sections {
		category := categoryFor(sec.HeadingPath, false)
		id := entry.Prefix + "-" + category + "-" + slugify(sec.Title)
		series, ok := categoryToSeries[category]
		if !ok {
			series = models.SeriesGeneral
		}
		principles = append(principles, models.Principle{
			ID:             id,
			Domain:         entry.Name,
			SeriesCode:     series,
			Title:          sec.Title,
			Content:        sec.Body,
			Keywords:       extractKeywords(sec.Title + " " + sec.Body),
			TriggerPhrases: extractTriggerPhrases(sec.Body),
			AppliesTo:      extractAppliesTo(sec.Body),
			SourceRange: models.SourceRange{
				Path:      filepath.Clean(path),
				LineStart: sec.Line,
				LineEnd:   sec.Line + lineCount(sec.Body),
			},
		})
	}
	return principles, nil
}

func parseMethods(entry DomainEntry, baseDir string) ([]models.Method, error) {
	path := joinIfRelative(baseDir, entry.MethodsPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractorConfigError{Errors: []error{fmt.Errorf("read %s: %w", path, err)}}
	}

	sections := splitSections(string(content))
	methods := make([]models.Method, 0, len(sections))
	for _, sec := range sections {
		id := entry.Prefix + "-method-" + slugify(sec.Title)
		methods = append(methods, models.Method{
			ID:             id,
			Domain:         entry.Name,
			Title:          sec.Title,
			Content:        sec.Body,
			Keywords:       extractKeywords(sec.Title + " " + sec.Body),
			TriggerPhrases: extractTriggerPhrases(sec.Body),
			AppliesTo:      extractAppliesTo(sec.Body),
			SourceRange: models.SourceRange{
				Path:      filepath.Clean(path),
				LineStart: sec.Line,
				LineEnd:   sec.Line + lineCount(sec.Body),
			},
		})
	}
	return methods, nil
}

// extractKeywords lowercases, stop-word filters, keeps tokens of length >= 3
// and deduplicates preserving first occurrence, per spec.md §4.1.
func extractKeywords(text string) []string {
	tokens := utils.TokenizeFiltered(text, 3)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func lineCount(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
