package corpus

import (
	"regexp"
	"strings"
)

// section is one top-level heading block extracted from a markdown file,
// before it is turned into a Principle or Method record.
type section struct {
	HeadingPath string // the section's own heading text, e.g. "C-Series: Context Completeness"
	Title       string
	Body        string
	Line        int
}

// skipTitles folds non-substantive headings into the preceding content
// block instead of minting a record for them. Matched case-insensitively.
var skipTitles = map[string]struct{}{
	"purpose":     {},
	"overview":    {},
	"introduction": {},
	"summary":     {},
	"background":  {},
}

func isSkipTitle(title string) bool {
	_, ok := skipTitles[strings.ToLower(strings.TrimSpace(title))]
	return ok
}

var anyHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// splitSections splits markdown content into top-level heading sections.
// Top-level here means the first heading depth encountered (# or ##) that
// recurs at the same depth throughout the file; deeper headings stay inside
// the body of their enclosing section. Sections whose title is in the skip
// list are folded into the immediately preceding section's body.
func splitSections(content string) []section {
	lines := strings.Split(content, "\n")
	type rawHeading struct {
		depth int
		title string
		line  int
	}
	var headings []rawHeading
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if m := anyHeadingRe.FindStringSubmatch(trimmed); m != nil {
			headings = append(headings, rawHeading{depth: len(m[1]), title: strings.TrimSpace(m[2]), line: i})
		}
	}
	if len(headings) == 0 {
		return nil
	}

	topDepth := headings[0].depth
	var top []rawHeading
	for _, h := range headings {
		if h.depth == topDepth {
			top = append(top, h)
		}
	}

	var sections []section
	for i, h := range top {
		end := len(lines)
		if i+1 < len(top) {
			end = top[i+1].line
		}
		body := strings.Join(lines[h.line+1:end], "\n")
		if isSkipTitle(h.title) {
			if len(sections) > 0 {
				sections[len(sections)-1].Body += "\n" + body
			}
			continue
		}
		sections = append(sections, section{
			HeadingPath: h.title,
			Title:       h.title,
			Body:        strings.TrimSpace(body),
			Line:        h.line + 1,
		})
	}
	return sections
}

var boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// extractTriggerPhrases finds bolded spans and keeps those with length > 5
// characters and at most 4 whitespace-separated tokens.
func extractTriggerPhrases(body string) []string {
	matches := boldRe.FindAllStringSubmatch(body, -1)
	var out []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		phrase := strings.TrimSpace(m[1])
		if len(phrase) <= 5 {
			continue
		}
		tokens := strings.Fields(phrase)
		if len(tokens) == 0 || len(tokens) > 4 {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

var appliesToRe = regexp.MustCompile(`(?mi)^\s*Applies To:\s*(.+)\s*$`)

// extractAppliesTo pulls the contents of an optional "Applies To:" line.
func extractAppliesTo(body string) string {
	m := appliesToRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases a title, replaces non-alphanumeric runs with a single
// hyphen, and trims leading/trailing hyphens.
func slugify(title string) string {
	lower := strings.ToLower(title)
	slug := nonAlnumRun.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

// categoryFor infers the ID category segment from a heading path, per
// spec.md §4.1 (e.g. "C-Series" -> "context", "Series Q" -> "quality").
// isMethodFile forces "method" regardless of heading text.
func categoryFor(headingPath string, isMethodFile bool) string {
	if isMethodFile {
		return "method"
	}
	lower := strings.ToLower(headingPath)
	switch {
	case strings.Contains(lower, "c-series") || strings.Contains(lower, "context"):
		return "context"
	case strings.Contains(lower, "q-series") || strings.Contains(lower, "series q") || strings.Contains(lower, "quality"):
		return "quality"
	case strings.Contains(lower, "p-series") || strings.Contains(lower, "series p") || strings.Contains(lower, "process"):
		return "process"
	case strings.Contains(lower, "s-series") || strings.Contains(lower, "series s") || strings.Contains(lower, "safety"):
		return "safety"
	default:
		return "core"
	}
}
