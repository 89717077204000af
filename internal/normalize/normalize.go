// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans raw paper text before extraction: whitespace
// collapsing, label stripping, boilerplate removal for summaries, abstract
// isolation, and word-budget truncation. Every function is total; bad input
// yields an empty string, never an error.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultWordBudget is the number of words forwarded to a hosted model.
const DefaultWordBudget = 3500

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// labelRe matches a leading "Abstract:" or "Summary:" label.
	labelRe = regexp.MustCompile(`(?i)^(?:abstract|summary)\s*:\s*`)

	// tableCaptionRe matches "Table 3. Profile of respondents." style captions
	// up to the next period. tableMarkerRe removes a bare "Table 3" left over
	// when no period follows.
	tableCaptionRe = regexp.MustCompile(`(?i)\btable\s+\d+[.:]?[^.]*\.`)
	tableMarkerRe  = regexp.MustCompile(`(?i)\btable\s+\d+\b`)

	// referencesHeadingRe matches a references heading on its own line.
	referencesHeadingRe = regexp.MustCompile(`(?im)^[ \t]*(?:\d+\.?[ \t]*)?(?:references|bibliography|works cited|literature cited)[ \t]*:?[ \t]*$`)

	// referencesInlineRe matches a references marker in collapsed text that
	// is immediately followed by the opening of a reference list.
	referencesInlineRe = regexp.MustCompile(`\b(?:References|REFERENCES|references|Bibliography|BIBLIOGRAPHY|bibliography)\s*:?\s*(?:\[1\]|1\.\s|[A-Z][A-Za-z'\-]+,\s)`)

	abstractRe   = regexp.MustCompile(`(?i)\babstract\b[\s:.\-–—]*`)
	sectionEndRe = regexp.MustCompile(`(?i)\b(?:introduction|background|methodology|results|references)\b`)

	pageNumberRe = regexp.MustCompile(`^\d{1,3}$`)
)

// Normalize folds Unicode compatibility forms, collapses every whitespace
// run (newlines included) to one space, and strips a leading
// "abstract:"/"summary:" label.
func Normalize(raw string) string {
	return StripLabel(Collapse(norm.NFKC.String(raw)))
}

// Collapse replaces whitespace runs with single spaces and trims the result.
func Collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripLabel removes a leading "abstract:" or "summary:" label.
func StripLabel(s string) string {
	return strings.TrimSpace(labelRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

// NormalizeLines folds Unicode and collapses whitespace within each line
// while keeping the line structure. Extractors that reason about list items
// and headings use this form.
func NormalizeLines(raw string) string {
	raw = strings.ReplaceAll(norm.NFKC.String(raw), "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = Collapse(line)
	}
	return strings.Join(lines, "\n")
}

// CleanForSummary prepares text for summarization. It cuts everything from
// the references section onward, then removes table captions and isolated
// 1-3 digit tokens (page numbers). The result is collapsed and unlabeled.
func CleanForSummary(raw string) string {
	text := cutReferences(norm.NFKC.String(raw))
	text = Collapse(text)
	text = tableCaptionRe.ReplaceAllString(text, " ")
	text = tableMarkerRe.ReplaceAllString(text, " ")
	text = dropPageNumbers(text)
	return StripLabel(text)
}

// StripReferences folds and collapses raw and drops the references section.
// Unlike CleanForSummary it keeps numbers and captions.
func StripReferences(raw string) string {
	return Collapse(cutReferences(norm.NFKC.String(raw)))
}

// CutReferenceLines returns raw up to a references heading on its own
// line, keeping the line structure. Text without such a heading is
// returned whole.
func CutReferenceLines(raw string) string {
	if loc := referencesHeadingRe.FindStringIndex(raw); loc != nil {
		return raw[:loc[0]]
	}
	return raw
}

// cutReferences truncates text at the references section. A heading on its
// own line wins; otherwise an inline marker followed by a reference-list
// opening is used.
func cutReferences(text string) string {
	if loc := referencesHeadingRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	collapsed := Collapse(text)
	if loc := referencesInlineRe.FindStringIndex(collapsed); loc != nil {
		return collapsed[:loc[0]]
	}
	return text
}

func dropPageNumbers(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if pageNumberRe.MatchString(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// ExtractAbstract returns the span between an "abstract" marker and the
// first following introduction, background, methodology, results or
// references marker. Without an abstract marker, or when the span is empty,
// the whole text is returned.
func ExtractAbstract(text string) string {
	text = strings.TrimSpace(text)
	loc := abstractRe.FindStringIndex(text)
	if loc == nil {
		return text
	}
	span := text[loc[1]:]
	if end := sectionEndRe.FindStringIndex(span); end != nil {
		span = span[:end[0]]
	}
	span = strings.TrimSpace(span)
	if span == "" {
		return text
	}
	return span
}

// TruncateWords keeps the first n words of text. n <= 0 means no limit.
func TruncateWords(text string, n int) string {
	fields := strings.Fields(text)
	if n > 0 && len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Sentences splits text at '.', '!' or '?' followed by whitespace. The
// terminal punctuation stays with its sentence; empty pieces are dropped.
func Sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
