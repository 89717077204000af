// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/paperlens/internal/normalize"
	"github.com/pdiddy/paperlens/pkg/types"
)

// referenceWindow is the number of characters read after the header.
const referenceWindow = 20000

var (
	// refHeadingRe prefers a header on its own line; refMarkerRe is the
	// first occurrence anywhere.
	refHeadingRe = regexp.MustCompile(`(?im)^[ \t]*(?:\d+\.?[ \t]*)?(?:references|bibliography)[ \t]*:?[ \t]*$`)
	refMarkerRe  = regexp.MustCompile(`(?i)references|bibliography`)

	// newEntryRe recognizes the first line of a reference: [n], n., a
	// bullet or dash, or an APA opening such as "Smith, J. (2020)".
	newEntryRe = regexp.MustCompile(`^(?:\[\d{1,3}\]|\d{1,3}[.)]\s|[•●▪◦*·\-–—]\s*\S|[A-Z][\p{L}'’\-]+,\s[^()]{0,200}?\((?:\d{4}[a-z]?|n\.d\.)\))`)

	pageOnlyRe = regexp.MustCompile(`^\d{1,3}$`)
	refYearRe  = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})[a-z]?\b`)
	doiRe      = regexp.MustCompile(`(?i)(?:doi:\s*|https?://(?:dx\.)?doi\.org/)?(10\.\d{4,9}/[^\s\])>"',]+)`)
)

// ScanReferences rebuilds the reference list that follows a "References"
// or "Bibliography" header. Wrapped lines are merged into their entry and
// document order is kept. It returns nil when there is no header.
func ScanReferences(text string) []types.ReferenceEntry {
	text = normalize.NormalizeLines(text)

	var start int
	if loc := refHeadingRe.FindStringIndex(text); loc != nil {
		start = loc[1]
	} else if loc := refMarkerRe.FindStringIndex(text); loc != nil {
		start = loc[1]
	} else {
		return nil
	}

	window := []rune(text[start:])
	if len(window) > referenceWindow {
		window = window[:referenceWindow]
	}

	var entries []types.ReferenceEntry
	var cur string
	flush := func() {
		if e, ok := newReferenceEntry(cur); ok {
			entries = append(entries, e)
		}
		cur = ""
	}

	for _, line := range strings.Split(string(window), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, ":"))
		if line == "" || pageOnlyRe.MatchString(line) {
			continue
		}
		if cur == "" || newEntryRe.MatchString(line) {
			flush()
			cur = line
			continue
		}
		cur = joinWrapped(cur, line)
	}
	flush()
	return entries
}

func newReferenceEntry(raw string) (types.ReferenceEntry, bool) {
	text := normalize.Collapse(raw)
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return types.ReferenceEntry{}, false
	}
	e := types.ReferenceEntry{Text: text}
	if m := refYearRe.FindStringSubmatch(text); m != nil {
		e.Year = m[1]
	}
	if m := doiRe.FindStringSubmatch(text); m != nil {
		e.DOI = strings.TrimRight(m[1], ".;")
	}
	return e, true
}

// ReferencesMarkdown renders entries as a numbered list.
func ReferencesMarkdown(entries []types.ReferenceEntry) string {
	if len(entries) == 0 {
		return "No references or bibliography section was found in this document."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d reference(s):\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
