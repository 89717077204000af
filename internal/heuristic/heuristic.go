// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package heuristic produces summaries and one-line takeaways without a
// model. Everything here is pure and deterministic.
package heuristic

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paperlens/internal/normalize"
)

// Fixed outputs for input with no readable text.
const (
	NoReadableText = "No readable text available."
	NoTakeaway     = "No short takeaway available."
)

const (
	summarySentenceMin = 40
	summarySentences   = 4
	summaryWordsLimit  = 60

	tldrSentenceMin = 20
	tldrCharsLimit  = 150

	// MaxTakeawayWords caps every takeaway, model output included.
	MaxTakeawayWords = 50
)

// priorityGroups are tried in order; the first group with any matching
// sentence picks the takeaway.
var priorityGroups = []*regexp.Regexp{
	// results and findings
	regexp.MustCompile(`(?i)\b(?:found|findings?|results?|show(?:s|ed|n)?|reveal\w*|demonstrat\w*|indicat\w*|improv\w*|increas\w*|decreas\w*|significant\w*)\b`),
	// conclusions
	regexp.MustCompile(`(?i)\b(?:conclu\w*|summar\w*|overall|in short|suggest\w*|implication\w*)\b`),
	// aims
	regexp.MustCompile(`(?i)\b(?:aim\w*|objectives?|purpose|goals?|this study|this paper|we propose|investigat\w*|examin\w*)\b`),
}

// Summary joins the first four sentences longer than 40 characters. When
// no sentence is that long it returns the first 60 words instead.
func Summary(text string) string {
	clean := cleaned(text)
	if clean == "" {
		return NoReadableText
	}

	var picked []string
	for _, s := range normalize.Sentences(clean) {
		if utf8.RuneCountInString(s) > summarySentenceMin {
			picked = append(picked, s)
			if len(picked) == summarySentences {
				break
			}
		}
	}
	if len(picked) == 0 {
		return normalize.TruncateWords(clean, summaryWordsLimit)
	}
	return strings.Join(picked, " ")
}

// TLDR picks one sentence that states the paper's main point and finalizes
// it with Takeaway.
func TLDR(text string) string {
	clean := cleaned(text)
	if clean == "" {
		return NoTakeaway
	}

	var candidates []string
	for _, s := range normalize.Sentences(clean) {
		if utf8.RuneCountInString(s) >= tldrSentenceMin {
			candidates = append(candidates, s)
		}
	}

	pick := pickByPriority(candidates)
	if pick == "" && len(candidates) > 0 {
		pick = candidates[0]
	}
	if pick == "" {
		pick = firstRunes(clean, tldrCharsLimit)
	}

	if out := Takeaway(pick); out != "" {
		return out
	}
	return NoTakeaway
}

func pickByPriority(sentences []string) string {
	for _, re := range priorityGroups {
		for _, s := range sentences {
			if re.MatchString(s) {
				return s
			}
		}
	}
	return ""
}

// Takeaway collapses text, keeps at most 50 words, and makes it end in
// exactly one period. It returns "" when nothing but punctuation remains.
func Takeaway(text string) string {
	out := normalize.TruncateWords(text, MaxTakeawayWords)
	out = strings.TrimRight(out, ".!?;:,… \t")
	if out == "" {
		return ""
	}
	return out + "."
}

// cleaned prefers the summary-cleaned form but never loses text that
// cleaning would remove entirely.
func cleaned(text string) string {
	if clean := normalize.CleanForSummary(text); clean != "" {
		return clean
	}
	return normalize.Normalize(text)
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
