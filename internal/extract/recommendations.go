// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/paperlens/internal/normalize"
	"github.com/pdiddy/paperlens/pkg/types"
)

// Recommendation list limits.
const (
	MaxRecommendations = 12

	minRecommendationLen = 25
	maxRecommendationLen = 600
	dedupPrefixLen       = 60
	sectionCharLimit     = 2000
	letteredThreshold    = 5
	promptWordBudget     = 1500
)

// AIBackend completes a prompt. It is consulted only when no rule-based
// strategy found anything.
type AIBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	numberedItemRe = regexp.MustCompile(`^\(?(\d{1,2})[.)]\s+(\S.*)$`)
	letteredItemRe = regexp.MustCompile(`^\(?([a-h])[.)]\s+(\S.*)$`)
	bulletItemRe   = regexp.MustCompile(`^[•●▪◦*·\-–—]\s*(\S.*)$`)
	listMarkerRe   = regexp.MustCompile(`^(?:\(?(?:\d{1,2}|[a-hA-H]|[ivx]{1,4})[.)]|[•●▪◦*·\-–—])\s*`)

	recSectionRe = regexp.MustCompile(`(?i)^(?:\d+(?:\.\d+)*\.?\s+)?recommendations?(?:\s+(?:for|to)\s+[a-z][a-z ,/&-]{0,60})?\s*:?$`)

	headingWordsRe = regexp.MustCompile(`(?i)^(?:\d+(?:\.\d+)*\.?\s+)?(?:chapter\s+[\divxl]+|introduction|background|review of related literature|methodology|methods|results|discussion|summary|conclusions?|references|bibliography|appendix|appendices|acknowledg\w*|limitations?(?:\s+of\s+the\s+study)?|recommendations?)\b`)

	// inclusionRe marks text that reads as advice.
	inclusionRe = regexp.MustCompile(`(?i)\b(?:should|recommend\w*|suggest\w*|needs? to|would benefit|must|encourag\w*|consider\w*|ought to|it is (?:advisable|important|essential|necessary)|may (?:wish|want) to|further (?:research|stud\w+|investigation)|future (?:research|stud\w+|researchers))\b`)

	// strongCueRe marks a sentence that directly states a recommendation.
	strongCueRe = regexp.MustCompile(`(?i)\b(?:it is (?:highly |strongly )?recommended|(?:we|researchers?|the (?:study|researchers?|authors?)) (?:strongly )?(?:recommends?|suggests?)|(?:is|are) (?:highly |strongly )?recommended|should|ought to|(?:is|are) encouraged to|would benefit from|it is suggested)\b`)

	exclusionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:chapter|table|figure|fig\.|appendix|page)\b`),
		regexp.MustCompile(`(?i)\b(?:table of contents|all rights reserved|copyright ©?|downloaded from|https?://|www\.)`),
		regexp.MustCompile(`(?i)^recommendations?(?:\s+for\b.*)?:?$`),
		regexp.MustCompile(`(?i)\bet al\.,?\s*\(?\d{4}`),
		regexp.MustCompile(`\?$`),
	}
)

// Recommendations collects recommendation sentences from text. Line
// structure matters, so pass the document text before whitespace is
// collapsed. The strategies run in order and stop once the list is full:
// numbered items, lettered items, headed recommendation sections, a
// sentence classifier over the body text when fewer than five items were
// found, and finally ai when it is non-nil and nothing else matched.
// Everything from a references heading onward is ignored. The source is
// SourceModel when the items came from ai and SourceRules otherwise. The
// error reports an ai failure only.
func Recommendations(ctx context.Context, text string, ai AIBackend) ([]string, types.ResultSource, error) {
	text = normalize.CutReferenceLines(text)
	lines := strings.Split(normalize.NormalizeLines(text), "\n")
	c := newCollector()

	c.addAll(listItems(lines, numberedItemRe))
	if !c.full() && c.len() < letteredThreshold {
		c.addAll(listItems(lines, letteredItemRe))
	}
	if !c.full() {
		for _, block := range recommendationSections(lines) {
			c.addAll(normalize.Sentences(cleanCandidate(block)))
		}
	}
	if c.len() < letteredThreshold {
		c.addAll(classifySentences(text))
	}

	if c.len() == 0 && ai != nil {
		items, err := aiRecommendations(ctx, ai, text)
		if err != nil {
			return nil, types.SourceRules, err
		}
		c.addAll(items)
		if c.len() > 0 {
			return c.items, types.SourceModel, nil
		}
	}
	return c.items, types.SourceRules, nil
}

// collector validates, deduplicates and caps candidates.
type collector struct {
	items []string
	seen  map[string]bool
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

func (c *collector) len() int   { return len(c.items) }
func (c *collector) full() bool { return len(c.items) >= MaxRecommendations }

func (c *collector) addAll(candidates []string) {
	for _, s := range candidates {
		if c.full() {
			return
		}
		c.add(s)
	}
}

func (c *collector) add(candidate string) {
	s := cleanCandidate(candidate)
	if !validRecommendation(s) {
		return
	}
	key := dedupKey(s)
	if key == "" || c.seen[key] {
		return
	}
	c.seen[key] = true
	c.items = append(c.items, s)
}

func cleanCandidate(s string) string {
	s = normalize.Collapse(s)
	for {
		stripped := strings.TrimSpace(listMarkerRe.ReplaceAllString(s, ""))
		if stripped == s {
			break
		}
		s = stripped
	}
	if s == "" {
		return ""
	}
	if r, _ := utf8.DecodeLastRuneInString(s); !strings.ContainsRune(".!?", r) {
		s = strings.TrimRight(s, ",;: ") + "."
	}
	return s
}

func validRecommendation(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minRecommendationLen || n > maxRecommendationLen {
		return false
	}
	if !inclusionRe.MatchString(s) {
		return false
	}
	for _, re := range exclusionRes {
		if re.MatchString(s) {
			return false
		}
	}
	return true
}

// dedupKey lower-cases s, keeps letters, digits and single spaces, and
// returns the first 60 characters.
func dedupKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	key := []rune(b.String())
	if len(key) > dedupPrefixLen {
		key = key[:dedupPrefixLen]
	}
	return strings.TrimSpace(string(key))
}

// listItems returns the items that start with marker, each merged with the
// continuation lines that follow it. A blank line, another list marker, or
// a heading ends an item.
func listItems(lines []string, marker *regexp.Regexp) []string {
	var items []string
	var cur string
	open := false
	flush := func() {
		if open {
			items = append(items, cur)
		}
		cur, open = "", false
	}

	for _, line := range lines {
		if m := marker.FindStringSubmatch(line); m != nil {
			flush()
			cur, open = m[2], true
			continue
		}
		if !open {
			continue
		}
		if line == "" || startsListItem(line) || isHeadingLine(line) {
			flush()
			continue
		}
		cur = joinWrapped(cur, line)
	}
	flush()
	return items
}

func startsListItem(line string) bool {
	return numberedItemRe.MatchString(line) || letteredItemRe.MatchString(line) || bulletItemRe.MatchString(line)
}

// isHeadingLine reports whether line looks like a section heading: a
// capitalized known section name or a short all-caps line, without a
// closing period.
func isHeadingLine(line string) bool {
	if line == "" || utf8.RuneCountInString(line) > 80 || strings.HasSuffix(line, ".") {
		return false
	}
	if first, _ := utf8.DecodeRuneInString(line); unicode.IsLower(first) {
		return false
	}
	words := len(strings.Fields(line))
	if headingWordsRe.MatchString(line) && words <= 8 {
		return true
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter && words <= 10
}

// joinWrapped appends a wrapped line, repairing words hyphenated across the
// break.
func joinWrapped(cur, next string) string {
	if cur == "" {
		return next
	}
	if strings.HasSuffix(cur, "-") && !strings.HasSuffix(cur, " -") {
		if r, _ := utf8.DecodeRuneInString(next); unicode.IsLower(r) {
			return strings.TrimSuffix(cur, "-") + next
		}
	}
	return cur + " " + next
}

// recommendationSections returns the blocks of each "Recommendations" or
// "Recommendations for ..." section: one block per list item or paragraph.
// A section ends at the next heading or after 2000 characters.
func recommendationSections(lines []string) []string {
	var blocks []string
	for i := 0; i < len(lines); i++ {
		if !recSectionRe.MatchString(lines[i]) {
			continue
		}
		var parts []string
		size := 0
		fresh := true
		j := i + 1
		for ; j < len(lines) && size < sectionCharLimit; j++ {
			line := lines[j]
			if line == "" {
				fresh = true
				continue
			}
			if recSectionRe.MatchString(line) || isHeadingLine(line) {
				break
			}
			if remaining := sectionCharLimit - size; utf8.RuneCountInString(line) > remaining {
				line = string([]rune(line)[:remaining])
			}
			size += utf8.RuneCountInString(line)
			if fresh || startsListItem(line) {
				parts = append(parts, line)
				fresh = false
				continue
			}
			parts[len(parts)-1] = joinWrapped(parts[len(parts)-1], line)
		}
		blocks = append(blocks, parts...)
		i = j - 1
	}
	return blocks
}

// classifySentences keeps sentences of the body text that carry a strong
// recommendation cue.
func classifySentences(text string) []string {
	var out []string
	for _, s := range normalize.Sentences(normalize.StripReferences(text)) {
		if strongCueRe.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func aiRecommendations(ctx context.Context, ai AIBackend, text string) ([]string, error) {
	prompt := "List the recommendations made by the authors of the following research paper. " +
		"Write one recommendation per line as a complete sentence. Write nothing else.\n\n" +
		normalize.TruncateWords(normalize.CleanForSummary(text), promptWordBudget)
	reply, err := ai.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("requesting recommendations: %w", err)
	}
	var items []string
	for _, line := range strings.Split(reply, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items, nil
}

// RecommendationsMarkdown renders items as a numbered list, or explains why
// the list may be empty.
func RecommendationsMarkdown(items []string) string {
	if len(items) == 0 {
		return "No recommendations were found in this document. " +
			"The paper may not include a recommendations section, " +
			"its suggestions may be phrased as general discussion rather than direct advice, " +
			"or the text extracted from the PDF may be incomplete or out of order."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d recommendation(s) in the document:\n\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}
