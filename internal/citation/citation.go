// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation turns a free-form author string, a title and a year
// into APA, IEEE and BibTeX citations. Output depends only on the inputs.
package citation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/paperlens/pkg/types"
)

// Placeholders for missing parts.
const (
	UnknownAuthor = "Author"
	UnknownYear   = "n.d."
	UntitledWork  = "Untitled"
)

var (
	authorSplitRe = regexp.MustCompile(`(?i)\s*(?:;|&|\band\b)\s*`)
	etAlRe        = regexp.MustCompile(`(?i)\bet\.?\s+al\.?`)
	initialsRe    = regexp.MustCompile(`^(?:(?:\p{Lu}\.-?)+|\p{Lu})$`)
	yearRe        = regexp.MustCompile(`\d{4}`)
)

// Format renders all citation dialects for one work.
func Format(authorRaw, title, year string) types.CitationSet {
	authors := ParseAuthors(authorRaw)
	y := NormalizeYear(year)
	t := SentenceCase(title)
	key := Key(authors, y)

	return types.CitationSet{
		APA:    fmt.Sprintf("%s (%s). %s", joinAPA(authors), y, withPeriod(t)),
		IEEE:   fmt.Sprintf("%s, \"%s,\" %s.", joinIEEE(authors), strings.TrimRight(t, "."), strings.TrimSuffix(y, ".")),
		BibTeX: bibtex(key, authors, t, y),
		Key:    key,
	}
}

// ParseAuthors splits a free-form author string into names. Names are
// separated by ";", "&" or "and". A comma chunk is read as "Last, First
// Middle" when it has that shape, as "Last, F., Last, F." pairs when every
// second part is initials, and otherwise as a list of "First Middle Last"
// names. The result is never empty and every Last is non-empty.
func ParseAuthors(raw string) []types.AuthorName {
	raw = etAlRe.ReplaceAllString(norm.NFKC.String(raw), "")

	var names []types.AuthorName
	for _, chunk := range authorSplitRe.Split(raw, -1) {
		names = append(names, parseChunk(chunk)...)
	}
	if len(names) == 0 {
		return []types.AuthorName{{Last: UnknownAuthor}}
	}
	return names
}

func parseChunk(chunk string) []types.AuthorName {
	var parts []string
	for _, p := range strings.Split(chunk, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch {
	case len(parts) == 0:
		return nil
	case len(parts) == 1:
		return nameList(parts)
	case len(parts) == 2 && lastFirstShape(parts[0], parts[1]):
		return []types.AuthorName{lastFirst(parts[0], parts[1])}
	case len(parts)%2 == 0 && pairedInitials(parts):
		var out []types.AuthorName
		for i := 0; i < len(parts); i += 2 {
			out = append(out, lastFirst(parts[i], parts[i+1]))
		}
		return out
	}
	return nameList(parts)
}

// lastFirstShape reports whether "a, b" reads as one "Last, First Middle"
// name rather than two "First Last" names: the given part is initials or a
// single word, or the family part is a single word.
func lastFirstShape(family, given string) bool {
	return isInitials(given) || len(strings.Fields(given)) == 1 || len(strings.Fields(family)) == 1
}

func pairedInitials(parts []string) bool {
	for i := 1; i < len(parts); i += 2 {
		if !isInitials(parts[i]) {
			return false
		}
	}
	return true
}

func isInitials(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 3 {
		return false
	}
	for _, f := range fields {
		if !initialsRe.MatchString(strings.ToUpper(f)) {
			return false
		}
	}
	return true
}

func lastFirst(family, given string) types.AuthorName {
	tokens := strings.Fields(given)
	name := types.AuthorName{Last: capitalizeName(family)}
	if len(tokens) > 0 {
		name.First = capitalizeName(tokens[0])
		name.Middle = capitalizeName(strings.Join(tokens[1:], " "))
	}
	if name.Last == "" {
		name.Last = UnknownAuthor
	}
	return name
}

// nameList reads each part as "First [Middle...] Last".
func nameList(parts []string) []types.AuthorName {
	var out []types.AuthorName
	for _, p := range parts {
		tokens := strings.Fields(p)
		switch len(tokens) {
		case 0:
			continue
		case 1:
			out = append(out, types.AuthorName{Last: capitalizeName(tokens[0])})
		default:
			out = append(out, types.AuthorName{
				First:  capitalizeName(tokens[0]),
				Middle: capitalizeName(strings.Join(tokens[1:len(tokens)-1], " ")),
				Last:   capitalizeName(tokens[len(tokens)-1]),
			})
		}
	}
	return out
}

// capitalizeName upper-cases the first letter of every word and of every
// hyphen-separated part, and lower-cases the rest.
func capitalizeName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if upper := strings.ToUpper(w); strings.Contains(w, ".") && initialsRe.MatchString(upper) {
			words[i] = upper
			continue
		}
		segs := strings.Split(w, "-")
		for j, seg := range segs {
			segs[j] = capitalize(seg)
		}
		words[i] = strings.Join(segs, "-")
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// initials renders given names as "F. M.".
func initials(n types.AuthorName) string {
	var out []string
	for _, tok := range strings.Fields(n.First + " " + n.Middle) {
		if initialsRe.MatchString(tok) {
			for _, r := range tok {
				if unicode.IsUpper(r) {
					out = append(out, string(r)+".")
				}
			}
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.IsLetter(r) {
			out = append(out, string(unicode.ToUpper(r))+".")
		}
	}
	return strings.Join(out, " ")
}

// APAName renders "Last, F. M.".
func APAName(n types.AuthorName) string {
	if in := initials(n); in != "" {
		return n.Last + ", " + in
	}
	return n.Last
}

// IEEEName renders "F. M. Last".
func IEEEName(n types.AuthorName) string {
	if in := initials(n); in != "" {
		return in + " " + n.Last
	}
	return n.Last
}

func joinAPA(authors []types.AuthorName) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = APAName(a)
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", & " + names[len(names)-1]
}

func joinIEEE(authors []types.AuthorName) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = IEEEName(a)
	}
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

func bibtex(key string, authors []types.AuthorName, title, year string) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = APAName(a)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", key)
	fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(names, " and "))
	fmt.Fprintf(&b, "  title = {%s},\n", strings.TrimRight(title, "."))
	fmt.Fprintf(&b, "  year = {%s}\n", year)
	b.WriteString("}")
	return b.String()
}

// NormalizeYear returns the first four-digit run in year, or "n.d.".
func NormalizeYear(year string) string {
	if y := yearRe.FindString(year); y != "" {
		return y
	}
	return UnknownYear
}

// SentenceCase lower-cases title and capitalizes the first letter of each
// sentence. An empty title becomes "Untitled".
func SentenceCase(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return UntitledWork
	}
	runes := []rune(strings.ToLower(title))
	capNext := true
	for i, r := range runes {
		if capNext && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			capNext = false
		}
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && runes[i+1] == ' ' {
			capNext = true
		}
	}
	return string(runes)
}

// Key builds the BibTeX key: the first author's last name folded to
// lowercase ASCII letters and digits, followed by the year or "nd".
func Key(authors []types.AuthorName, year string) string {
	base := "author"
	if len(authors) > 0 {
		if folded := asciiAlnum(authors[0].Last); folded != "" {
			base = folded
		}
	}
	if year == UnknownYear || year == "" {
		return base + "nd"
	}
	return base + year
}

func asciiAlnum(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func withPeriod(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}
