// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names follow the CSL-YAML schema so the output can be
// read by Pandoc and reference managers.
type CSLItem struct {
	ID      string    `yaml:"id"`
	Type    string    `yaml:"type"`
	Title   string    `yaml:"title"`
	Author  []CSLName `yaml:"author,omitempty"`
	Issued  *CSLDate  `yaml:"issued,omitempty"`
	Keyword string    `yaml:"keyword,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family string `yaml:"family,omitempty"`
	Given  string `yaml:"given,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL converts citation metadata to a CSL item. Categories and genre tags
// become comma-separated keywords.
func CSL(meta types.CitationMetadata) CSLItem {
	authors := ParseAuthors(meta.Author)
	year := NormalizeYear(meta.Year)

	item := CSLItem{
		ID:    Key(authors, year),
		Type:  "article-journal",
		Title: SentenceCase(meta.Title),
	}
	for _, a := range authors {
		item.Author = append(item.Author, CSLName{
			Family: a.Last,
			Given:  strings.TrimSpace(a.First + " " + a.Middle),
		})
	}
	if y, err := strconv.Atoi(year); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}

	var keywords []string
	seen := make(map[string]bool)
	for _, k := range append(append([]string{}, meta.Categories...), meta.GenreTags...) {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		keywords = append(keywords, k)
	}
	item.Keyword = strings.Join(keywords, ", ")
	return item
}

// WriteCSL writes items as a CSL-YAML list to w.
func WriteCSL(w io.Writer, items ...CSLItem) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}
