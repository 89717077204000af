// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Checklist category names, in render order.
const (
	CategoryApproach    = "Approach"
	CategoryDesign      = "Design"
	CategoryEnvironment = "Environment"
	CategorySample      = "Sample"
	CategoryInstruments = "Instruments"
	CategorySoftware    = "Software"
	CategoryAnalysis    = "Analysis"
	CategoryOutcomes    = "Outcomes"
)

// ChecklistCategory is one line of a methods checklist.
type ChecklistCategory struct {
	// Name is one of the Category* constants.
	Name string `json:"name" yaml:"name"`

	// Terms are the matched, title-cased terms in first-seen order.
	Terms []string `json:"terms" yaml:"terms"`
}

// MethodsChecklist maps methodology categories to the terms found for them.
// Categories with no matches are omitted, never present with empty Terms.
type MethodsChecklist struct {
	Categories []ChecklistCategory `json:"categories" yaml:"categories"`
}

// Terms returns the terms recorded for the named category, or nil.
func (c MethodsChecklist) Terms(name string) []string {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat.Terms
		}
	}
	return nil
}

// IsEmpty reports whether no category matched.
func (c MethodsChecklist) IsEmpty() bool {
	return len(c.Categories) == 0
}

// ReferenceEntry is one reconstructed bibliography entry. Text is the
// merged, whitespace-collapsed line; Year and DOI are filled when the entry
// contains them.
type ReferenceEntry struct {
	Text string `json:"text" yaml:"text"`
	Year string `json:"year,omitempty" yaml:"year,omitempty"`
	DOI  string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// AuthorName is a parsed author. Last is never empty.
type AuthorName struct {
	First  string `json:"first,omitempty" yaml:"first,omitempty"`
	Middle string `json:"middle,omitempty" yaml:"middle,omitempty"`
	Last   string `json:"last" yaml:"last"`
}

// CitationSet holds the rendered citation dialects for one work.
type CitationSet struct {
	APA    string `json:"apa" yaml:"apa"`
	IEEE   string `json:"ieee" yaml:"ieee"`
	BibTeX string `json:"bibtex" yaml:"bibtex"`
	Key    string `json:"key" yaml:"key"`
}
