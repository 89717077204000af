// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperlens tools.
// Requests, results, and the structured payloads each extraction mode
// produces live here so the CLI, HTTP API, and batch runner agree on them.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which extraction a request runs.
type Mode string

const (
	ModeTLDR            Mode = "tldr"
	ModeSummary         Mode = "summary"
	ModeMethods         Mode = "methods"
	ModeRecommendations Mode = "recommendations"
	ModeRefScan         Mode = "refscan"
	ModeCitations       Mode = "citations"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{
	ModeTLDR,
	ModeSummary,
	ModeMethods,
	ModeRecommendations,
	ModeRefScan,
	ModeCitations,
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMode converts a user-supplied string into a Mode. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// SourceDocument holds the text a request operates on. RawText keeps the
// original line structure; NormalizedText is the collapsed form. Both are
// fixed once the document is built.
type SourceDocument struct {
	RawText        string `json:"raw_text" yaml:"raw_text"`
	NormalizedText string `json:"normalized_text" yaml:"normalized_text"`
}

// IsEmpty reports whether the document carries no readable text.
func (d SourceDocument) IsEmpty() bool {
	return strings.TrimSpace(d.NormalizedText) == ""
}

// CitationMetadata describes the work being cited in citations mode.
type CitationMetadata struct {
	Title      string   `json:"title" yaml:"title"`
	Author     string   `json:"author" yaml:"author"`
	Year       string   `json:"year" yaml:"year"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	GenreTags  []string `json:"genre_tags,omitempty" yaml:"genre_tags,omitempty"`
}

// ExtractionRequest is one call into the tools service. Text is inline
// content (an abstract or pasted body); DocumentRef names a document in the
// blob store. Either may be empty. Metadata is only read in citations mode.
type ExtractionRequest struct {
	Mode        Mode              `json:"mode" yaml:"mode"`
	Text        string            `json:"text,omitempty" yaml:"text,omitempty"`
	DocumentRef string            `json:"document,omitempty" yaml:"document,omitempty"`
	Metadata    *CitationMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ResultSource records which engine produced a result.
type ResultSource string

const (
	SourceModel     ResultSource = "model"
	SourceHeuristic ResultSource = "heuristic"
	SourceRules     ResultSource = "rules"
)

// ExtractionResult is the outcome of one request. Text is the rendered,
// human-readable output; the typed fields carry the structured payload of
// the mode that ran and are nil for every other mode.
type ExtractionResult struct {
	Mode      Mode         `json:"mode" yaml:"mode"`
	Text      string       `json:"text" yaml:"text"`
	Source    ResultSource `json:"source" yaml:"source"`
	NoContent bool         `json:"no_content,omitempty" yaml:"no_content,omitempty"`

	Checklist       *MethodsChecklist `json:"checklist,omitempty" yaml:"checklist,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	References      []ReferenceEntry  `json:"references,omitempty" yaml:"references,omitempty"`
	Citations       *CitationSet      `json:"citations,omitempty" yaml:"citations,omitempty"`
	CSL             string            `json:"csl,omitempty" yaml:"csl,omitempty"`
}

// Run is one recorded tool invocation in the history store.
type Run struct {
	ID          string       `json:"id" yaml:"id"`
	Mode        Mode         `json:"mode" yaml:"mode"`
	DocumentRef string       `json:"document,omitempty" yaml:"document,omitempty"`
	Source      ResultSource `json:"source" yaml:"source"`
	NoContent   bool         `json:"no_content,omitempty" yaml:"no_content,omitempty"`
	Output      string       `json:"output" yaml:"output"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
}
