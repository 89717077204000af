// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"bytes"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/pkg/types"
)

func TestFormatDeterministic(t *testing.T) {
	a := Format("Dela Cruz, Juan", "effects of x on y", "2023")
	b := Format("Dela Cruz, Juan", "effects of x on y", "2023")
	if a != b {
		t.Fatalf("Format not deterministic:\n%+v\n%+v", a, b)
	}

	want := types.CitationSet{
		APA:    "Dela Cruz, J. (2023). Effects of x on y.",
		IEEE:   `J. Dela Cruz, "Effects of x on y," 2023.`,
		BibTeX: "@article{delacruz2023,\n  author = {Dela Cruz, J.},\n  title = {Effects of x on y},\n  year = {2023}\n}",
		Key:    "delacruz2023",
	}
	if a != want {
		t.Errorf("Format =\n%+v\nwant\n%+v", a, want)
	}
}

func TestFormatMultipleAuthors(t *testing.T) {
	got := Format("maria santos; JOSE RIZAL and Ana Lee-Tan", "A STUDY. second part", "circa 1999-2000")

	wantAPA := "Santos, M., Rizal, J., & Lee-Tan, A. (1999). A study. Second part."
	if got.APA != wantAPA {
		t.Errorf("APA = %q, want %q", got.APA, wantAPA)
	}
	wantIEEE := `M. Santos, J. Rizal, and A. Lee-Tan, "A study. Second part," 1999.`
	if got.IEEE != wantIEEE {
		t.Errorf("IEEE = %q, want %q", got.IEEE, wantIEEE)
	}
	if !strings.Contains(got.BibTeX, "author = {Santos, M. and Rizal, J. and Lee-Tan, A.}") {
		t.Errorf("BibTeX author field wrong: %s", got.BibTeX)
	}
	if got.Key != "santos1999" {
		t.Errorf("Key = %q, want %q", got.Key, "santos1999")
	}
}

func TestFormatTwoCommaSeparatedAuthors(t *testing.T) {
	got := Format("John Smith, Jane Doe", "effects of x on y", "2023")
	if got.APA != "Smith, J., & Doe, J. (2023). Effects of x on y." {
		t.Errorf("APA = %q", got.APA)
	}
	if got.IEEE != `J. Smith and J. Doe, "Effects of x on y," 2023.` {
		t.Errorf("IEEE = %q", got.IEEE)
	}
	if got.Key != "smith2023" {
		t.Errorf("Key = %q, want smith2023", got.Key)
	}
}

func TestFormatTwoAuthors(t *testing.T) {
	got := Format("Smith, J. & Lee, A. B.", "title", "2020")
	if !strings.HasPrefix(got.APA, "Smith, J., & Lee, A. B. (2020).") {
		t.Errorf("APA = %q", got.APA)
	}
	if !strings.HasPrefix(got.IEEE, "J. Smith and A. B. Lee,") {
		t.Errorf("IEEE = %q", got.IEEE)
	}
}

func TestFormatMissingParts(t *testing.T) {
	got := Format("", "", "")
	if got.APA != "Author (n.d.). Untitled." {
		t.Errorf("APA = %q", got.APA)
	}
	if got.IEEE != `Author, "Untitled," n.d.` {
		t.Errorf("IEEE = %q", got.IEEE)
	}
	if got.Key != "authornd" {
		t.Errorf("Key = %q, want authornd", got.Key)
	}
	if !strings.Contains(got.BibTeX, "year = {n.d.}") {
		t.Errorf("BibTeX = %q", got.BibTeX)
	}
}

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		raw  string
		want []types.AuthorName
	}{
		{"", []types.AuthorName{{Last: "Author"}}},
		{"   ;  & ", []types.AuthorName{{Last: "Author"}}},
		{"Plato", []types.AuthorName{{Last: "Plato"}}},
		{"juan miguel dela cruz", []types.AuthorName{{First: "Juan", Middle: "Miguel Dela", Last: "Cruz"}}},
		{"Dela Cruz, Juan", []types.AuthorName{{First: "Juan", Last: "Dela Cruz"}}},
		{"Santos, Maria Luisa", []types.AuthorName{{First: "Maria", Middle: "Luisa", Last: "Santos"}}},
		{"John Smith, Jane Doe", []types.AuthorName{{First: "John", Last: "Smith"}, {First: "Jane", Last: "Doe"}}},
		{"Smith, J., Lee, A.B.", []types.AuthorName{{First: "J.", Last: "Smith"}, {First: "A.B.", Last: "Lee"}}},
		{"John Michael Smith, Mary Jane Jones", []types.AuthorName{
			{First: "John", Middle: "Michael", Last: "Smith"},
			{First: "Mary", Middle: "Jane", Last: "Jones"},
		}},
		{"Smith et al.", []types.AuthorName{{Last: "Smith"}}},
		{"jean-paul sartre", []types.AuthorName{{First: "Jean-Paul", Last: "Sartre"}}},
	}
	for _, tt := range tests {
		got := ParseAuthors(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("ParseAuthors(%q) = %+v, want %+v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseAuthors(%q)[%d] = %+v, want %+v", tt.raw, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseAuthorsLastNeverEmpty(t *testing.T) {
	inputs := []string{"", ",", ", ,", "and", "&&;;", "a, b, c, d", "  -  ", "Ñúñez, ñ.", "x and , y"}
	for _, in := range inputs {
		for _, a := range ParseAuthors(in) {
			if a.Last == "" {
				t.Errorf("ParseAuthors(%q) produced an empty last name: %+v", in, a)
			}
		}
	}
}

func TestInitials(t *testing.T) {
	if got := APAName(types.AuthorName{First: "A.B.", Last: "Lee"}); got != "Lee, A. B." {
		t.Errorf("APAName = %q", got)
	}
	if got := IEEEName(types.AuthorName{First: "Juan", Middle: "Miguel", Last: "Dela Cruz"}); got != "J. M. Dela Cruz" {
		t.Errorf("IEEEName = %q", got)
	}
	if got := APAName(types.AuthorName{Last: "Plato"}); got != "Plato" {
		t.Errorf("APAName = %q", got)
	}
}

func TestNormalizeYear(t *testing.T) {
	tests := map[string]string{
		"2023":        "2023",
		"May 2021":    "2021",
		"19":          "n.d.",
		"":            "n.d.",
		"forthcoming": "n.d.",
	}
	for in, want := range tests {
		if got := NormalizeYear(in); got != want {
			t.Errorf("NormalizeYear(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSentenceCase(t *testing.T) {
	tests := map[string]string{
		"EFFECTS OF X ON Y":       "Effects of x on y",
		"first part. second part": "First part. Second part",
		"  spaced   out  ":        "Spaced out",
		"":                        "Untitled",
		"why? because":            "Why? Because",
	}
	for in, want := range tests {
		if got := SentenceCase(in); got != want {
			t.Errorf("SentenceCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyFoldsAccents(t *testing.T) {
	got := Key([]types.AuthorName{{Last: "Peña-Ñúñez"}}, "2020")
	if got != "penanunez2020" {
		t.Errorf("Key = %q, want penanunez2020", got)
	}
}

func TestCSL(t *testing.T) {
	item := CSL(types.CitationMetadata{
		Title:      "learning WITH apps",
		Author:     "Dela Cruz, Juan; Ana Santos",
		Year:       "2022",
		Categories: []string{"Education", "Technology"},
		GenreTags:  []string{"education", "Thesis"},
	})

	if item.ID != "delacruz2022" {
		t.Errorf("ID = %q", item.ID)
	}
	if item.Title != "Learning with apps" {
		t.Errorf("Title = %q", item.Title)
	}
	if len(item.Author) != 2 || item.Author[0].Family != "Dela Cruz" || item.Author[1].Given != "Ana" {
		t.Errorf("Author = %+v", item.Author)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2022 {
		t.Errorf("Issued = %+v", item.Issued)
	}
	if item.Keyword != "Education, Technology, Thesis" {
		t.Errorf("Keyword = %q", item.Keyword)
	}
}

func TestWriteCSLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSL(&buf, CSL(types.CitationMetadata{Title: "t", Author: "Lee, A."})); err != nil {
		t.Fatalf("WriteCSL: %v", err)
	}

	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("parsing CSL-YAML: %v", err)
	}
	if len(items) != 1 || items[0].ID != "leend" || items[0].Issued != nil {
		t.Errorf("items = %+v", items)
	}
	if !strings.Contains(buf.String(), "family: Lee") {
		t.Errorf("output missing family name:\n%s", buf.String())
	}
}
