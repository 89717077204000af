// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperlens/pkg/types"
)

const numberedBibliography = `The approach worked well in both classrooms.

REFERENCES
[1] J. Smith and A. Lee, "Learning with apps," Journal of
Education, vol. 3, 2019. doi:10.1000/xyz123.
[2] K. Tan, "Another paper," 2021.
12
`

func TestScanReferences_NumberedEntries(t *testing.T) {
	got := ScanReferences(numberedBibliography)
	require.Len(t, got, 2)

	assert.Equal(t, types.ReferenceEntry{
		Text: `[1] J. Smith and A. Lee, "Learning with apps," Journal of Education, vol. 3, 2019. doi:10.1000/xyz123.`,
		Year: "2019",
		DOI:  "10.1000/xyz123",
	}, got[0])
	assert.Equal(t, `[2] K. Tan, "Another paper," 2021.`, got[1].Text)
	assert.Equal(t, "2021", got[1].Year)
	assert.Empty(t, got[1].DOI)
}

func TestScanReferences_APAEntriesAndHyphenRepair(t *testing.T) {
	text := `Discussion ends here.
References
Smith, J. (2020). Reading apps in class-
rooms. Journal of Ed, 4(2), 1-10.
Lee, A. B., & Tan, K. (2019). Another title
that wraps onto a second line.`

	got := ScanReferences(text)
	require.Len(t, got, 2)
	assert.Equal(t, "Smith, J. (2020). Reading apps in classrooms. Journal of Ed, 4(2), 1-10.", got[0].Text)
	assert.Equal(t, "Lee, A. B., & Tan, K. (2019). Another title that wraps onto a second line.", got[1].Text)
	assert.Equal(t, "2019", got[1].Year)
}

func TestScanReferences_BulletsAndDashes(t *testing.T) {
	text := "Bibliography\n• First source, 2001.\n- Second source, 2002.\n  continued here.\n"
	got := ScanReferences(text)
	require.Len(t, got, 2)
	assert.Equal(t, "• First source, 2001.", got[0].Text)
	assert.Equal(t, "- Second source, 2002. continued here.", got[1].Text)
}

func TestScanReferences_InlineMarker(t *testing.T) {
	text := "All sources are listed in the references: Smith (2020) and Lee (2019)."
	got := ScanReferences(text)
	require.Len(t, got, 1)
	assert.Equal(t, "Smith (2020) and Lee (2019).", got[0].Text)
	assert.Equal(t, "2020", got[0].Year)
}

func TestScanReferences_NoHeader(t *testing.T) {
	assert.Nil(t, ScanReferences("A paper without any such heading."))
	assert.Nil(t, ScanReferences(""))
}

func TestScanReferences_Idempotent(t *testing.T) {
	first := ScanReferences(numberedBibliography)
	second := ScanReferences(numberedBibliography)
	assert.Equal(t, first, second)
}

func TestScanReferences_WindowIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("References\n")
	for b.Len() < 3*referenceWindow {
		b.WriteString("[1] Filler, A. (2000). Padding entry.\n")
	}
	b.WriteString("[9] Beyond the window, 2024.\n")
	got := ScanReferences(b.String())
	require.NotEmpty(t, got)
	for _, e := range got {
		assert.NotContains(t, e.Text, "Beyond the window")
	}
}

func TestReferencesMarkdown(t *testing.T) {
	assert.Equal(t, "Found 1 reference(s):\n\n1. Smith, J. (2020). Title.",
		ReferencesMarkdown([]types.ReferenceEntry{{Text: "Smith, J. (2020). Title."}}))
	assert.Contains(t, ReferencesMarkdown(nil), "No references")
}
