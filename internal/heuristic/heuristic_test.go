// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTLDR_ResultsSentenceWins(t *testing.T) {
	got := TLDR("This study found that X improved performance by 20%. Researchers recommend further testing.")
	assert.Contains(t, got, "found that X improved performance")
	assert.Equal(t, "This study found that X improved performance by 20%.", got)
}

func TestTLDR_PriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "conclusion over aim",
			text: "The aim of this work is to study reading habits. We conclude that reading habits vary by age.",
			want: "We conclude that reading habits vary by age.",
		},
		{
			name: "aim when nothing else matches",
			text: "Classrooms were visited twice a week. The objective was to map teacher questioning.",
			want: "The objective was to map teacher questioning.",
		},
		{
			name: "first long sentence otherwise",
			text: "Tiny. Classrooms were visited twice a week by two observers. Notes were compared later on.",
			want: "Classrooms were visited twice a week by two observers.",
		},
		{
			name: "short text falls back to leading characters",
			text: "Short note here",
			want: "Short note here.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TLDR(tt.text))
		})
	}
}

func TestTLDR_Properties(t *testing.T) {
	long := strings.Repeat("Results show that longer study hours improved scores considerably ", 12) + "!!!"
	inputs := []string{
		"x",
		"...",
		"42",
		"Findings indicate gains?!",
		long,
		"Abstract: The purpose of this paper is to examine the results of the survey;",
	}
	for _, in := range inputs {
		got := TLDR(in)
		assert.NotEmpty(t, got, "input %q", in)
		assert.True(t, strings.HasSuffix(got, "."), "input %q -> %q", in, got)
		assert.False(t, strings.HasSuffix(got, ".."), "input %q -> %q", in, got)
		assert.LessOrEqual(t, len(strings.Fields(got)), MaxTakeawayWords, "input %q", in)
	}
}

func TestSentinels(t *testing.T) {
	assert.Equal(t, "No short takeaway available.", TLDR(""))
	assert.Equal(t, "No short takeaway available.", TLDR("   \n\t "))
	assert.Equal(t, "No readable text available.", Summary(""))
	assert.Equal(t, "No readable text available.", Summary("\n\n"))
}

func TestSummary(t *testing.T) {
	text := "Short one. " +
		"The first sentence is comfortably longer than forty characters. " +
		"The second sentence is also comfortably longer than forty chars. " +
		"Tiny again. " +
		"The third sentence keeps going well beyond the forty char mark. " +
		"The fourth sentence is likewise long enough to be kept here. " +
		"The fifth sentence would be kept too but the cap is four."

	got := Summary(text)
	assert.True(t, strings.HasPrefix(got, "The first sentence"))
	assert.True(t, strings.HasSuffix(got, "kept here."))
	assert.NotContains(t, got, "fifth")
	assert.NotContains(t, got, "Short one")
}

func TestSummary_NoLongSentence(t *testing.T) {
	words := strings.Repeat("alpha beta. ", 50)
	got := Summary(words)
	assert.Len(t, strings.Fields(got), 60)
}

func TestSummary_DropsReferences(t *testing.T) {
	text := "Teachers who used feedback loops saw measurable changes in engagement.\nReferences\nSmith, J. (2020). A paper about something unrelated to this work."
	got := Summary(text)
	assert.NotContains(t, got, "Smith")
}

func TestTakeaway(t *testing.T) {
	assert.Equal(t, "Gains were large.", Takeaway("  Gains were large!!  "))
	assert.Equal(t, "Gains were large.", Takeaway("Gains were large;"))
	assert.Equal(t, "", Takeaway(" ... "))
	assert.Len(t, strings.Fields(Takeaway(strings.Repeat("word ", 80))), MaxTakeawayWords)
}
