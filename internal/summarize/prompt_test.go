package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptDefaultQuestion(t *testing.T) {
	prompt := BuildPrompt("some act text", "")

	assert.True(t, strings.HasPrefix(prompt, DefaultQuestion))
	assert.Contains(t, prompt, "some act text")
	assert.True(t, strings.HasSuffix(prompt, "Summary:"))
}

func TestBuildPromptCustomQuestion(t *testing.T) {
	prompt := BuildPrompt("body", "Which penalties apply to late filings?")

	assert.True(t, strings.HasPrefix(prompt, "Which penalties apply to late filings?"))
	assert.NotContains(t, prompt, DefaultQuestion)
}

func TestBuildPromptBlankQuestionFallsBack(t *testing.T) {
	prompt := BuildPrompt("body", "   \n\t ")
	assert.True(t, strings.HasPrefix(prompt, DefaultQuestion))
}

func TestTruncateKeepsHead(t *testing.T) {
	text := strings.Repeat("a", 100)

	assert.Equal(t, text, Truncate(text, 100))
	assert.Equal(t, text, Truncate(text, 200))
	assert.Equal(t, strings.Repeat("a", 10), Truncate(text, 10))
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("金", 10)

	got := Truncate(text, 3)
	assert.Equal(t, "金金金", got)
	// never split a multibyte character
	assert.True(t, strings.HasPrefix(text, got))
}

func TestTruncateNoBudgetMeansNoTruncation(t *testing.T) {
	assert.Equal(t, "anything", Truncate("anything", 0))
	assert.Equal(t, "anything", Truncate("anything", -1))
}
