package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer(2)
	texts := []string{
		"Security training is mandatory. Lunch is served at noon.",
		"Security reviews happen quarterly with security training.",
	}
	got := s.Summarize(texts)
	assert.Equal(t, "Security training is mandatory. Security reviews happen quarterly with security training.", got)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, "", NewFrequencySummarizer(0).Summarize(nil))
	assert.Equal(t, "", NewFrequencySummarizer(3).Summarize([]string{"   "}))
}

func TestSummarizeCapsAtAvailableSentences(t *testing.T) {
	got := NewFrequencySummarizer(10).Summarize([]string{"Only one sentence."})
	assert.Equal(t, "Only one sentence.", got)
}
