package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkGroupsSentences(t *testing.T) {
	c := NewSentenceChunker(2, 0)
	got := c.Chunk("One. Two. Three.\n\nFour. Five.")
	assert.Equal(t, []string{"One. Two.", "Three. Four.", "Five."}, got)
}

func TestChunkWithOverlap(t *testing.T) {
	c := NewSentenceChunker(3, 1)
	got := c.Chunk("A1. B2. C3. D4. E5.")
	assert.Equal(t, []string{"A1. B2. C3.", "C3. D4. E5."}, got)
}

func TestChunkEmptyText(t *testing.T) {
	assert.Nil(t, NewSentenceChunker(5, 1).Chunk("   "))
}

func TestNewSentenceChunkerClampsOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 5)
	assert.Equal(t, 1, c.overlapSentences)
	got := c.Chunk("A. B. C.")
	assert.Equal(t, []string{"A. B.", "B. C."}, got)
}
