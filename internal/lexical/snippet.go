package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fallbackSnippetRunes = 160
	maxSnippetRunes      = 220
	ellipsis             = "..."
)

// SplitSentences cuts content after '.', '!' or '?' whenever the mark is
// followed by whitespace. The punctuation stays with the preceding sentence,
// the whitespace run is dropped, and empty fragments are discarded.
func SplitSentences(content string) []string {
	var sentences []string
	start := 0
	for i, r := range content {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + utf8.RuneLen(r)
		next := skipSpace(content, end)
		if next == end {
			continue
		}
		if end > start {
			sentences = append(sentences, content[start:end])
		}
		start = next
	}
	if start < len(content) {
		sentences = append(sentences, content[start:])
	}
	return sentences
}

func skipSpace(s string, from int) int {
	i := from
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// SelectSnippet returns the earliest sentence of content with the highest
// token score, trimmed and capped at 220 characters. Content that has no
// sentence ending in '.', '!' or '?' yields its first 160 characters verbatim.
func SelectSnippet(content string, tokens []string) string {
	sentences := SplitSentences(content)
	if !hasTerminatedSentence(sentences) {
		return truncateRunes(content, fallbackSnippetRunes)
	}

	best := sentences[0]
	bestScore := CountMatches(best, tokens)
	for _, sentence := range sentences[1:] {
		if score := CountMatches(sentence, tokens); score > bestScore {
			best = sentence
			bestScore = score
		}
	}

	snippet := strings.TrimSpace(best)
	if utf8.RuneCountInString(snippet) > maxSnippetRunes {
		return truncateRunes(snippet, maxSnippetRunes-len(ellipsis)) + ellipsis
	}
	return snippet
}

func hasTerminatedSentence(sentences []string) bool {
	for _, s := range sentences {
		s = strings.TrimRightFunc(s, unicode.IsSpace)
		if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
