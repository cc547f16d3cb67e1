package lexical

import (
	"regexp"
	"strings"
)

var nonTermChars = regexp.MustCompile(`[^a-z0-9\s]`)

var stopwords = defaultStopwords()

// Tokenize lower-cases text, replaces everything outside [a-z0-9] and
// whitespace with spaces and returns the remaining terms in order.
// Single-character terms and stopwords are dropped.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := strings.Fields(nonTermChars.ReplaceAllString(lower, " "))
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if len(t) <= 1 {
			continue
		}
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IsStopword reports whether the lower-cased term is a common English
// function word.
func IsStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "for", "to", "of", "in", "on", "with", "by", "is", "are", "was", "were", "be", "as", "at", "from", "this", "that", "it", "its", "we", "our", "you", "your",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
