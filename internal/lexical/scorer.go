package lexical

import "strings"

// CountMatches adds one for every token (repeats included) that occurs as a
// substring of the lower-cased text. It is a presence count per token, not
// an occurrence count within the text.
func CountMatches(text string, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	score := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			score++
		}
	}
	return score
}
