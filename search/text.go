package search

import "strings"

// tokenize splits a query into lowercased whitespace-separated tokens.
func tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// lexicalScore counts occurrences of each query token in the chunk text.
// Overlapping token matches are not counted twice; the count is the number
// of non-overlapping substring occurrences, summed across tokens.
func lexicalScore(text string, tokens []string) float32 {
	if len(tokens) == 0 {
		return 0
	}
	lowered := strings.ToLower(text)
	var score int
	for _, token := range tokens {
		score += strings.Count(lowered, token)
	}
	return float32(score)
}
