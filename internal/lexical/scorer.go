// Package lexical scores document relevance against a query using term
// matches, an exact-phrase bonus, and positional proximity, plus a simplified
// term-frequency score for keyword retrieval.
package lexical

import (
	"strings"
	"unicode"
)

const (
	exactPhraseBonus  = 10.0
	wordMatchScore    = 1.0
	proximityWeight   = 0.5
	proximityWindow   = 5
	minTermLength     = 3

	// Okapi-style constants for the keyword score. avgDocLen is a fixed
	// constant rather than a corpus statistic: the deliberate simplification
	// versus full inverse-document-frequency weighting.
	bm25K1    = 1.5
	bm25B     = 0.75
	avgDocLen = 100.0
)

// Relevance scores how relevant doc is to query. Deterministic, unbounded
// above; equal scores must be tie-broken by the caller's original order
// (use stable sorts).
func Relevance(doc, query string) float64 {
	if doc == "" || query == "" {
		return 0
	}

	docLower := strings.ToLower(doc)
	queryLower := strings.ToLower(query)

	score := 0.0
	if strings.Contains(docLower, queryLower) {
		score += exactPhraseBonus
	}

	docWords := tokenize(docLower)
	positions := make(map[string]int, len(docWords))
	for i, w := range docWords {
		if _, ok := positions[w]; !ok {
			positions[w] = i
		}
	}

	queryWords := tokenize(queryLower)
	for _, w := range queryWords {
		if len(w) < minTermLength {
			continue
		}
		if _, ok := positions[w]; ok {
			score += wordMatchScore
		}
	}

	// Proximity: consecutive query-word pairs found close together in the
	// document earn up to proximityWindow/2 extra each.
	for i := 0; i+1 < len(queryWords); i++ {
		first, okFirst := positions[queryWords[i]]
		second, okSecond := positions[queryWords[i+1]]
		if !okFirst || !okSecond {
			continue
		}
		distance := first - second
		if distance < 0 {
			distance = -distance
		}
		if gap := proximityWindow - distance; gap > 0 {
			score += proximityWeight * float64(gap)
		}
	}

	return score
}

// KeywordScore ranks doc against pre-filtered query terms with a simplified
// term-frequency/document-length score. Documents matching no term score 0;
// they are ranked last, not excluded.
func KeywordScore(doc string, terms []string) float64 {
	if doc == "" || len(terms) == 0 {
		return 0
	}

	docWords := tokenize(strings.ToLower(doc))
	docLen := float64(len(docWords))

	freq := make(map[string]int, len(docWords))
	for _, w := range docWords {
		freq[w]++
	}

	score := 0.0
	for _, term := range terms {
		tf := float64(freq[strings.ToLower(term)])
		if tf == 0 {
			continue
		}
		score += tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*docLen/avgDocLen))
	}
	return score
}

// FilterTerms splits a query into scoring terms, dropping anything shorter
// than three characters.
func FilterTerms(query string) []string {
	var terms []string
	for _, w := range tokenize(strings.ToLower(query)) {
		if len(w) >= minTermLength {
			terms = append(terms, w)
		}
	}
	return terms
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
