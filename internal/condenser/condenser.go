// Package condenser selects and truncates candidate context chunks to fit a
// token budget, favoring the most relevant candidates.
package condenser

import (
	"log"
	"sort"
	"strings"

	"github.com/loquent-ai/loquent/internal/lexical"
	"github.com/loquent-ai/loquent/internal/tokens"
)

const (
	// budgetShare is the fraction of the caller's budget the condenser may
	// spend; the rest is reserved for system prompt, history, query, and the
	// completion itself.
	budgetShare = 0.5

	// oversizeShare marks a candidate as worth truncating into the remaining
	// budget instead of skipping outright.
	oversizeShare = 0.3

	// charsPerToken converts a token budget into an approximate char budget.
	charsPerToken = 4

	// fallbackShare bounds the emergency output when condensation itself
	// fails.
	fallbackShare = 0.4
)

type scoredCandidate struct {
	content   string
	relevance float64
	cost      int
}

// Condense reranks candidates by relevance to query and greedily packs them
// into half of maxTokens. It never returns an error: an empty input yields an
// empty result, and an internal fault falls back to the first candidate
// truncated to a conservative budget.
func Condense(candidates []string, query string, maxTokens int) (result []string) {
	if len(candidates) == 0 {
		return []string{}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("condenser: recovered from %v, falling back to first candidate", r)
			result = []string{TruncateToTokens(candidates[0], int(float64(maxTokens)*fallbackShare))}
		}
	}()

	available := int(float64(maxTokens) * budgetShare)

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoredCandidate{
			content:   c,
			relevance: lexical.Relevance(c, query),
			cost:      tokens.Estimate(c),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].relevance > scored[j].relevance
	})

	result = make([]string, 0, len(scored))
	used := 0
	for _, sc := range scored {
		if used+sc.cost <= available {
			result = append(result, sc.content)
			used += sc.cost
			continue
		}
		// A high-relevance candidate that is too large to fit whole but
		// big enough to matter: truncate into what is left and stop.
		if sc.cost > int(float64(available)*oversizeShare) {
			remaining := available - used
			if remaining > 0 {
				if truncated := TruncateToTokens(sc.content, remaining); truncated != "" {
					result = append(result, truncated)
				}
			}
			break
		}
	}

	// Degraded context beats none: if nothing fit, force a truncated version
	// of the best candidate.
	if len(result) == 0 {
		result = append(result, TruncateToTokens(scored[0].content, available))
	}

	return result
}

// TruncateToTokens cuts text to approximately maxTokens, preferring to end at
// sentence punctuation or a line break rather than mid-sentence.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	maxChars := maxTokens * charsPerToken
	if len(text) <= maxChars {
		return strings.TrimSpace(text)
	}

	prefix := text[:maxChars]
	cut := lastSentenceEnd(prefix)
	// Only back off when the break point is past the midpoint, to avoid
	// discarding most of the chunk.
	if cut > maxChars/2 {
		prefix = prefix[:cut+1]
	}
	return strings.TrimSpace(prefix)
}

func lastSentenceEnd(s string) int {
	end := -1
	for _, marker := range []string{".", "!", "?", "\n"} {
		if idx := strings.LastIndex(s, marker); idx > end {
			end = idx
		}
	}
	return end
}
