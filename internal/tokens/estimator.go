// Package tokens approximates language-model token counts without tokenizer
// data or network access. The estimate is deliberately biased toward slight
// overcounting: a truncation failure costs more than a little unused budget.
package tokens

import (
	"math"
	"strings"
	"unicode"
)

// Weights of the estimation formula. Heuristic, tunable; treat them as knobs,
// not invariants.
const (
	wordWeight        = 0.75
	punctuationWeight = 0.3
	numberRunWeight   = 0.5
)

// Estimate returns the approximate token count for text in O(len(text)).
// Empty input yields 0; the function never fails.
func Estimate(text string) int {
	if text == "" {
		return 0
	}

	words := len(strings.Fields(text))

	punctuation := 0
	numberRuns := 0
	inDigits := false
	for _, r := range text {
		if unicode.IsDigit(r) {
			if !inDigits {
				numberRuns++
				inDigits = true
			}
			continue
		}
		inDigits = false
		if unicode.IsPunct(r) {
			punctuation++
		}
	}

	estimate := wordWeight*float64(words) + punctuationWeight*float64(punctuation) + numberRunWeight*float64(numberRuns)
	return int(math.Ceil(estimate))
}
