package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty string", text: "", want: 0},
		{name: "two words", text: "hello world", want: 2},
		{name: "single word", text: "hello", want: 1},
		{name: "words with punctuation", text: "hello, world!", want: 3},
		{name: "digit run counts once", text: "order 12345 shipped", want: 3},
		{name: "separate digit runs", text: "from 10 to 20", want: 4},
		{name: "whitespace only", text: "   \t\n  ", want: 0},
		{name: "longer sentence", text: "The quick brown fox jumps over the lazy dog", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.text))
		})
	}
}

func TestEstimateMonotonic(t *testing.T) {
	samples := []string{
		"",
		"hello",
		"hello world",
		"What is the refund policy?",
		"order 12345",
	}
	suffixes := []string{"x", " more words here", ", punctuated!", " 42"}

	for _, base := range samples {
		before := Estimate(base)
		for _, suffix := range suffixes {
			after := Estimate(base + suffix)
			assert.GreaterOrEqual(t, after, before, "appending %q to %q must not decrease the estimate", suffix, base)
		}
	}
}

func TestEstimateOvercountsLongText(t *testing.T) {
	// 100 plain words should estimate to 75 tokens, never less.
	text := strings.TrimSpace(strings.Repeat("word ", 100))
	assert.Equal(t, 75, Estimate(text))
}
