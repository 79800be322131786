package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevance(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		query string
		want  float64
	}{
		{
			name:  "no overlap scores zero",
			doc:   "The dog ran in the park",
			query: "cat mat",
			want:  0,
		},
		{
			name:  "word matches plus proximity",
			doc:   "The cat sat on the mat",
			query: "cat mat",
			want:  2.5,
		},
		{
			name:  "exact phrase earns the bonus",
			doc:   "please reset your password today",
			query: "reset your password",
			// 10 phrase + 3 word matches + two adjacent pairs at 0.5*(5-1) each
			want: 10 + 3 + 2 + 2,
		},
		{
			name:  "short query words are ignored",
			doc:   "go to the store",
			query: "go to",
			// substring bonus plus adjacency; both words are too short to
			// earn individual match points
			want: 10 + 2,
		},
		{
			name:  "empty doc",
			doc:   "",
			query: "anything",
			want:  0,
		},
		{
			name:  "empty query",
			doc:   "some document",
			query: "",
			want:  0,
		},
		{
			name:  "case insensitive",
			doc:   "REFUND POLICY: items may be returned",
			query: "refund policy",
			want:  10 + 2 + 0.5*4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Relevance(tt.doc, tt.query), 1e-9)
		})
	}
}

func TestRelevanceOrdering(t *testing.T) {
	query := "cat mat"
	onTopic := Relevance("The cat sat on the mat", query)
	offTopic := Relevance("The dog ran in the park", query)
	assert.Greater(t, onTopic, offTopic)
}

func TestRelevanceDeterministic(t *testing.T) {
	doc := "Shipping takes three to five business days for standard orders"
	query := "shipping business days"
	first := Relevance(doc, query)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Relevance(doc, query))
	}
}

func TestKeywordScore(t *testing.T) {
	terms := []string{"refund", "policy"}

	t.Run("matching doc scores positive", func(t *testing.T) {
		assert.Greater(t, KeywordScore("our refund policy covers all items", terms), 0.0)
	})

	t.Run("no matching terms scores zero", func(t *testing.T) {
		assert.Zero(t, KeywordScore("shipping information and tracking", terms))
	})

	t.Run("higher term frequency scores higher", func(t *testing.T) {
		once := KeywordScore("refund details here", terms)
		twice := KeywordScore("refund refund details here", terms)
		assert.Greater(t, twice, once)
	})

	t.Run("longer documents are penalized", func(t *testing.T) {
		short := KeywordScore("refund policy", terms)
		long := KeywordScore("refund policy "+repeatWords("filler", 200), terms)
		assert.Greater(t, short, long)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Zero(t, KeywordScore("", terms))
		assert.Zero(t, KeywordScore("refund policy", nil))
	})
}

func TestFilterTerms(t *testing.T) {
	assert.Equal(t, []string{"refund", "policy"}, FilterTerms("a refund policy"))
	assert.Nil(t, FilterTerms("a an to"))
	assert.Nil(t, FilterTerms(""))
	assert.Equal(t, []string{"what", "the", "refund", "policy"}, FilterTerms("What is the refund policy?"))
}

func repeatWords(w string, n int) string {
	out := w
	for i := 1; i < n; i++ {
		out += " " + w
	}
	return out
}
