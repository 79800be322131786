// Package retrieval fetches candidate knowledge chunks from a vector store
// and a keyword index in parallel, then fuses and reranks them.
package retrieval

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/loquent-ai/loquent/internal/lexical"
)

const (
	// Split of topK between the semantic and keyword branches. Heuristic,
	// tunable.
	semanticShare = 0.7
	keywordShare  = 0.3

	// keywordOversample fetches extra raw documents for the keyword branch so
	// its scorer has a real candidate set to rank.
	keywordOversample = 3
)

// VectorSearcher is the semantic retrieval collaborator. Results come back
// ranked by the store.
type VectorSearcher interface {
	Search(ctx context.Context, tenantID, agentID, query string, limit int) ([]string, error)
}

// KeywordIndex is the lexical retrieval collaborator. It returns raw,
// unranked documents scoped to the tenant and agent; ranking happens here.
type KeywordIndex interface {
	Fetch(ctx context.Context, tenantID, agentID string, limit int) ([]string, error)
}

// Retriever merges semantic and keyword retrieval into a deduplicated,
// relevance-ranked candidate list.
type Retriever struct {
	vector  VectorSearcher
	keyword KeywordIndex
}

// NewRetriever creates a Retriever over the two injected collaborators.
func NewRetriever(vector VectorSearcher, keyword KeywordIndex) *Retriever {
	return &Retriever{vector: vector, keyword: keyword}
}

// Retrieve returns up to topK unique candidates relevant to query. It never
// returns an error: a failed branch contributes nothing, and full collaborator
// unavailability yields an empty slice. Downstream consumers must treat empty
// context as a valid input, not a failure.
func (r *Retriever) Retrieve(ctx context.Context, tenantID, agentID, query string, topK int) []string {
	if topK <= 0 || query == "" {
		return []string{}
	}

	semanticLimit := int(math.Ceil(semanticShare * float64(topK)))
	keywordLimit := int(math.Ceil(keywordShare * float64(topK)))

	var semantic, keyword []string
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		results, err := r.vector.Search(ctx, tenantID, agentID, query, semanticLimit)
		if err != nil {
			log.Printf("retrieval: semantic search failed for tenant %s: %v", tenantID, err)
			return
		}
		semantic = results
	}()

	go func() {
		defer wg.Done()
		results, err := r.keywordSearch(ctx, tenantID, agentID, query, keywordLimit)
		if err != nil {
			log.Printf("retrieval: keyword search failed for tenant %s: %v", tenantID, err)
			return
		}
		keyword = results
	}()

	wg.Wait()

	merged := dedupe(semantic, keyword)
	if len(merged) == 0 {
		return []string{}
	}

	type scored struct {
		content string
		score   float64
	}
	ranked := make([]scored, 0, len(merged))
	for _, doc := range merged {
		ranked = append(ranked, scored{content: doc, score: lexical.Relevance(doc, query)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]string, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.content)
	}
	return out
}

// keywordSearch oversamples raw documents, scores them with the simplified
// term-frequency scorer, and keeps the top limit.
func (r *Retriever) keywordSearch(ctx context.Context, tenantID, agentID, query string, limit int) ([]string, error) {
	docs, err := r.keyword.Fetch(ctx, tenantID, agentID, limit*keywordOversample)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	terms := lexical.FilterTerms(query)

	type scored struct {
		content string
		score   float64
	}
	ranked := make([]scored, 0, len(docs))
	for _, doc := range docs {
		ranked = append(ranked, scored{content: doc, score: lexical.KeywordScore(doc, terms)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.content)
	}
	return out, nil
}

// dedupe merges lists preserving first occurrence of each exact content.
func dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, doc := range list {
			if doc == "" {
				continue
			}
			if _, ok := seen[doc]; ok {
				continue
			}
			seen[doc] = struct{}{}
			out = append(out, doc)
		}
	}
	return out
}
