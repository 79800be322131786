package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingClient generates query embeddings for semantic search.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CorpusRepository serves the retrieval engine's two collaborator roles over
// the chunks table: ranked semantic search via pgvector, and raw keyword
// candidate fetch for the engine's own scoring.
type CorpusRepository struct {
	pool      *pgxpool.Pool
	embedding EmbeddingClient
}

func NewCorpusRepository(pool *pgxpool.Pool, embedding EmbeddingClient) *CorpusRepository {
	return &CorpusRepository{pool: pool, embedding: embedding}
}

// Search embeds query and returns the limit nearest chunk contents for the
// tenant/agent scope, ranked by cosine distance.
func (r *CorpusRepository) Search(ctx context.Context, tenantID, agentID, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	embedding, err := r.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT content
		 FROM chunks
		 WHERE tenant_id = $1 AND agent_id = $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $3
		 LIMIT $4`,
		tenantID, agentID, pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contents := make([]string, 0, limit)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

// Fetch returns up to limit raw chunk contents for the tenant/agent scope,
// most recent first, with no ranking. The caller ranks them.
func (r *CorpusRepository) Fetch(ctx context.Context, tenantID, agentID string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT content
		 FROM chunks
		 WHERE tenant_id = $1 AND agent_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		tenantID, agentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contents := make([]string, 0, limit)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}
