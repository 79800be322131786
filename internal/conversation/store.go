// Package conversation persists bounded, expiring conversation history per
// (tenant, agent, session) in a key-value cache.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/loquent-ai/loquent/internal/domain"
)

// Cache is the key-value collaborator the store writes through. Adapters must
// return domain.ErrHistoryNotFound (possibly wrapped) when no value exists.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Store reads and writes conversation history. It is the sole writer of
// history state; eviction happens through the cache's native expiration.
type Store struct {
	cache Cache
	ttl   time.Duration
	max   int
}

// NewStore creates a Store with the default 20-message cap and 24h TTL.
func NewStore(cache Cache) *Store {
	return &Store{
		cache: cache,
		ttl:   domain.HistoryTTL,
		max:   domain.MaxHistoryMessages,
	}
}

// Get loads the history for a session. Any read or decode failure is treated
// as an empty history: a lost conversation degrades the answer, it must not
// fail the query.
func (s *Store) Get(ctx context.Context, tenantID, agentID, sessionID string) []domain.ConversationMessage {
	raw, err := s.cache.Get(ctx, Key(tenantID, agentID, sessionID))
	if err != nil {
		if !errors.Is(err, domain.ErrHistoryNotFound) {
			log.Printf("conversation: read failed for session %s: %v", sessionID, err)
		}
		return []domain.ConversationMessage{}
	}

	var history []domain.ConversationMessage
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		log.Printf("conversation: corrupt history for session %s, starting fresh: %v", sessionID, err)
		return []domain.ConversationMessage{}
	}
	return history
}

// Put trims history to the most recent cap and writes it with a refreshed
// TTL. Write failures are logged and swallowed: the current response is
// unaffected, the next call simply will not see this turn.
func (s *Store) Put(ctx context.Context, tenantID, agentID, sessionID string, history []domain.ConversationMessage) {
	trimmed := domain.TrimHistory(history, s.max)

	payload, err := json.Marshal(trimmed)
	if err != nil {
		log.Printf("conversation: failed to encode history for session %s: %v", sessionID, err)
		return
	}

	if err := s.cache.Set(ctx, Key(tenantID, agentID, sessionID), string(payload), s.ttl); err != nil {
		log.Printf("conversation: write failed for session %s: %v", sessionID, err)
	}
}

// Key builds the deterministic composite cache key for a session.
func Key(tenantID, agentID, sessionID string) string {
	return fmt.Sprintf("conv:%s:%s:%s", tenantID, agentID, sessionID)
}
