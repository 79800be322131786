// Package engine orchestrates the query pipeline: retrieval, condensation,
// prompt construction, completion, and history update.
package engine

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/loquent-ai/loquent/internal/condenser"
	"github.com/loquent-ai/loquent/internal/domain"
	"github.com/loquent-ai/loquent/internal/telemetry"
	"github.com/loquent-ai/loquent/internal/tokens"
)

const (
	// DefaultTopK is how many candidate chunks a query retrieves.
	DefaultTopK = 10

	// promptBudgetShare triggers re-condensation when the assembled prompt
	// estimate crosses this fraction of the model's token limit.
	promptBudgetShare = 0.8

	// completionReserveCap bounds the tokens reserved for the model's reply.
	completionReserveCap = 1000

	// completionTimeout bounds the only blocking external call. No retry at
	// this layer; retries belong to the caller.
	completionTimeout = 30 * time.Second

	defaultTemperature = 0.7
)

// ContextRetriever supplies candidate context for a query. Implementations
// never fail; an empty result is valid input.
type ContextRetriever interface {
	Retrieve(ctx context.Context, tenantID, agentID, query string, topK int) []string
}

// HistoryStore reads and writes per-session conversation history.
type HistoryStore interface {
	Get(ctx context.Context, tenantID, agentID, sessionID string) []domain.ConversationMessage
	Put(ctx context.Context, tenantID, agentID, sessionID string, history []domain.ConversationMessage)
}

// CompletionRequest is the engine's view of a completion call.
type CompletionRequest struct {
	SystemPrompt string
	History      []domain.ConversationMessage
	UserMessage  string
	MaxTokens    int
	Temperature  float32
}

// CompletionClient calls the external completion service. A non-2xx response
// or timeout is a hard failure.
type CompletionClient interface {
	CreateCompletion(ctx context.Context, req CompletionRequest) (string, error)
}

// QueryLogEntry records one pipeline run for evaluation and retention jobs.
type QueryLogEntry struct {
	TenantID       string
	AgentID        string
	SessionID      string
	QueryLength    int
	CandidateCount int
	ContextCount   int
	DurationMs     int64
}

// QueryLogger persists query log entries. Optional: a nil logger disables
// logging, and failures are never surfaced.
type QueryLogger interface {
	CreateQueryLog(ctx context.Context, entry QueryLogEntry) error
}

// Engine is the pipeline entry point.
type Engine struct {
	retriever  ContextRetriever
	history    HistoryStore
	completion CompletionClient
	queryLog   QueryLogger
}

// NewEngine creates an Engine. queryLog may be nil.
func NewEngine(retriever ContextRetriever, history HistoryStore, completion CompletionClient, queryLog QueryLogger) *Engine {
	return &Engine{
		retriever:  retriever,
		history:    history,
		completion: completion,
		queryLog:   queryLog,
	}
}

// ProcessQuery runs the full pipeline for one user query and returns the
// completion text. Retrieval, condensation, and history failures degrade
// silently; only a completion failure surfaces, as ErrGenerationFailed.
//
// Callers must not issue overlapping calls for the same sessionID: history
// writes are last-write-wins at the cache layer.
func (e *Engine) ProcessQuery(ctx context.Context, tenantID, agentID, sessionID, query string, cfg domain.AgentConfig) (string, error) {
	switch {
	case tenantID == "":
		return "", domain.ErrMissingTenant
	case agentID == "":
		return "", domain.ErrMissingAgent
	case sessionID == "":
		return "", domain.ErrMissingSession
	case strings.TrimSpace(query) == "":
		return "", domain.ErrEmptyQuery
	}
	cfg = cfg.Normalize()
	started := time.Now()

	ctx, span := telemetry.StartSpan(ctx, "Engine.ProcessQuery", telemetry.SpanAttributes{
		TenantID:  tenantID,
		AgentID:   agentID,
		SessionID: sessionID,
		Operation: "query",
	})
	defer span.End()

	// History read and retrieval are independent reads; run them together.
	var history []domain.ConversationMessage
	var contextChunks []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		history = e.history.Get(ctx, tenantID, agentID, sessionID)
	}()
	contextChunks = e.retriever.Retrieve(ctx, tenantID, agentID, query, DefaultTopK)
	<-done

	candidateCount := len(contextChunks)
	contextChunks = condenser.Condense(contextChunks, query, cfg.TokenLimit)
	history = append(history, domain.ConversationMessage{Role: domain.RoleUser, Content: query})

	reserve := completionReserveCap
	if capped := cfg.TokenLimit / 5; capped < reserve {
		reserve = capped
	}

	// Re-condense when the assembled prompt would crowd out the reply.
	promptEstimate := tokens.Estimate(cfg.SystemPrompt) + tokens.Estimate(strings.Join(contextChunks, "\n\n")) + tokens.Estimate(query)
	if float64(promptEstimate) > promptBudgetShare*float64(cfg.TokenLimit) {
		remaining := cfg.TokenLimit - tokens.Estimate(cfg.SystemPrompt) - tokens.Estimate(query) - reserve
		if remaining < 0 {
			remaining = 0
		}
		contextChunks = condenser.Condense(contextChunks, query, remaining)
	}

	userMessage := query
	if len(contextChunks) > 0 {
		userMessage = strings.Join(contextChunks, "\n\n") + "\n\n" + query
	}

	completionCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	reply, err := e.completion.CreateCompletion(completionCtx, CompletionRequest{
		SystemPrompt: cfg.SystemPrompt,
		History:      history[:len(history)-1],
		UserMessage:  userMessage,
		MaxTokens:    reserve,
		Temperature:  defaultTemperature,
	})
	if err != nil {
		span.SetError(err)
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeGeneration, "failed to generate response", err)
	}

	history = append(history, domain.ConversationMessage{Role: domain.RoleAssistant, Content: reply})
	e.history.Put(ctx, tenantID, agentID, sessionID, domain.TrimHistory(history, domain.MaxHistoryMessages))

	if e.queryLog != nil {
		entry := QueryLogEntry{
			TenantID:       tenantID,
			AgentID:        agentID,
			SessionID:      sessionID,
			QueryLength:    len(query),
			CandidateCount: candidateCount,
			ContextCount:   len(contextChunks),
			DurationMs:     time.Since(started).Milliseconds(),
		}
		if err := e.queryLog.CreateQueryLog(ctx, entry); err != nil {
			log.Printf("engine: query log write failed: %v", err)
		}
	}

	return reply, nil
}
