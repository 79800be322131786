package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/loquent-ai/loquent/internal/api"
	"github.com/loquent-ai/loquent/internal/domain"
)

// QueryEngine runs the retrieval-augmented query pipeline.
type QueryEngine interface {
	ProcessQuery(ctx context.Context, tenantID, agentID, sessionID, query string, cfg domain.AgentConfig) (string, error)
}

// QueryHandler exposes the query pipeline over HTTP.
type QueryHandler struct {
	engine QueryEngine
}

func NewQueryHandler(engine QueryEngine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

type QueryRequest struct {
	TenantID     string `json:"tenant_id"`
	AgentID      string `json:"agent_id"`
	SessionID    string `json:"session_id"`
	Query        string `json:"query"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	TokenLimit   int    `json:"token_limit,omitempty"`
}

type QueryResponse struct {
	Reply string `json:"reply"`
}

// Process handles POST /v1/query.
func (h *QueryHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.TenantID = strings.TrimSpace(req.TenantID)
	req.AgentID = strings.TrimSpace(req.AgentID)
	req.SessionID = strings.TrimSpace(req.SessionID)

	cfg := domain.AgentConfig{
		SystemPrompt: req.SystemPrompt,
		TokenLimit:   req.TokenLimit,
	}

	reply, err := h.engine.ProcessQuery(r.Context(), req.TenantID, req.AgentID, req.SessionID, req.Query, cfg)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, QueryResponse{Reply: reply})
}
