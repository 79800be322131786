package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/loquent-ai/loquent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	results  []string
	lastTopK int
}

func (s *stubRetriever) Retrieve(ctx context.Context, tenantID, agentID, query string, topK int) []string {
	s.lastTopK = topK
	return s.results
}

type memoryHistory struct {
	mu       sync.Mutex
	sessions map[string][]domain.ConversationMessage
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{sessions: map[string][]domain.ConversationMessage{}}
}

func (m *memoryHistory) Get(ctx context.Context, tenantID, agentID, sessionID string) []domain.ConversationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ConversationMessage(nil), m.sessions[sessionID]...)
}

func (m *memoryHistory) Put(ctx context.Context, tenantID, agentID, sessionID string, history []domain.ConversationMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append([]domain.ConversationMessage(nil), history...)
}

type stubCompletion struct {
	reply   string
	err     error
	delay   time.Duration
	lastReq CompletionRequest
}

func (s *stubCompletion) CreateCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	s.lastReq = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

type recordingLogger struct {
	entries []QueryLogEntry
	err     error
}

func (r *recordingLogger) CreateQueryLog(ctx context.Context, entry QueryLogEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func newTestEngine(retriever *stubRetriever, history *memoryHistory, completion *stubCompletion) *Engine {
	return NewEngine(retriever, history, completion, nil)
}

func TestProcessQueryHappyPath(t *testing.T) {
	ctx := context.Background()
	retriever := &stubRetriever{results: []string{"Refunds take five days.", "Contact support by email."}}
	history := newMemoryHistory()
	completion := &stubCompletion{reply: "Refunds are processed within five days."}
	e := newTestEngine(retriever, history, completion)

	reply, err := e.ProcessQuery(ctx, "tenant1", "agent1", "session1", "How long do refunds take?", domain.AgentConfig{})

	require.NoError(t, err)
	assert.Equal(t, "Refunds are processed within five days.", reply)
	assert.Equal(t, DefaultTopK, retriever.lastTopK)

	// Context chunks precede the literal query in the user message.
	assert.True(t, strings.HasSuffix(completion.lastReq.UserMessage, "How long do refunds take?"))
	assert.Contains(t, completion.lastReq.UserMessage, "Refunds take five days.\n\nContact support by email.")
	assert.Equal(t, domain.DefaultSystemPrompt, completion.lastReq.SystemPrompt)

	// Both turns persisted.
	stored := history.Get(ctx, "tenant1", "agent1", "session1")
	require.Len(t, stored, 2)
	assert.Equal(t, domain.RoleUser, stored[0].Role)
	assert.Equal(t, domain.RoleAssistant, stored[1].Role)
}

func TestProcessQueryEmptyContextIsNotAnError(t *testing.T) {
	retriever := &stubRetriever{results: nil}
	completion := &stubCompletion{reply: "I don't have information on that."}
	e := newTestEngine(retriever, newMemoryHistory(), completion)

	reply, err := e.ProcessQuery(context.Background(), "t", "a", "s", "obscure question", domain.AgentConfig{})

	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	// No context: the user message is just the literal query.
	assert.Equal(t, "obscure question", completion.lastReq.UserMessage)
}

func TestProcessQueryCompletionFailureSurfaces(t *testing.T) {
	completion := &stubCompletion{err: errors.New("upstream 500")}
	e := newTestEngine(&stubRetriever{}, newMemoryHistory(), completion)

	_, err := e.ProcessQuery(context.Background(), "t", "a", "s", "hello there", domain.AgentConfig{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeGeneration, domainErr.Code)
}

func TestProcessQueryCompletionFailureDoesNotPersistTurn(t *testing.T) {
	ctx := context.Background()
	history := newMemoryHistory()
	e := newTestEngine(&stubRetriever{}, history, &stubCompletion{err: errors.New("down")})

	_, err := e.ProcessQuery(ctx, "t", "a", "s", "hello", domain.AgentConfig{})

	require.Error(t, err)
	assert.Empty(t, history.Get(ctx, "t", "a", "s"))
}

func TestProcessQueryTimeout(t *testing.T) {
	completion := &stubCompletion{reply: "late", delay: 200 * time.Millisecond}
	e := newTestEngine(&stubRetriever{}, newMemoryHistory(), completion)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.ProcessQuery(ctx, "t", "a", "s", "slow question", domain.AgentConfig{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestProcessQueryHistoryGrowsAndTrims(t *testing.T) {
	ctx := context.Background()
	history := newMemoryHistory()
	completion := &stubCompletion{reply: "ok"}
	e := newTestEngine(&stubRetriever{}, history, completion)

	for i := 0; i < 15; i++ {
		_, err := e.ProcessQuery(ctx, "t", "a", "s", "question number "+string(rune('a'+i)), domain.AgentConfig{})
		require.NoError(t, err)
	}

	stored := history.Get(ctx, "t", "a", "s")
	assert.Len(t, stored, domain.MaxHistoryMessages)
	// Most recent assistant turn is last.
	assert.Equal(t, domain.RoleAssistant, stored[len(stored)-1].Role)
}

func TestProcessQueryPriorHistoryInPrompt(t *testing.T) {
	ctx := context.Background()
	history := newMemoryHistory()
	history.Put(ctx, "t", "a", "s", []domain.ConversationMessage{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	})
	completion := &stubCompletion{reply: "ok"}
	e := newTestEngine(&stubRetriever{}, history, completion)

	_, err := e.ProcessQuery(ctx, "t", "a", "s", "follow up", domain.AgentConfig{})

	require.NoError(t, err)
	require.Len(t, completion.lastReq.History, 2)
	assert.Equal(t, "earlier question", completion.lastReq.History[0].Content)
}

func TestProcessQueryCondensesOversizedContext(t *testing.T) {
	// Enough context to blow 80% of a tiny token limit.
	chunk := strings.Repeat("Detailed warranty terms cover every component of the product. ", 20)
	retriever := &stubRetriever{results: []string{chunk, chunk + "variant two", chunk + "variant three"}}
	completion := &stubCompletion{reply: "summarized answer"}
	e := newTestEngine(retriever, newMemoryHistory(), completion)

	_, err := e.ProcessQuery(context.Background(), "t", "a", "s", "warranty terms", domain.AgentConfig{TokenLimit: 400})

	require.NoError(t, err)
	joined := strings.Join(retriever.results, "\n\n")
	assert.Less(t, len(completion.lastReq.UserMessage), len(joined),
		"context should have been condensed before the completion call")
}

func TestProcessQueryCompletionReserve(t *testing.T) {
	completion := &stubCompletion{reply: "ok"}
	e := newTestEngine(&stubRetriever{}, newMemoryHistory(), completion)

	_, err := e.ProcessQuery(context.Background(), "t", "a", "s", "hi there friend", domain.AgentConfig{TokenLimit: 4096})
	require.NoError(t, err)
	// min(1000, 4096/5) = 819
	assert.Equal(t, 819, completion.lastReq.MaxTokens)

	_, err = e.ProcessQuery(context.Background(), "t", "a", "s2", "hi there friend", domain.AgentConfig{TokenLimit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1000, completion.lastReq.MaxTokens)
}

func TestProcessQueryValidation(t *testing.T) {
	e := newTestEngine(&stubRetriever{}, newMemoryHistory(), &stubCompletion{reply: "ok"})
	ctx := context.Background()

	tests := []struct {
		name    string
		tenant  string
		agent   string
		session string
		query   string
		wantErr error
	}{
		{name: "missing tenant", agent: "a", session: "s", query: "q", wantErr: domain.ErrMissingTenant},
		{name: "missing agent", tenant: "t", session: "s", query: "q", wantErr: domain.ErrMissingAgent},
		{name: "missing session", tenant: "t", agent: "a", query: "q", wantErr: domain.ErrMissingSession},
		{name: "blank query", tenant: "t", agent: "a", session: "s", query: "   ", wantErr: domain.ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ProcessQuery(ctx, tt.tenant, tt.agent, tt.session, tt.query, domain.AgentConfig{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProcessQueryWritesQueryLog(t *testing.T) {
	logger := &recordingLogger{}
	retriever := &stubRetriever{results: []string{"some context"}}
	e := NewEngine(retriever, newMemoryHistory(), &stubCompletion{reply: "ok"}, logger)

	_, err := e.ProcessQuery(context.Background(), "t", "a", "s", "logged question", domain.AgentConfig{})

	require.NoError(t, err)
	require.Len(t, logger.entries, 1)
	entry := logger.entries[0]
	assert.Equal(t, "t", entry.TenantID)
	assert.Equal(t, len("logged question"), entry.QueryLength)
	assert.Equal(t, 1, entry.CandidateCount)
}

func TestProcessQueryLoggerFailureIsSwallowed(t *testing.T) {
	logger := &recordingLogger{err: errors.New("log table missing")}
	e := NewEngine(&stubRetriever{}, newMemoryHistory(), &stubCompletion{reply: "ok"}, logger)

	reply, err := e.ProcessQuery(context.Background(), "t", "a", "s", "still works", domain.AgentConfig{})

	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}
