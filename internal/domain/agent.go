package domain

const (
	// DefaultSystemPrompt is used when an agent does not define one.
	DefaultSystemPrompt = "You are a helpful assistant."
	// DefaultTokenLimit is the model context window assumed when an agent
	// does not declare one.
	DefaultTokenLimit = 4096
)

// AgentConfig is the per-request agent configuration supplied by the caller.
// It is owned by the agent-management subsystem and read-only here; the
// orchestrator normalizes it once at its boundary.
type AgentConfig struct {
	SystemPrompt string
	TokenLimit   int
}

// Normalize returns a copy with documented defaults applied to absent fields.
func (c AgentConfig) Normalize() AgentConfig {
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.TokenLimit <= 0 {
		c.TokenLimit = DefaultTokenLimit
	}
	return c
}
