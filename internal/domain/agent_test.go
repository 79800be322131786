package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentConfigNormalize(t *testing.T) {
	tests := []struct {
		name       string
		cfg        AgentConfig
		wantPrompt string
		wantLimit  int
	}{
		{
			name:       "empty config gets defaults",
			cfg:        AgentConfig{},
			wantPrompt: DefaultSystemPrompt,
			wantLimit:  DefaultTokenLimit,
		},
		{
			name:       "explicit values are kept",
			cfg:        AgentConfig{SystemPrompt: "You are a support agent.", TokenLimit: 8192},
			wantPrompt: "You are a support agent.",
			wantLimit:  8192,
		},
		{
			name:       "negative token limit falls back to default",
			cfg:        AgentConfig{TokenLimit: -1},
			wantPrompt: DefaultSystemPrompt,
			wantLimit:  DefaultTokenLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Normalize()
			assert.Equal(t, tt.wantPrompt, got.SystemPrompt)
			assert.Equal(t, tt.wantLimit, got.TokenLimit)
		})
	}
}

func TestDomainError(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "query cannot be empty")
	assert.Equal(t, "[VALIDATION_ERROR] query cannot be empty", err.Error())
	assert.Nil(t, err.Unwrap())

	wrapped := NewDomainErrorWithCause(ErrCodeGeneration, "failed to generate response", assert.AnError)
	assert.Contains(t, wrapped.Error(), "GENERATION_ERROR")
	assert.Equal(t, assert.AnError, wrapped.Unwrap())
}
