package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNew_DisabledBackend(t *testing.T) {
	client := New(&Config{Backend: "disabled"})

	profile := client.Profile()
	assert.Equal(t, BackendDisabled, profile.Backend)

	_, err := client.Analyze(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestNew_NoCredentialsFallsBackToDisabled(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	client := New(&Config{Backend: "anthropic"})
	assert.Equal(t, BackendDisabled, client.Profile().Backend)
}

func TestNew_AnthropicFallsBackToOpenAI(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "")

	client := New(&Config{Backend: "anthropic"})

	profile := client.Profile()
	assert.Equal(t, BackendOpenAI, profile.Backend)
	assert.True(t, profile.FallbackSubstituted)
	assert.Equal(t, DefaultOpenAIModel, profile.Model)
}

func TestNew_OllamaBackendWaivesCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	client := New(&Config{Backend: "ollama"})

	profile := client.Profile()
	require.Equal(t, BackendOpenAI, profile.Backend)
	assert.False(t, profile.FallbackSubstituted)
	assert.Equal(t, DefaultLocalModel, profile.Model)
	assert.Equal(t, localInferenceURL, profile.Endpoint)
}

func TestNew_AnthropicWithKey(t *testing.T) {
	t.Setenv("REMEDY_MODEL", "")

	client := New(&Config{Backend: "anthropic", APIKey: "sk-ant-test"})

	profile := client.Profile()
	assert.Equal(t, BackendAnthropic, profile.Backend)
	assert.False(t, profile.FallbackSubstituted)
	assert.Equal(t, DefaultAnthropicModel, profile.Model)
}

func TestNew_RateLimiterConfigured(t *testing.T) {
	t.Setenv("REMEDY_MODEL", "")

	client := New(&Config{Backend: "anthropic", APIKey: "sk-ant-test", CallsPerMinute: 30})

	ac, ok := client.(*anthropicClient)
	require.True(t, ok)
	require.NotNil(t, ac.limiter)
	assert.Equal(t, rate.Limit(0.5), ac.limiter.Limit())
}

func TestNewLimiter_ZeroDisablesPacing(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	assert.NotNil(t, newLimiter(60))
}

func TestIsLocalInference(t *testing.T) {
	tests := []struct {
		endpoint string
		local    bool
	}{
		{"ollama", true},
		{"http://localhost:11434", true},
		{"http://LOCALHOST:11434/v1", true},
		{"https://my-ollama.internal", true},
		{"https://api.openai.com/v1", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.local, isLocalInference(tt.endpoint), tt.endpoint)
	}
}

func TestNormalizeLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		expected string
	}{
		{"ollama", localInferenceURL},
		{"localhost:11434", localInferenceURL},
		{"http://localhost:11434", "http://localhost:11434/v1"},
		{"http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"http://ollama.internal:8080/", "http://ollama.internal:8080/v1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeLocalEndpoint(tt.endpoint), tt.endpoint)
	}
}
