package model

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	// DefaultOpenAIModel is used for hosted OpenAI-compatible endpoints
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultLocalModel is used when a local-inference endpoint is
	// detected and no model was configured
	DefaultLocalModel = "llama3"

	localInferenceURL = "http://localhost:11434/v1"
)

// openaiClient is the OpenAI-compatible backend. It also covers
// local-inference servers (Ollama) that speak the same wire protocol;
// those are detected by endpoint URL and waive the credential
// requirement.
type openaiClient struct {
	client      *openai.Client
	model       string
	endpoint    string
	local       bool
	substituted bool
	sem         *semaphore.Weighted
	limiter     *rate.Limiter
}

// isLocalInference reports whether the endpoint looks like a local
// Ollama-style server
func isLocalInference(endpoint string) bool {
	lower := strings.ToLower(endpoint)
	return strings.Contains(lower, "ollama") || strings.Contains(lower, "localhost:11434")
}

// normalizeLocalEndpoint coerces the various ways users spell a local
// endpoint ("ollama", "localhost:11434", a bare host) into a full
// OpenAI-compatible base URL
func normalizeLocalEndpoint(endpoint string) string {
	if endpoint == "ollama" {
		return localInferenceURL
	}
	if !strings.HasPrefix(endpoint, "http") {
		return localInferenceURL
	}
	if !strings.Contains(endpoint, "/v1") {
		return strings.TrimRight(endpoint, "/") + "/v1"
	}
	return endpoint
}

func newOpenAIClient(cfg *Config, substituted bool) (*openaiClient, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv("OPENAI_BASE_URL")
	}

	local := false
	if isLocalInference(endpoint) || strings.EqualFold(cfg.Backend, "ollama") {
		local = true
		endpoint = normalizeLocalEndpoint(endpoint)
	}

	var apiKey string
	if local {
		// Local inference servers don't check credentials, but some
		// setups use a placeholder key
		apiKey = os.Getenv("OLLAMA_API_KEY")
		if apiKey == "" {
			apiKey = "ollama"
		}
	} else {
		apiKey = cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
			if apiKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY not set")
			}
		}
	}

	model := cfg.Model
	if model == "" {
		if local {
			model = DefaultLocalModel
		} else {
			model = DefaultOpenAIModel
		}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		clientCfg.BaseURL = endpoint
	}

	return &openaiClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		endpoint:    endpoint,
		local:       local,
		substituted: substituted,
		sem:         semaphore.NewWeighted(cfg.maxConcurrent()),
		limiter:     newLimiter(cfg.CallsPerMinute),
	}, nil
}

func (c *openaiClient) Analyze(ctx context.Context, prompt string, contextData map[string]any) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	full := buildPrompt(prompt, contextData)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: full},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai-compatible API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai-compatible backend returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) Profile() Profile {
	return Profile{
		Backend:             BackendOpenAI,
		Endpoint:            c.endpoint,
		Model:               c.model,
		FallbackSubstituted: c.substituted,
	}
}
