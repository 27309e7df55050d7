package model

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultAnthropicModel is used when no model is configured.
// Override per-process with REMEDY_MODEL.
const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

func defaultAnthropicModel() string {
	if m := os.Getenv("REMEDY_MODEL"); m != "" {
		return m
	}
	return DefaultAnthropicModel
}

// anthropicClient is the primary backend
type anthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
}

func newAnthropicClient(cfg *Config) (*anthropicClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &anthropicClient{
		client:    &client,
		model:     model,
		maxTokens: cfg.maxTokens(),
		sem:       semaphore.NewWeighted(cfg.maxConcurrent()),
		limiter:   newLimiter(cfg.CallsPerMinute),
	}, nil
}

func (c *anthropicClient) Analyze(ctx context.Context, prompt string, contextData map[string]any) (string, error) {
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

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(full)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return text, nil
}

func (c *anthropicClient) Profile() Profile {
	return Profile{Backend: BackendAnthropic, Model: c.model}
}
