package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Backend identifies which model client variant is active
type Backend string

const (
	BackendAnthropic Backend = "anthropic"
	BackendOpenAI    Backend = "openai"
	BackendDisabled  Backend = "disabled"
)

// ErrNoBackend is returned by Analyze when no backend could be
// initialized. Callers are expected to apply their non-AI fallback
// logic instead of treating this as fatal.
var ErrNoBackend = errors.New("no model backend available")

// Profile describes the backend a client ended up with. Created once
// at construction and immutable for the process lifetime.
type Profile struct {
	Backend  Backend `json:"backend"`
	Endpoint string  `json:"endpoint,omitempty"`
	Model    string  `json:"model"`

	// FallbackSubstituted records that the requested backend failed to
	// initialize and the OpenAI-compatible fallback was silently
	// substituted
	FallbackSubstituted bool `json:"fallback_substituted,omitempty"`
}

// Client is the uniform interface to a text-completion backend.
//
// Analyze makes exactly one call attempt: no retry, no backoff. A
// failed call returns an error so the caller can degrade to its
// deterministic fallback path immediately.
type Client interface {
	Analyze(ctx context.Context, prompt string, contextData map[string]any) (string, error)
	Profile() Profile
}

// Config holds model client construction parameters
type Config struct {
	Backend   string // "anthropic" (default), "openai", "ollama", "disabled"
	APIKey    string // credential; falls back to backend-specific env var
	Endpoint  string // base URL for OpenAI-compatible backends
	Model     string // model name; backend-specific default if empty
	MaxTokens int    // completion budget per call (default 4096)

	// MaxConcurrentCalls bounds in-flight API calls. The audit loop is
	// single-threaded, so the default of 1 enforces that assumption.
	MaxConcurrentCalls int

	// CallsPerMinute paces API calls. 0 disables pacing.
	CallsPerMinute int
}

func (c *Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 4096
}

func (c *Config) maxConcurrent() int64 {
	if c.MaxConcurrentCalls > 0 {
		return int64(c.MaxConcurrentCalls)
	}
	return 1
}

// New constructs a client, attempting backends in a fixed preference
// order: the requested backend first, then the OpenAI-compatible
// fallback. If every backend fails, the returned client is a disabled
// client whose Analyze calls return ErrNoBackend rather than
// panicking, so even the "fatal" case is non-propagating.
func New(cfg *Config) Client {
	if cfg == nil {
		cfg = &Config{}
	}

	switch strings.ToLower(cfg.Backend) {
	case "disabled":
		return &disabledClient{}
	case "openai", "ollama":
		if c, err := newOpenAIClient(cfg, false); err == nil {
			return c
		} else {
			fmt.Fprintf(os.Stderr, "warning: openai backend unavailable: %v\n", err)
		}
		return &disabledClient{}
	default: // anthropic
		if c, err := newAnthropicClient(cfg); err == nil {
			return c
		} else {
			fmt.Fprintf(os.Stderr, "warning: anthropic backend unavailable: %v, trying openai fallback\n", err)
		}
		if c, err := newOpenAIClient(cfg, true); err == nil {
			return c
		} else {
			fmt.Fprintf(os.Stderr, "warning: openai fallback unavailable: %v\n", err)
		}
		return &disabledClient{}
	}
}

// disabledClient is the terminal fallback when no backend initialized
type disabledClient struct{}

func (d *disabledClient) Analyze(ctx context.Context, prompt string, contextData map[string]any) (string, error) {
	return "", ErrNoBackend
}

func (d *disabledClient) Profile() Profile {
	return Profile{Backend: BackendDisabled}
}
