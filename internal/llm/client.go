package llm

import (
	"context"
	"fmt"
)

// Request is one chat-style completion call
type Request struct {
	System      string
	User        string
	Temperature float32
	// JSONMode asks the provider to constrain output to a single JSON object
	JSONMode bool
}

// Client is an abstraction over LLM providers.
// Implementations are safe for concurrent use.
type Client interface {
	// Complete returns the raw text of the model's single completion
	Complete(ctx context.Context, req Request) (string, error)
	// Model returns the configured model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a completion client for the configured provider.
// It fails immediately when the credential is missing.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderAnthropic:
		return NewAnthropicClient(config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
