// Package llm provides the completion client used by the AI pipelines.
// A Client turns a system instruction and user content into raw model text
// with a bounded per-attempt timeout and a bounded number of retries.
package llm

import (
	"fmt"
	"log/slog"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is any OpenAI-compatible chat completions endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// Defaults applied by DefaultConfig and WithDefaults
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryWait  = 500 * time.Millisecond
	DefaultOpenAIURL  = "https://api.openai.com/v1"
)

var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-sonnet-4-20250514",
}

// Config holds the completion client configuration
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint (OpenAI-compatible and Anthropic only)
	BaseURL string
	// Timeout bounds each attempt, not the whole call
	Timeout    time.Duration
	MaxRetries int
	// RetryWait is the initial backoff between attempts
	RetryWait time.Duration
	Logger    *slog.Logger
}

// DefaultConfig returns the default configuration (OpenAI-compatible)
func DefaultConfig() *Config {
	return (&Config{Provider: ProviderOpenAI, MaxRetries: DefaultMaxRetries}).WithDefaults()
}

// DefaultModel returns the model used for a provider when none is configured
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// WithDefaults returns a copy of c with empty fields filled in.
// MaxRetries is kept as-is when zero or positive; negative values become the default.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Provider == "" {
		out.Provider = ProviderOpenAI
	}
	if out.Model == "" {
		out.Model = DefaultModel(out.Provider)
	}
	if out.BaseURL == "" && out.Provider == ProviderOpenAI {
		out.BaseURL = DefaultOpenAIURL
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxRetries < 0 {
		out.MaxRetries = DefaultMaxRetries
	}
	if out.RetryWait <= 0 {
		out.RetryWait = DefaultRetryWait
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// Validate checks the configuration can build a client
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported LLM provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
