package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicMaxTokens = 4096
	// the Messages API has no response-format flag, so JSON mode is an instruction
	jsonOnlyInstruction = "Respond with a single JSON object and nothing else."
)

// AnthropicClient implements Client for the Anthropic Messages API.
// Retries and the per-attempt timeout are delegated to the SDK.
type AnthropicClient struct {
	inner  anthropic.Client
	config *Config
	logger *slog.Logger
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config) (*AnthropicClient, error) {
	config = config.WithDefaults()
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(config.MaxRetries),
		option.WithRequestTimeout(config.Timeout),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicClient{
		inner:  anthropic.NewClient(opts...),
		config: config,
		logger: config.Logger,
	}, nil
}

// Complete sends one Messages request
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	system := req.System
	if req.JSONMode {
		system = strings.TrimSpace(system + "\n\n" + jsonOnlyInstruction)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", c.upstreamError(err)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	text := result.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("completion received",
		"provider", ProviderAnthropic, "model", c.config.Model,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	return text, nil
}

// upstreamError estimates attempts from the failure class the SDK retries on
func (c *AnthropicClient) upstreamError(err error) *UpstreamError {
	out := &UpstreamError{Provider: ProviderAnthropic, Attempts: c.config.MaxRetries + 1, Cause: err}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		out.StatusCode = apiErr.StatusCode
		if !isRetryableStatus(apiErr.StatusCode) && apiErr.StatusCode != 408 && apiErr.StatusCode != 409 {
			out.Attempts = 1
		}
	}
	if errors.Is(err, context.Canceled) {
		out.Attempts = 1
	}
	return out
}

// Model returns the configured model name
func (c *AnthropicClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *AnthropicClient) Close() error {
	return nil
}
