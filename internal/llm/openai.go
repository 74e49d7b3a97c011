package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// OpenAIClient implements Client for OpenAI-compatible /chat/completions endpoints
type OpenAIClient struct {
	http   *resty.Client
	config *Config
	logger *slog.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	config = config.WithDefaults()
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &OpenAIClient{config: config, logger: config.Logger}
	c.http = resty.New().
		SetBaseURL(strings.TrimSuffix(config.BaseURL, "/")).
		SetAuthToken(config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(config.RetryWait).
		SetRetryMaxWaitTime(config.RetryWait * 8).
		SetLogger(restyLogger{logger: config.Logger}).
		AddRetryCondition(shouldRetry).
		AddRetryHook(func(resp *resty.Response, err error) {
			status := 0
			if resp != nil {
				status = resp.StatusCode()
			}
			c.logger.Warn("retrying completion request",
				"provider", ProviderOpenAI, "status", status, "error", err)
		})
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float32           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// Complete sends one chat completion request, retrying transient failures
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	attempts := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempts = resp.Request.Attempt
	}

	if err != nil {
		return "", &UpstreamError{Provider: ProviderOpenAI, Attempts: attempts, Cause: err}
	}
	if resp.IsError() {
		return "", &UpstreamError{
			Provider:   ProviderOpenAI,
			Attempts:   attempts,
			StatusCode: resp.StatusCode(),
			Cause:      fmt.Errorf("%s", errorMessage(resp)),
		}
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("completion received",
		"provider", ProviderOpenAI, "model", c.config.Model, "attempts", attempts, "chars", len(text))
	return text, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *OpenAIClient) Close() error {
	return nil
}

// restyLogger sends resty's own messages to slog. Warnings go to debug since
// the retry hook already reports each retry.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

// shouldRetry retries transport errors, 429 and 5xx, but never a cancelled caller
func shouldRetry(resp *resty.Response, err error) bool {
	if resp != nil && resp.Request != nil && resp.Request.Context().Err() != nil {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	return resp != nil && isRetryableStatus(resp.StatusCode())
}

// errorMessage pulls the provider's error text out of a failed response
func errorMessage(resp *resty.Response) string {
	if msg := gjson.Get(resp.String(), "error.message").String(); msg != "" {
		return msg
	}
	return resp.Status()
}
