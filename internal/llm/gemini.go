package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// generateFunc performs one GenerateContent call for req
type generateFunc func(ctx context.Context, req Request) (*genai.GenerateContentResponse, error)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
	logger *slog.Logger
	send   generateFunc
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	config = config.WithDefaults()
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClient{
		client: client,
		config: config,
		logger: config.Logger,
	}
	c.send = c.generateContent
	return c, nil
}

// Complete generates content, retrying transient failures with exponential backoff
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(c.config.RetryWait, attempt)
			c.logger.Warn("retrying completion request",
				"provider", ProviderGemini, "attempt", attempt+1, "delay", delay, "error", lastErr)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &UpstreamError{Provider: ProviderGemini, Attempts: attempts, Cause: ctx.Err()}
			}
		}

		attempts++
		text, err := c.generate(ctx, req)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrEmptyCompletion) {
			return "", err
		}

		lastErr = err
		if ctx.Err() != nil || !isRetryableGeminiError(err) {
			break
		}
	}

	return "", &UpstreamError{
		Provider:   ProviderGemini,
		Attempts:   attempts,
		StatusCode: geminiStatus(lastErr),
		Cause:      lastErr,
	}
}

// generate runs one attempt bounded by the per-attempt timeout
func (c *GeminiClient) generate(ctx context.Context, req Request) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.send(attemptCtx, req)
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

func (c *GeminiClient) generateContent(ctx context.Context, req Request) (*genai.GenerateContentResponse, error) {
	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(req.Temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}
	return model.GenerateContent(ctx, genai.Text(req.User))
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", ErrEmptyCompletion
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// backoff doubles base per retry, capped at 8x base
func backoff(base time.Duration, attempt int) time.Duration {
	delay := base * time.Duration(math.Pow(2, float64(attempt-1)))
	if limit := base * 8; delay > limit {
		delay = limit
	}
	return delay
}

func isRetryableGeminiError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.Code)
	}

	// the gRPC transport surfaces status codes only in the message
	msg := err.Error()
	for _, marker := range []string{
		"Unavailable", "ResourceExhausted", "Internal", "DeadlineExceeded",
		"connection refused", "connection reset", "timeout", "EOF",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func geminiStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
