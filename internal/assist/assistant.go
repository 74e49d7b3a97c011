// Package assist runs the AI pipelines of the marketplace: demand decomposition,
// challenge evaluation, question tagging and answer synthesis.
//
// Every pipeline is prompt -> completion -> schema validation. Failures propagate
// unchanged and no pipeline retries as a whole; transient transport failures are
// retried inside the completion client only.
package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Kevin16883/Bridge-sub000/internal/llm"
	"github.com/Kevin16883/Bridge-sub000/internal/prompts"
	"github.com/Kevin16883/Bridge-sub000/internal/schemas"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// MinDemandLength is the shortest demand, in characters, worth decomposing
const MinDemandLength = 10

// Sampling temperatures per pipeline
const (
	TagTemperature     float32 = 0.5
	DefaultTemperature float32 = 0.7
)

// Assistant runs the AI pipelines against one completion client
type Assistant struct {
	client llm.Client
	logger *slog.Logger
}

// New creates an Assistant. A nil logger uses slog.Default().
func New(client llm.Client, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{client: client, logger: logger}
}

// Decompose turns a free-text demand into a validated TaskBreakdown.
func (a *Assistant) Decompose(ctx context.Context, demand string) (*types.TaskBreakdown, error) {
	demand = strings.TrimSpace(demand)
	if n := utf8.RuneCountInString(demand); n < MinDemandLength {
		return nil, &InputTooShortError{Field: "demand", Min: MinDemandLength, Got: n}
	}

	p := prompts.BuildBreakdownPrompt(demand)
	breakdown, err := complete[types.TaskBreakdown](ctx, a, schemas.TaskBreakdown, p, DefaultTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to decompose demand: %w", err)
	}

	a.logger.Info("demand decomposed", "tasks", len(breakdown.Tasks), "total_budget", breakdown.TotalBudget)
	return breakdown, nil
}

// Evaluate grades a challenge response against the challenge's rubric.
// The score is passed through as returned; out-of-range scores are logged
// and reported by EvaluationResult.ScoreInRange.
func (a *Assistant) Evaluate(ctx context.Context, challenge types.ChallengeContent, response string) (*types.EvaluationResult, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &InputTooShortError{Field: "response", Min: 1, Got: 0}
	}

	p := prompts.BuildEvaluationPrompt(challenge, response)
	result, err := complete[types.EvaluationResult](ctx, a, schemas.EvaluationResult, p, DefaultTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate response: %w", err)
	}

	if !result.ScoreInRange() {
		a.logger.Warn("evaluation score outside expected range",
			"score", result.Score, "min", types.MinScore, "max", types.MaxScore)
	}
	return result, nil
}

// GenerateTags labels a community question with short lowercase tags.
// Tags are trimmed, lowercased and de-duplicated in order.
func (a *Assistant) GenerateTags(ctx context.Context, title, content, category string) (*types.TagSet, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &InputTooShortError{Field: "title", Min: 1, Got: 0}
	}

	p := prompts.BuildTagPrompt(title, content, category)
	set, err := complete[types.TagSet](ctx, a, schemas.TagSet, p, TagTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags: %w", err)
	}

	set.Tags = normalizeTags(set.Tags)
	return set, nil
}

// SynthesizeAnswer combines a question's comments into one answer.
// An empty comment list is still sent to the model.
func (a *Assistant) SynthesizeAnswer(ctx context.Context, title, content string, comments []types.Comment) (*types.SynthesizedAnswer, error) {
	p := prompts.BuildAnswerSynthesisPrompt(title, content, comments)
	answer, err := complete[types.SynthesizedAnswer](ctx, a, schemas.SynthesizedAnswer, p, DefaultTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize answer: %w", err)
	}
	return answer, nil
}

// complete runs one completion and decodes the response against the named schema
func complete[T any](ctx context.Context, a *Assistant, schemaName string, p prompts.Prompt, temperature float32) (*T, error) {
	schema, err := schemas.Load(schemaName)
	if err != nil {
		return nil, err
	}

	raw, err := a.client.Complete(ctx, llm.Request{
		System:      p.System,
		User:        p.User,
		Temperature: temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	out, err := schemas.Decode[T](schema, llm.CleanJSONBlock(raw))
	if err != nil {
		a.logger.Warn("completion rejected", "schema", schemaName, "model", a.client.Model(), "error", err)
		return nil, err
	}
	return out, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
