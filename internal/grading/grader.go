// Package grading evaluates challenge attempts and records the outcome.
package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// DefaultConcurrency bounds simultaneous evaluations in GradePending
const DefaultConcurrency = 4

// Evaluator grades a response against a challenge rubric
type Evaluator interface {
	Evaluate(ctx context.Context, challenge types.ChallengeContent, response string) (*types.EvaluationResult, error)
}

// Store persists grading outcomes
type Store interface {
	RecordEvaluation(ctx context.Context, attemptID uuid.UUID, result *types.EvaluationResult) (*db.Attempt, error)
	RecordFailure(ctx context.Context, attemptID uuid.UUID, cause string) (*db.Attempt, error)
	ListPendingAttempts(ctx context.Context, limit int) ([]db.PendingAttempt, error)
}

// Grader runs evaluations for pending attempts
type Grader struct {
	store     Store
	evaluator Evaluator
	logger    *slog.Logger
}

// Outcome is the result of grading one attempt. Err holds the evaluation error
// when the attempt was recorded as failed.
type Outcome struct {
	Attempt *db.Attempt
	Result  *types.EvaluationResult
	Err     error
}

// Summary counts the outcomes of a GradePending run. Unrecorded attempts were
// evaluated but their outcome could not be stored; they stay pending.
type Summary struct {
	Graded     int `json:"graded" yaml:"graded"`
	Failed     int `json:"failed" yaml:"failed"`
	Unrecorded int `json:"unrecorded" yaml:"unrecorded"`
}

// New creates a Grader
func New(store Store, evaluator Evaluator, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{store: store, evaluator: evaluator, logger: logger}
}

// Grade evaluates one pending attempt and records it as graded or failed.
// The returned error is only non-nil when the outcome could not be stored.
func (g *Grader) Grade(ctx context.Context, attemptID uuid.UUID, challenge types.ChallengeContent, response string) (*Outcome, error) {
	result, evalErr := g.evaluator.Evaluate(ctx, challenge, response)
	if evalErr != nil {
		g.logger.Warn("attempt grading failed", "attempt_id", attemptID, "error", evalErr)

		// record on a fresh context so a cancelled request still leaves a final state
		attempt, err := g.store.RecordFailure(context.WithoutCancel(ctx), attemptID, evalErr.Error())
		if err != nil {
			return nil, fmt.Errorf("failed to record grading failure: %w", err)
		}
		return &Outcome{Attempt: attempt, Err: evalErr}, nil
	}

	attempt, err := g.store.RecordEvaluation(ctx, attemptID, result)
	if err != nil {
		return nil, fmt.Errorf("failed to record evaluation: %w", err)
	}
	g.logger.Info("attempt graded", "attempt_id", attemptID, "score", result.Score, "in_range", result.ScoreInRange())
	return &Outcome{Attempt: attempt, Result: result}, nil
}

// GradePending grades every pending attempt with at most concurrency
// evaluations in flight. limit caps how many attempts are loaded (0 means all).
func (g *Grader) GradePending(ctx context.Context, concurrency, limit int) (Summary, error) {
	pending, err := g.store.ListPendingAttempts(ctx, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load pending attempts: %w", err)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]*Outcome, len(pending))
	storeErrs := make([]error, len(pending))

	// a plain group: one attempt's store error must not cancel its siblings
	var eg errgroup.Group
	eg.SetLimit(concurrency)

	for i, p := range pending {
		eg.Go(func() error {
			outcome, err := g.Grade(ctx, p.ID, p.Content, p.Response)
			if err != nil {
				g.logger.Error("attempt outcome not stored", "attempt_id", p.ID, "error", err)
				storeErrs[i] = fmt.Errorf("attempt %s: %w", p.ID, err)
				return nil
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = eg.Wait()

	var summary Summary
	for i, o := range outcomes {
		switch {
		case storeErrs[i] != nil:
			summary.Unrecorded++
		case o == nil:
		case o.Err != nil:
			summary.Failed++
		default:
			summary.Graded++
		}
	}
	return summary, errors.Join(storeErrs...)
}
