package grading

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/llm"
	"github.com/Kevin16883/Bridge-sub000/internal/logging"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

type fakeStore struct {
	mu       sync.Mutex
	pending  []db.PendingAttempt
	graded   map[uuid.UUID]float64
	failed   map[uuid.UUID]string
	failWith error
	failFor  map[uuid.UUID]error
}

func newFakeStore(pending ...db.PendingAttempt) *fakeStore {
	return &fakeStore{
		pending: pending,
		graded:  map[uuid.UUID]float64{},
		failed:  map[uuid.UUID]string{},
		failFor: map[uuid.UUID]error{},
	}
}

func (s *fakeStore) RecordEvaluation(_ context.Context, id uuid.UUID, r *types.EvaluationResult) (*db.Attempt, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[id]; ok {
		return nil, err
	}
	s.graded[id] = r.Score
	score, feedback := r.Score, r.Feedback
	return &db.Attempt{ID: id, Status: db.AttemptGraded, Score: &score, Feedback: &feedback}, nil
}

func (s *fakeStore) RecordFailure(_ context.Context, id uuid.UUID, cause string) (*db.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = cause
	return &db.Attempt{ID: id, Status: db.AttemptFailed, Error: &cause}, nil
}

func (s *fakeStore) ListPendingAttempts(_ context.Context, limit int) ([]db.PendingAttempt, error) {
	if limit > 0 && limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

type fakeEvaluator struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
	fail        map[string]error
}

func (e *fakeEvaluator) Evaluate(_ context.Context, _ types.ChallengeContent, response string) (*types.EvaluationResult, error) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		cur := e.maxInFlight.Load()
		if n <= cur || e.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(e.delay)

	if err, ok := e.fail[response]; ok {
		return nil, err
	}
	return &types.EvaluationResult{Score: 70, Feedback: "ok"}, nil
}

func pendingAttempt(response string) db.PendingAttempt {
	return db.PendingAttempt{
		Attempt: db.Attempt{ID: uuid.New(), Response: response, Status: db.AttemptPending},
		Content: types.ChallengeContent(`{"prompt":"p"}`),
	}
}

func TestGrade_Success(t *testing.T) {
	store := newFakeStore()
	g := New(store, &fakeEvaluator{}, logging.Discard())
	id := uuid.New()

	outcome, err := g.Grade(context.Background(), id, types.ChallengeContent(`{}`), "answer")
	require.NoError(t, err)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, db.AttemptGraded, outcome.Attempt.Status)
	assert.InDelta(t, 70, store.graded[id], 0.001)
}

func TestGrade_EvaluationFailureIsRecorded(t *testing.T) {
	upstream := &llm.UpstreamError{Provider: "openai", Attempts: 3}
	store := newFakeStore()
	g := New(store, &fakeEvaluator{fail: map[string]error{"bad": upstream}}, logging.Discard())
	id := uuid.New()

	outcome, err := g.Grade(context.Background(), id, nil, "bad")
	require.NoError(t, err)
	assert.ErrorIs(t, outcome.Err, llm.ErrUpstreamUnavailable)
	assert.Equal(t, db.AttemptFailed, outcome.Attempt.Status)
	assert.Contains(t, store.failed[id], "openai")
}

func TestGrade_StoreError(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("connection reset")
	g := New(store, &fakeEvaluator{}, logging.Discard())

	_, err := g.Grade(context.Background(), uuid.New(), nil, "answer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record evaluation")
}

func TestGradePending_BoundedConcurrency(t *testing.T) {
	var pending []db.PendingAttempt
	for i := 0; i < 10; i++ {
		pending = append(pending, pendingAttempt("answer"))
	}
	pending = append(pending, pendingAttempt("bad"))

	store := newFakeStore(pending...)
	eval := &fakeEvaluator{delay: 10 * time.Millisecond, fail: map[string]error{"bad": llm.ErrEmptyCompletion}}
	g := New(store, eval, logging.Discard())

	summary, err := g.GradePending(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, Summary{Graded: 10, Failed: 1}, summary)
	assert.LessOrEqual(t, eval.maxInFlight.Load(), int32(3))
	assert.Len(t, store.graded, 10)
	assert.Len(t, store.failed, 1)
}

func TestGradePending_Limit(t *testing.T) {
	store := newFakeStore(pendingAttempt("a"), pendingAttempt("b"), pendingAttempt("c"))
	g := New(store, &fakeEvaluator{}, logging.Discard())

	summary, err := g.GradePending(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Graded)
}

func TestGradePending_Empty(t *testing.T) {
	g := New(newFakeStore(), &fakeEvaluator{}, logging.Discard())
	summary, err := g.GradePending(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

// slowEvaluator answers "fast" responses at once and waits on the rest,
// giving up early if its context is cancelled
type slowEvaluator struct {
	delay time.Duration
}

func (e *slowEvaluator) Evaluate(ctx context.Context, _ types.ChallengeContent, response string) (*types.EvaluationResult, error) {
	if response == "fast" {
		return &types.EvaluationResult{Score: 90, Feedback: "quick"}, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(e.delay):
		return &types.EvaluationResult{Score: 60, Feedback: "slow"}, nil
	}
}

func TestGradePending_StoreErrorDoesNotFailSiblings(t *testing.T) {
	fast := pendingAttempt("fast")
	slow := []db.PendingAttempt{pendingAttempt("slow"), pendingAttempt("slow"), pendingAttempt("slow")}

	store := newFakeStore(append([]db.PendingAttempt{fast}, slow...)...)
	store.failFor[fast.ID] = errors.New("no pending attempt")
	g := New(store, &slowEvaluator{delay: 50 * time.Millisecond}, logging.Discard())

	summary, err := g.GradePending(context.Background(), 4, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fast.ID.String())
	assert.Equal(t, Summary{Graded: 3, Unrecorded: 1}, summary)

	assert.Empty(t, store.failed)
	for _, p := range slow {
		assert.InDelta(t, 60, store.graded[p.ID], 0.001)
	}
}
