package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/llm"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// fakeStore is an in-memory Store
type fakeStore struct {
	mu sync.Mutex

	users      map[uuid.UUID]*db.User
	projects   map[uuid.UUID]*db.Project
	challenges map[uuid.UUID]*db.Challenge
	attempts   map[uuid.UUID]*db.Attempt
	questions  map[uuid.UUID]*db.Question

	pingErr        error
	lastProjectQ   db.ProjectFilters
	lastTaskQ      db.TaskFilters
	failCreateUser error
	// dropBeforeWrite removes the target row just before an update, as a concurrent delete would
	dropBeforeWrite bool
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*db.User),
		projects:   make(map[uuid.UUID]*db.Project),
		challenges: make(map[uuid.UUID]*db.Challenge),
		attempts:   make(map[uuid.UUID]*db.Attempt),
		questions:  make(map[uuid.UUID]*db.Question),
	}
}

func (f *fakeStore) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, name, email string, role types.Role, passwordHash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateUser != nil {
		return uuid.Nil, f.failCreateUser
	}
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return uuid.Nil, db.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(email),
		Role:         role,
		PasswordHash: passwordHash,
		PasswordSet:  passwordHash != "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func (f *fakeStore) CreateProjectWithTasks(_ context.Context, ownerID uuid.UUID, demand string, breakdown *types.TaskBreakdown) (*db.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	p := &db.Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Demand:      demand,
		Summary:     breakdown.ProjectSummary,
		TotalBudget: breakdown.TotalBudget,
		Status:      db.ProjectOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, spec := range breakdown.Tasks {
		p.Tasks = append(p.Tasks, db.Task{
			ID:            uuid.New(),
			ProjectID:     p.ID,
			Position:      i,
			Title:         spec.Title,
			Description:   spec.Description,
			Skills:        spec.Skills,
			EstimatedTime: spec.EstimatedTime,
			Difficulty:    spec.Difficulty,
			Budget:        spec.Budget,
			Status:        "open",
			CreatedAt:     now,
		})
	}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetProject(_ context.Context, id uuid.UUID) (*db.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects[id], nil
}

func (f *fakeStore) ListProjects(_ context.Context, filters db.ProjectFilters) ([]db.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProjectQ = filters
	var out []db.Project
	for _, p := range f.projects {
		if filters.OwnerID != uuid.Nil && p.OwnerID != filters.OwnerID {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) ListOpenTasks(_ context.Context, filters db.TaskFilters) ([]db.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTaskQ = filters
	var out []db.Task
	for _, p := range f.projects {
		for _, task := range p.Tasks {
			if filters.Difficulty != "" && task.Difficulty != filters.Difficulty {
				continue
			}
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateProjectStatus(_ context.Context, id uuid.UUID, status db.ProjectStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropBeforeWrite {
		delete(f.projects, id)
	}
	p, ok := f.projects[id]
	if !ok {
		return fmt.Errorf("project %s: %w", id, db.ErrNotFound)
	}
	p.Status = status
	return nil
}

func (f *fakeStore) CreateChallenge(_ context.Context, authorID uuid.UUID, title string, content types.ChallengeContent) (*db.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &db.Challenge{ID: uuid.New(), AuthorID: authorID, Title: title, Content: content, CreatedAt: time.Now().UTC()}
	f.challenges[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetChallenge(_ context.Context, id uuid.UUID) (*db.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenges[id], nil
}

func (f *fakeStore) CreateAttempt(_ context.Context, challengeID, performerID uuid.UUID, response string) (*db.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &db.Attempt{
		ID:          uuid.New(),
		ChallengeID: challengeID,
		PerformerID: performerID,
		Response:    response,
		Status:      db.AttemptPending,
		CreatedAt:   time.Now().UTC(),
	}
	f.attempts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeStore) ListAttempts(_ context.Context, challengeID uuid.UUID, _, _ int) ([]db.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Attempt
	for _, a := range f.attempts {
		if a.ChallengeID == challengeID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordEvaluation(_ context.Context, attemptID uuid.UUID, result *types.EvaluationResult) (*db.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok || a.Status != db.AttemptPending {
		return nil, fmt.Errorf("no pending attempt %s", attemptID)
	}
	now := time.Now().UTC()
	score, feedback := result.Score, result.Feedback
	a.Status, a.Score, a.Feedback, a.GradedAt = db.AttemptGraded, &score, &feedback, &now
	cp := *a
	return &cp, nil
}

func (f *fakeStore) RecordFailure(_ context.Context, attemptID uuid.UUID, cause string) (*db.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok || a.Status != db.AttemptPending {
		return nil, fmt.Errorf("no pending attempt %s", attemptID)
	}
	now := time.Now().UTC()
	a.Status, a.Error, a.GradedAt = db.AttemptFailed, &cause, &now
	cp := *a
	return &cp, nil
}

func (f *fakeStore) ListPendingAttempts(_ context.Context, _ int) ([]db.PendingAttempt, error) {
	return nil, nil
}

func (f *fakeStore) CreateQuestion(_ context.Context, authorID uuid.UUID, title, content, category string, tags []string) (*db.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := &db.Question{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		Category:  category,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}
	f.questions[q.ID] = q
	return q, nil
}

func (f *fakeStore) GetQuestion(_ context.Context, id uuid.UUID) (*db.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	cp.Comments = append([]db.Comment(nil), q.Comments...)
	return &cp, nil
}

func (f *fakeStore) AddComment(_ context.Context, questionID, authorID uuid.UUID, body string) (*db.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropBeforeWrite {
		delete(f.questions, questionID)
	}
	q, ok := f.questions[questionID]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", questionID, db.ErrNotFound)
	}
	c := db.Comment{
		ID:         uuid.New(),
		QuestionID: questionID,
		AuthorID:   authorID,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if u, ok := f.users[authorID]; ok {
		c.AuthorName = u.Name
	}
	q.Comments = append(q.Comments, c)
	return &c, nil
}

func (f *fakeStore) SaveAnswer(_ context.Context, questionID uuid.UUID, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropBeforeWrite {
		delete(f.questions, questionID)
	}
	q, ok := f.questions[questionID]
	if !ok {
		return fmt.Errorf("question %s: %w", questionID, db.ErrNotFound)
	}
	now := time.Now().UTC()
	q.Answer, q.AnsweredAt = &answer, &now
	return nil
}

// scriptedClient replays completions in order and records the prompts it saw
type scriptedClient struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []llm.Request
}

func (c *scriptedClient) Complete(_ context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *scriptedClient) Model() string { return "scripted" }
func (c *scriptedClient) Close() error  { return nil }

func (c *scriptedClient) reply(replies ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, replies...)
	c.err = nil
}

func (c *scriptedClient) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *scriptedClient) lastRequest() llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}
