package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

const attemptColumns = "id, challenge_id, performer_id, response, status, score, feedback, error, created_at, graded_at"

// CreateChallenge stores a challenge with its rubric
func (db *DB) CreateChallenge(ctx context.Context, authorID uuid.UUID, title string, content types.ChallengeContent) (*Challenge, error) {
	c := &Challenge{AuthorID: authorID, Title: title, Content: content}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO challenges (author_id, title, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		authorID, title, []byte(content),
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return c, nil
}

// GetChallenge retrieves a challenge by ID. Returns nil, nil when not found.
func (db *DB) GetChallenge(ctx context.Context, id uuid.UUID) (*Challenge, error) {
	var c Challenge
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, author_id, title, content, created_at FROM challenges WHERE id = $1`, id,
	).Scan(&c.ID, &c.AuthorID, &c.Title, &content, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	c.Content = types.ChallengeContent(content)
	return &c, nil
}

// CreateAttempt records a pending response to a challenge
func (db *DB) CreateAttempt(ctx context.Context, challengeID, performerID uuid.UUID, response string) (*Attempt, error) {
	a := &Attempt{
		ChallengeID: challengeID,
		PerformerID: performerID,
		Response:    response,
		Status:      AttemptPending,
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO challenge_attempts (challenge_id, performer_id, response, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		challengeID, performerID, response, string(AttemptPending),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	return a, nil
}

// RecordEvaluation marks a pending attempt graded with the evaluation result
func (db *DB) RecordEvaluation(ctx context.Context, attemptID uuid.UUID, result *types.EvaluationResult) (*Attempt, error) {
	a, err := scanAttempt(db.pool.QueryRow(ctx,
		`UPDATE challenge_attempts
		 SET status = $1, score = $2, feedback = $3, error = NULL, graded_at = NOW()
		 WHERE id = $4 AND status = $5
		 RETURNING `+attemptColumns,
		string(AttemptGraded), result.Score, result.Feedback, attemptID, string(AttemptPending)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no pending attempt %s", attemptID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record evaluation: %w", err)
	}
	return &a, nil
}

// RecordFailure marks a pending attempt failed with the grading error text
func (db *DB) RecordFailure(ctx context.Context, attemptID uuid.UUID, cause string) (*Attempt, error) {
	a, err := scanAttempt(db.pool.QueryRow(ctx,
		`UPDATE challenge_attempts
		 SET status = $1, error = $2, graded_at = NOW()
		 WHERE id = $3 AND status = $4
		 RETURNING `+attemptColumns,
		string(AttemptFailed), cause, attemptID, string(AttemptPending)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no pending attempt %s", attemptID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record failure: %w", err)
	}
	return &a, nil
}

// ListAttempts returns the attempts on a challenge, newest first
func (db *DB) ListAttempts(ctx context.Context, challengeID uuid.UUID, limit, offset int) ([]Attempt, error) {
	return queryRows(ctx, db, buildAttemptListQuery(challengeID, limit, offset), "attempts",
		func(rows pgx.Rows) (Attempt, error) { return scanAttempt(rows) })
}

// ListPendingAttempts returns ungraded attempts with their rubric, oldest first
func (db *DB) ListPendingAttempts(ctx context.Context, limit int) ([]PendingAttempt, error) {
	query := psql.
		Select(
			"a.id", "a.challenge_id", "a.performer_id", "a.response", "a.status",
			"a.score", "a.feedback", "a.error", "a.created_at", "a.graded_at", "c.content",
		).
		From("challenge_attempts a").
		Join("challenges c ON c.id = a.challenge_id").
		Where(sq.Eq{"a.status": string(AttemptPending)}).
		OrderBy("a.created_at ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return queryRows(ctx, db, query, "pending attempts", func(rows pgx.Rows) (PendingAttempt, error) {
		var p PendingAttempt
		var status string
		var content []byte
		err := rows.Scan(&p.ID, &p.ChallengeID, &p.PerformerID, &p.Response, &status,
			&p.Score, &p.Feedback, &p.Error, &p.CreatedAt, &p.GradedAt, &content)
		p.Status = AttemptStatus(status)
		p.Content = types.ChallengeContent(content)
		return p, err
	})
}

func buildAttemptListQuery(challengeID uuid.UUID, limit, offset int) sq.SelectBuilder {
	l, o := normalizePage(limit, offset)
	return psql.Select(attemptColumns).
		From("challenge_attempts").
		Where("challenge_id = ?", challengeID).
		OrderBy("created_at DESC").
		Limit(l).
		Offset(o)
}

func scanAttempt(row pgx.Row) (Attempt, error) {
	var a Attempt
	var status string
	err := row.Scan(&a.ID, &a.ChallengeID, &a.PerformerID, &a.Response, &status,
		&a.Score, &a.Feedback, &a.Error, &a.CreatedAt, &a.GradedAt)
	a.Status = AttemptStatus(status)
	return a, err
}
