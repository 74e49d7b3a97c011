package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateQuestion stores a community question with its generated tags
func (db *DB) CreateQuestion(ctx context.Context, authorID uuid.UUID, title, content, category string, tags []string) (*Question, error) {
	if tags == nil {
		tags = []string{}
	}
	q := &Question{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
		Category: category,
		Tags:     tags,
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO questions (author_id, title, content, category, tags)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		authorID, title, content, category, tags,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

// GetQuestion retrieves a question with its comments. Returns nil, nil when not found.
func (db *DB) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	err := db.pool.QueryRow(ctx,
		`SELECT id, author_id, title, content, category, tags, answer, answered_at, created_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.AuthorID, &q.Title, &q.Content, &q.Category, &q.Tags, &q.Answer, &q.AnsweredAt, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	q.Comments, err = db.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// AddComment appends a comment to a question
func (db *DB) AddComment(ctx context.Context, questionID, authorID uuid.UUID, body string) (*Comment, error) {
	c := &Comment{QuestionID: questionID, AuthorID: authorID, Body: body}
	err := db.pool.QueryRow(ctx,
		`WITH inserted AS (
		     INSERT INTO comments (question_id, author_id, body)
		     VALUES ($1, $2, $3)
		     RETURNING id, author_id, created_at
		 )
		 SELECT i.id, i.created_at, COALESCE(u.name, '')
		 FROM inserted i LEFT JOIN users u ON u.id = i.author_id`,
		questionID, authorID, body,
	).Scan(&c.ID, &c.CreatedAt, &c.AuthorName)
	if isForeignKeyViolation(err) {
		return nil, notFound("question", questionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return c, nil
}

// ListComments returns every comment on a question in posting order, with author names
func (db *DB) ListComments(ctx context.Context, questionID uuid.UUID) ([]Comment, error) {
	return queryRows(ctx, db, buildCommentListQuery(questionID), "comments", func(rows pgx.Rows) (Comment, error) {
		var c Comment
		err := rows.Scan(&c.ID, &c.QuestionID, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt)
		return c, err
	})
}

// SaveAnswer stores the synthesized answer on a question
func (db *DB) SaveAnswer(ctx context.Context, questionID uuid.UUID, answer string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE questions SET answer = $1, answered_at = NOW() WHERE id = $2`, answer, questionID)
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("question", questionID)
	}
	return nil
}

func buildCommentListQuery(questionID uuid.UUID) sq.SelectBuilder {
	return psql.
		Select("c.id", "c.question_id", "c.author_id", "COALESCE(u.name, '')", "c.body", "c.created_at").
		From("comments c").
		LeftJoin("users u ON u.id = c.author_id").
		Where("c.question_id = ?", questionID).
		OrderBy("c.created_at ASC", "c.id ASC")
}
