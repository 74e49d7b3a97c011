package types

import "encoding/json"

// BreakdownRequest asks for a micro-task breakdown of a demand
type BreakdownRequest struct {
	Demand string `json:"demand" validate:"required"`
}

// TagRequest asks for tags for a piece of community content
type TagRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// CreateProjectRequest creates a project from a demand
type CreateProjectRequest struct {
	Demand string `json:"demand" validate:"required"`
}

// CreateChallengeRequest creates a challenge with its grading rubric
type CreateChallengeRequest struct {
	Title   string          `json:"title" validate:"required,max=200"`
	Content json.RawMessage `json:"content" validate:"required"`
}

// SubmitAttemptRequest submits a performer's response to a challenge
type SubmitAttemptRequest struct {
	Response string `json:"response" validate:"required"`
}

// CreateQuestionRequest posts a community question
type CreateQuestionRequest struct {
	Title    string `json:"title" validate:"required,max=300"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"max=50"`
}

// CreateCommentRequest adds a comment to a question
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

// UpdateProjectStatusRequest moves a project to a new lifecycle state
type UpdateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress completed cancelled"`
}
