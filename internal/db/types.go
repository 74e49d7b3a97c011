package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// User represents an account
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         types.Role `json:"role"`
	PasswordHash string     `json:"-"` // Never serialize to JSON
	PasswordSet  bool       `json:"password_set"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

// Project status values
const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// Valid reports whether s is a known project status
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Project is a provider's demand together with its decomposition summary
type Project struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Demand      string        `json:"demand"`
	Summary     string        `json:"summary"`
	TotalBudget string        `json:"total_budget"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Tasks       []Task        `json:"tasks,omitempty"`
}

// Task is one stored micro-task of a project
type Task struct {
	ID            uuid.UUID        `json:"id"`
	ProjectID     uuid.UUID        `json:"project_id"`
	Position      int              `json:"position"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Skills        []types.Skill    `json:"skills"`
	EstimatedTime string           `json:"estimated_time"`
	Difficulty    types.Difficulty `json:"difficulty"`
	Budget        string           `json:"budget"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ProjectFilters holds optional filters for listing projects
type ProjectFilters struct {
	OwnerID uuid.UUID
	Status  ProjectStatus
	Query   string
	Limit   int
	Offset  int
}

// TaskFilters holds optional filters for listing open tasks
type TaskFilters struct {
	Skill      types.Skill
	Difficulty types.Difficulty
	Limit      int
	Offset     int
}

// Challenge is a skill exercise with an author-defined rubric
type Challenge struct {
	ID        uuid.UUID              `json:"id"`
	AuthorID  uuid.UUID              `json:"author_id"`
	Title     string                 `json:"title"`
	Content   types.ChallengeContent `json:"content"`
	CreatedAt time.Time              `json:"created_at"`
}

// AttemptStatus is the grading state of a challenge attempt
type AttemptStatus string

// Attempt status values
const (
	AttemptPending AttemptStatus = "pending"
	AttemptGraded  AttemptStatus = "graded"
	AttemptFailed  AttemptStatus = "failed"
)

// Attempt is a performer's response to a challenge and its grade
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	ChallengeID uuid.UUID     `json:"challenge_id"`
	PerformerID uuid.UUID     `json:"performer_id"`
	Response    string        `json:"response"`
	Status      AttemptStatus `json:"status"`
	Score       *float64      `json:"score,omitempty"`
	Feedback    *string       `json:"feedback,omitempty"`
	Error       *string       `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	GradedAt    *time.Time    `json:"graded_at,omitempty"`
}

// PendingAttempt is an ungraded attempt joined with its challenge rubric
type PendingAttempt struct {
	Attempt
	Content types.ChallengeContent
}

// Question is a community question with its generated tags and synthesized answer
type Question struct {
	ID         uuid.UUID  `json:"id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	Answer     *string    `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	Comments   []Comment  `json:"comments,omitempty"`
}

// Comment is a reply on a question
type Comment struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// PromptComment converts a stored comment into answer-synthesis input
func (c Comment) PromptComment() types.Comment {
	return types.Comment{AuthorName: c.AuthorName, Body: c.Body}
}
