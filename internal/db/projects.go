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

const (
	projectColumns = "id, owner_id, demand, summary, total_budget, status, created_at, updated_at"
	taskColumns    = "id, project_id, position, title, description, skills, estimated_time, difficulty, budget, status, created_at"
)

// CreateProjectWithTasks stores a demand and its breakdown in one transaction.
// Tasks keep the order of the breakdown through their position.
func (db *DB) CreateProjectWithTasks(ctx context.Context, ownerID uuid.UUID, demand string, breakdown *types.TaskBreakdown) (*Project, error) {
	if breakdown == nil {
		return nil, fmt.Errorf("breakdown is required")
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p := &Project{
		OwnerID:     ownerID,
		Demand:      demand,
		Summary:     breakdown.ProjectSummary,
		TotalBudget: breakdown.TotalBudget,
		Status:      ProjectOpen,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO projects (owner_id, demand, summary, total_budget, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		ownerID, demand, p.Summary, p.TotalBudget, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	p.Tasks = make([]Task, 0, len(breakdown.Tasks))
	for i, spec := range breakdown.Tasks {
		t := Task{
			ProjectID:     p.ID,
			Position:      i,
			Title:         spec.Title,
			Description:   spec.Description,
			Skills:        spec.Skills,
			EstimatedTime: spec.EstimatedTime,
			Difficulty:    spec.Difficulty,
			Budget:        spec.Budget,
			Status:        "open",
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO tasks (project_id, position, title, description, skills, estimated_time, difficulty, budget)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			p.ID, i, t.Title, t.Description, skillStrings(t.Skills), t.EstimatedTime, string(t.Difficulty), t.Budget,
		).Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert task %d: %w", i, err)
		}
		p.Tasks = append(p.Tasks, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit project: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project with its tasks. Returns nil, nil when not found.
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, err := scanProject(db.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	query := psql.Select(taskColumns).From("tasks").Where("project_id = ?", id).OrderBy("position ASC")
	p.Tasks, err = queryRows(ctx, db, query, "tasks", scanTask)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns projects matching the filters, newest first
func (db *DB) ListProjects(ctx context.Context, filters ProjectFilters) ([]Project, error) {
	return queryRows(ctx, db, buildProjectListQuery(filters), "projects", func(rows pgx.Rows) (Project, error) {
		return scanProject(rows)
	})
}

// ListOpenTasks returns open tasks matching the filters, newest first
func (db *DB) ListOpenTasks(ctx context.Context, filters TaskFilters) ([]Task, error) {
	return queryRows(ctx, db, buildTaskListQuery(filters), "tasks", scanTask)
}

// UpdateProjectStatus moves a project to a new lifecycle state
func (db *DB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status ProjectStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid project status: %q", status)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("project", id)
	}
	return nil
}

func buildProjectListQuery(f ProjectFilters) sq.SelectBuilder {
	limit, offset := normalizePage(f.Limit, f.Offset)
	q := psql.Select(projectColumns).From("projects")

	if f.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where(sq.Or{
			sq.ILike{"demand": pattern},
			sq.ILike{"summary": pattern},
		})
	}

	return q.OrderBy("created_at DESC").Limit(limit).Offset(offset)
}

func buildTaskListQuery(f TaskFilters) sq.SelectBuilder {
	limit, offset := normalizePage(f.Limit, f.Offset)
	q := psql.Select(taskColumns).From("tasks").Where(sq.Eq{"status": "open"})

	if f.Skill != "" {
		q = q.Where("? = ANY(skills)", string(f.Skill))
	}
	if f.Difficulty != "" {
		q = q.Where(sq.Eq{"difficulty": string(f.Difficulty)})
	}

	return q.OrderBy("created_at DESC", "position ASC").Limit(limit).Offset(offset)
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	var status string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Demand, &p.Summary, &p.TotalBudget, &status, &p.CreatedAt, &p.UpdatedAt)
	p.Status = ProjectStatus(status)
	return p, err
}

func scanTask(row pgx.Rows) (Task, error) {
	var t Task
	var skills []string
	var difficulty string
	err := row.Scan(&t.ID, &t.ProjectID, &t.Position, &t.Title, &t.Description, &skills,
		&t.EstimatedTime, &difficulty, &t.Budget, &t.Status, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	t.Difficulty = types.Difficulty(difficulty)
	t.Skills = make([]types.Skill, len(skills))
	for i, s := range skills {
		t.Skills[i] = types.Skill(s)
	}
	return t, nil
}

func skillStrings(skills []types.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = string(s)
	}
	return out
}
