package server

import (
	"net/http"

	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/server/middleware"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// handleCreateProject decomposes a demand and stores the project with its tasks
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	var req types.CreateProjectRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	breakdown, err := s.assistant.Decompose(r.Context(), req.Demand)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	project, err := s.store.CreateProjectWithTasks(r.Context(), ownerID, req.Demand, breakdown)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("project created", "project_id", project.ID, "tasks", len(project.Tasks))
	jsonResponse(w, http.StatusCreated, project)
}

// handleListProjects lists projects; owner=me restricts to the caller's own
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	filters := db.ProjectFilters{
		Status: db.ProjectStatus(q.Get("status")),
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	}

	if filters.Status != "" && !filters.Status.Valid() {
		s.fail(w, r, &ErrValidation{Field: "status", Message: "unknown project status"})
		return
	}

	switch owner := q.Get("owner"); owner {
	case "":
	case "me":
		filters.OwnerID, err = middleware.GetUserID(r)
		if err != nil {
			s.fail(w, r, errUnauthorized)
			return
		}
	default:
		s.fail(w, r, &ErrValidation{Field: "owner", Message: "only 'me' is supported"})
		return
	}

	projects, err := s.store.ListProjects(r.Context(), filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}

// handleGetProject returns a project with its tasks
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if project == nil {
		s.fail(w, r, &ErrNotFound{Resource: "project", ID: id.String()})
		return
	}
	jsonResponse(w, http.StatusOK, project)
}

// handleUpdateProjectStatus lets a project's owner move it through its lifecycle
func (s *Server) handleUpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req types.UpdateProjectStatusRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if project == nil {
		s.fail(w, r, &ErrNotFound{Resource: "project", ID: id.String()})
		return
	}
	if project.OwnerID != callerID {
		s.fail(w, r, &ErrForbidden{Reason: "only the project's owner can change its status"})
		return
	}

	status := db.ProjectStatus(req.Status)
	if err := s.store.UpdateProjectStatus(r.Context(), id, status); err != nil {
		s.fail(w, r, err)
		return
	}

	project.Status = status
	jsonResponse(w, http.StatusOK, project)
}

// handleListTasks lists open tasks, optionally by skill and difficulty
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	filters := db.TaskFilters{
		Skill:      types.Skill(q.Get("skill")),
		Difficulty: types.Difficulty(q.Get("difficulty")),
		Limit:      limit,
		Offset:     offset,
	}
	if filters.Skill != "" && !filters.Skill.Valid() {
		s.fail(w, r, &ErrValidation{Field: "skill", Message: "unknown skill"})
		return
	}
	if filters.Difficulty != "" && !filters.Difficulty.Valid() {
		s.fail(w, r, &ErrValidation{Field: "difficulty", Message: "unknown difficulty"})
		return
	}

	tasks, err := s.store.ListOpenTasks(r.Context(), filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}
