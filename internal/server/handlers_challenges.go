package server

import (
	"bytes"
	"net/http"

	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/server/middleware"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// attemptResponse is a stored attempt plus, once graded, whether the score
// stayed within the requested bounds
type attemptResponse struct {
	*db.Attempt
	ScoreInRange *bool `json:"score_in_range,omitempty"`
}

func newAttemptResponse(a *db.Attempt) attemptResponse {
	resp := attemptResponse{Attempt: a}
	if a != nil && a.Score != nil {
		inRange := types.EvaluationResult{Score: *a.Score}.ScoreInRange()
		resp.ScoreInRange = &inRange
	}
	return resp
}

// handleCreateChallenge stores a challenge with its rubric
func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	authorID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	var req types.CreateChallengeRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if bytes.Equal(bytes.TrimSpace(req.Content), []byte("null")) {
		s.fail(w, r, &ErrValidation{Field: "content", Message: "rubric is required"})
		return
	}

	challenge, err := s.store.CreateChallenge(r.Context(), authorID, req.Title, types.ChallengeContent(req.Content))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, challenge)
}

// handleGetChallenge returns a challenge
func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, ok := s.loadChallenge(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, challenge)
}

// handleSubmitAttempt stores a response, grades it synchronously and returns the
// graded attempt. When grading fails the attempt is kept as failed and the
// response carries the pipeline error status.
func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	performerID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	challenge, ok := s.loadChallenge(w, r)
	if !ok {
		return
	}

	var req types.SubmitAttemptRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	attempt, err := s.store.CreateAttempt(r.Context(), challenge.ID, performerID, req.Response)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	outcome, err := s.grader.Grade(r.Context(), attempt.ID, challenge.Content, req.Response)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if outcome.Err != nil {
		status, code := classify(outcome.Err)
		s.logger.Warn("attempt not graded", "attempt_id", attempt.ID, "code", code, "error", outcome.Err)
		jsonResponse(w, status, map[string]any{
			"error":   code,
			"message": outcome.Err.Error(),
			"attempt": newAttemptResponse(outcome.Attempt),
		})
		return
	}

	jsonResponse(w, http.StatusCreated, newAttemptResponse(outcome.Attempt))
}

// handleListAttempts lists attempts on a challenge
func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	challenge, ok := s.loadChallenge(w, r)
	if !ok {
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	attempts, err := s.store.ListAttempts(r.Context(), challenge.ID, limit, offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]attemptResponse, len(attempts))
	for i := range attempts {
		out[i] = newAttemptResponse(&attempts[i])
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"attempts": out,
		"count":    len(out),
	})
}

// loadChallenge resolves the {id} path parameter, writing the error response itself
func (s *Server) loadChallenge(w http.ResponseWriter, r *http.Request) (*db.Challenge, bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}

	challenge, err := s.store.GetChallenge(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if challenge == nil {
		s.fail(w, r, &ErrNotFound{Resource: "challenge", ID: id.String()})
		return nil, false
	}
	return challenge, true
}
