package server

import (
	"net/http"

	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/server/middleware"
	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// handleCreateQuestion tags and stores a community question
func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	authorID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	var req types.CreateQuestionRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	tagSet, err := s.assistant.GenerateTags(r.Context(), req.Title, req.Content, req.Category)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	question, err := s.store.CreateQuestion(r.Context(), authorID, req.Title, req.Content, req.Category, tagSet.Tags)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, question)
}

// handleGetQuestion returns a question with its comments
func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	question, ok := s.loadQuestion(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, question)
}

// handleAddComment adds a comment to a question
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	question, ok := s.loadQuestion(w, r)
	if !ok {
		return
	}

	var req types.CreateCommentRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	comment, err := s.store.AddComment(r.Context(), question.ID, authorID, req.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, comment)
}

// handleSynthesizeAnswer combines the question's comments into one answer and
// stores it. Only the question's author may trigger it.
func (s *Server) handleSynthesizeAnswer(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.GetUserID(r)
	if err != nil {
		s.fail(w, r, errUnauthorized)
		return
	}

	question, ok := s.loadQuestion(w, r)
	if !ok {
		return
	}
	if question.AuthorID != callerID {
		s.fail(w, r, &ErrForbidden{Reason: "only the question's author can request an answer"})
		return
	}

	comments := make([]types.Comment, len(question.Comments))
	for i, c := range question.Comments {
		comments[i] = c.PromptComment()
	}

	answer, err := s.assistant.SynthesizeAnswer(r.Context(), question.Title, question.Content, comments)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.store.SaveAnswer(r.Context(), question.ID, answer.Answer); err != nil {
		s.fail(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"question_id":   question.ID,
		"answer":        answer.Answer,
		"comment_count": len(comments),
	})
}

// loadQuestion resolves the {id} path parameter, writing the error response itself
func (s *Server) loadQuestion(w http.ResponseWriter, r *http.Request) (*db.Question, bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}

	question, err := s.store.GetQuestion(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if question == nil {
		s.fail(w, r, &ErrNotFound{Resource: "question", ID: id.String()})
		return nil, false
	}
	return question, true
}
