package server

import (
	"net/http"

	"github.com/Kevin16883/Bridge-sub000/internal/types"
)

// handleBreakdown previews a decomposition without storing anything
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	var req types.BreakdownRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	breakdown, err := s.assistant.Decompose(r.Context(), req.Demand)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, breakdown)
}

// handleTags generates tags for a piece of community content
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	var req types.TagRequest
	if err := decodeAndValidate(w, r, s.validator, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	tags, err := s.assistant.GenerateTags(r.Context(), req.Title, req.Content, req.Category)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tags)
}
