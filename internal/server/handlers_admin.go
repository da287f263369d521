package server

import (
	"net/http"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// handleUpdateStatus changes the status of one application
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.StatusUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	app, err := s.service.UpdateStatus(r.Context(), p, id, req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleBulkUpdateStatus changes the status of many applications
func (s *Server) handleBulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req types.BulkStatusUpdateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.BulkUpdateStatus(r.Context(), p, req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleReviewNotes records reviewer notes
func (s *Server) handleReviewNotes(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.ReviewNotesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	app, err := s.service.AddReviewNotes(r.Context(), p, id, req.ReviewNotes)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleVerifySection marks a section's documents verified or not
func (s *Server) handleVerifySection(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	section, ok := s.pathSection(w, r)
	if !ok {
		return
	}
	var req types.VerifySectionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	state, err := s.service.VerifySection(r.Context(), p, id, section, req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}
