package server

import (
	"net/http"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// handleCreateJob creates a draft job posting
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req types.JobRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	job, err := s.service.CreateJob(r.Context(), p, &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleUpdateJob replaces a job's configuration
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.JobRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	job, err := s.service.UpdateJob(r.Context(), p, id, &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleSetJobStatus publishes, closes or archives a job
func (s *Server) handleSetJobStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.JobStatusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	job, err := s.service.SetJobStatus(r.Context(), p, id, req.Status)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleGetJob returns one job
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := s.service.GetJob(r.Context(), p, id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleListJobs lists jobs, optionally filtered by ?status=
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	limit, offset, err := pageParams(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.service.ListJobs(r.Context(), p, types.JobFilter{
		Status: types.JobStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}
