package server

import (
	"net/http"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// handleCreateApplication starts a draft application for a job
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req types.CreateApplicationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	app, err := s.service.CreateApplication(r.Context(), p, req.JobID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleGetApplication returns one application
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	app, err := s.service.GetApplication(r.Context(), p, id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleListApplications lists applications. Staff may filter by
// ?user_id=, ?job_id=, ?status= and ?payment_status=.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	limit, offset, err := pageParams(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := queryUUID(r, "user_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := queryUUID(r, "job_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	list, err := s.service.ListApplications(r.Context(), p, types.ApplicationFilter{
		UserID:        userID,
		JobID:         jobID,
		Status:        types.Status(q.Get("status")),
		PaymentStatus: types.PaymentStatus(q.Get("payment_status")),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleDeleteApplication removes a draft application
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.service.DeleteApplication(r.Context(), p, id); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateApplication runs the submission gate without submitting
func (s *Server) handleValidateApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	check, err := s.service.CanSubmit(r.Context(), p, id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, check)
}

// handleSubmitApplication submits a draft application
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.service.Submit(r.Context(), p, id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleWithdrawApplication withdraws a submitted application. The body is
// optional.
func (s *Server) handleWithdrawApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.WithdrawRequest
	if r.ContentLength != 0 && !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.service.Withdraw(r.Context(), p, id, req.Reason)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
