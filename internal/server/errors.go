// Package server provides the HTTP REST API for faculty recruitment.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error  string             `json:"error"`
	Errors []types.FieldError `json:"errors,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *recruitment.ValidationError
		notFoundErr   *recruitment.NotFoundError
		conflictErr   *recruitment.ConflictError
		forbiddenErr  *recruitment.ForbiddenError
		stateErr      *recruitment.StateError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.As(err, &stateErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorBody renders an error for the client. System errors are opaque.
func errorBody(err error) ErrorResponse {
	var validationErr *recruitment.ValidationError
	if errors.As(err, &validationErr) {
		msg := validationErr.Message
		if msg == "" {
			msg = "validation failed"
		}
		return ErrorResponse{Error: msg, Errors: validationErr.Errors}
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return ErrorResponse{Error: "internal server error"}
	}
	return ErrorResponse{Error: err.Error()}
}
