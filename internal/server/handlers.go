package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/server/middleware"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// maxJSONBodyBytes bounds every JSON request body
const maxJSONBodyBytes = 1 << 20

// principal returns the authenticated caller, writing 401 when absent
func (s *Server) principal(w http.ResponseWriter, r *http.Request) (types.Principal, bool) {
	p, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return types.Principal{}, false
	}
	return p, true
}

// pathUUID parses a UUID path value, writing 400 when malformed
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// pathSection parses the section path value, writing 400 for unknown types
func (s *Server) pathSection(w http.ResponseWriter, r *http.Request) (types.SectionType, bool) {
	t := types.SectionType(r.PathValue("section"))
	if !t.IsKnown() {
		s.jsonResponse(w, http.StatusBadRequest, ErrorResponse{
			Error:  "unknown section type",
			Errors: []types.FieldError{{Field: "section", Message: "unknown section type " + string(t)}},
		})
		return "", false
	}
	return t, true
}

// decodeJSON decodes a bounded JSON body and runs the request's validate
// tags, writing 400 on failure
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !s.decodeBody(w, r, dst) {
		return false
	}
	if err := recruitment.ValidateRequest(dst); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, errorBody(err))
		return false
	}
	return true
}

// decodeBody decodes a bounded JSON body without validation
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// readBody reads a bounded raw body
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return data, true
}

// pageParams parses limit and offset query parameters
func pageParams(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("invalid limit")
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset")
		}
	}
	return limit, offset, nil
}

// queryUUID parses an optional UUID query parameter
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &id, nil
}
