package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/faculty-recruitment/internal/recruitment"
)

// multipartOverhead is the allowance for multipart framing around an upload
const multipartOverhead = 64 << 10

// sectionDataRequest is the body of a section save
type sectionDataRequest struct {
	Data json.RawMessage `json:"data"`
}

// handleSaveSectionData validates and saves a section's data
func (s *Server) handleSaveSectionData(w http.ResponseWriter, r *http.Request) {
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
	var req sectionDataRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if len(req.Data) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "data is required")
		return
	}

	state, err := s.service.SaveSectionData(r.Context(), p, id, section, req.Data)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handleSaveSectionFile stores the multipart "file" upload of a section
func (s *Server) handleSaveSectionFile(w http.ResponseWriter, r *http.Request) {
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

	limit, err := s.service.FileSizeLimit(r.Context(), p, id, section)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Multipart field \"file\" is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("[upload] failed to close upload: %v", err)
		}
	}()

	// one byte past the limit is enough for the size rule to reject it
	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	state, err := s.service.SaveSectionFile(r.Context(), p, id, section, recruitment.FileUpload{
		FileName: header.Filename,
		Content:  content,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handleDeleteSectionFile removes a section's stored file
func (s *Server) handleDeleteSectionFile(w http.ResponseWriter, r *http.Request) {
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

	if err := s.service.DeleteSectionFile(r.Context(), p, id, section); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateSection validates a stored section without changing it
func (s *Server) handleValidateSection(w http.ResponseWriter, r *http.Request) {
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

	result, err := s.service.ValidateSection(r.Context(), p, id, section)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
