package server

import (
	"bufio"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/faculty-recruitment/internal/blobstore"
)

// sniffBytes is how much of a file is read to detect its type
const sniffBytes = 3072

// handleGetFile streams a stored upload to the applicant who owns it or to
// staff
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	key := r.PathValue("key")
	appID, ok := blobstore.ApplicationIDFromKey(key)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	// access follows the owning application
	if _, err := s.service.GetApplication(r.Context(), p, appID); err != nil {
		s.serviceError(w, r, err)
		return
	}

	rc, err := s.files.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "File not found")
			return
		}
		log.Printf("[files] failed to open %s: %v", key, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer func() { _ = rc.Close() }()

	// the detector only needs the head of the file
	br := bufio.NewReader(rc)
	head, err := br.Peek(sniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		log.Printf("[files] failed to read %s: %v", key, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	w.Header().Set("Content-Type", mimetype.Detect(head).String())
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, br); err != nil {
		log.Printf("[files] failed to write %s: %v", key, err)
	}
}
