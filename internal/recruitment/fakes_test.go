package recruitment

import (
	"errors"

	"github.com/jonathan/faculty-recruitment/internal/recruitment/recruitmenttest"
)

type (
	memStore         = recruitmenttest.MemStore
	memBlobs         = recruitmenttest.MemBlobs
	recordingAuditor = recruitmenttest.RecordingAuditor
)

var (
	newMemStore = recruitmenttest.NewMemStore
	newMemBlobs = recruitmenttest.NewMemBlobs
)

var _ Store = (*memStore)(nil)

var errBoom = errors.New("boom")
