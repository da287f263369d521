package recruitment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/recruitment/recruitmenttest"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)

const validPersonal = `{
	"title": "Dr",
	"full_name": "Asha Rao",
	"father_name": "Ravi Rao",
	"date_of_birth": "1985-04-12",
	"gender": "female",
	"category": "general",
	"nationality": "Indian",
	"mobile": "9876543210",
	"email": "asha@example.com",
	"correspondence_address": {"line1": "12 MG Road", "city": "Bengaluru", "state": "Karnataka", "pincode": "560001"},
	"permanent_address": {"line1": "12 MG Road", "city": "Bengaluru", "state": "Karnataka", "pincode": "560001"}
}`

const validDeclaration = `{"information_true": true, "accepts_terms": true, "no_criminal_record": true, "agrees_to_verification": true}`

const validEducation = `{"entries": [{"exam_type": "phd", "degree_name": "Ph.D.", "institution": "IISc", "board_university": "IISc", "year_of_passing": 2015, "score_type": "grade", "score": 1}]}`

var (
	pngBytes = padBytes([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"), 4096)
	pdfBytes = padBytes([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"), 8192)
)

func padBytes(header []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, header)
	return out
}

type harness struct {
	store   *memStore
	blobs   *memBlobs
	auditor *recordingAuditor
	svc     *Service

	applicant types.Principal
	admin     types.Principal
	reviewer  types.Principal
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:     newMemStore(),
		blobs:     newMemBlobs(),
		auditor:   &recordingAuditor{},
		applicant: types.Principal{ID: uuid.New(), Role: types.RoleApplicant},
		admin:     types.Principal{ID: uuid.New(), Role: types.RoleAdmin},
		reviewer:  types.Principal{ID: uuid.New(), Role: types.RoleReviewer},
	}
	all := append([]Option{WithClock(func() time.Time { return testNow }), WithAuditor(h.auditor)}, opts...)
	h.svc = NewService(h.store, h.blobs, all...)
	return h
}

// addJob stores a published job open around testNow
func (h *harness) addJob(t *testing.T, reqs ...types.SectionRequirement) *types.Job {
	t.Helper()
	job := &types.Job{
		ID:                   uuid.New(),
		Title:                "Assistant Professor",
		AdvertisementCode:    "ADV-" + uuid.NewString()[:8],
		DepartmentName:       "Physics",
		Status:               types.JobStatusPublished,
		ApplicationStartDate: testNow.AddDate(0, -1, 0),
		ApplicationEndDate:   testNow.AddDate(0, 0, 29),
		RequiredSections:     reqs,
		CreatedAt:            testNow.AddDate(0, -1, 0),
		UpdatedAt:            testNow.AddDate(0, -1, 0),
	}
	h.store.Jobs[job.ID] = recruitmenttest.Clone(job)
	return job
}

func (h *harness) createApp(t *testing.T, job *types.Job) *types.Application {
	t.Helper()
	app, err := h.svc.CreateApplication(ctx(), h.applicant, job.ID)
	require.NoError(t, err)
	return app
}

func (h *harness) stored(t *testing.T, id uuid.UUID) *types.Application {
	t.Helper()
	app := recruitmenttest.Clone(h.store.Apps[id])
	require.NotNil(t, app)
	return app
}

func mandatory(t types.SectionType) types.SectionRequirement {
	return types.SectionRequirement{SectionType: t, IsMandatory: true}
}

func withFile(req types.SectionRequirement, label string) types.SectionRequirement {
	req.RequiresFile = true
	req.FileLabel = label
	return req
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func ctx() context.Context {
	return context.Background()
}
