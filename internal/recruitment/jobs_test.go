package recruitment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobRequest() *types.JobRequest {
	return &types.JobRequest{
		Title:                "Assistant Professor, Mathematics",
		AdvertisementCode:    "ADV-2026-MA-01",
		DepartmentName:       "Mathematics",
		ApplicationStartDate: testNow,
		ApplicationEndDate:   testNow.AddDate(0, 1, 0),
		RequiredSections: []types.SectionRequirement{
			mandatory(types.SectionPersonal),
			withFile(mandatory(types.SectionEducation), "Degree certificates"),
			{SectionType: types.SectionCustom},
		},
		CustomFields: []types.CustomFieldDefinition{
			{FieldName: "net_qualified", FieldType: types.FieldTypeDropdown, Options: []string{"yes", "no"}, IsMandatory: true},
		},
	}
}

func TestValidateJobRequest(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *types.JobRequest)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(r *types.JobRequest) {},
		},
		{
			name:       "missing title",
			mutate:     func(r *types.JobRequest) { r.Title = "" },
			wantFields: []string{"title"},
		},
		{
			name:       "end before start",
			mutate:     func(r *types.JobRequest) { r.ApplicationEndDate = r.ApplicationStartDate.Add(-time.Hour) },
			wantFields: []string{"application_end_date"},
		},
		{
			name: "unknown section type",
			mutate: func(r *types.JobRequest) {
				r.RequiredSections = append(r.RequiredSections, types.SectionRequirement{SectionType: "hobbies"})
			},
			wantFields: []string{"required_sections.3.section_type"},
		},
		{
			name: "duplicate section",
			mutate: func(r *types.JobRequest) {
				r.RequiredSections = append(r.RequiredSections, mandatory(types.SectionPersonal))
			},
			wantFields: []string{"required_sections[3].section_type"},
		},
		{
			name: "duplicate custom field",
			mutate: func(r *types.JobRequest) {
				r.CustomFields = append(r.CustomFields, types.CustomFieldDefinition{FieldName: "net_qualified", FieldType: types.FieldTypeText})
			},
			wantFields: []string{"custom_fields[1].field_name"},
		},
		{
			name: "custom fields without custom section",
			mutate: func(r *types.JobRequest) {
				r.RequiredSections = r.RequiredSections[:2]
			},
			wantFields: []string{"custom_fields"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jobRequest()
			tt.mutate(req)
			err := ValidateJobRequest(req)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			fields := make([]string, 0, len(v.Errors))
			for _, fe := range v.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestCreateJob(t *testing.T) {
	h := newHarness(t)

	job, err := h.svc.CreateJob(ctx(), h.admin, jobRequest())
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusDraft, job.Status)
	require.NotNil(t, job.CreatedBy)
	assert.Equal(t, h.admin.ID, *job.CreatedBy)
	assert.Len(t, job.RequiredSections, 3)
	assert.Contains(t, h.store.Jobs, job.ID)

	_, err = h.svc.CreateJob(ctx(), h.admin, jobRequest())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "ADV-2026-MA-01")

	_, err = h.svc.CreateJob(ctx(), h.reviewer, jobRequest())
	var forbidden *ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestCreateJob_FileSizeCeiling(t *testing.T) {
	h := newHarness(t, WithMaxFileSize(10<<20))

	req := jobRequest()
	req.RequiredSections[1].MaxFileSizeMB = 12
	_, err := h.svc.CreateJob(ctx(), h.admin, req)
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "required_sections[1].max_file_size_mb", v.Errors[0].Field)
	assert.Equal(t, "must not exceed the upload limit of 10MB", v.Errors[0].Message)

	req.RequiredSections[1].MaxFileSizeMB = 10
	_, err = h.svc.CreateJob(ctx(), h.admin, req)
	require.NoError(t, err)

	// without a ceiling only the request rules apply
	unbounded := newHarness(t)
	req = jobRequest()
	req.RequiredSections[1].MaxFileSizeMB = 40
	_, err = unbounded.svc.CreateJob(ctx(), unbounded.admin, req)
	require.NoError(t, err)
}

func TestJobLifecycle(t *testing.T) {
	h := newHarness(t)
	job, err := h.svc.CreateJob(ctx(), h.admin, jobRequest())
	require.NoError(t, err)

	// drafts are invisible to applicants and cannot be applied to
	_, err = h.svc.GetJob(ctx(), h.applicant, job.ID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	_, err = h.svc.CreateApplication(ctx(), h.applicant, job.ID)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)

	published, err := h.svc.SetJobStatus(ctx(), h.admin, job.ID, types.JobStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusPublished, published.Status)

	_, err = h.svc.GetJob(ctx(), h.applicant, job.ID)
	require.NoError(t, err)
	app := h.createApp(t, job)

	// edits after publication do not reach existing snapshots
	req := jobRequest()
	req.RequiredSections = append(req.RequiredSections, mandatory(types.SectionReferees))
	updated, err := h.svc.UpdateJob(ctx(), h.admin, job.ID, req)
	require.NoError(t, err)
	assert.Len(t, updated.RequiredSections, 4)
	assert.Len(t, h.stored(t, app.ID).JobSnapshot.RequiredSections, 3)

	_, err = h.svc.SetJobStatus(ctx(), h.admin, job.ID, types.JobStatusDraft)
	require.ErrorAs(t, err, &stateErr)

	_, err = h.svc.SetJobStatus(ctx(), h.admin, job.ID, types.JobStatusArchived)
	require.NoError(t, err)
	_, err = h.svc.UpdateJob(ctx(), h.admin, job.ID, jobRequest())
	require.ErrorAs(t, err, &stateErr)

	assert.Equal(t, []string{
		audit.ActionJobCreated,
		audit.ActionJobStatusChanged,
		audit.ActionApplicationCreated,
		audit.ActionJobUpdated,
		audit.ActionJobStatusChanged,
	}, h.auditor.Actions())
}

func TestCanTransitionJob(t *testing.T) {
	tests := []struct {
		from, to types.JobStatus
		want     bool
	}{
		{types.JobStatusDraft, types.JobStatusPublished, true},
		{types.JobStatusPublished, types.JobStatusClosed, true},
		{types.JobStatusClosed, types.JobStatusPublished, true},
		{types.JobStatusClosed, types.JobStatusArchived, true},
		{types.JobStatusPublished, types.JobStatusDraft, false},
		{types.JobStatusArchived, types.JobStatusPublished, false},
		{types.JobStatusDraft, types.JobStatusClosed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionJob(tt.from, tt.to))
		})
	}
}

func TestListJobs(t *testing.T) {
	h := newHarness(t)
	h.addJob(t, mandatory(types.SectionPersonal))
	_, err := h.svc.CreateJob(ctx(), h.admin, jobRequest())
	require.NoError(t, err)

	list, err := h.svc.ListJobs(ctx(), h.applicant, types.JobFilter{Status: types.JobStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, types.JobStatusPublished, list.Jobs[0].Status)

	list, err = h.svc.ListJobs(ctx(), h.admin, types.JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	_, err = h.svc.ListJobs(ctx(), h.admin, types.JobFilter{Status: "open"})
	var v *ValidationError
	assert.ErrorAs(t, err, &v)

	_, err = h.svc.SetJobStatus(ctx(), h.admin, uuid.New(), types.JobStatusPublished)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
