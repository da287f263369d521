package recruitment

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	yes := true
	tests := []struct {
		name       string
		req        any
		wantFields []string
	}{
		{name: "valid create", req: &types.CreateApplicationRequest{JobID: uuid.New()}},
		{name: "missing job id", req: &types.CreateApplicationRequest{}, wantFields: []string{"job_id"}},
		{name: "missing status", req: &types.StatusUpdateRequest{}, wantFields: []string{"status"}},
		{name: "missing review notes", req: &types.ReviewNotesRequest{}, wantFields: []string{"review_notes"}},
		{name: "verify without flag", req: &types.VerifySectionRequest{Notes: "ok"}, wantFields: []string{"is_verified"}},
		{name: "verify", req: &types.VerifySectionRequest{IsVerified: &yes}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "got %T", err)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
				assert.Equal(t, "is required", fe.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "application is not ready for submission",
		Errors: []types.FieldError{
			{Section: types.SectionDeclaration, Field: "data", Message: "section is required"},
			{Field: "deadline", Message: "application deadline has passed"},
		},
	}
	assert.Equal(t,
		"application is not ready for submission: declaration.data: section is required; deadline: application deadline has passed",
		err.Error())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestRequestFieldPath(t *testing.T) {
	assert.Equal(t, "application_end_date", requestFieldPath("JobRequest.ApplicationEndDate"))
	assert.Equal(t, "required_sections[0].max_file_size_mb", requestFieldPath("JobRequest.RequiredSections[0].MaxFileSizeMB"))
	assert.Equal(t, "job_id", requestFieldPath("CreateApplicationRequest.JobID"))
}
