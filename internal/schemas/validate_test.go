package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJobConfig = `{
	"title": "Assistant Professor, Computer Science",
	"advertisement_code": "ADV-2026-CS-01",
	"department_name": "Computer Science and Engineering",
	"application_start_date": "2026-01-01T00:00:00Z",
	"application_end_date": "2026-03-31T23:59:59Z",
	"required_sections": [
		{"section_type": "personal", "is_mandatory": true},
		{"section_type": "education", "is_mandatory": true, "requires_file": true, "file_label": "Degree certificates", "max_file_size_mb": 2},
		{"section_type": "custom", "is_mandatory": false}
	],
	"custom_fields": [
		{"field_name": "net_qualified", "field_type": "dropdown", "options": ["yes", "no"], "is_mandatory": true}
	]
}`

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type, got %T", err)
	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

func TestValidateJobConfig(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{
			name: "valid config",
			doc:  validJobConfig,
		},
		{
			name: "null custom fields",
			doc: `{"title": "T", "advertisement_code": "A", "application_start_date": "2026-01-01T00:00:00Z",
				"application_end_date": "2026-02-01T00:00:00Z", "required_sections": [{"section_type": "personal"}], "custom_fields": null}`,
		},
		{
			name:       "missing required sections",
			doc:        `{"title": "T", "advertisement_code": "A", "application_start_date": "2026-01-01T00:00:00Z", "application_end_date": "2026-02-01T00:00:00Z"}`,
			wantFields: []string{"(root)"},
		},
		{
			name: "unknown section type",
			doc: `{"title": "T", "advertisement_code": "A", "application_start_date": "2026-01-01T00:00:00Z",
				"application_end_date": "2026-02-01T00:00:00Z", "required_sections": [{"section_type": "hobbies"}]}`,
			wantFields: []string{"required_sections.0.section_type"},
		},
		{
			name: "file without label",
			doc: `{"title": "T", "advertisement_code": "A", "application_start_date": "2026-01-01T00:00:00Z",
				"application_end_date": "2026-02-01T00:00:00Z", "required_sections": [{"section_type": "education", "requires_file": true}]}`,
			wantFields: []string{"required_sections.0"},
		},
		{
			name: "dropdown without options",
			doc: `{"title": "T", "advertisement_code": "A", "application_start_date": "2026-01-01T00:00:00Z",
				"application_end_date": "2026-02-01T00:00:00Z", "required_sections": [{"section_type": "custom"}],
				"custom_fields": [{"field_name": "grade", "field_type": "dropdown"}]}`,
			wantFields: []string{"custom_fields.0"},
		},
		{
			name: "bad date",
			doc: `{"title": "T", "advertisement_code": "A", "application_start_date": "01/01/2026",
				"application_end_date": "2026-02-01T00:00:00Z", "required_sections": [{"section_type": "personal"}]}`,
			wantFields: []string{"application_start_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobConfig([]byte(tt.doc))
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, fieldsOf(t, err))
		})
	}
}

func TestValidateJobConfig_MalformedJSON(t *testing.T) {
	err := ValidateJobConfig([]byte("{ invalid json }"))
	require.Error(t, err)
	assert.Equal(t, []string{"(root)"}, fieldsOf(t, err))
}

func TestValidateJobConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(path, []byte(validJobConfig), 0o644))

	assert.NoError(t, ValidateJobConfigFile(path))

	err := ValidateJobConfigFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read job config")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{"name": 1}`)
	require.Error(t, err)
	assert.Equal(t, []string{"name"}, fieldsOf(t, err))

	err = ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)
	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "broken schema should produce SchemaLoadError")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "title", Message: "String length must be greater than or equal to 1"}}}
	assert.Contains(t, err.Error(), "1. title: String length must be greater than or equal to 1")
}
