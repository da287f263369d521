package sections

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestValidateCustomFields(t *testing.T) {
	defs := []types.CustomFieldDefinition{
		{FieldName: "net_qualified", FieldType: types.FieldTypeDropdown, Options: []string{"yes", "no"}, IsMandatory: true},
		{FieldName: "gate_score", FieldType: types.FieldTypeNumber},
		{FieldName: "net_date", FieldType: types.FieldTypeDate},
		{FieldName: "specialisation", FieldType: types.FieldTypeText, IsMandatory: true},
	}

	tests := []struct {
		name string
		data string
		want []types.FieldError
	}{
		{
			name: "all valid",
			data: `{"net_qualified": "yes", "gate_score": 712.5, "net_date": "2021-12-01", "specialisation": "VLSI"}`,
		},
		{
			name: "numeric string and RFC3339 date accepted",
			data: `{"net_qualified": "no", "gate_score": "640", "net_date": "2021-12-01T00:00:00Z", "specialisation": "VLSI"}`,
		},
		{
			name: "optional fields may be omitted",
			data: `{"net_qualified": "no", "specialisation": "VLSI"}`,
		},
		{
			name: "missing mandatory fields",
			data: `{}`,
			want: []types.FieldError{
				{Field: "net_qualified", Message: "is required"},
				{Field: "specialisation", Message: "is required"},
			},
		},
		{
			name: "blank string counts as missing",
			data: `{"net_qualified": "yes", "specialisation": "   "}`,
			want: []types.FieldError{
				{Field: "specialisation", Message: "is required"},
			},
		},
		{
			name: "wrong types",
			data: `{"net_qualified": "maybe", "gate_score": true, "net_date": "01-12-2021", "specialisation": 7}`,
			want: []types.FieldError{
				{Field: "net_qualified", Message: "must be one of: yes, no"},
				{Field: "gate_score", Message: "must be a number"},
				{Field: "net_date", Message: "must be a valid date"},
				{Field: "specialisation", Message: "must be text"},
			},
		},
		{
			name: "not an object",
			data: `[1, 2]`,
			want: []types.FieldError{
				{Field: "data", Message: "must be a JSON object keyed by field name"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCustomFields(json.RawMessage(tt.data), defs)
			assert.Equal(t, tt.want, got)
		})
	}
}
