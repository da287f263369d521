package sections

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	r := newTestRegistry()
	mandatory := func(st types.SectionType) types.SectionRequirement {
		return types.SectionRequirement{SectionType: st, IsMandatory: true}
	}
	optional := func(st types.SectionType) types.SectionRequirement {
		return types.SectionRequirement{SectionType: st}
	}

	t.Run("unknown section type", func(t *testing.T) {
		errs := r.Validate("hobbies", json.RawMessage(`{"a":1}`), optional("hobbies"), nil)
		require.Len(t, errs, 1)
		assert.Equal(t, types.SectionType("hobbies"), errs[0].Section)
		assert.Equal(t, "unknown section type", errs[0].Message)
	})

	t.Run("optional empty payload reports required fields", func(t *testing.T) {
		for _, data := range []string{``, `null`, `{}`, `[]`} {
			errs := r.Validate(types.SectionReferees, json.RawMessage(data), optional(types.SectionReferees), nil)
			require.NotEmpty(t, errs, "payload %q", data)
			_, ok := findError(errs, "entries")
			assert.True(t, ok, "payload %q", data)

			_, ok = findError(r.Validate(types.SectionPersonal, json.RawMessage(data), optional(types.SectionPersonal), nil), "full_name")
			assert.True(t, ok, "payload %q", data)
		}
	})

	t.Run("optional and mandatory agree", func(t *testing.T) {
		for _, st := range []types.SectionType{types.SectionPersonal, types.SectionDeclaration, types.SectionReferees} {
			assert.Equal(t,
				r.Validate(st, json.RawMessage(`{}`), mandatory(st), nil),
				r.Validate(st, json.RawMessage(`{}`), optional(st), nil),
				"section %s", st)
		}
	})

	t.Run("optional section without required fields accepts empty payload", func(t *testing.T) {
		assert.Empty(t, r.Validate(types.SectionOtherInfo, json.RawMessage(`{}`), optional(types.SectionOtherInfo), nil))
	})

	t.Run("mandatory empty payload fails", func(t *testing.T) {
		errs := r.Validate(types.SectionPersonal, json.RawMessage(`{}`), mandatory(types.SectionPersonal), nil)
		require.NotEmpty(t, errs)
		for _, e := range errs {
			assert.Equal(t, types.SectionPersonal, e.Section)
		}
		_, ok := findError(errs, "full_name")
		assert.True(t, ok)
	})

	t.Run("valid structured payload", func(t *testing.T) {
		assert.Empty(t, r.Validate(types.SectionDeclaration, json.RawMessage(validDeclarationJSON), mandatory(types.SectionDeclaration), nil))
	})

	t.Run("file-only sections ignore data", func(t *testing.T) {
		for _, st := range []types.SectionType{types.SectionPhoto, types.SectionSignature, types.SectionFinalDocuments} {
			assert.Empty(t, r.Validate(st, json.RawMessage(`{"anything": true}`), mandatory(st), nil))
			assert.Empty(t, r.Validate(st, nil, mandatory(st), nil))
		}
	})

	t.Run("custom section uses job definitions", func(t *testing.T) {
		defs := []types.CustomFieldDefinition{
			{FieldName: "gate_score", FieldType: types.FieldTypeNumber, IsMandatory: true},
		}
		errs := r.Validate(types.SectionCustom, json.RawMessage(`{"gate_score": "high"}`), mandatory(types.SectionCustom), defs)
		require.Len(t, errs, 1)
		assert.Equal(t, types.SectionCustom, errs[0].Section)
		assert.Equal(t, "gate_score", errs[0].Field)
		assert.Equal(t, "must be a number", errs[0].Message)

		assert.Empty(t, r.Validate(types.SectionCustom, json.RawMessage(`{"gate_score": 712}`), mandatory(types.SectionCustom), defs))
	})

	t.Run("deterministic", func(t *testing.T) {
		data := json.RawMessage(`{"entries": [{"exam_type": "phd", "year_of_passing": 1900}]}`)
		first := r.Validate(types.SectionEducation, data, mandatory(types.SectionEducation), nil)
		second := r.Validate(types.SectionEducation, data, mandatory(types.SectionEducation), nil)
		require.NotEmpty(t, first)
		assert.Equal(t, first, second)
	})
}
