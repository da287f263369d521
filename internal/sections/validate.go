package sections

import (
	"encoding/json"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// Validate checks a section's data against its schema.
//
// Structured sections use the registry's schema exclusively, file-only
// sections always pass (file presence is checked by the submission gate)
// and the custom section is checked against the job's custom field
// definitions. Mandatory and optional sections are checked alike, so an
// empty payload reports every schema-required field. Unknown section types
// are rejected. Validate performs no I/O.
func (r *Registry) Validate(t types.SectionType, data json.RawMessage, req types.SectionRequirement, customFields []types.CustomFieldDefinition) []types.FieldError {
	if !t.IsKnown() {
		return []types.FieldError{{Section: t, Field: "section", Message: "unknown section type"}}
	}
	var errs []types.FieldError
	if v, ok := r.Lookup(t); ok {
		errs = v(data)
	} else if t.IsFileOnly() {
		return nil
	} else if t == types.SectionCustom {
		errs = ValidateCustomFields(data, customFields)
	}

	for i := range errs {
		errs[i].Section = t
	}
	return errs
}
