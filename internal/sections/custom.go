package sections

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// ValidateCustomFields checks a custom section payload (an object keyed by
// field name) against the job's custom field definitions, in definition order
func ValidateCustomFields(data json.RawMessage, defs []types.CustomFieldDefinition) []types.FieldError {
	values := map[string]any{}
	if !types.IsEmptyPayload(data) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return []types.FieldError{{Field: "data", Message: "must be a JSON object keyed by field name"}}
		}
	}

	var errs []types.FieldError
	for _, def := range defs {
		value, present := values[def.FieldName]
		if !present || isBlank(value) {
			if def.IsMandatory {
				errs = append(errs, types.FieldError{Field: def.FieldName, Message: "is required"})
			}
			continue
		}
		if msg := checkCustomValue(def, value); msg != "" {
			errs = append(errs, types.FieldError{Field: def.FieldName, Message: msg})
		}
	}
	return errs
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func checkCustomValue(def types.CustomFieldDefinition, value any) string {
	switch def.FieldType {
	case types.FieldTypeText:
		if _, ok := value.(string); !ok {
			return "must be text"
		}
	case types.FieldTypeNumber:
		switch v := value.(type) {
		case json.Number:
			if _, err := v.Float64(); err != nil {
				return "must be a number"
			}
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return "must be a number"
			}
		default:
			return "must be a number"
		}
	case types.FieldTypeDate:
		s, ok := value.(string)
		if !ok || !isDate(s) {
			return "must be a valid date"
		}
	case types.FieldTypeDropdown:
		s, ok := value.(string)
		if !ok || !contains(def.Options, s) {
			return "must be one of: " + strings.Join(def.Options, ", ")
		}
	default:
		return "has unsupported field type " + string(def.FieldType)
	}
	return ""
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(dateLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
