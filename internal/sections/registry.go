// Package sections validates the data and files of application sections.
//
// Every section type in types.AllSectionTypes is handled by exactly one of
// three strategies: a structural schema (most sections), a file-presence
// check (photo, signature, final_documents) or the job's custom field
// definitions (custom).
package sections

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// MinYear is the earliest year accepted in year fields
const MinYear = 1950

// maxYearAhead is how far past the current year a year field may go
const maxYearAhead = 5

var (
	mobilePattern  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// Validator checks one section payload and returns its field errors in a
// stable order. A nil result means the payload is valid.
type Validator func(data json.RawMessage) []types.FieldError

// Registry maps structured section types to their validators
type Registry struct {
	validate   *validator.Validate
	validators map[types.SectionType]Validator
	now        func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the clock used for year range checks
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry builds the registry of all structured section schemas.
// It panics if a known section type has no validation strategy.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		validate:   validator.New(),
		validators: make(map[types.SectionType]Validator),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.validate.RegisterTagNameFunc(jsonFieldName)
	mustRegister(r.validate.RegisterValidation("mobile", isMobile))
	mustRegister(r.validate.RegisterValidation("pincode", isPincode))
	mustRegister(r.validate.RegisterValidation("accepted", isAccepted))
	mustRegister(r.validate.RegisterValidation("year", r.isYear))
	r.validate.RegisterStructValidation(validateExperienceEntry, ExperienceEntry{})
	r.validate.RegisterStructValidation(validateOrganizedProgram, OrganizedProgram{})
	r.validate.RegisterStructValidation(validateCreditPoints, CreditPointsSection{})

	r.register(types.SectionPersonal, func() any { return &PersonalSection{} })
	r.register(types.SectionEducation, func() any { return &EducationSection{} })
	r.register(types.SectionExperience, func() any { return &ExperienceSection{} })
	r.register(types.SectionPublicationsJournal, func() any { return &JournalSection{} })
	r.register(types.SectionPublicationsConference, func() any { return &ConferenceSection{} })
	r.register(types.SectionPhDSupervision, func() any { return &PhDSupervisionSection{} })
	r.register(types.SectionPatents, func() any { return &PatentSection{} })
	r.register(types.SectionPublicationsBooks, func() any { return &BookSection{} })
	r.register(types.SectionOrganizedPrograms, func() any { return &OrganizedProgramSection{} })
	r.register(types.SectionSponsoredProjects, func() any { return &SponsoredProjectSection{} })
	r.register(types.SectionConsultancyProjects, func() any { return &ConsultancyProjectSection{} })
	r.register(types.SectionSubjectsTaught, func() any { return &SubjectsTaughtSection{} })
	r.register(types.SectionCreditPoints, func() any { return &CreditPointsSection{} })
	r.register(types.SectionReferees, func() any { return &RefereesSection{} })
	r.register(types.SectionOtherInfo, func() any { return &OtherInfoSection{} })
	r.register(types.SectionDeclaration, func() any { return &DeclarationSection{} })

	for _, t := range types.AllSectionTypes {
		_, structured := r.validators[t]
		if !structured && !t.IsFileOnly() && t != types.SectionCustom {
			panic(fmt.Sprintf("sections: no validation strategy for section type %q", t))
		}
	}

	return r
}

// Lookup returns the structural validator for a section type.
// File-only sections and the custom section have none.
func (r *Registry) Lookup(t types.SectionType) (Validator, bool) {
	v, ok := r.validators[t]
	return v, ok
}

// MaxYear returns the latest year accepted in year fields
func (r *Registry) MaxYear() int {
	return r.now().Year() + maxYearAhead
}

func (r *Registry) register(t types.SectionType, newPayload func() any) {
	r.validators[t] = func(data json.RawMessage) []types.FieldError {
		payload := newPayload()
		if !types.IsEmptyPayload(data) {
			if fe := decodeStrict(data, payload); fe != nil {
				return []types.FieldError{*fe}
			}
		}
		return r.structErrors(payload)
	}
}

// unknownFieldPrefix starts the error encoding/json returns for a key
// rejected by DisallowUnknownFields
const unknownFieldPrefix = "json: unknown field "

// decodeStrict decodes a JSON object into payload and reports the first
// unknown key or type mismatch as a field error
func decodeStrict(data json.RawMessage, payload any) *types.FieldError {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &types.FieldError{Field: "data", Message: "must be a JSON object"}
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		if name, ok := strings.CutPrefix(err.Error(), unknownFieldPrefix); ok {
			return &types.FieldError{Field: strings.Trim(name, `"`), Message: "is not a recognised field"}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "data"
			}
			return &types.FieldError{Field: field, Message: "must be of type " + describeKind(typeErr.Type)}
		}
		return &types.FieldError{Field: "data", Message: "must be valid JSON"}
	}
	return nil
}

func (r *Registry) structErrors(payload any) []types.FieldError {
	err := r.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []types.FieldError{{Field: "data", Message: err.Error()}}
	}

	out := make([]types.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, types.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: r.message(fe),
		})
	}
	return out
}

// fieldPath strips the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func (r *Registry) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain exactly %s entries", fe.Param())
		}
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gtefield":
		return "must not be earlier than " + toSnake(fe.Param())
	case "email":
		return "must be a valid email address"
	case "mobile":
		return "must be a 10-digit mobile number starting with 6-9"
	case "pincode":
		return "must be a 6-digit pincode"
	case "year":
		return fmt.Sprintf("must be a 4-digit year between %d and %d", MinYear, r.MaxYear())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "accepted":
		return "must be accepted"
	case "isbn":
		return "must be a valid ISBN"
	case "issn":
		return "must be a valid ISSN"
	case "end_after_start":
		return "must not be before from_date"
	case "present_or_end":
		return "is required unless is_present_employer is true"
	case "total_matches":
		return "must equal the sum of the individual credit points"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("sections: register validation: %v", err))
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func isMobile(fl validator.FieldLevel) bool {
	return mobilePattern.MatchString(fl.Field().String())
}

func isPincode(fl validator.FieldLevel) bool {
	return pincodePattern.MatchString(fl.Field().String())
}

func isAccepted(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
}

func (r *Registry) isYear(fl validator.FieldLevel) bool {
	var year int64
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		year = fl.Field().Int()
	default:
		return false
	}
	return year >= MinYear && year <= int64(r.MaxYear())
}

const dateLayout = "2006-01-02"

func validateExperienceEntry(sl validator.StructLevel) {
	entry := sl.Current().Interface().(ExperienceEntry)
	if entry.IsPresentEmployer {
		return
	}
	if entry.ToDate == "" {
		sl.ReportError(entry.ToDate, "to_date", "ToDate", "present_or_end", "")
		return
	}
	from, fromErr := time.Parse(dateLayout, entry.FromDate)
	to, toErr := time.Parse(dateLayout, entry.ToDate)
	if fromErr != nil || toErr != nil {
		// malformed dates are reported by the datetime tag
		return
	}
	if to.Before(from) {
		sl.ReportError(entry.ToDate, "to_date", "ToDate", "end_after_start", "")
	}
}

func validateOrganizedProgram(sl validator.StructLevel) {
	program := sl.Current().Interface().(OrganizedProgram)
	from, fromErr := time.Parse(dateLayout, program.FromDate)
	to, toErr := time.Parse(dateLayout, program.ToDate)
	if fromErr != nil || toErr != nil {
		return
	}
	if to.Before(from) {
		sl.ReportError(program.ToDate, "to_date", "ToDate", "end_after_start", "")
	}
}

func validateCreditPoints(sl validator.StructLevel) {
	cp := sl.Current().Interface().(CreditPointsSection)
	if cp.Total <= 0 {
		return
	}
	sum := cp.ResearchPapers + cp.Books + cp.Projects + cp.Guidance + cp.Other
	diff := sum - cp.Total
	if diff > 0.01 || diff < -0.01 {
		sl.ReportError(cp.Total, "total", "Total", "total_matches", "")
	}
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

// toSnake converts a Go field name to its snake_case JSON form
func toSnake(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
