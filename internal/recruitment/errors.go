package recruitment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// ValidationError carries field-level failures. It is never fatal: the
// caller renders every error at once.
type ValidationError struct {
	Message string
	Errors  []types.FieldError
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	if len(e.Errors) == 0 {
		return msg
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		field := fe.Field
		if fe.Section != "" {
			field = string(fe.Section) + "." + field
		}
		parts = append(parts, field+": "+fe.Message)
	}
	return msg + ": " + strings.Join(parts, "; ")
}

// NotFoundError indicates an application, job or section is absent
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError indicates a uniqueness or concurrent-modification conflict
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError indicates an ownership or role mismatch
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// StateError indicates an operation not permitted in the current state
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func newValidationError(message string, errs ...types.FieldError) *ValidationError {
	return &ValidationError{Message: message, Errors: errs}
}

var requestValidator = validator.New()

// ValidateRequest checks a request DTO's validate tags and reports failures
// as a ValidationError with snake_case field paths
func ValidateRequest(req any) error {
	if err := requestValidator.Struct(req); err != nil {
		return requestError(err)
	}
	return nil
}

// requestError converts a validator failure on a request DTO into a
// ValidationError
func requestError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return newValidationError("invalid request", types.FieldError{Field: "request", Message: err.Error()})
	}
	out := make([]types.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, types.FieldError{
			Field:   requestFieldPath(fe.Namespace()),
			Message: requestMessage(fe),
		})
	}
	return newValidationError("invalid request", out...)
}

func requestFieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	var sb strings.Builder
	for i, r := range namespace {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && isLowerOrDigit(namespace[i-1]) {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func requestMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		return "is required when " + requestFieldPath("x."+field) + " is " + value
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gtfield":
		return "must be after " + requestFieldPath("x."+fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func isLowerOrDigit(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
