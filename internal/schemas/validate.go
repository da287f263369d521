// Package schemas provides JSON Schema validation of job configuration documents.
package schemas

import (
	"fmt"
	"os"
	"strings"
	"sync"

	schemafiles "github.com/jonathan/faculty-recruitment/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	jobConfigOnce   sync.Once
	jobConfigSchema *gojsonschema.Schema
	jobConfigErr    error
)

func loadJobConfigSchema() (*gojsonschema.Schema, error) {
	jobConfigOnce.Do(func() {
		jobConfigSchema, jobConfigErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemafiles.JobConfig))
		if jobConfigErr != nil {
			jobConfigErr = &SchemaLoadError{
				Path:    "job_config.schema.json",
				Message: "embedded schema does not compile",
				Cause:   jobConfigErr,
			}
		}
	})
	return jobConfigSchema, jobConfigErr
}

// ValidateJobConfig validates a job configuration document against the
// embedded job_config schema
func ValidateJobConfig(doc []byte) error {
	schema, err := loadJobConfigSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "document is not valid JSON: " + err.Error()}}}
	}
	return toValidationError(result)
}

// ValidateJobConfigFile validates a job configuration JSON file
func ValidateJobConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read job config %s: %w", path, err)
	}
	return ValidateJobConfig(data)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		// "if" wrappers duplicate the detailed "then" failure
		if desc.Type() == "condition_then" || desc.Type() == "condition_else" {
			continue
		}
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
