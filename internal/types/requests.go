package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateApplicationRequest starts a new draft application for a job
type CreateApplicationRequest struct {
	JobID uuid.UUID `json:"job_id" validate:"required"`
}

// WithdrawRequest withdraws a submitted application
type WithdrawRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// StatusUpdateRequest is an admin status change of one application
type StatusUpdateRequest struct {
	Status  Status `json:"status" validate:"required"`
	Remarks string `json:"remarks,omitempty" validate:"max=1000"`
}

// BulkStatusUpdateRequest is an admin status change of many applications
type BulkStatusUpdateRequest struct {
	ApplicationIDs []uuid.UUID `json:"application_ids" validate:"required,min=1,max=500"`
	Status         Status      `json:"status" validate:"required"`
	Remarks        string      `json:"remarks,omitempty" validate:"max=1000"`
}

// ReviewNotesRequest sets reviewer notes on an application
type ReviewNotesRequest struct {
	ReviewNotes string `json:"review_notes" validate:"required,max=5000"`
}

// VerifySectionRequest sets the verification state of one section
type VerifySectionRequest struct {
	IsVerified *bool  `json:"is_verified" validate:"required"`
	Notes      string `json:"notes,omitempty" validate:"max=1000"`
}

// JobRequest creates or replaces a job posting's configuration
type JobRequest struct {
	Title                string                  `json:"title" validate:"required,max=300"`
	AdvertisementCode    string                  `json:"advertisement_code" validate:"required,max=100"`
	DepartmentName       string                  `json:"department_name" validate:"max=200"`
	Description          string                  `json:"description,omitempty" validate:"max=20000"`
	ApplicationStartDate time.Time               `json:"application_start_date" validate:"required"`
	ApplicationEndDate   time.Time               `json:"application_end_date" validate:"required,gtfield=ApplicationStartDate"`
	RequiredSections     []SectionRequirement    `json:"required_sections" validate:"required,min=1,dive"`
	CustomFields         []CustomFieldDefinition `json:"custom_fields,omitempty" validate:"dive"`
}

// JobStatusRequest changes a job's publication state
type JobStatusRequest struct {
	Status JobStatus `json:"status" validate:"required"`
}

// PaymentWebhookRequest is the payload posted by the payment gateway
type PaymentWebhookRequest struct {
	ApplicationID  uuid.UUID     `json:"application_id" validate:"required"`
	PaymentStatus  PaymentStatus `json:"payment_status" validate:"required"`
	TransactionRef string        `json:"transaction_ref,omitempty" validate:"max=200"`
}

// Validate validates the JobRequest using the validator.
func (r *JobRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the BulkStatusUpdateRequest using the validator.
func (r *BulkStatusUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// SubmissionCheck is the outcome of the submission gate
type SubmissionCheck struct {
	CanSubmit bool         `json:"can_submit"`
	Errors    []FieldError `json:"errors"`
}

// SectionValidation is the read-only validation outcome of one section
type SectionValidation struct {
	IsValid bool         `json:"is_valid"`
	Errors  []FieldError `json:"errors"`
}

// SubmitResult is returned by a successful submission
type SubmitResult struct {
	ApplicationNumber string    `json:"application_number"`
	SubmittedAt       time.Time `json:"submitted_at"`
	Status            Status    `json:"status"`
}

// WithdrawResult is returned by a successful withdrawal
type WithdrawResult struct {
	ApplicationNumber string `json:"application_number"`
	Status            Status `json:"status"`
}

// BulkUpdateResult reports how many applications a bulk update changed
type BulkUpdateResult struct {
	ModifiedCount  int `json:"modified_count"`
	RequestedCount int `json:"requested_count"`
}

// ApplicationList is a page of applications
type ApplicationList struct {
	Applications []Application `json:"applications"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// JobList is a page of jobs
type JobList struct {
	Jobs   []Job `json:"jobs"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
