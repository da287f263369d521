package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the publication state of a job posting
type JobStatus string

// Job status constants
const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusPublished JobStatus = "published"
	JobStatusClosed    JobStatus = "closed"
	JobStatusArchived  JobStatus = "archived"
)

// IsValid reports whether s is a recognised job status
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusDraft, JobStatusPublished, JobStatusClosed, JobStatusArchived:
		return true
	default:
		return false
	}
}

// FieldType is the value type of an admin-defined custom field
type FieldType string

// Custom field types
const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeDropdown FieldType = "dropdown"
)

// SectionRequirement declares one section a job asks applicants to fill
type SectionRequirement struct {
	SectionType   SectionType `json:"section_type" validate:"required"`
	IsMandatory   bool        `json:"is_mandatory"`
	RequiresFile  bool        `json:"requires_file"`
	FileLabel     string      `json:"file_label,omitempty" validate:"required_if=RequiresFile true,max=200"`
	MaxFileSizeMB float64     `json:"max_file_size_mb,omitempty" validate:"gte=0,lte=50"`
	Instructions  string      `json:"instructions,omitempty" validate:"max=2000"`
}

// CustomFieldDefinition declares an ad hoc field for the custom section
type CustomFieldDefinition struct {
	FieldName   string    `json:"field_name" validate:"required,max=100"`
	FieldType   FieldType `json:"field_type" validate:"required,oneof=text number date dropdown"`
	Options     []string  `json:"options,omitempty" validate:"required_if=FieldType dropdown,dive,required"`
	IsMandatory bool      `json:"is_mandatory"`
	Section     string    `json:"section,omitempty"`
}

// Job represents a job posting that applications are made against
type Job struct {
	ID                   uuid.UUID               `json:"id"`
	Title                string                  `json:"title"`
	AdvertisementCode    string                  `json:"advertisement_code"`
	DepartmentName       string                  `json:"department_name"`
	Description          string                  `json:"description,omitempty"`
	Status               JobStatus               `json:"status"`
	ApplicationStartDate time.Time               `json:"application_start_date"`
	ApplicationEndDate   time.Time               `json:"application_end_date"`
	RequiredSections     []SectionRequirement    `json:"required_sections"`
	CustomFields         []CustomFieldDefinition `json:"custom_fields"`
	CreatedBy            *uuid.UUID              `json:"created_by,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

// IsOpen returns true if the job is published and its deadline has not passed
func (j *Job) IsOpen(now time.Time) bool {
	return j.Status == JobStatusPublished && !now.After(j.ApplicationEndDate)
}

// JobSnapshot is the immutable copy of a job's requirements taken when an
// application is created
type JobSnapshot struct {
	Title             string                  `json:"title"`
	AdvertisementCode string                  `json:"advertisement_code"`
	DepartmentName    string                  `json:"department_name"`
	RequiredSections  []SectionRequirement    `json:"required_sections"`
	CustomFields      []CustomFieldDefinition `json:"custom_fields"`
	CapturedAt        time.Time               `json:"captured_at"`
}

// Requirement returns the snapshot's requirement for a section type
func (s JobSnapshot) Requirement(t SectionType) (SectionRequirement, bool) {
	for _, req := range s.RequiredSections {
		if req.SectionType == t {
			return req, true
		}
	}
	return SectionRequirement{}, false
}

// JobFilter holds optional filters for listing jobs
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
