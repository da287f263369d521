package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an application
type Status string

// Application status constants
const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
	StatusSelected    Status = "selected"
	StatusWithdrawn   Status = "withdrawn"
)

// IsValid reports whether s is a recognised application status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusShortlisted,
		StatusRejected, StatusSelected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// PaymentStatus is the opaque payment state reported by the gateway webhook
type PaymentStatus string

// Payment status constants
const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid reports whether p is a recognised payment status
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// StatusHistoryEntry records one status change. Entries are never modified.
type StatusHistoryEntry struct {
	Status    Status    `json:"status"`
	ChangedBy uuid.UUID `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Remarks   string    `json:"remarks,omitempty"`
}

// Application is an applicant's submission against a job
type Application struct {
	ID                uuid.UUID                    `json:"id"`
	ApplicationNumber string                       `json:"application_number"`
	UserID            uuid.UUID                    `json:"user_id"`
	JobID             uuid.UUID                    `json:"job_id"`
	JobSnapshot       JobSnapshot                  `json:"job_snapshot"`
	Status            Status                       `json:"status"`
	SubmittedAt       *time.Time                   `json:"submitted_at,omitempty"`
	IsLocked          bool                         `json:"is_locked"`
	LockedAt          *time.Time                   `json:"locked_at,omitempty"`
	Sections          map[SectionType]SectionState `json:"sections"`
	StatusHistory     []StatusHistoryEntry         `json:"status_history"`
	ReviewNotes       string                       `json:"review_notes,omitempty"`
	ReviewedBy        *uuid.UUID                   `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time                   `json:"reviewed_at,omitempty"`
	PaymentStatus     PaymentStatus                `json:"payment_status"`
	Version           int64                        `json:"version"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
}

// Section returns the stored state of a section, if any
func (a *Application) Section(t SectionType) (SectionState, bool) {
	if a.Sections == nil {
		return SectionState{}, false
	}
	s, ok := a.Sections[t]
	return s, ok
}

// StatusUpdate is a compare-and-swap status change of one application.
// The store applies it only if the stored version equals ExpectedVersion,
// and appends Entry to the status history in the same transaction.
type StatusUpdate struct {
	ApplicationID   uuid.UUID
	ExpectedVersion int64
	Status          Status
	IsLocked        bool
	LockedAt        *time.Time
	SubmittedAt     *time.Time
	Entry           StatusHistoryEntry
}

// BulkStatusUpdate moves a batch of applications to one status
type BulkStatusUpdate struct {
	ApplicationIDs []uuid.UUID
	Status         Status
	ChangedBy      uuid.UUID
	ChangedAt      time.Time
	// Remarks is used verbatim when set; otherwise each entry gets
	// "Status changed from X to Y".
	Remarks string
}

// ApplicationFilter holds optional filters for listing applications
type ApplicationFilter struct {
	UserID        *uuid.UUID
	JobID         *uuid.UUID
	Status        Status
	PaymentStatus PaymentStatus
	Limit         int
	Offset        int
}
