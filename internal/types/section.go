// Package types provides type definitions for structured data used throughout the recruitment service.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionType identifies one part of an application form
type SectionType string

// Section types that a job can require
const (
	SectionPersonal               SectionType = "personal"
	SectionPhoto                  SectionType = "photo"
	SectionSignature              SectionType = "signature"
	SectionEducation              SectionType = "education"
	SectionExperience             SectionType = "experience"
	SectionPublicationsJournal    SectionType = "publications_journal"
	SectionPublicationsConference SectionType = "publications_conference"
	SectionPhDSupervision         SectionType = "phd_supervision"
	SectionPatents                SectionType = "patents"
	SectionPublicationsBooks      SectionType = "publications_books"
	SectionOrganizedPrograms      SectionType = "organized_programs"
	SectionSponsoredProjects      SectionType = "sponsored_projects"
	SectionConsultancyProjects    SectionType = "consultancy_projects"
	SectionSubjectsTaught         SectionType = "subjects_taught"
	SectionCreditPoints           SectionType = "credit_points"
	SectionReferees               SectionType = "referees"
	SectionOtherInfo              SectionType = "other_info"
	SectionFinalDocuments         SectionType = "final_documents"
	SectionDeclaration            SectionType = "declaration"
	SectionCustom                 SectionType = "custom"
)

// AllSectionTypes lists every known section type in form order
var AllSectionTypes = []SectionType{
	SectionPersonal,
	SectionPhoto,
	SectionSignature,
	SectionEducation,
	SectionExperience,
	SectionPublicationsJournal,
	SectionPublicationsConference,
	SectionPhDSupervision,
	SectionPatents,
	SectionPublicationsBooks,
	SectionOrganizedPrograms,
	SectionSponsoredProjects,
	SectionConsultancyProjects,
	SectionSubjectsTaught,
	SectionCreditPoints,
	SectionReferees,
	SectionOtherInfo,
	SectionFinalDocuments,
	SectionDeclaration,
	SectionCustom,
}

// IsKnown reports whether t is part of the section vocabulary
func (t SectionType) IsKnown() bool {
	for _, known := range AllSectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsFileOnly reports whether only file presence matters for t
func (t SectionType) IsFileOnly() bool {
	switch t {
	case SectionPhoto, SectionSignature, SectionFinalDocuments:
		return true
	default:
		return false
	}
}

// SectionState is the stored state of one section of an application
type SectionState struct {
	Data              json.RawMessage `json:"data,omitempty"`
	FileURL           string          `json:"file_url,omitempty"`
	FileStorageID     string          `json:"file_storage_id,omitempty"`
	SavedAt           *time.Time      `json:"saved_at,omitempty"`
	IsComplete        bool            `json:"is_complete"`
	IsVerified        bool            `json:"is_verified"`
	VerifiedBy        *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt        *time.Time      `json:"verified_at,omitempty"`
	VerificationNotes string          `json:"verification_notes,omitempty"`
}

// HasData returns true if the section carries a non-empty payload
func (s SectionState) HasData() bool {
	return !IsEmptyPayload(s.Data)
}

// HasFile returns true if a stored file is attached to the section
func (s SectionState) HasFile() bool {
	return s.FileURL != ""
}

// IsEmptyPayload treats absent, null, {} and [] payloads as empty
func IsEmptyPayload(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "{}", "[]":
		return true
	default:
		return false
	}
}

// SectionPatch describes a partial update of a SectionState.
// Nil fields are left untouched by the store.
type SectionPatch struct {
	Data              json.RawMessage
	IsComplete        *bool
	SavedAt           *time.Time
	FileURL           *string
	FileStorageID     *string
	IsVerified        *bool
	VerifiedBy        *uuid.UUID
	VerifiedAt        *time.Time
	VerificationNotes *string
}

// Fields returns the JSON keys set by the patch, matching SectionState's tags
func (p SectionPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Data != nil {
		fields["data"] = p.Data
	}
	if p.IsComplete != nil {
		fields["is_complete"] = *p.IsComplete
	}
	if p.SavedAt != nil {
		fields["saved_at"] = p.SavedAt.UTC()
	}
	if p.FileURL != nil {
		fields["file_url"] = *p.FileURL
	}
	if p.FileStorageID != nil {
		fields["file_storage_id"] = *p.FileStorageID
	}
	if p.IsVerified != nil {
		fields["is_verified"] = *p.IsVerified
	}
	if p.VerifiedBy != nil {
		fields["verified_by"] = *p.VerifiedBy
	}
	if p.VerifiedAt != nil {
		fields["verified_at"] = p.VerifiedAt.UTC()
	}
	if p.VerificationNotes != nil {
		fields["verification_notes"] = *p.VerificationNotes
	}
	return fields
}

// Apply returns s with the patch merged in
func (p SectionPatch) Apply(s SectionState) SectionState {
	if p.Data != nil {
		s.Data = append(json.RawMessage(nil), p.Data...)
	}
	if p.IsComplete != nil {
		s.IsComplete = *p.IsComplete
	}
	if p.SavedAt != nil {
		t := *p.SavedAt
		s.SavedAt = &t
	}
	if p.FileURL != nil {
		s.FileURL = *p.FileURL
	}
	if p.FileStorageID != nil {
		s.FileStorageID = *p.FileStorageID
	}
	if p.IsVerified != nil {
		s.IsVerified = *p.IsVerified
	}
	if p.VerifiedBy != nil {
		id := *p.VerifiedBy
		s.VerifiedBy = &id
	}
	if p.VerifiedAt != nil {
		t := *p.VerifiedAt
		s.VerifiedAt = &t
	}
	if p.VerificationNotes != nil {
		s.VerificationNotes = *p.VerificationNotes
	}
	return s
}

// FieldError is a single validation failure at a field path
type FieldError struct {
	Section SectionType `json:"section,omitempty"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
}
