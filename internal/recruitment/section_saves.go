package recruitment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/blobstore"
	"github.com/jonathan/faculty-recruitment/internal/sections"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// FileUpload is an uploaded section file
type FileUpload struct {
	FileName string
	Content  []byte
}

// requirementFor returns the snapshot requirement of a section, failing
// when the job never asked for it
func requirementFor(app *types.Application, t types.SectionType) (types.SectionRequirement, error) {
	req, ok := app.JobSnapshot.Requirement(t)
	if !ok {
		return types.SectionRequirement{}, newValidationError("section not allowed",
			types.FieldError{Section: t, Field: "section", Message: "is not part of this job's application form"})
	}
	return req, nil
}

func acceptsFile(t types.SectionType, req types.SectionRequirement) bool {
	return t.IsFileOnly() || req.RequiresFile
}

// SaveSectionData validates and stores the data of one section. On
// validation failure nothing is written and the field errors are returned.
// File and verification fields of the section are left untouched.
func (s *Service) SaveSectionData(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType, data json.RawMessage) (*types.SectionState, error) {
	app, err := s.loadOwnedApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	req, err := requirementFor(app, t)
	if err != nil {
		return nil, err
	}
	if app.IsLocked {
		return nil, &StateError{Message: "application is locked and can no longer be edited"}
	}

	if errs := s.registry.Validate(t, data, req, app.JobSnapshot.CustomFields); len(errs) > 0 {
		return nil, newValidationError("section data is invalid", errs...)
	}

	now := s.now().UTC()
	complete := true
	stored := data
	if stored == nil {
		stored = json.RawMessage("{}")
	}
	state, err := s.store.PatchSection(ctx, id, t, types.SectionPatch{
		Data:       stored,
		IsComplete: &complete,
		SavedAt:    &now,
	}, true, now)
	if err != nil {
		return nil, translateStoreError(err, "application", id, "save section")
	}

	s.emit(ctx, p, audit.ActionSectionSaved, "application", id.String(), map[string]any{"section": string(t)})
	return state, nil
}

// FileSizeLimit returns the largest file the section accepts, after the
// same ownership, lock and section checks SaveSectionFile applies, so a
// caller can bound an upload before reading it.
func (s *Service) FileSizeLimit(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType) (int64, error) {
	_, req, err := s.uploadTarget(ctx, p, id, t)
	if err != nil {
		return 0, err
	}
	return sections.FileRuleFor(t, req).MaxBytes, nil
}

// uploadTarget loads an application the caller may attach a file to and
// the requirement of the target section
func (s *Service) uploadTarget(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType) (*types.Application, types.SectionRequirement, error) {
	app, err := s.loadOwnedApplication(ctx, p, id)
	if err != nil {
		return nil, types.SectionRequirement{}, err
	}
	req, err := requirementFor(app, t)
	if err != nil {
		return nil, types.SectionRequirement{}, err
	}
	if app.IsLocked {
		return nil, types.SectionRequirement{}, &StateError{Message: "application is locked and can no longer be edited"}
	}
	if !acceptsFile(t, req) {
		return nil, types.SectionRequirement{}, newValidationError("file not allowed",
			types.FieldError{Section: t, Field: "file", Message: "this section does not accept file uploads"})
	}
	return app, req, nil
}

// SaveSectionFile checks, stores and records a section upload. The new
// file is stored and recorded before the superseded one is deleted, so a
// failed upload never loses the previous file.
func (s *Service) SaveSectionFile(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType, upload FileUpload) (*types.SectionState, error) {
	app, req, err := s.uploadTarget(ctx, p, id, t)
	if err != nil {
		return nil, err
	}

	contentType, errs := sections.CheckFile(t, req, upload.Content)
	if len(errs) > 0 {
		return nil, newValidationError("file is invalid", errs...)
	}
	if err := s.scanner.Scan(ctx, upload.Content); err != nil {
		return nil, newValidationError("file is invalid",
			types.FieldError{Section: t, Field: "file", Message: "rejected by content scan: " + err.Error()})
	}

	obj, err := s.blobs.Store(ctx, upload.Content, blobstore.Metadata{
		FileName:      upload.FileName,
		ContentType:   contentType,
		ApplicationID: id,
		Section:       string(t),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	previous, _ := app.Section(t)
	now := s.now().UTC()
	state, err := s.store.PatchSection(ctx, id, t, types.SectionPatch{
		FileURL:       &obj.URL,
		FileStorageID: &obj.ID,
		SavedAt:       &now,
	}, true, now)
	if err != nil {
		s.deleteBlobBestEffort(ctx, obj.ID)
		return nil, translateStoreError(err, "application", id, "record file")
	}
	if previous.FileStorageID != "" && previous.FileStorageID != obj.ID {
		s.deleteBlobBestEffort(ctx, previous.FileStorageID)
	}

	s.emit(ctx, p, audit.ActionSectionFileUploaded, "application", id.String(), map[string]any{
		"section":      string(t),
		"content_type": contentType,
		"size":         len(upload.Content),
	})
	return state, nil
}

// DeleteSectionFile removes the stored file of a section and clears its
// file reference
func (s *Service) DeleteSectionFile(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType) error {
	app, err := s.loadOwnedApplication(ctx, p, id)
	if err != nil {
		return err
	}
	if _, err := requirementFor(app, t); err != nil {
		return err
	}
	if app.IsLocked {
		return &StateError{Message: "application is locked and can no longer be edited"}
	}
	state, ok := app.Section(t)
	if !ok || !state.HasFile() {
		return &NotFoundError{Resource: "file for section " + string(t)}
	}

	if state.FileStorageID != "" {
		if err := s.blobs.Delete(ctx, state.FileStorageID); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}

	now := s.now().UTC()
	empty := ""
	if _, err := s.store.PatchSection(ctx, id, t, types.SectionPatch{
		FileURL:       &empty,
		FileStorageID: &empty,
		SavedAt:       &now,
	}, true, now); err != nil {
		return translateStoreError(err, "application", id, "clear file")
	}

	s.emit(ctx, p, audit.ActionSectionFileDeleted, "application", id.String(), map[string]any{"section": string(t)})
	return nil
}

// ValidateSection reports the validation state of one section without
// modifying anything
func (s *Service) ValidateSection(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType) (*types.SectionValidation, error) {
	app, err := s.loadApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	req, err := requirementFor(app, t)
	if err != nil {
		return nil, err
	}

	state, _ := app.Section(t)
	errs := s.registry.Validate(t, state.Data, req, app.JobSnapshot.CustomFields)
	if req.IsMandatory && acceptsFile(t, req) && !state.HasFile() {
		errs = append(errs, missingFileError(t))
	}
	if errs == nil {
		errs = []types.FieldError{}
	}
	return &types.SectionValidation{IsValid: len(errs) == 0, Errors: errs}, nil
}

func missingFileError(t types.SectionType) types.FieldError {
	field := "pdf"
	if t == types.SectionPhoto || t == types.SectionSignature {
		field = "file"
	}
	return types.FieldError{Section: t, Field: field, Message: "required"}
}
