package recruitment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/jonathan/faculty-recruitment/internal/schemas"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// jobTransitions lists the allowed publication state changes
var jobTransitions = map[types.JobStatus][]types.JobStatus{
	types.JobStatusDraft:     {types.JobStatusPublished, types.JobStatusArchived},
	types.JobStatusPublished: {types.JobStatusClosed, types.JobStatusArchived},
	types.JobStatusClosed:    {types.JobStatusPublished, types.JobStatusArchived},
	types.JobStatusArchived:  nil,
}

// CanTransitionJob reports whether a job may move from one status to another
func CanTransitionJob(from, to types.JobStatus) bool {
	for _, allowed := range jobTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateJobRequest checks a job configuration at authoring time: the
// request's field rules, the job_config JSON Schema and the cross-entry
// rules neither can express.
func ValidateJobRequest(req *types.JobRequest) error {
	if err := req.Validate(); err != nil {
		return requestError(err)
	}

	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal job config: %w", err)
	}
	if err := schemas.ValidateJobConfig(doc); err != nil {
		var schemaErr *schemas.ValidationError
		if !errors.As(err, &schemaErr) {
			return fmt.Errorf("failed to validate job config: %w", err)
		}
		out := make([]types.FieldError, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			out = append(out, types.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return newValidationError("job configuration does not match schema", out...)
	}

	var errs []types.FieldError
	seen := make(map[types.SectionType]bool)
	hasCustom := false
	for i, sr := range req.RequiredSections {
		field := fmt.Sprintf("required_sections[%d].section_type", i)
		if !sr.SectionType.IsKnown() {
			errs = append(errs, types.FieldError{Field: field, Message: "unknown section type"})
			continue
		}
		if seen[sr.SectionType] {
			errs = append(errs, types.FieldError{Field: field, Message: "section " + string(sr.SectionType) + " is listed more than once"})
		}
		seen[sr.SectionType] = true
		if sr.SectionType == types.SectionCustom {
			hasCustom = true
		}
	}

	names := make(map[string]bool)
	for i, def := range req.CustomFields {
		if names[def.FieldName] {
			errs = append(errs, types.FieldError{Field: fmt.Sprintf("custom_fields[%d].field_name", i), Message: "duplicate field name " + def.FieldName})
		}
		names[def.FieldName] = true
	}
	if len(req.CustomFields) > 0 && !hasCustom {
		errs = append(errs, types.FieldError{Field: "custom_fields", Message: "custom fields require a custom section in required_sections"})
	}

	if len(errs) > 0 {
		return newValidationError("invalid job configuration", errs...)
	}
	return nil
}

// validateJob runs ValidateJobRequest and then holds every section's
// file size to the configured upload ceiling
func (s *Service) validateJob(req *types.JobRequest) error {
	if err := ValidateJobRequest(req); err != nil {
		return err
	}
	if s.maxFileBytes <= 0 {
		return nil
	}

	var errs []types.FieldError
	for i, sr := range req.RequiredSections {
		if int64(sr.MaxFileSizeMB*(1<<20)) > s.maxFileBytes {
			errs = append(errs, types.FieldError{
				Field:   fmt.Sprintf("required_sections[%d].max_file_size_mb", i),
				Message: fmt.Sprintf("must not exceed the upload limit of %gMB", float64(s.maxFileBytes)/(1<<20)),
			})
		}
	}
	if len(errs) > 0 {
		return newValidationError("invalid job configuration", errs...)
	}
	return nil
}

// CreateJob creates a draft job posting
func (s *Service) CreateJob(ctx context.Context, p types.Principal, req *types.JobRequest) (*types.Job, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := s.validateJob(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	creator := p.ID
	job := &types.Job{
		ID:        uuid.New(),
		Status:    types.JobStatusDraft,
		CreatedBy: &creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyJobRequest(job, req)

	if err := s.store.CreateJob(ctx, job); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ConflictError{Message: "advertisement code " + req.AdvertisementCode + " is already in use"}
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.emit(ctx, p, audit.ActionJobCreated, "job", job.ID.String(), map[string]any{"advertisement_code": job.AdvertisementCode})
	return job, nil
}

// UpdateJob replaces a job's configuration. Applications already created
// keep their snapshot.
func (s *Service) UpdateJob(ctx context.Context, p types.Principal, id uuid.UUID, req *types.JobRequest) (*types.Job, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := s.validateJob(req); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}
	if job.Status == types.JobStatusArchived {
		return nil, &StateError{Message: "archived jobs cannot be edited"}
	}

	applyJobRequest(job, req)
	job.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ConflictError{Message: "advertisement code " + req.AdvertisementCode + " is already in use"}
		}
		return nil, translateStoreError(err, "job", id, "update job")
	}

	s.emit(ctx, p, audit.ActionJobUpdated, "job", id.String(), nil)
	return job, nil
}

// SetJobStatus moves a job through draft, published, closed and archived
func (s *Service) SetJobStatus(ctx context.Context, p types.Principal, id uuid.UUID, status types.JobStatus) (*types.Job, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, newValidationError("invalid status", types.FieldError{Field: "status", Message: "is not a recognised job status"})
	}

	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}
	if !CanTransitionJob(job.Status, status) {
		return nil, &StateError{Message: fmt.Sprintf("cannot change job status from %s to %s", job.Status, status)}
	}

	updated, err := s.store.UpdateJobStatus(ctx, id, status, s.now().UTC())
	if err != nil {
		return nil, translateStoreError(err, "job", id, "update job status")
	}

	s.emit(ctx, p, audit.ActionJobStatusChanged, "job", id.String(), map[string]any{
		"from": string(job.Status),
		"to":   string(status),
	})
	return updated, nil
}

// GetJob returns a job. Applicants only see published jobs.
func (s *Service) GetJob(ctx context.Context, p types.Principal, id uuid.UUID) (*types.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil || (!p.IsStaff() && job.Status != types.JobStatusPublished) {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}
	return job, nil
}

// ListJobs returns a page of jobs. Applicants only see published jobs.
func (s *Service) ListJobs(ctx context.Context, p types.Principal, filter types.JobFilter) (*types.JobList, error) {
	if !p.IsStaff() {
		filter.Status = types.JobStatusPublished
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, newValidationError("invalid filter", types.FieldError{Field: "status", Message: "is not a recognised job status"})
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	jobs, total, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []types.Job{}
	}
	return &types.JobList{Jobs: jobs, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func applyJobRequest(job *types.Job, req *types.JobRequest) {
	job.Title = req.Title
	job.AdvertisementCode = req.AdvertisementCode
	job.DepartmentName = req.DepartmentName
	job.Description = req.Description
	job.ApplicationStartDate = req.ApplicationStartDate.UTC()
	job.ApplicationEndDate = req.ApplicationEndDate.UTC()
	job.RequiredSections = copyRequirements(req.RequiredSections)
	job.CustomFields = copyCustomFields(req.CustomFields)
}
