package recruitment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// Page size limits for list operations
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateApplication starts a draft application of the caller for a job.
// The job's requirements are snapshotted in the same transaction that
// inserts the application.
func (s *Service) CreateApplication(ctx context.Context, p types.Principal, jobID uuid.UUID) (*types.Application, error) {
	if p.Role != types.RoleApplicant {
		return nil, &ForbiddenError{Message: "only applicants can create applications"}
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		now := s.now()
		app, err := s.store.CreateApplication(ctx, jobID, func(job *types.Job) (*types.Application, error) {
			snapshot, err := BuildSnapshot(job, now)
			if err != nil {
				return nil, err
			}
			return newDraftApplication(p.ID, jobID, snapshot, s.newNumber(now), now), nil
		})
		switch {
		case err == nil:
			s.emit(ctx, p, audit.ActionApplicationCreated, "application", app.ID.String(), map[string]any{
				"application_number": app.ApplicationNumber,
				"job_id":             jobID.String(),
			})
			return app, nil
		case errors.Is(err, db.ErrDuplicateApplicationNumber):
			lastErr = err
			continue
		case errors.Is(err, db.ErrDuplicate):
			return nil, &ConflictError{Message: "an application for this job already exists"}
		default:
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				notFound.ID = jobID.String()
				return nil, notFound
			}
			var stateErr *StateError
			if errors.As(err, &stateErr) {
				return nil, stateErr
			}
			return nil, fmt.Errorf("failed to create application: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to allocate a unique application number: %w", lastErr)
}

func newDraftApplication(userID, jobID uuid.UUID, snapshot types.JobSnapshot, number string, now time.Time) *types.Application {
	now = now.UTC()
	return &types.Application{
		ID:                uuid.New(),
		ApplicationNumber: number,
		UserID:            userID,
		JobID:             jobID,
		JobSnapshot:       snapshot,
		Status:            types.StatusDraft,
		Sections:          map[types.SectionType]types.SectionState{},
		StatusHistory: []types.StatusHistoryEntry{{
			Status:    types.StatusDraft,
			ChangedBy: userID,
			ChangedAt: now,
			Remarks:   "Application created",
		}},
		PaymentStatus: types.PaymentPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// GetApplication returns one application. Applicants may only read their own.
func (s *Service) GetApplication(ctx context.Context, p types.Principal, id uuid.UUID) (*types.Application, error) {
	return s.loadApplication(ctx, p, id)
}

// ListApplications returns a page of applications. Applicants only see
// their own; staff may filter by user, job, status and payment status.
func (s *Service) ListApplications(ctx context.Context, p types.Principal, filter types.ApplicationFilter) (*types.ApplicationList, error) {
	if !p.IsStaff() {
		id := p.ID
		filter.UserID = &id
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, newValidationError("invalid filter", types.FieldError{Field: "status", Message: "is not a recognised status"})
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.IsValid() {
		return nil, newValidationError("invalid filter", types.FieldError{Field: "payment_status", Message: "is not a recognised payment status"})
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	apps, total, err := s.store.ListApplications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if apps == nil {
		apps = []types.Application{}
	}
	return &types.ApplicationList{Applications: apps, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// DeleteApplication removes a draft application of the caller together
// with its back-reference. Stored files are removed afterwards, best-effort.
func (s *Service) DeleteApplication(ctx context.Context, p types.Principal, id uuid.UUID) error {
	app, err := s.loadOwnedApplication(ctx, p, id)
	if err != nil {
		return err
	}
	if app.Status != types.StatusDraft {
		return &StateError{Message: "only draft applications can be deleted"}
	}

	if err := s.store.DeleteDraftApplication(ctx, id, p.ID); err != nil {
		if errors.Is(err, db.ErrLocked) {
			return &StateError{Message: "only draft applications can be deleted"}
		}
		return translateStoreError(err, "application", id, "delete application")
	}

	for _, state := range app.Sections {
		s.deleteBlobBestEffort(ctx, state.FileStorageID)
	}
	s.emit(ctx, p, audit.ActionApplicationDeleted, "application", id.String(), map[string]any{
		"application_number": app.ApplicationNumber,
	})
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
