package recruitment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// DefaultWithdrawReason is recorded when the applicant gives no reason
const DefaultWithdrawReason = "Withdrawn by applicant"

// CanTransition reports whether an admin status update from one status to
// another is allowed. The only way out of withdrawn is back to submitted.
func CanTransition(from, to types.Status) bool {
	if !to.IsValid() {
		return false
	}
	if from == types.StatusWithdrawn {
		return to == types.StatusSubmitted
	}
	return true
}

// Submit moves a draft application that passes the submission gate to
// submitted, locking it. Status, lock and history entry are written in
// one compare-and-swap update.
func (s *Service) Submit(ctx context.Context, p types.Principal, id uuid.UUID) (*types.SubmitResult, error) {
	app, err := s.loadOwnedApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if app.Status != types.StatusDraft {
		return nil, &StateError{Message: fmt.Sprintf("application is %s, only draft applications can be submitted", app.Status)}
	}

	check, err := s.checkSubmission(ctx, app)
	if err != nil {
		return nil, err
	}
	if !check.CanSubmit {
		return nil, newValidationError("application is not ready for submission", check.Errors...)
	}

	now := s.now().UTC()
	updated, err := s.store.UpdateStatus(ctx, types.StatusUpdate{
		ApplicationID:   id,
		ExpectedVersion: app.Version,
		Status:          types.StatusSubmitted,
		IsLocked:        true,
		LockedAt:        &now,
		SubmittedAt:     &now,
		Entry: types.StatusHistoryEntry{
			Status:    types.StatusSubmitted,
			ChangedBy: p.ID,
			ChangedAt: now,
			Remarks:   "Application submitted",
		},
	})
	if err != nil {
		return nil, translateStoreError(err, "application", id, "submit application")
	}

	s.emit(ctx, p, audit.ActionApplicationSubmitted, "application", id.String(), map[string]any{
		"application_number": updated.ApplicationNumber,
	})
	return &types.SubmitResult{
		ApplicationNumber: updated.ApplicationNumber,
		SubmittedAt:       now,
		Status:            updated.Status,
	}, nil
}

// Withdraw moves a submitted application to withdrawn. The application
// stays locked.
func (s *Service) Withdraw(ctx context.Context, p types.Principal, id uuid.UUID, reason string) (*types.WithdrawResult, error) {
	app, err := s.loadOwnedApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if app.Status != types.StatusSubmitted {
		return nil, &StateError{Message: fmt.Sprintf("application is %s, only submitted applications can be withdrawn", app.Status)}
	}
	if reason == "" {
		reason = DefaultWithdrawReason
	}

	now := s.now().UTC()
	updated, err := s.store.UpdateStatus(ctx, types.StatusUpdate{
		ApplicationID:   id,
		ExpectedVersion: app.Version,
		Status:          types.StatusWithdrawn,
		IsLocked:        app.IsLocked,
		LockedAt:        app.LockedAt,
		SubmittedAt:     app.SubmittedAt,
		Entry: types.StatusHistoryEntry{
			Status:    types.StatusWithdrawn,
			ChangedBy: p.ID,
			ChangedAt: now,
			Remarks:   reason,
		},
	})
	if err != nil {
		return nil, translateStoreError(err, "application", id, "withdraw application")
	}

	s.emit(ctx, p, audit.ActionApplicationWithdrawn, "application", id.String(), map[string]any{
		"application_number": updated.ApplicationNumber,
		"reason":             reason,
	})
	return &types.WithdrawResult{ApplicationNumber: updated.ApplicationNumber, Status: updated.Status}, nil
}

// UpdateStatus is the admin status change of one application
func (s *Service) UpdateStatus(ctx context.Context, p types.Principal, id uuid.UUID, req types.StatusUpdateRequest) (*types.Application, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if !req.Status.IsValid() {
		return nil, newValidationError("invalid status", types.FieldError{Field: "status", Message: "is not a recognised status"})
	}

	app, err := s.loadApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(app.Status, req.Status) {
		return nil, &StateError{Message: fmt.Sprintf("cannot change status from %s to %s", app.Status, req.Status)}
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = fmt.Sprintf("Status changed from %s to %s", app.Status, req.Status)
	}
	now := s.now().UTC()
	updated, err := s.store.UpdateStatus(ctx, types.StatusUpdate{
		ApplicationID:   id,
		ExpectedVersion: app.Version,
		Status:          req.Status,
		IsLocked:        app.IsLocked,
		LockedAt:        app.LockedAt,
		SubmittedAt:     app.SubmittedAt,
		Entry: types.StatusHistoryEntry{
			Status:    req.Status,
			ChangedBy: p.ID,
			ChangedAt: now,
			Remarks:   remarks,
		},
	})
	if err != nil {
		return nil, translateStoreError(err, "application", id, "update status")
	}

	s.emit(ctx, p, audit.ActionStatusChanged, "application", id.String(), map[string]any{
		"from": string(app.Status),
		"to":   string(req.Status),
	})
	return updated, nil
}

// BulkUpdateStatus applies one admin status change to many applications in
// a single atomic update. Unknown ids are skipped, as are withdrawn
// applications unless the target is submitted.
func (s *Service) BulkUpdateStatus(ctx context.Context, p types.Principal, req types.BulkStatusUpdateRequest) (*types.BulkUpdateResult, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	if !req.Status.IsValid() {
		return nil, newValidationError("invalid status", types.FieldError{Field: "status", Message: "is not a recognised status"})
	}

	ids := make([]uuid.UUID, 0, len(req.ApplicationIDs))
	seen := make(map[uuid.UUID]bool, len(req.ApplicationIDs))
	for _, id := range req.ApplicationIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	modified, err := s.store.BulkUpdateStatus(ctx, types.BulkStatusUpdate{
		ApplicationIDs: ids,
		Status:         req.Status,
		ChangedBy:      p.ID,
		ChangedAt:      s.now().UTC(),
		Remarks:        req.Remarks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk update status: %w", err)
	}

	s.emit(ctx, p, audit.ActionBulkStatusChanged, "application", "bulk", map[string]any{
		"to":        string(req.Status),
		"requested": len(req.ApplicationIDs),
		"modified":  modified,
	})
	return &types.BulkUpdateResult{ModifiedCount: modified, RequestedCount: len(req.ApplicationIDs)}, nil
}

// AddReviewNotes records reviewer notes. It does not touch the status.
func (s *Service) AddReviewNotes(ctx context.Context, p types.Principal, id uuid.UUID, notes string) (*types.Application, error) {
	if err := requireStaff(p); err != nil {
		return nil, err
	}
	updated, err := s.store.SetReviewNotes(ctx, id, notes, p.ID, s.now().UTC())
	if err != nil {
		return nil, translateStoreError(err, "application", id, "save review notes")
	}
	s.emit(ctx, p, audit.ActionReviewNotesAdded, "application", id.String(), nil)
	return updated, nil
}

// VerifySection sets the verification state of one section, regardless of
// lock state and status
func (s *Service) VerifySection(ctx context.Context, p types.Principal, id uuid.UUID, t types.SectionType, req types.VerifySectionRequest) (*types.SectionState, error) {
	if err := requireStaff(p); err != nil {
		return nil, err
	}
	if req.IsVerified == nil {
		return nil, newValidationError("invalid request", types.FieldError{Field: "is_verified", Message: "is required"})
	}
	app, err := s.loadApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if _, err := requirementFor(app, t); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	verifier := p.ID
	notes := req.Notes
	state, err := s.store.PatchSection(ctx, id, t, types.SectionPatch{
		IsVerified:        req.IsVerified,
		VerifiedBy:        &verifier,
		VerifiedAt:        &now,
		VerificationNotes: &notes,
	}, false, now)
	if err != nil {
		return nil, translateStoreError(err, "application", id, "verify section")
	}

	s.emit(ctx, p, audit.ActionSectionVerified, "application", id.String(), map[string]any{
		"section":     string(t),
		"is_verified": *req.IsVerified,
	})
	return state, nil
}

// SetPaymentStatus records the payment state reported by the gateway
func (s *Service) SetPaymentStatus(ctx context.Context, p types.Principal, req types.PaymentWebhookRequest) (*types.Application, error) {
	if !req.PaymentStatus.IsValid() {
		return nil, newValidationError("invalid payment status", types.FieldError{Field: "payment_status", Message: "is not a recognised payment status"})
	}
	updated, err := s.store.SetPaymentStatus(ctx, req.ApplicationID, req.PaymentStatus, s.now().UTC())
	if err != nil {
		return nil, translateStoreError(err, "application", req.ApplicationID, "set payment status")
	}
	s.emit(ctx, p, audit.ActionPaymentStatusChanged, "application", req.ApplicationID.String(), map[string]any{
		"payment_status":  string(req.PaymentStatus),
		"transaction_ref": req.TransactionRef,
	})
	return updated, nil
}
