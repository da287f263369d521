package recruitment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// CanSubmit runs the submission gate for an application without changing it
func (s *Service) CanSubmit(ctx context.Context, p types.Principal, id uuid.UUID) (*types.SubmissionCheck, error) {
	app, err := s.loadApplication(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.checkSubmission(ctx, app)
}

// checkSubmission accumulates every reason the application cannot be
// submitted. Section rules come from the frozen snapshot; the deadline is
// checked against the live job.
func (s *Service) checkSubmission(ctx context.Context, app *types.Application) (*types.SubmissionCheck, error) {
	errs := []types.FieldError{}

	if app.Status != types.StatusDraft {
		errs = append(errs, types.FieldError{Field: "status", Message: fmt.Sprintf("application is %s, only draft applications can be submitted", app.Status)})
	}
	if app.IsLocked {
		errs = append(errs, types.FieldError{Field: "is_locked", Message: "application is locked"})
	}

	for _, req := range app.JobSnapshot.RequiredSections {
		if !req.IsMandatory {
			continue
		}
		t := req.SectionType
		state, _ := app.Section(t)

		if !t.IsFileOnly() {
			if !state.HasData() {
				errs = append(errs, types.FieldError{Section: t, Field: "data", Message: "required but not completed"})
			} else {
				errs = append(errs, s.registry.Validate(t, state.Data, req, app.JobSnapshot.CustomFields)...)
			}
		}
		if acceptsFile(t, req) && !state.HasFile() {
			errs = append(errs, missingFileError(t))
		}
	}

	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if msg := deadlineProblem(job, s.now()); msg != "" {
		errs = append(errs, types.FieldError{Field: "deadline", Message: msg})
	}

	return &types.SubmissionCheck{CanSubmit: len(errs) == 0, Errors: errs}, nil
}

func deadlineProblem(job *types.Job, now time.Time) string {
	switch {
	case job == nil:
		return "job posting no longer exists"
	case job.Status != types.JobStatusPublished:
		return "job posting is no longer accepting applications"
	case now.After(job.ApplicationEndDate):
		return "application deadline has passed"
	default:
		return ""
	}
}
