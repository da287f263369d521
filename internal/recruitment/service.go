// Package recruitment implements the application lifecycle: job snapshots,
// section saves, the submission gate and the status state machine.
package recruitment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/blobstore"
	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/jonathan/faculty-recruitment/internal/sections"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// Store is the document store the service persists through.
//
// Getters return nil, nil when the row does not exist. Writers report
// missing rows, locked applications, lost compare-and-swap races and
// uniqueness violations with the db package's sentinel errors.
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, int, error)
	CreateJob(ctx context.Context, job *types.Job) error
	UpdateJob(ctx context.Context, job *types.Job) error
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status types.JobStatus, at time.Time) (*types.Job, error)

	// CreateApplication reads the job and inserts the application built
	// from it in one transaction, together with the owner's back-reference.
	// build receives nil when the job does not exist.
	CreateApplication(ctx context.Context, jobID uuid.UUID, build func(job *types.Job) (*types.Application, error)) (*types.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error)
	ListApplications(ctx context.Context, filter types.ApplicationFilter) ([]types.Application, int, error)
	DeleteDraftApplication(ctx context.Context, id, userID uuid.UUID) error
	PatchSection(ctx context.Context, id uuid.UUID, section types.SectionType, patch types.SectionPatch, requireUnlocked bool, at time.Time) (*types.SectionState, error)
	UpdateStatus(ctx context.Context, upd types.StatusUpdate) (*types.Application, error)
	BulkUpdateStatus(ctx context.Context, upd types.BulkStatusUpdate) (int, error)
	SetReviewNotes(ctx context.Context, id uuid.UUID, notes string, reviewer uuid.UUID, at time.Time) (*types.Application, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status types.PaymentStatus, at time.Time) (*types.Application, error)
}

var _ Store = (*db.DB)(nil)

// Auditor receives fire-and-forget audit events
type Auditor interface {
	Emit(ctx context.Context, e audit.Event)
}

// Service provides the recruitment operations
type Service struct {
	store    Store
	blobs    blobstore.Store
	registry *sections.Registry
	scanner  sections.Scanner
	auditor  Auditor
	// maxFileBytes caps the file size a job may configure; zero leaves
	// only the request rules
	maxFileBytes int64
	now          func() time.Time
	newNumber    func(time.Time) string
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the service clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRegistry sets the section schema registry
func WithRegistry(r *sections.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithScanner sets the upload scanner
func WithScanner(sc sections.Scanner) Option {
	return func(s *Service) { s.scanner = sc }
}

// WithAuditor sets the audit event receiver
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithMaxFileSize caps the max_file_size_mb a job section may configure
func WithMaxFileSize(bytes int64) Option {
	return func(s *Service) { s.maxFileBytes = bytes }
}

// withNumberGenerator replaces the application number generator in tests
func withNumberGenerator(gen func(time.Time) string) Option {
	return func(s *Service) { s.newNumber = gen }
}

// NewService creates a new Service with the given dependencies
func NewService(store Store, blobs blobstore.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		blobs:     blobs,
		scanner:   sections.NoopScanner{},
		now:       time.Now,
		newNumber: NewApplicationNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = sections.NewRegistry(sections.WithClock(s.now))
	}
	return s
}

// Registry returns the section schema registry in use
func (s *Service) Registry() *sections.Registry {
	return s.registry
}

func (s *Service) emit(ctx context.Context, p types.Principal, action, resourceType, resourceID string, details map[string]any) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:       action,
		ActorID:      p.ID,
		ActorRole:    string(p.Role),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		OccurredAt:   s.now().UTC(),
	})
}

// loadApplication fetches an application and checks the caller may read it
func (s *Service) loadApplication(ctx context.Context, p types.Principal, id uuid.UUID) (*types.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, &NotFoundError{Resource: "application", ID: id.String()}
	}
	if !p.IsStaff() && app.UserID != p.ID {
		return nil, &ForbiddenError{Message: "application belongs to another user"}
	}
	return app, nil
}

// loadOwnedApplication fetches an application the caller must own
func (s *Service) loadOwnedApplication(ctx context.Context, p types.Principal, id uuid.UUID) (*types.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, &NotFoundError{Resource: "application", ID: id.String()}
	}
	if app.UserID != p.ID {
		return nil, &ForbiddenError{Message: "only the applicant can modify this application"}
	}
	return app, nil
}

func requireAdmin(p types.Principal) error {
	if !p.IsAdmin() {
		return &ForbiddenError{Message: "admin role required"}
	}
	return nil
}

func requireStaff(p types.Principal) error {
	if !p.IsStaff() {
		return &ForbiddenError{Message: "admin or reviewer role required"}
	}
	return nil
}

// translateStoreError maps store sentinels onto the domain taxonomy and
// wraps anything else as an opaque system error
func translateStoreError(err error, resource string, id uuid.UUID, action string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return &NotFoundError{Resource: resource, ID: id.String()}
	case errors.Is(err, db.ErrLocked):
		return &StateError{Message: "application is locked and can no longer be edited"}
	case errors.Is(err, db.ErrVersionConflict):
		return &ConflictError{Message: "application was modified concurrently, reload and retry"}
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

// deleteBlobBestEffort removes a superseded file, logging failures
func (s *Service) deleteBlobBestEffort(ctx context.Context, id string) {
	if id == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), id); err != nil {
		log.Printf("[blobstore] failed to delete superseded file %s: %v", id, err)
	}
}
