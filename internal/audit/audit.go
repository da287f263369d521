// Package audit records state-changing operations as structured events.
//
// Emitting is best-effort: a failing sink is logged and never reported to
// the caller, so an audit outage cannot block a business operation.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action names
const (
	ActionApplicationCreated   = "application.created"
	ActionApplicationDeleted   = "application.deleted"
	ActionSectionSaved         = "application.section_saved"
	ActionSectionFileUploaded  = "application.section_file_uploaded"
	ActionSectionFileDeleted   = "application.section_file_deleted"
	ActionApplicationSubmitted = "application.submitted"
	ActionApplicationWithdrawn = "application.withdrawn"
	ActionStatusChanged        = "application.status_changed"
	ActionBulkStatusChanged    = "application.bulk_status_changed"
	ActionReviewNotesAdded     = "application.review_notes_added"
	ActionSectionVerified      = "application.section_verified"
	ActionPaymentStatusChanged = "application.payment_status_changed"
	ActionJobCreated           = "job.created"
	ActionJobUpdated           = "job.updated"
	ActionJobStatusChanged     = "job.status_changed"
)

// Event is one audited operation
type Event struct {
	Action       string         `json:"action"`
	ActorID      uuid.UUID      `json:"actor_id"`
	ActorRole    string         `json:"actor_role,omitempty"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// Sink persists audit events
type Sink interface {
	Write(ctx context.Context, e Event) error
}

// Emitter fans events out to its sinks
type Emitter struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewEmitter creates an emitter writing to the given sinks
func NewEmitter(logger *slog.Logger, sinks ...Sink) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{sinks: sinks, logger: logger, now: time.Now}
}

// Emit writes e to every sink. Sink failures are logged and swallowed.
// The write is detached from ctx cancellation so a disconnecting client
// does not drop the event of an operation that already committed.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = e.now().UTC()
	}
	ctx = context.WithoutCancel(ctx)
	for _, sink := range e.sinks {
		if err := sink.Write(ctx, ev); err != nil {
			e.logger.Warn("audit sink write failed",
				slog.String("action", ev.Action),
				slog.String("resource_id", ev.ResourceID),
				slog.String("error", err.Error()))
		}
	}
}

// SlogSink writes events as structured log records
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink logging through logger
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Write implements Sink
func (s *SlogSink) Write(ctx context.Context, ev Event) error {
	attrs := []slog.Attr{
		slog.String("action", ev.Action),
		slog.String("actor_id", ev.ActorID.String()),
		slog.String("resource_type", ev.ResourceType),
		slog.String("resource_id", ev.ResourceID),
		slog.Time("occurred_at", ev.OccurredAt),
	}
	if ev.ActorRole != "" {
		attrs = append(attrs, slog.String("actor_role", ev.ActorRole))
	}
	if len(ev.Details) > 0 {
		attrs = append(attrs, slog.Any("details", ev.Details))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	return nil
}
