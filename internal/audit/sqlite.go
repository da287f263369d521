package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	action        TEXT NOT NULL,
	actor_id      TEXT NOT NULL,
	actor_role    TEXT NOT NULL DEFAULT '',
	resource_type TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	details       TEXT,
	occurred_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_resource ON audit_events(resource_type, resource_id);
`

// SQLiteSink appends events to a local SQLite database
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the audit database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Write implements Sink
func (s *SQLiteSink) Write(ctx context.Context, ev Event) error {
	var details []byte
	if len(ev.Details) > 0 {
		var err error
		details, err = json.Marshal(ev.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events(action, actor_id, actor_role, resource_type, resource_id, details, occurred_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		ev.Action, ev.ActorID.String(), ev.ActorRole, ev.ResourceType, ev.ResourceID,
		nullableString(details), ev.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// ListByResource returns the most recent events of a resource, newest first
func (s *SQLiteSink) ListByResource(ctx context.Context, resourceType, resourceID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, actor_id, actor_role, resource_type, resource_id, details, occurred_at
		 FROM audit_events
		 WHERE resource_type = ? AND resource_id = ?
		 ORDER BY id DESC
		 LIMIT ?`, resourceType, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var (
			ev         Event
			actorID    string
			details    sql.NullString
			occurredAt string
		)
		if err := rows.Scan(&ev.Action, &actorID, &ev.ActorRole, &ev.ResourceType, &ev.ResourceID, &details, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if ev.ActorID, err = uuid.Parse(actorID); err != nil {
			return nil, fmt.Errorf("failed to parse audit actor id: %w", err)
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &ev.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		if ev.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt); err != nil {
			return nil, fmt.Errorf("failed to parse audit timestamp: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
