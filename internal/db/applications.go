package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"golang.org/x/sync/errgroup"
)

const applicationColumns = `id, application_number, user_id, job_id, job_snapshot, status,
	submitted_at, is_locked, locked_at, sections, status_history,
	review_notes, reviewed_by, reviewed_at, payment_status, version, created_at, updated_at`

func scanApplication(row pgx.Row) (*types.Application, error) {
	var a types.Application
	var snapshot, sections, history []byte
	if err := row.Scan(&a.ID, &a.ApplicationNumber, &a.UserID, &a.JobID, &snapshot, &a.Status,
		&a.SubmittedAt, &a.IsLocked, &a.LockedAt, &sections, &history,
		&a.ReviewNotes, &a.ReviewedBy, &a.ReviewedAt, &a.PaymentStatus, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &a.JobSnapshot); err != nil {
		return nil, fmt.Errorf("failed to decode job snapshot of application %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(sections, &a.Sections); err != nil {
		return nil, fmt.Errorf("failed to decode sections of application %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(history, &a.StatusHistory); err != nil {
		return nil, fmt.Errorf("failed to decode status history of application %s: %w", a.ID, err)
	}
	if a.Sections == nil {
		a.Sections = map[types.SectionType]types.SectionState{}
	}
	return &a, nil
}

// CreateApplication inserts a new application and appends it to the owner's
// back-reference list in one transaction. The job row is read under a
// share lock and handed to build, which returns the application to insert
// (or an error that aborts the transaction). A second application of the
// same user for the same job returns ErrDuplicate; a colliding application
// number returns ErrDuplicateApplicationNumber.
func (db *DB) CreateApplication(ctx context.Context, jobID uuid.UUID, build func(job *types.Job) (*types.Application, error)) (*types.Application, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	job, err := scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR SHARE`, jobID))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to get job: %w", err)
		}
		job = nil
	}

	app, err := build(job)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(app.JobSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job snapshot: %w", err)
	}
	sections, err := json.Marshal(app.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sections: %w", err)
	}
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status history: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, app.UserID); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	created, err := scanApplication(tx.QueryRow(ctx,
		`INSERT INTO applications (id, application_number, user_id, job_id, job_snapshot, status,
		                           is_locked, sections, status_history, payment_status, version,
		                           created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+applicationColumns,
		app.ID, app.ApplicationNumber, app.UserID, app.JobID, snapshot, app.Status,
		app.IsLocked, sections, history, app.PaymentStatus, app.Version,
		app.CreatedAt, app.UpdatedAt,
	))
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == "applications_application_number_key" {
				return nil, ErrDuplicateApplicationNumber
			}
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET application_ids = array_append(application_ids, $2) WHERE id = $1`,
		app.UserID, app.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to link application to user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// GetApplication retrieves an application by ID. Returns nil, nil when it
// does not exist.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// applicationWhere builds the WHERE clause and arguments of a filter
func applicationWhere(filter types.ApplicationFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.JobID != nil {
		add("job_id = $%d", *filter.JobID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.PaymentStatus != "" {
		add("payment_status = $%d", filter.PaymentStatus)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListApplications returns a page of applications, newest first, and the
// total match count
func (db *DB) ListApplications(ctx context.Context, filter types.ApplicationFilter) ([]types.Application, int, error) {
	where, args := applicationWhere(filter)

	var (
		apps  []types.Application
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.pool.QueryRow(gctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count applications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
		query := fmt.Sprintf(`SELECT %s FROM applications%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			applicationColumns, where, len(args)+1, len(args)+2)
		rows, err := db.pool.Query(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			app, err := scanApplication(rows)
			if err != nil {
				return fmt.Errorf("failed to scan application: %w", err)
			}
			apps = append(apps, *app)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// DeleteDraftApplication deletes a draft application of a user and removes
// it from the user's back-reference list in one transaction. Returns
// ErrLocked when the application is no longer a draft.
func (db *DB) DeleteDraftApplication(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var status types.Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock application: %w", err)
	}
	if status != types.StatusDraft {
		return ErrLocked
	}

	if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET application_ids = array_remove(application_ids, $2) WHERE id = $1`, userID, id,
	); err != nil {
		return fmt.Errorf("failed to unlink application from user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PatchSection merges a patch into one section of an application in a
// single statement. Other sections are never rewritten. With
// requireUnlocked the update only applies while the application is
// unlocked; otherwise ErrLocked is returned.
func (db *DB) PatchSection(ctx context.Context, id uuid.UUID, section types.SectionType, patch types.SectionPatch, requireUnlocked bool, at time.Time) (*types.SectionState, error) {
	fields, err := json.Marshal(patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal section patch: %w", err)
	}

	var stateJSON []byte
	err = db.pool.QueryRow(ctx,
		`UPDATE applications
		 SET sections = jsonb_set(sections, ARRAY[$2::text],
		                          COALESCE(sections -> $2::text, '{}'::jsonb) || $3::jsonb, true),
		     version = version + 1,
		     updated_at = $4
		 WHERE id = $1 AND (NOT $5::boolean OR NOT is_locked)
		 RETURNING sections -> $2::text`,
		id, string(section), fields, at, requireUnlocked,
	).Scan(&stateJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.missingOrLocked(ctx, id)
		}
		return nil, fmt.Errorf("failed to patch section %s: %w", section, err)
	}

	var state types.SectionState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, fmt.Errorf("failed to decode section %s: %w", section, err)
	}
	return &state, nil
}

// missingOrLocked explains why a guarded update matched no row
func (db *DB) missingOrLocked(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrLocked
}

// UpdateStatus applies a compare-and-swap status change. The row is locked,
// its version compared with upd.ExpectedVersion, and status, lock fields and
// the new history entry are written together.
func (db *DB) UpdateStatus(ctx context.Context, upd types.StatusUpdate) (*types.Application, error) {
	entry, err := json.Marshal([]types.StatusHistoryEntry{upd.Entry})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history entry: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var version int64
	err = tx.QueryRow(ctx, `SELECT version FROM applications WHERE id = $1 FOR UPDATE`, upd.ApplicationID).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock application: %w", err)
	}
	if version != upd.ExpectedVersion {
		return nil, ErrVersionConflict
	}

	app, err := scanApplication(tx.QueryRow(ctx,
		`UPDATE applications
		 SET status = $2, is_locked = $3, locked_at = $4, submitted_at = $5,
		     status_history = status_history || $6::jsonb,
		     version = version + 1,
		     updated_at = $7
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		upd.ApplicationID, upd.Status, upd.IsLocked, upd.LockedAt, upd.SubmittedAt, entry, upd.Entry.ChangedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return app, nil
}

// BulkUpdateStatus moves every listed application to one status in a
// single statement and returns how many rows changed. Unknown ids are
// ignored, as are withdrawn applications unless the target is submitted.
func (db *DB) BulkUpdateStatus(ctx context.Context, upd types.BulkStatusUpdate) (int, error) {
	result, err := db.pool.Exec(ctx,
		`WITH targets AS (
		     SELECT id, status AS old_status FROM applications
		     WHERE id = ANY($1) AND (status <> 'withdrawn' OR $2::text = 'submitted')
		     FOR UPDATE
		 )
		 UPDATE applications a
		 SET status = $2::text,
		     status_history = a.status_history || jsonb_build_array(jsonb_build_object(
		         'status', $2::text,
		         'changed_by', $3::uuid,
		         'changed_at', $4::timestamptz,
		         'remarks', COALESCE(NULLIF($5::text, ''), 'Status changed from ' || t.old_status || ' to ' || $2::text)
		     )),
		     version = a.version + 1,
		     updated_at = $4::timestamptz
		 FROM targets t
		 WHERE a.id = t.id`,
		upd.ApplicationIDs, string(upd.Status), upd.ChangedBy, upd.ChangedAt, upd.Remarks,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update status: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// SetReviewNotes records reviewer notes without touching the status
func (db *DB) SetReviewNotes(ctx context.Context, id uuid.UUID, notes string, reviewer uuid.UUID, at time.Time) (*types.Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`UPDATE applications
		 SET review_notes = $2, reviewed_by = $3, reviewed_at = $4, version = version + 1, updated_at = $4
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, notes, reviewer, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to set review notes: %w", err)
	}
	return app, nil
}

// SetPaymentStatus records the payment state of an application
func (db *DB) SetPaymentStatus(ctx context.Context, id uuid.UUID, status types.PaymentStatus, at time.Time) (*types.Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`UPDATE applications
		 SET payment_status = $2, version = version + 1, updated_at = $3
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, status, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to set payment status: %w", err)
	}
	return app, nil
}

// UserApplicationIDs returns the back-reference list of a user
func (db *DB) UserApplicationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.pool.QueryRow(ctx, `SELECT application_ids FROM users WHERE id = $1`, userID).Scan(&ids)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user applications: %w", err)
	}
	return ids, nil
}
