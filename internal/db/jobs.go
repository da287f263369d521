package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"golang.org/x/sync/errgroup"
)

const jobColumns = `id, title, advertisement_code, department_name, description, status,
	application_start_date, application_end_date, required_sections, custom_fields,
	created_by, created_at, updated_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	var requiredSections, customFields []byte
	if err := row.Scan(&j.ID, &j.Title, &j.AdvertisementCode, &j.DepartmentName, &j.Description, &j.Status,
		&j.ApplicationStartDate, &j.ApplicationEndDate, &requiredSections, &customFields,
		&j.CreatedBy, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(requiredSections, &j.RequiredSections); err != nil {
		return nil, fmt.Errorf("failed to decode required sections of job %s: %w", j.ID, err)
	}
	if err := json.Unmarshal(customFields, &j.CustomFields); err != nil {
		return nil, fmt.Errorf("failed to decode custom fields of job %s: %w", j.ID, err)
	}
	return &j, nil
}

// jobDocuments encodes the JSONB columns of a job
func jobDocuments(job *types.Job) ([]byte, []byte, error) {
	required := job.RequiredSections
	if required == nil {
		required = []types.SectionRequirement{}
	}
	custom := job.CustomFields
	if custom == nil {
		custom = []types.CustomFieldDefinition{}
	}
	requiredJSON, err := json.Marshal(required)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal required sections: %w", err)
	}
	customJSON, err := json.Marshal(custom)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal custom fields: %w", err)
	}
	return requiredJSON, customJSON, nil
}

// GetJob retrieves a job by ID. Returns nil, nil when it does not exist.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns a page of jobs, newest first, and the total match count
func (db *DB) ListJobs(ctx context.Context, filter types.JobFilter) ([]types.Job, int, error) {
	where := ""
	args := []any{}
	if filter.Status != "" {
		where = " WHERE status = $1"
		args = append(args, filter.Status)
	}

	var (
		jobs  []types.Job
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.pool.QueryRow(gctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
		query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			jobColumns, where, len(args)+1, len(args)+2)
		rows, err := db.pool.Query(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			job, err := scanJob(rows)
			if err != nil {
				return fmt.Errorf("failed to scan job: %w", err)
			}
			jobs = append(jobs, *job)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// CreateJob inserts a new job. A reused advertisement code returns ErrDuplicate.
func (db *DB) CreateJob(ctx context.Context, job *types.Job) error {
	requiredJSON, customJSON, err := jobDocuments(job)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, advertisement_code, department_name, description, status,
		                   application_start_date, application_end_date, required_sections, custom_fields,
		                   created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		job.ID, job.Title, job.AdvertisementCode, job.DepartmentName, job.Description, job.Status,
		job.ApplicationStartDate, job.ApplicationEndDate, requiredJSON, customJSON,
		job.CreatedBy, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// UpdateJob replaces the configuration of an existing job
func (db *DB) UpdateJob(ctx context.Context, job *types.Job) error {
	requiredJSON, customJSON, err := jobDocuments(job)
	if err != nil {
		return err
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $2, advertisement_code = $3, department_name = $4, description = $5,
		                 application_start_date = $6, application_end_date = $7,
		                 required_sections = $8, custom_fields = $9, updated_at = $10
		 WHERE id = $1`,
		job.ID, job.Title, job.AdvertisementCode, job.DepartmentName, job.Description,
		job.ApplicationStartDate, job.ApplicationEndDate, requiredJSON, customJSON, job.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateJobStatus sets the publication state of a job
func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status types.JobStatus, at time.Time) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1 RETURNING `+jobColumns,
		id, status, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}
	return job, nil
}
