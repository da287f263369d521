package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by the store. Callers match them with errors.Is.
var (
	// ErrNotFound means the addressed row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness constraint rejected the write
	ErrDuplicate = errors.New("duplicate")
	// ErrDuplicateApplicationNumber means a generated application number collided
	ErrDuplicateApplicationNumber = errors.New("duplicate application number")
	// ErrLocked means the application is locked (or no longer a draft)
	ErrLocked = errors.New("application is locked")
	// ErrVersionConflict means the row changed since it was read
	ErrVersionConflict = errors.New("version conflict")
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name if err is a
// unique violation
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
