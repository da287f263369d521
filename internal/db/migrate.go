package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationFS returns the embedded migrations rooted at the migrations
// directory
func MigrationFS() (fs.FS, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}

// Migrate applies every embedded migration that has not been applied yet
// and returns the names of the migrations it applied. Goose runs each
// migration in its own transaction and records it in goose_db_version.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	fsys, err := MigrationFS()
	if err != nil {
		return nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer func() { _ = sqlDB.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		var partial *goose.PartialError
		if errors.As(err, &partial) {
			return migrationNames(partial.Applied), fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return migrationNames(results), nil
}

func migrationNames(results []*goose.MigrationResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		names = append(names, strings.TrimSuffix(path.Base(r.Source.Path), ".sql"))
	}
	return names
}
