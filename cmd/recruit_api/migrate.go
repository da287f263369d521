package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Applies the embedded SQL migrations that have not been applied to DATABASE_URL yet.",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	for _, version := range applied {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if len(applied) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
	}
	return nil
}
