package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/jonathan/faculty-recruitment/internal/observability"
	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print an application's submission checklist",
	Long:  "Loads an application, runs the submission gate against it without changing anything and prints the per-section checklist. When AUDIT_SQLITE_PATH is set the application's recent audit events are printed too.",
	RunE:  runInspect,
}

var (
	inspectApplicationID string
	inspectAuditLimit    int
)

// operator is the principal the CLI reads applications as
var operator = types.Principal{Role: types.RoleAdmin}

func init() {
	inspectCmd.Flags().StringVar(&inspectApplicationID, "application", "", "Application ID (required)")
	inspectCmd.Flags().IntVar(&inspectAuditLimit, "audit-limit", 20, "Maximum number of audit events to print")

	if err := inspectCmd.MarkFlagRequired("application"); err != nil {
		panic(fmt.Sprintf("failed to mark application flag as required: %v", err))
	}

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	id, err := uuid.Parse(inspectApplicationID)
	if err != nil {
		return fmt.Errorf("invalid application ID: %w", err)
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	svc := recruitment.NewService(database, nil)
	if err := printChecklist(ctx, cmd.OutOrStdout(), svc, id); err != nil {
		return err
	}

	if path := os.Getenv("AUDIT_SQLITE_PATH"); path != "" {
		sink, err := audit.OpenSQLite(ctx, path)
		if err != nil {
			return err
		}
		defer func() { _ = sink.Close() }()

		events, err := sink.ListByResource(ctx, "application", id.String(), inspectAuditLimit)
		if err != nil {
			return err
		}
		printAuditEvents(cmd.OutOrStdout(), events)
	}
	return nil
}

// printChecklist prints the application header and its submission checklist
func printChecklist(ctx context.Context, out io.Writer, svc *recruitment.Service, id uuid.UUID) error {
	app, err := svc.GetApplication(ctx, operator, id)
	if err != nil {
		return fmt.Errorf("failed to load application: %w", err)
	}
	check, err := svc.CanSubmit(ctx, operator, id)
	if err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}

	printer := observability.NewPrinter(out)
	printer.PrintApplication(app)
	printer.PrintSubmissionCheck(app, check)
	return nil
}

func printAuditEvents(out io.Writer, events []audit.Event) {
	if len(events) == 0 {
		_, _ = fmt.Fprintln(out, "no audit events recorded")
		return
	}
	_, _ = fmt.Fprintf(out, "Audit events (%d):\n", len(events))
	for _, ev := range events {
		actor := ev.ActorRole
		if ev.ActorID != uuid.Nil {
			actor += " " + ev.ActorID.String()
		}
		_, _ = fmt.Fprintf(out, "  %s  %-36s  %s\n", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Action, actor)
	}
}
