// Package observability provides formatted output utilities for the
// operator CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxHistoryToShow is the number of trailing status history entries displayed
	maxHistoryToShow = 5
	timeLayout       = "2006-01-02 15:04 MST"
)

// Printer handles formatted output for the inspect command
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintApplication outputs the header fields of an application and its
// most recent status changes.
func (p *Printer) PrintApplication(app *types.Application) {
	if app == nil {
		return
	}

	var sb strings.Builder
	number := app.ApplicationNumber
	if number == "" {
		number = "(not submitted)"
	}
	sb.WriteString(fmt.Sprintf("ID:       %s\n", app.ID))
	sb.WriteString(fmt.Sprintf("Number:   %s\n", number))
	sb.WriteString(fmt.Sprintf("Job:      %s\n", app.JobSnapshot.Title))
	sb.WriteString(fmt.Sprintf("Status:   %s", app.Status))
	if app.IsLocked {
		sb.WriteString(" (locked)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Payment:  %s\n", app.PaymentStatus))
	if app.SubmittedAt != nil {
		sb.WriteString(fmt.Sprintf("Submitted: %s\n", app.SubmittedAt.UTC().Format(timeLayout)))
	}

	if len(app.StatusHistory) > 0 {
		sb.WriteString("\nHistory:\n")
		start := max(0, len(app.StatusHistory)-maxHistoryToShow)
		if start > 0 {
			sb.WriteString(fmt.Sprintf("  ... %d earlier\n", start))
		}
		for _, entry := range app.StatusHistory[start:] {
			sb.WriteString(fmt.Sprintf("  • %s  %s\n", entry.ChangedAt.UTC().Format(timeLayout), entry.Status))
		}
	}

	p.printBox("APPLICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSubmissionCheck outputs one checklist line per section of the
// snapshot, followed by the gate's verdict and any problems it found.
func (p *Printer) PrintSubmissionCheck(app *types.Application, check *types.SubmissionCheck) {
	if app == nil || check == nil {
		return
	}

	problems := make(map[types.SectionType]int)
	for _, fe := range check.Errors {
		if fe.Section != "" {
			problems[fe.Section]++
		}
	}

	var sb strings.Builder
	for _, req := range app.JobSnapshot.RequiredSections {
		state, _ := app.Section(req.SectionType)
		mark := "○"
		switch {
		case problems[req.SectionType] > 0:
			mark = "✗"
		case state.IsComplete || state.HasFile():
			mark = "✓"
		}

		line := fmt.Sprintf("%s %s", mark, req.SectionType)
		if req.IsMandatory {
			line += " *"
		}
		var notes []string
		if state.HasFile() {
			notes = append(notes, "file")
		}
		if state.IsVerified {
			notes = append(notes, "verified")
		}
		if n := problems[req.SectionType]; n > 0 {
			notes = append(notes, fmt.Sprintf("%d problem(s)", n))
		}
		if len(notes) > 0 {
			line += "  [" + strings.Join(notes, ", ") + "]"
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	if check.CanSubmit {
		sb.WriteString("✅ READY TO SUBMIT")
	} else {
		sb.WriteString(fmt.Sprintf("⚠ NOT READY (%d problems)", len(check.Errors)))
		for _, fe := range check.Errors {
			sb.WriteString("\n  " + describe(fe))
		}
	}

	p.printBox("SUBMISSION CHECKLIST", sb.String())
}

// describe renders a field error as section.field: message
func describe(fe types.FieldError) string {
	path := fe.Field
	if fe.Section != "" {
		path = string(fe.Section) + "." + fe.Field
	}
	return path + ": " + fe.Message
}

// PrintJob outputs a job posting and the sections it asks for.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Code:     %s\n", job.AdvertisementCode))
	if job.DepartmentName != "" {
		sb.WriteString(fmt.Sprintf("Dept:     %s\n", job.DepartmentName))
	}
	if job.Status != "" {
		sb.WriteString(fmt.Sprintf("Status:   %s\n", job.Status))
	}
	sb.WriteString(fmt.Sprintf("Window:   %s → %s\n",
		job.ApplicationStartDate.UTC().Format("2006-01-02"),
		job.ApplicationEndDate.UTC().Format("2006-01-02")))

	sb.WriteString(fmt.Sprintf("\nSections (%d):\n", len(job.RequiredSections)))
	for _, req := range job.RequiredSections {
		line := fmt.Sprintf("  • %s", req.SectionType)
		if req.IsMandatory {
			line += " *"
		}
		if req.RequiresFile || req.SectionType.IsFileOnly() {
			label := req.FileLabel
			if label == "" {
				label = "file"
			}
			line += " [" + label + "]"
		}
		sb.WriteString(line + "\n")
	}

	if len(job.CustomFields) > 0 {
		sb.WriteString("\nCustom fields:\n")
		for _, def := range job.CustomFields {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", def.FieldName, def.FieldType))
		}
	}

	p.printBox("JOB POSTING", strings.TrimSuffix(sb.String(), "\n"))
}
