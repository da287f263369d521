package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/faculty-recruitment/internal/observability"
	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/spf13/cobra"
)

var validateJobCmd = &cobra.Command{
	Use:   "validate-job",
	Short: "Validate a job configuration file",
	Long:  "Checks a job configuration JSON file against the job_config schema and the authoring rules, and prints the form it defines.",
	RunE:  runValidateJob,
}

var validateJobFile string

func init() {
	validateJobCmd.Flags().StringVarP(&validateJobFile, "in", "i", "", "Path to job configuration JSON file (required)")

	if err := validateJobCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateJobCmd)
}

func runValidateJob(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateJobFile)
	if err != nil {
		return fmt.Errorf("failed to load job configuration: %w", err)
	}

	var req types.JobRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse job configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := recruitment.ValidateJobRequest(&req); err != nil {
		var ve *recruitment.ValidationError
		if errors.As(err, &ve) {
			_, _ = fmt.Fprintf(out, "%s:\n", ve.Message)
			for _, fe := range ve.Errors {
				_, _ = fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("job configuration is invalid (%d errors)", len(ve.Errors))
		}
		return err
	}

	observability.NewPrinter(out).PrintJob(&types.Job{
		Title:                req.Title,
		AdvertisementCode:    req.AdvertisementCode,
		DepartmentName:       req.DepartmentName,
		ApplicationStartDate: req.ApplicationStartDate,
		ApplicationEndDate:   req.ApplicationEndDate,
		RequiredSections:     req.RequiredSections,
		CustomFields:         req.CustomFields,
	})
	return nil
}
