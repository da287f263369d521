// Package main provides the entry point for the faculty recruitment API
// server and its operator commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recruit_api",
	Short: "Faculty Recruitment API Server",
	Long:  "Faculty Recruitment accepts job applications with job-defined sections, validates them section by section and gates submission on the whole form.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
