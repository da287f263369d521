package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/config"
	"github.com/jonathan/faculty-recruitment/internal/server"
	"github.com/jonathan/faculty-recruitment/internal/types"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token",
	Long:  "Mints a bearer token for a user id and role, signed with JWT_SECRET. The API itself never issues tokens.",
	RunE:  runToken,
}

var (
	tokenUserID string
	tokenRole   string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "User ID (a new random ID when empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "Role: applicant, reviewer or admin (required)")

	if err := tokenCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	principal, err := parsePrincipal(tokenUserID, tokenRole)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtConfig).GenerateToken(principal)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func parsePrincipal(userID, role string) (types.Principal, error) {
	p := types.Principal{Role: types.Role(role)}
	if !p.Role.IsValid() {
		return types.Principal{}, fmt.Errorf("invalid role %q (want applicant, reviewer or admin)", role)
	}
	if userID == "" {
		p.ID = uuid.New()
		return p, nil
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return types.Principal{}, fmt.Errorf("invalid user ID %q: %w", userID, err)
	}
	p.ID = id
	return p, nil
}
