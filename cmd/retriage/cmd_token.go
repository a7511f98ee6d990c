package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-retriage/internal/auth"
)

var (
	tokenOperator string
	tokenRole     string
)

// issueTokenCmd prints a signed operator token
var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue an operator token for the admin API",
	Long: `Sign a bearer token with AUTH_JWT_SECRET for the admin routes
(/api/v1/admin/...). The token expires after AUTH_ACCESS_TOKEN_TTL_MINUTES.`,
	RunE: runIssueToken,
}

func init() {
	issueTokenCmd.Flags().StringVar(&tokenOperator, "operator", "", "Operator name recorded in the token")
	issueTokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "Role granted by the token")
	_ = issueTokenCmd.MarkFlagRequired("operator")
}

func runIssueToken(cmd *cobra.Command, args []string) error {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	token, expiresAt, err := tokens.GenerateToken(tokenOperator, tokenRole)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
