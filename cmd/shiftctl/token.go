package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		claims jwt.Claims
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if claims.CompanyID == "" {
				return fmt.Errorf("--company is required")
			}
			if claims.EmployeeID == "" && !claims.IsAdmin {
				return fmt.Errorf("--employee is required unless --admin is set")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			expiration := cfg.JWT.AccessExpiration
			if ttl > 0 {
				expiration = ttl.String()
			}
			if claims.UserID == "" {
				claims.UserID = "shiftctl"
			}

			token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, expiration).GenerateAccessToken(claims)
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&claims.CompanyID, "company", "", "company ID")
	cmd.Flags().StringVar(&claims.EmployeeID, "employee", "", "employee ID")
	cmd.Flags().StringVar(&claims.UserID, "user", "", "user ID (default \"shiftctl\")")
	cmd.Flags().BoolVar(&claims.IsAdmin, "admin", false, "grant admin privileges")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_ACCESS_EXPIRATION_TIME)")
	return cmd
}
