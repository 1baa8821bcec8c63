package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/presetfile"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/validator"
	shiftService "github.com/cmlabs-hris/shift-payroll-go/internal/service/shift"
	"github.com/spf13/cobra"
)

func newPresetCmd() *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Work with shift preset definition files",
	}
	presetCmd.AddCommand(newPresetCheckCmd(), newPresetResolveCmd(), newPresetImportCmd())
	return presetCmd
}

func loadValidPresets(path string) ([]shift.CreateShiftPresetRequest, error) {
	reqs, err := presetfile.Load(path)
	if err != nil {
		return nil, err
	}
	if err := presetfile.Validate(reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func newPresetCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.toml>",
		Short: "Validate preset definitions without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := loadValidPresets(args[0])
			if err != nil {
				return err
			}
			for _, r := range reqs {
				fmt.Fprintf(cmd.OutOrStdout(), "ok  %s (%d segments)\n", r.Name, len(r.Segments))
			}
			return nil
		},
	}
}

func newPresetResolveCmd() *cobra.Command {
	var (
		name string
		zone string
		at   string
	)

	cmd := &cobra.Command{
		Use:   "resolve <file.toml>",
		Short: "Show which segment of a preset is active at an instant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validator.IsValidTimeZone(zone) {
				return fmt.Errorf("unknown time zone %q", zone)
			}
			reqs, err := loadValidPresets(args[0])
			if err != nil {
				return err
			}
			req, err := presetfile.Find(reqs, name)
			if err != nil {
				return err
			}

			instant := time.Now()
			if at != "" {
				if instant, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
			}

			preset := req.ToPreset("")
			resolved, err := shiftService.ResolveActiveSegment(preset, instant, zone)
			if err != nil {
				return err
			}
			if resolved == nil {
				return fmt.Errorf("%w at %s in %s", shift.ErrNoActiveSegment, instant.Format(time.RFC3339), zone)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resolved.ToResponse(resolved.IsLateAt(instant, zone)))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "preset name (required when the file defines several)")
	cmd.Flags().StringVar(&zone, "zone", "UTC", "IANA time zone of the employee")
	cmd.Flags().StringVar(&at, "at", "", "instant to resolve, RFC3339 (default now)")
	return cmd
}

func newPresetImportCmd() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "import <file.toml>",
		Short: "Create the presets of a file for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if companyID == "" {
				return fmt.Errorf("--company is required")
			}
			reqs, err := loadValidPresets(args[0])
			if err != nil {
				return err
			}

			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			token, _, err := env.services.JWT.GenerateAccessToken(jwt.Claims{UserID: "shiftctl", CompanyID: companyID, IsAdmin: true})
			if err != nil {
				return err
			}
			ctx, err := jwt.VerifiedContext(cmd.Context(), env.services.JWT.JWTAuth(), token)
			if err != nil {
				return err
			}

			for _, req := range reqs {
				created, err := env.services.Shift.CreatePreset(ctx, req)
				if err != nil {
					return fmt.Errorf("importing %q: %w", req.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s\n", created.ID, created.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company ID")
	return cmd
}
