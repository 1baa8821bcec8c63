package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/shift-payroll-go/internal/app"
	"github.com/cmlabs-hris/shift-payroll-go/internal/config"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shiftctl",
		Short:         "Admin tool for the shift payroll service",
		Long:          "shiftctl validates and imports shift presets, mints development tokens and runs scheduled jobs on demand.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newPresetCmd())
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newMigrateCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// environment is everything a database-backed command needs. Callers must Close it.
type environment struct {
	cfg      *config.Config
	db       *database.DB
	services *app.Services
	logger   *slog.Logger
}

func openEnvironment() (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &environment{
		cfg:      cfg,
		db:       db,
		services: app.NewServices(cfg, db),
		logger:   logger,
	}, nil
}

func (e *environment) Close() {
	e.db.Close()
}
