package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run scheduled jobs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			for _, name := range env.services.NewScheduler(env.cfg, env.logger).Jobs() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run <name>...",
		Short: "Run jobs once and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			scheduler := env.services.NewScheduler(env.cfg, env.logger)
			if err := scheduler.RunOnce(cmd.Context(), args...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ran %d job(s)\n", len(args))
			return nil
		},
	}

	jobsCmd.AddCommand(listCmd, runCmd)
	return jobsCmd
}
