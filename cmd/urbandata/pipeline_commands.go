package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"urbandata/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch every dataset, then clean every dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx)
		},
	}
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [dataset...]",
		Short: "Download datasets whose raw file is missing",
		Long:  "Download the named datasets (all when none are given) into the bronze\narea. Datasets whose raw file already exists are skipped; delete the\nfile to force a new download.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			report, err := runner.RunFetch(cmd.Context(), args...)
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [dataset...]",
		Short: "Rebuild silver tables from existing raw files",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			report, err := runner.RunClean(cmd.Context(), args...)
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}
}

// runPipeline never fails on dataset errors; they are reported in the table.
func runPipeline(cmd *cobra.Command, ctx *commandContext) error {
	runner, err := ctx.runner()
	if err != nil {
		return err
	}
	printReport(cmd, runner.Run(cmd.Context()))
	return nil
}

func printReport(cmd *cobra.Command, report pipeline.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderReport(report))
	counts := report.Counts()
	fmt.Fprintf(out, "Run %s: %d fetched, %d skipped, %d cleaned, %d failed in %s\n",
		report.RunID, counts.Fetched, counts.Skipped, counts.Cleaned, counts.Failed,
		report.Duration().Round(durationRounding(report)))
	if report.LogPath != "" {
		fmt.Fprintf(out, "Run log: %s\n", report.LogPath)
	}
}
