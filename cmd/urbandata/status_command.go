package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"urbandata/internal/catalog"
	"urbandata/internal/config"
	"urbandata/internal/dataset"
	"urbandata/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show data directories, dataset files and the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			configLabel := ctx.configPath
			if _, statErr := os.Stat(configLabel); statErr != nil {
				configLabel = "defaults (no config file)"
			}
			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configLabel, colorize))

			fmt.Fprintln(out, renderSectionHeader("Checks", colorize))
			checks := preflight.RunAll(cmd.Context(), cfg)
			if online {
				checks = append(checks, preflight.CheckDatasetURLs(cmd.Context(), cfg)...)
			}
			for _, line := range checkLines(checks, colorize) {
				fmt.Fprintln(out, line)
			}

			fmt.Fprintln(out, renderSectionHeader("Datasets", colorize))
			fmt.Fprintln(out, renderTable(
				[]string{"Dataset", "Raw", "Fetched", "Clean", "Cleaned"},
				datasetStatusRows(dataset.FromConfig(cfg), time.Now()),
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			))

			if cfg.Catalog.Enabled {
				fmt.Fprintln(out, renderSectionHeader("Last run", colorize))
				writeLastRun(cmd.Context(), out, cfg, colorize)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "Also probe every dataset URL")
	return cmd
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func datasetStatusRows(descriptors []dataset.Descriptor, now time.Time) [][]string {
	rows := make([][]string, 0, len(descriptors))
	for _, d := range descriptors {
		rawSize, rawAge := fileSummary(d.RawPath, now)
		cleanSize, cleanAge := fileSummary(d.CleanPath, now)
		rows = append(rows, []string{d.Name, rawSize, rawAge, cleanSize, cleanAge})
	}
	return rows
}

func fileSummary(path string, now time.Time) (string, string) {
	info, err := os.Stat(path)
	if err != nil {
		return "-", "never"
	}
	return humanize.IBytes(uint64(info.Size())), humanize.RelTime(info.ModTime(), now, "ago", "from now")
}

func writeLastRun(ctx context.Context, out io.Writer, cfg *config.Config, colorize bool) {
	store, err := catalog.Open(cfg)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Catalog", statusError, err.Error(), colorize))
		return
	}
	defer store.Close()

	run, err := store.LatestRun(ctx)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Catalog", statusError, err.Error(), colorize))
		return
	}
	if run == nil {
		fmt.Fprintln(out, renderStatusLine("Run", statusInfo, "none recorded", colorize))
		return
	}
	kind := statusOK
	if run.Failed > 0 {
		kind = statusWarn
	}
	if !run.Finished() {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Run", kind, fmt.Sprintf("%s (%s, %s)", run.ID, run.Command, humanize.Time(run.StartedAt)), colorize))
	fmt.Fprintln(out, renderStatusLine("Outcome", kind, fmt.Sprintf("%d fetched, %d skipped, %d cleaned, %d failed",
		run.Fetched, run.Skipped, run.Cleaned, run.Failed), colorize))
	if !run.Finished() {
		fmt.Fprintln(out, renderStatusLine("Finished", statusWarn, "no (interrupted or still running)", colorize))
	}
}

func baseName(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}
