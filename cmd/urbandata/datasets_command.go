package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"urbandata/internal/clean"
	"urbandata/internal/dataset"
	"urbandata/internal/fileutil"
)

func newDatasetsCommand(ctx *commandContext) *cobra.Command {
	var showURLs bool

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List configured datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			headers := []string{"Name", "Kind", "Delimiter", "Raw", "Clean file"}
			if showURLs {
				headers = append(headers, "URL")
			}
			var rows [][]string
			for _, d := range dataset.FromConfig(cfg) {
				kind := d.Kind
				if _, ok := clean.Lookup(d.Kind); !ok {
					kind += " (no recipe)"
				}
				raw, _ := fileutil.Exists(d.RawPath)
				row := []string{d.Name, kind, strconv.QuoteRune(d.Delimiter), yesNo(raw), baseName(d.CleanPath)}
				if showURLs {
					row = append(row, d.URL)
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showURLs, "urls", false, "Include source URLs")
	return cmd
}
