// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/internal/history"
	"github.com/pdiddy/paperlens/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query and export past runs",
	Long: `History reads the SQLite run log written when history.enabled is set.
Every tools run, from the CLI or the HTTP API, is recorded with its mode,
document, source and output.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List recent runs, optionally matching a query",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	q, err := historyQuery(cmd, args)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), q)
	if err != nil {
		return err
	}

	switch format {
	case "", "text":
		return printRuns(cmd.OutOrStdout(), runs)
	default:
		if runs == nil {
			runs = []types.Run{}
		}
		return writeOutput(cmd.OutOrStdout(), format, "", runs)
	}
}

func printRuns(w io.Writer, runs []types.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	for _, r := range runs {
		doc := r.DocumentRef
		if doc == "" {
			doc = "(inline)"
		}
		first, _, _ := strings.Cut(r.Output, "\n")
		if _, err := fmt.Fprintf(w, "%s  %-15s %-9s %s\n    %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Source, doc, first); err != nil {
			return err
		}
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export runs as YAML, JSON or an Excel workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	q, err := historyQuery(cmd, args)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	if format == history.FormatXLSX && output == "" {
		return errors.New("xlsx export needs --output")
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(cmd.Context(), w, format, q); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
	}
	return nil
}

// --- helpers ---

func openHistory() (*history.Store, error) {
	if !appConfig.History.Enabled {
		return nil, errors.New("history is disabled; set history.enabled to true")
	}
	return history.Open(appConfig.History.Path)
}

func historyQuery(cmd *cobra.Command, args []string) (history.Query, error) {
	var q history.Query
	if len(args) == 1 {
		q.Text = args[0]
	}
	if m, _ := cmd.Flags().GetString("mode"); m != "" {
		mode, err := types.ParseMode(m)
		if err != nil {
			return q, err
		}
		q.Mode = mode
	}
	if cmd.Flags().Lookup("limit") != nil {
		q.Limit, _ = cmd.Flags().GetInt("limit")
	}
	return q, nil
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("mode", "", "only runs of this mode")
	}
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs")
	historyListCmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml")
	historyExportCmd.Flags().StringP("format", "f", history.FormatYAML, "export format: yaml, json, xlsx")
	historyExportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
