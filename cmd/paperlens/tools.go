// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/pkg/types"
)

// modeCommands describes the single-document subcommands.
var modeCommands = []struct {
	mode  types.Mode
	short string
	long  string
}{
	{types.ModeTLDR, "Print a one-sentence takeaway of at most 50 words",
		`TL;DR prefers the inline text (an abstract) over the document. It calls
the configured model when a token is set and falls back to a heuristic that
picks the sentence reporting results, conclusions or aims.`},
	{types.ModeSummary, "Print a short summary",
		`Summary prefers the inline text over the document. Without a model it
joins the first four substantial sentences.`},
	{types.ModeMethods, "Print a methods checklist",
		`Methods scans the text for research approach, design, setting, sample
size, instruments, software, analysis and outcome terms. Categories with no
match are left out.`},
	{types.ModeRecommendations, "List the recommendations the authors make",
		`Recommendations prefers the document text, since it keeps the line
structure of numbered and lettered lists. It tries list items, headed
recommendation sections, and a sentence classifier, then asks the model when
nothing matched.`},
	{types.ModeRefScan, "List the entries of the references section",
		`Refscan finds the references or bibliography heading and rebuilds one
entry per reference, with year and DOI when present.`},
}

func init() {
	for _, mc := range modeCommands {
		mode := mc.mode
		cmd := &cobra.Command{
			Use:   string(mode) + " [document]",
			Short: mc.short,
			Long: mc.long + `

The document is a path relative to the blob root, or an object key for the
s3 backend. Use --text for inline text, or --text - to read it from stdin.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMode(cmd, mode, args)
			},
		}
		cmd.Flags().String("text", "", "inline text (use - to read stdin)")
		cmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml")
		rootCmd.AddCommand(cmd)
	}
}

func runMode(cmd *cobra.Command, mode types.Mode, args []string) error {
	text, err := inlineText(cmd)
	if err != nil {
		return err
	}
	req := types.ExtractionRequest{Mode: mode, Text: text}
	if len(args) == 1 {
		req.DocumentRef = args[0]
	}
	if req.Text == "" && req.DocumentRef == "" {
		return fmt.Errorf("%s needs a document argument or --text", mode)
	}

	c, err := buildComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer c.close()

	res, err := c.service.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	return writeOutput(cmd.OutOrStdout(), format, res.Text, res)
}

func inlineText(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	if text != "-" {
		return text, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
