// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Format APA, IEEE and BibTeX citations for a work",
	Long: `Cite formats one work in APA, IEEE and BibTeX. Authors may be separated
by ";", "&" or "and", and written "Last, First" or "First Last". A missing
year becomes "n.d." and a missing author becomes "Author".

--format csl prints a CSL-YAML entry that Pandoc and reference managers read.`,
	Example: `  paperlens cite --author "Dela Cruz, Juan; Ana Santos" --title "Effects of x on y" --year 2023`,
	Args:    cobra.NoArgs,
	RunE:    runCite,
}

func runCite(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	year, _ := cmd.Flags().GetString("year")
	categories, _ := cmd.Flags().GetStringSlice("category")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	format, _ := cmd.Flags().GetString("format")

	c, err := buildComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer c.close()

	res, err := c.service.Run(cmd.Context(), types.ExtractionRequest{
		Mode: types.ModeCitations,
		Metadata: &types.CitationMetadata{
			Title:      title,
			Author:     author,
			Year:       year,
			Categories: categories,
			GenreTags:  tags,
		},
	})
	if err != nil {
		return err
	}

	if format == "csl" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), res.CSL)
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, res.Text, res.Citations)
}

func init() {
	citeCmd.Flags().String("title", "", "title of the work")
	citeCmd.Flags().String("author", "", "author list")
	citeCmd.Flags().String("year", "", "publication year")
	citeCmd.Flags().StringSlice("category", nil, "subject category (repeatable)")
	citeCmd.Flags().StringSlice("tag", nil, "genre tag (repeatable)")
	citeCmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml, csl")

	rootCmd.AddCommand(citeCmd)
}
