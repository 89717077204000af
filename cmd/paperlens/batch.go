// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <mode>",
	Short: "Run one mode over every document in the store",
	Long: `Batch runs a mode over every PDF, text and Markdown document the blob
store lists and writes one YAML result per document to the output directory
as <document>-<mode>.yaml, for example paper.pdf-tldr.yaml. Documents whose
result is newer than the document are skipped, so reruns only process new or
changed files.

--dir overrides the blob root for the fs backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	mode, err := types.ParseMode(args[0])
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		appConfig.Blob.Root = dir
	}
	outDir, _ := cmd.Flags().GetString("out")

	c, err := buildComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer c.close()

	summary, err := c.service.RunBatch(cmd.Context(), mode, outDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed", summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("dir", "", "document directory (fs backend)")
	batchCmd.Flags().String("out", "results", "output directory for YAML results")

	rootCmd.AddCommand(batchCmd)
}
