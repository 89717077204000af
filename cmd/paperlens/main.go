// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperlens CLI. Each extraction
// mode is a subcommand; serve exposes the same modes over HTTP.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paperlens/internal/secrets"
	"github.com/pdiddy/paperlens/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is loaded before any subcommand runs.
	appConfig types.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "Extract summaries, methods, recommendations and citations from research papers",
	Long: `paperlens reads research-paper text or PDFs and produces a TL;DR, a
summary, a methods checklist, a recommendations list, a reference list, or
APA/IEEE/BibTeX citations.

When an inference token is configured, tldr and summary call a hosted
summarization model and fall back to local heuristics on any failure.
Without a token every mode runs locally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine.
		_ = godotenv.Load()

		cfg, err := loadConfig(viperInstance)
		if err != nil {
			return err
		}

		l, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		logger = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		if used := secrets.Apply(&cfg, s); len(used) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", used))
		}

		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperlens.yaml or ~/.config/paperlens/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viperInstance.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
