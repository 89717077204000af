// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction modes over HTTP",
	Long: `Serve starts the HTTP API:

  POST /api/tools/{mode}  body {"text", "document", "metadata"}
  GET  /api/history       ?q=&mode=&limit= (needs history.enabled)
  GET  /healthz

It stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := appConfig.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	var hist server.HistoryLister
	if c.history != nil {
		hist = c.history
	}
	srv, err := server.New(c.service, hist, appConfig.Server, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")

	rootCmd.AddCommand(serveCmd)
}
