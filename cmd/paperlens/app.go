// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/internal/blob"
	"github.com/pdiddy/paperlens/internal/history"
	"github.com/pdiddy/paperlens/internal/inference"
	"github.com/pdiddy/paperlens/internal/tools"
)

// components holds what a command needs. close releases the history
// database when one was opened.
type components struct {
	service *tools.Service
	history *history.Store
}

func (c *components) close() {
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			logger.Warn("closing history", zap.Error(err))
		}
	}
}

// buildComponents wires the blob store, inference client and history
// store from appConfig.
func buildComponents(ctx context.Context) (*components, error) {
	blobs, err := blob.New(ctx, appConfig.Blob)
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	var model inference.Caller
	if appConfig.Inference.Enabled() {
		model = inference.NewClient(appConfig.Inference.Endpoint, logger)
	} else {
		logger.Debug("no inference token configured, using heuristics")
	}

	c := &components{service: tools.NewService(blobs, model, appConfig.Inference, logger)}
	if appConfig.History.Enabled {
		store, err := history.Open(appConfig.History.Path)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		c.history = store
		c.service.Recorder = store
	}
	return c, nil
}

// writeOutput prints v as YAML or JSON, or text as is.
func writeOutput(w io.Writer, format, text string, v any) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprintln(w, text)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
