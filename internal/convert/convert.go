// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF files into plain text for the extractors. Two
// backends exist: PDFText reads the text layer in-process, and Markitdown
// pipes the file through a markitdown container.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paperlens/internal/container"
	"github.com/pdiddy/paperlens/pkg/types"
)

// ErrNoText is returned when a PDF has no extractable text layer, for
// example a scanned document.
var ErrNoText = errors.New("no extractable text in PDF")

// Converter transforms a PDF file into text.
type Converter interface {
	// Convert reads the PDF at path and returns its text.
	Convert(ctx context.Context, path string) (string, error)
}

// PDFText extracts the text layer with ledongthuc/pdf.
type PDFText struct{}

// Convert returns the plain text of every page in order.
func (PDFText) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	content, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading text from %s: %w", path, err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, content); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", path, err)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return b.String(), nil
}

// New builds the converter named by kind. The markitdown backend detects a
// container runtime and checks for its image, so it fails fast when neither
// is present. An empty kind selects PDFText.
func New(ctx context.Context, cfg types.BlobConfig) (Converter, error) {
	switch cfg.Converter {
	case "", types.ConverterPDFText:
		return PDFText{}, nil
	case types.ConverterMarkitdown:
		rt, err := container.DetectRuntime(ctx, cfg.Runtime)
		if err != nil {
			return nil, err
		}
		return NewMarkitdown(ctx, rt, cfg.MarkitdownImage)
	default:
		return nil, fmt.Errorf("unknown PDF converter %q", cfg.Converter)
	}
}
