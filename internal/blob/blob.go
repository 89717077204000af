// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blob reads document text by reference. A reference is a path
// relative to a filesystem root or an object key in a bucket. PDFs pass
// through a convert.Converter; text and Markdown files are returned as is.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pdiddy/paperlens/internal/convert"
	"github.com/pdiddy/paperlens/pkg/types"
)

var (
	// ErrNotFound is returned when a reference names no document.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidRef is returned for empty references and references that
	// escape the store root.
	ErrInvalidRef = errors.New("invalid document reference")
)

// Store returns the text of a document.
type Store interface {
	ReadDocumentText(ctx context.Context, ref string) (string, error)
}

// Document is one entry returned by List.
type Document struct {
	Ref     string
	ModTime time.Time
}

// Lister enumerates the documents a store holds. Batch runs use it.
type Lister interface {
	List(ctx context.Context) ([]Document, error)
}

// supported reports whether a file name has an extension the stores read.
func supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

func isPDF(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}

// cleanRef normalizes ref to a slash-separated relative path and rejects
// anything that would leave the root.
func cleanRef(ref string) (string, error) {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, `\`, "/"))
	if ref == "" {
		return "", ErrInvalidRef
	}
	if strings.HasPrefix(ref, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidRef, ref)
	}
	cleaned := path.Clean(ref)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q escapes the store root", ErrInvalidRef, ref)
	}
	return cleaned, nil
}

// New builds the store described by cfg: the converter, the fs or s3
// backend, and an LRU cache when CacheSize is positive.
func New(ctx context.Context, cfg types.BlobConfig) (Store, error) {
	conv, err := convert.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building PDF converter: %w", err)
	}

	var store Store
	switch cfg.Backend {
	case "", types.BlobFS:
		store = NewFSStore(cfg.Root, conv)
	case types.BlobS3:
		s3, err := NewS3Store(cfg.S3, conv)
		if err != nil {
			return nil, err
		}
		store = s3
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}

	if cfg.CacheSize > 0 {
		return NewCachedStore(store, cfg.CacheSize)
	}
	return store, nil
}
