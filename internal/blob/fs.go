// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/paperlens/internal/convert"
)

// FSStore reads documents from a directory tree.
type FSStore struct {
	root string
	conv convert.Converter
}

// NewFSStore returns a store rooted at root. An empty root means the
// working directory.
func NewFSStore(root string, conv convert.Converter) *FSStore {
	if root == "" {
		root = "."
	}
	return &FSStore{root: root, conv: conv}
}

// Root returns the directory the store reads from.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) ReadDocumentText(ctx context.Context, ref string) (string, error) {
	rel, err := cleanRef(ref)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", ref, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrInvalidRef, ref)
	}

	if isPDF(rel) {
		return s.conv.Convert(ctx, full)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", ref, err)
	}
	return string(data), nil
}

// List returns every supported document under the root, sorted by ref.
func (s *FSStore) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !supported(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		docs = append(docs, Document{Ref: filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.root, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref < docs[j].Ref })
	return docs, nil
}
