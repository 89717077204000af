// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blob

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore keeps the text of recently read documents in memory. Only
// successful reads are cached.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, string]
}

// NewCachedStore wraps inner with an LRU cache of size entries.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating document cache: %w", err)
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) ReadDocumentText(ctx context.Context, ref string) (string, error) {
	key, err := cleanRef(ref)
	if err != nil {
		return "", err
	}
	if text, ok := s.cache.Get(key); ok {
		return text, nil
	}
	text, err := s.inner.ReadDocumentText(ctx, ref)
	if err != nil {
		return "", err
	}
	s.cache.Add(key, text)
	return text, nil
}

// List delegates to the wrapped store when it can list.
func (s *CachedStore) List(ctx context.Context) ([]Document, error) {
	l, ok := s.inner.(Lister)
	if !ok {
		return nil, fmt.Errorf("%T cannot list documents", s.inner)
	}
	return l.List(ctx)
}

// Len returns the number of cached documents.
func (s *CachedStore) Len() int { return s.cache.Len() }
