// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/paperlens/internal/container"
)

// DefaultMarkitdownImage is used when no image is configured.
const DefaultMarkitdownImage = "markitdown:latest"

// Markitdown converts PDFs by piping them through the markitdown container
// image. The output is Markdown, which the extractors treat as text.
type Markitdown struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdown checks that image exists in rt before returning.
func NewMarkitdown(ctx context.Context, rt container.Runtime, image string) (*Markitdown, error) {
	if image == "" {
		image = DefaultMarkitdownImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &Markitdown{runtime: rt, image: image}, nil
}

// Convert pipes the PDF at path through the container.
func (m *Markitdown) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", path, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("markitdown output for %s: %w", path, ErrNoText)
	}
	return out.String(), nil
}
