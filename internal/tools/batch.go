// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/internal/blob"
	"github.com/pdiddy/paperlens/pkg/types"
)

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// RunBatch runs mode over every document the blob store lists and writes
// each result to outDir as <doc>.<ext>-<mode>.yaml, keeping the document's
// subdirectory. Documents whose output is newer than the document are
// skipped. Progress lines go to w. Citations need per-work metadata and
// cannot run in a batch.
func (s *Service) RunBatch(ctx context.Context, mode types.Mode, outDir string, w io.Writer) (BatchSummary, error) {
	if !mode.Valid() {
		return BatchSummary{}, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	if mode == types.ModeCitations {
		return BatchSummary{}, fmt.Errorf("mode %s cannot run in a batch", mode)
	}
	lister, ok := s.blobs.(blob.Lister)
	if !ok {
		return BatchSummary{}, fmt.Errorf("document store %T cannot list documents", s.blobs)
	}

	docs, err := lister.List(ctx)
	if err != nil {
		return BatchSummary{}, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	var summary BatchSummary
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outPath := OutputPath(outDir, doc.Ref, mode)

		changed, err := hasChanged(doc.ModTime, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.Ref, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", doc.Ref)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "extracting %s\n", doc.Ref)

		res, err := s.Run(ctx, types.ExtractionRequest{Mode: mode, DocumentRef: doc.Ref})
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.Ref, err)
			summary.Failed++
			continue
		}
		if res.NoContent {
			fmt.Fprintf(w, "failed  %s: no readable text\n", doc.Ref)
			summary.Failed++
			continue
		}

		if err := writeResult(outPath, res); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", doc.Ref, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%s)\n", doc.Ref, res.Source)
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// OutputPath returns where a batch run writes the result for ref. The
// document's extension stays in the name so paper.pdf and paper.txt get
// separate results.
func OutputPath(outDir, ref string, mode types.Mode) string {
	return filepath.Join(outDir, filepath.FromSlash(ref)+"-"+string(mode)+".yaml")
}

// hasChanged reports whether the document is newer than its output, or
// the output does not exist yet.
func hasChanged(docTime time.Time, outPath string) (bool, error) {
	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}
	return docTime.After(outInfo.ModTime()), nil
}

// writeResult marshals the result to a YAML file.
func writeResult(outPath string, res types.ExtractionResult) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
