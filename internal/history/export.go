// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

const (
	exportLimit = maxLimit
	sheetName   = "Runs"
)

// Export writes the runs matching q to w in format.
func (s *Store) Export(ctx context.Context, w io.Writer, format string, q Query) error {
	switch format {
	case FormatYAML:
		return s.ExportYAML(ctx, w, q)
	case FormatJSON:
		return s.ExportJSON(ctx, w, q)
	case FormatXLSX:
		return s.ExportXLSX(ctx, w, q)
	default:
		return fmt.Errorf("unknown export format %q (want yaml, json or xlsx)", format)
	}
}

// ExportYAML writes the matching runs as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, q Query) error {
	runs, err := s.exportRuns(ctx, q)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the matching runs as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, q Query) error {
	runs, err := s.exportRuns(ctx, q)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []types.Run{}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ExportXLSX writes the matching runs to a single-sheet workbook with a
// header row.
func (s *Store) ExportXLSX(ctx context.Context, w io.Writer, q Query) error {
	runs, err := s.exportRuns(ctx, q)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet so the workbook has exactly one.
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headers := []string{"ID", "Created", "Mode", "Document", "Source", "No Content", "Output"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, run := range runs {
		row := i + 2
		values := []any{
			run.ID,
			run.CreatedAt.UTC().Format(time.RFC3339),
			string(run.Mode),
			run.DocumentRef,
			string(run.Source),
			run.NoContent,
			run.Output,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "D", 32)
	_ = f.SetColWidth(sheetName, "G", "G", 80)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func (s *Store) exportRuns(ctx context.Context, q Query) ([]types.Run, error) {
	q.Limit = exportLimit
	runs, err := s.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return runs, nil
}
