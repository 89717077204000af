// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store) {
	t.Helper()
	runs := []types.Run{
		{ID: "r1", Mode: types.ModeTLDR, DocumentRef: "theses/a.pdf", Source: types.SourceHeuristic, Output: "Tutoring improved scores.", CreatedAt: base},
		{ID: "r2", Mode: types.ModeRefScan, DocumentRef: "b.pdf", Source: types.SourceRules, Output: "Found 3 reference(s)", CreatedAt: base.Add(time.Minute)},
		{ID: "r3", Mode: types.ModeTLDR, Source: types.SourceModel, Output: "50% of users_ preferred the app.", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "r4", Mode: types.ModeSummary, Source: types.SourceHeuristic, NoContent: true, Output: "No readable text available.", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, r := range runs {
		require.NoError(t, s.Record(context.Background(), r))
	}
}

func ids(runs []types.Run) []string {
	var out []string
	for _, r := range runs {
		out = append(out, r.ID)
	}
	return out
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	run, err := s.Get(context.Background(), "r4")
	require.NoError(t, err)
	assert.Equal(t, types.ModeSummary, run.Mode)
	assert.True(t, run.NoContent)
	assert.Equal(t, "", run.DocumentRef)
	assert.True(t, run.CreatedAt.Equal(base.Add(3*time.Minute)))

	_, err = s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordFillsIDAndTime(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Record(context.Background(), types.Run{Mode: types.ModeMethods, Source: types.SourceRules, Output: "x"}))

	runs, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].ID, 36)
	assert.WithinDuration(t, time.Now(), runs[0].CreatedAt, time.Minute)
}

func TestRecordRejectsDuplicateID(t *testing.T) {
	s := openStore(t)
	run := types.Run{ID: "same", Mode: types.ModeTLDR, Source: types.SourceRules, Output: "x"}
	require.NoError(t, s.Record(context.Background(), run))
	assert.Error(t, s.Record(context.Background(), run))
}

func TestRecentNewestFirst(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	runs, err := s.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"r4", "r3"}, ids(runs))
}

func TestSearch(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		text string
		want []string
	}{
		{"tutoring", []string{"r1"}},
		{"THESES/", []string{"r1"}},
		{"50%", []string{"r3"}},
		{"users_", []string{"r3"}},
		{"_", []string{"r3"}},
		{"missing", nil},
	}
	for _, tt := range tests {
		runs, err := s.Search(ctx, tt.text, 10)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ids(runs), "search %q", tt.text)
	}
}

func TestListByMode(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	runs, err := s.List(context.Background(), Query{Mode: types.ModeTLDR})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(runs))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, clampLimit(0))
	assert.Equal(t, defaultLimit, clampLimit(-5))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, maxLimit, clampLimit(maxLimit+1))
}

func TestExportYAML(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatYAML, Query{Mode: types.ModeRefScan}))

	var runs []types.Run
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "b.pdf", runs[0].DocumentRef)
}

func TestExportJSON(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatJSON, Query{}))

	var runs []types.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &runs))
	assert.Equal(t, []string{"r4", "r3", "r2", "r1"}, ids(runs))

	buf.Reset()
	require.NoError(t, s.ExportJSON(context.Background(), &buf, Query{Text: "nothing matches"}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportXLSX(t *testing.T) {
	s := openStore(t)
	seed(t, s)

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatXLSX, Query{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Output", rows[0][6])
	assert.Equal(t, "r4", rows[1][0])
	assert.Equal(t, "summary", rows[1][2])
}

func TestExportUnknownFormat(t *testing.T) {
	s := openStore(t)
	err := s.Export(context.Background(), &bytes.Buffer{}, "csv", Query{})
	assert.ErrorContains(t, err, `unknown export format "csv"`)
}
