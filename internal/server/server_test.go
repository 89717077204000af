// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperlens/internal/history"
	"github.com/pdiddy/paperlens/internal/tools"
	"github.com/pdiddy/paperlens/pkg/types"
)

// fakeRunner records the request and returns a canned result.
type fakeRunner struct {
	got types.ExtractionRequest
	res types.ExtractionResult
	err error
}

func (f *fakeRunner) Run(_ context.Context, req types.ExtractionRequest) (types.ExtractionResult, error) {
	f.got = req
	if f.err != nil {
		return types.ExtractionResult{}, f.err
	}
	res := f.res
	res.Mode = req.Mode
	return res, nil
}

type fakeHistory struct {
	q    history.Query
	runs []types.Run
	err  error
}

func (f *fakeHistory) List(_ context.Context, q history.Query) ([]types.Run, error) {
	f.q = q
	return f.runs, f.err
}

func newTestServer(t *testing.T, runner Runner, hist HistoryLister, maxBody int64) http.Handler {
	t.Helper()
	s, err := New(runner, hist, types.ServerConfig{MaxBodyBytes: maxBody}, nil)
	require.NoError(t, err)
	return s.Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var eb errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	return eb
}

func TestToolEndpoint(t *testing.T) {
	runner := &fakeRunner{res: types.ExtractionResult{Text: "Found that X improved performance.", Source: types.SourceHeuristic}}
	h := newTestServer(t, runner, nil, 0)

	rec := do(h, http.MethodPost, "/api/tools/TLDR", `{"text":"abstract text","document":"a.pdf"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res types.ExtractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, types.ModeTLDR, res.Mode)
	assert.Equal(t, "Found that X improved performance.", res.Text)

	assert.Equal(t, types.ExtractionRequest{Mode: types.ModeTLDR, Text: "abstract text", DocumentRef: "a.pdf"}, runner.got)
}

func TestToolEndpointCitations(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestServer(t, runner, nil, 0)

	rec := do(h, http.MethodPost, "/api/tools/citations", `{"metadata":{"title":"t","author":"Lee, A.","year":"2020","categories":["Education"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, runner.got.Metadata)
	assert.Equal(t, "Lee, A.", runner.got.Metadata.Author)
	assert.Equal(t, []string{"Education"}, runner.got.Metadata.Categories)
}

func TestToolEndpointEmptyBody(t *testing.T) {
	runner := &fakeRunner{res: types.ExtractionResult{NoContent: true}}
	h := newTestServer(t, runner, nil, 0)

	rec := do(h, http.MethodPost, "/api/tools/summary", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.ModeSummary, runner.got.Mode)
}

func TestToolEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		want   int
		msg    string
	}{
		{"unknown mode", "/api/tools/poetry", `{}`, nil, http.StatusNotFound, "unknown mode"},
		{"malformed JSON", "/api/tools/tldr", `{"text":`, nil, http.StatusBadRequest, "invalid JSON"},
		{"wrong type", "/api/tools/tldr", `{"text":42}`, nil, http.StatusBadRequest, "does not match schema"},
		{"unknown field", "/api/tools/tldr", `{"txt":"x"}`, nil, http.StatusBadRequest, "does not match schema"},
		{"bad metadata", "/api/tools/citations", `{"metadata":{"year":2020}}`, nil, http.StatusBadRequest, "does not match schema"},
		{"service unknown mode", "/api/tools/tldr", `{}`, tools.ErrUnknownMode, http.StatusNotFound, "unknown mode"},
		{"service failure", "/api/tools/tldr", `{}`, errors.New("boom"), http.StatusInternalServerError, "tool run failed"},
		{"too large", "/api/tools/tldr", `{"text":"` + strings.Repeat("x", 200) + `"}`, nil, http.StatusRequestEntityTooLarge, "exceeds 64 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeRunner{err: tt.err}, nil, 64)
			rec := do(h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			eb := decodeError(t, rec)
			assert.Contains(t, eb.Error, tt.msg)
			assert.NotEmpty(t, eb.RequestID)
		})
	}
}

func TestToolEndpointRejectsGet(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil, 0)
	rec := do(h, http.MethodGet, "/api/tools/tldr", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &fakeHistory{runs: []types.Run{{ID: "r1", Mode: types.ModeTLDR, Output: "x"}}}
	h := newTestServer(t, &fakeRunner{}, hist, 0)

	rec := do(h, http.MethodGet, "/api/history?q=tutoring&mode=tldr&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, history.Query{Text: "tutoring", Mode: types.ModeTLDR, Limit: 5}, hist.q)

	var runs []types.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
}

func TestHistoryEndpointErrors(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil, 0)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/history", "").Code)

	h = newTestServer(t, &fakeRunner{}, &fakeHistory{}, 0)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/history?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/history?mode=poetry", "").Code)

	rec := do(h, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	h = newTestServer(t, &fakeRunner{}, &fakeHistory{err: errors.New("db locked")}, 0)
	assert.Equal(t, http.StatusInternalServerError, do(h, http.MethodGet, "/api/history", "").Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil, 0)
	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil, 0)

	rec := do(h, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	assert.NoError(t, err)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, incoming)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid\r\n")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(HeaderRequestID))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil, 0)
	req := httptest.NewRequest(http.MethodOptions, "/api/tools/tldr", nil)
	req.Header.Set("Origin", "https://repo.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://repo.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s, err := New(&fakeRunner{}, nil, types.ServerConfig{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.ListenAndServe(ctx, "127.0.0.1:0"))
}
