// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the tools service over HTTP.
//
//	POST /api/tools/{mode}  run one extraction
//	GET  /api/history       list recorded runs (?q=, ?mode=, ?limit=)
//	GET  /healthz           liveness
//
// Request bodies are validated against an embedded JSON Schema before they
// reach the service.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/paperlens/internal/history"
	"github.com/pdiddy/paperlens/internal/tools"
	"github.com/pdiddy/paperlens/pkg/types"
)

const (
	defaultMaxBodyBytes = 4 << 20
	shutdownTimeout     = 10 * time.Second
)

//go:embed request.schema.json
var requestSchema string

// Runner runs extraction requests. *tools.Service implements it.
type Runner interface {
	Run(ctx context.Context, req types.ExtractionRequest) (types.ExtractionResult, error)
}

// HistoryLister lists recorded runs. *history.Store implements it.
type HistoryLister interface {
	List(ctx context.Context, q history.Query) ([]types.Run, error)
}

// Server holds the HTTP handlers.
type Server struct {
	tools   Runner
	history HistoryLister
	logger  *zap.Logger
	maxBody int64
	schema  *jsonschema.Schema
}

// requestBody is the JSON body of POST /api/tools/{mode}.
type requestBody struct {
	Text     string                  `json:"text"`
	Document string                  `json:"document"`
	Metadata *types.CitationMetadata `json:"metadata"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// New builds a server. hist may be nil when history is disabled.
func New(runner Runner, hist HistoryLister, cfg types.ServerConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("request.schema.json", bytes.NewReader([]byte(requestSchema))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("request.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Server{tools: runner, history: hist, logger: logger, maxBody: maxBody, schema: schema}, nil
}

// Handler returns the routed handler wrapped in request ID, access log
// and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tools/{mode}", s.handleTool)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return requestID(accessLog(s.logger, cors(mux)))
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	mode, err := types.ParseMode(r.PathValue("mode"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", s.maxBody))
			return
		}
		writeError(w, r, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	req, err := s.decodeRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Mode = mode

	res, err := s.tools.Run(r.Context(), req)
	switch {
	case errors.Is(err, tools.ErrUnknownMode):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("tool run failed", zap.String("mode", string(mode)), zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "tool run failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeRequest validates body against the request schema and decodes it.
// An empty body is an empty request.
func (s *Server) decodeRequest(body []byte) (types.ExtractionRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return types.ExtractionRequest{}, nil
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return types.ExtractionRequest{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return types.ExtractionRequest{}, fmt.Errorf("request does not match schema: %w", err)
	}

	var rb requestBody
	if err := json.Unmarshal(body, &rb); err != nil {
		return types.ExtractionRequest{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return types.ExtractionRequest{Text: rb.Text, DocumentRef: rb.Document, Metadata: rb.Metadata}, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, r, http.StatusNotFound, "run history is disabled")
		return
	}

	q := history.Query{Text: r.URL.Query().Get("q")}
	if m := r.URL.Query().Get("mode"); m != "" {
		mode, err := types.ParseMode(m)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		q.Mode = mode
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", l))
			return
		}
		q.Limit = limit
	}

	runs, err := s.history.List(r.Context(), q)
	if err != nil {
		s.logger.Error("listing history failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "listing history failed")
		return
	}
	if runs == nil {
		runs = []types.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg, RequestID: RequestID(r.Context())})
}
