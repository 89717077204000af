// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools dispatches extraction requests to the normalizer, the
// heuristic engine, the structured extractors and the citation formatter.
// It resolves document text from the blob store, calls the hosted model
// when a token is configured, and downgrades to heuristics on any model
// failure. Missing text yields a NoContent result, never an error.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paperlens/internal/blob"
	"github.com/pdiddy/paperlens/internal/citation"
	"github.com/pdiddy/paperlens/internal/extract"
	"github.com/pdiddy/paperlens/internal/heuristic"
	"github.com/pdiddy/paperlens/internal/inference"
	"github.com/pdiddy/paperlens/internal/normalize"
	"github.com/pdiddy/paperlens/pkg/types"
)

// ErrUnknownMode is returned by Run for a mode outside types.Modes.
var ErrUnknownMode = errors.New("unknown mode")

// Messages for requests that carry nothing to work on.
const (
	NoDocumentText = "No readable text was found in the document or the request."
	NoMetadata     = "No citation metadata was provided."
)

// Recorder stores finished runs. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, run types.Run) error
}

// Service runs extraction requests. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	blobs  blob.Store
	model  inference.Caller
	cfg    types.InferenceConfig
	logger *zap.Logger

	// Recorder, when set, receives every result Run returns.
	Recorder Recorder
}

// NewService wires the collaborators. blobs and model may be nil: without
// a store only inline text is used, and without a model every mode runs
// on heuristics and rules.
func NewService(blobs blob.Store, model inference.Caller, cfg types.InferenceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WordBudget <= 0 {
		cfg.WordBudget = normalize.DefaultWordBudget
	}
	return &Service{blobs: blobs, model: model, cfg: cfg, logger: logger}
}

// Run executes one request.
func (s *Service) Run(ctx context.Context, req types.ExtractionRequest) (types.ExtractionResult, error) {
	var (
		res types.ExtractionResult
		err error
	)
	switch req.Mode {
	case types.ModeTLDR:
		res = s.tldr(ctx, req)
	case types.ModeSummary:
		res = s.summary(ctx, req)
	case types.ModeMethods:
		res = s.methods(ctx, req)
	case types.ModeRecommendations:
		res = s.recommendations(ctx, req)
	case types.ModeRefScan:
		res = s.refscan(ctx, req)
	case types.ModeCitations:
		res, err = s.citations(req)
	default:
		return types.ExtractionResult{}, fmt.Errorf("%w %q", ErrUnknownMode, req.Mode)
	}
	if err != nil {
		return types.ExtractionResult{}, err
	}
	res.Mode = req.Mode
	s.record(ctx, req, res)
	return res, nil
}

func (s *Service) record(ctx context.Context, req types.ExtractionRequest, res types.ExtractionResult) {
	if s.Recorder == nil {
		return
	}
	run := types.Run{
		Mode:        res.Mode,
		DocumentRef: req.DocumentRef,
		Source:      res.Source,
		NoContent:   res.NoContent,
		Output:      res.Text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Recorder.Record(ctx, run); err != nil {
		s.logger.Warn("recording run failed", zap.String("mode", string(res.Mode)), zap.Error(err))
	}
}

// source picks the text a mode works on. preferDocument selects the blob
// text over inline text when both exist. Blob errors are logged and the
// inline text is used.
func (s *Service) source(ctx context.Context, req types.ExtractionRequest, preferDocument bool) types.SourceDocument {
	inline := req.Text
	var doc string
	if ref := strings.TrimSpace(req.DocumentRef); ref != "" && s.blobs != nil {
		text, err := s.blobs.ReadDocumentText(ctx, ref)
		switch {
		case errors.Is(err, blob.ErrNotFound):
			s.logger.Info("document not found, using inline text", zap.String("document", ref))
		case err != nil:
			s.logger.Warn("reading document failed, using inline text", zap.String("document", ref), zap.Error(err))
		default:
			doc = text
		}
	}

	raw := inline
	switch {
	case preferDocument && strings.TrimSpace(doc) != "":
		raw = doc
	case strings.TrimSpace(inline) == "":
		raw = doc
	}
	return types.SourceDocument{RawText: raw, NormalizedText: normalize.Normalize(raw)}
}

// modelInput is what tldr and summary send to the provider: the cleaned
// abstract span, capped at the word budget.
func (s *Service) modelInput(doc types.SourceDocument) string {
	text := normalize.ExtractAbstract(normalize.CleanForSummary(doc.RawText))
	return normalize.TruncateWords(text, s.cfg.WordBudget)
}

// callModel returns the model's text, or "" after logging why it could
// not be used.
func (s *Service) callModel(ctx context.Context, mode types.Mode, modelID, input string, params map[string]any) string {
	if s.model == nil || !s.cfg.Enabled() || modelID == "" {
		return ""
	}
	out := s.model.CallModel(ctx, inference.Call{
		ModelID:     modelID,
		Input:       input,
		Parameters:  params,
		Token:       s.cfg.Token,
		MaxAttempts: s.cfg.MaxAttempts,
		Timeout:     s.cfg.Timeout,
	})
	if !out.Succeeded() {
		s.logger.Warn("model call failed, using heuristic",
			zap.String("mode", string(mode)),
			zap.String("model", modelID),
			zap.String("class", string(out.Failure.Class)),
			zap.Int("attempts", out.Failure.Attempts),
			zap.Error(out.Failure.Err),
		)
		return ""
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		s.logger.Info("model returned empty text, using heuristic", zap.String("mode", string(mode)))
	}
	return text
}

func (s *Service) tldr(ctx context.Context, req types.ExtractionRequest) types.ExtractionResult {
	doc := s.source(ctx, req, false)
	if doc.IsEmpty() {
		return types.ExtractionResult{Text: heuristic.NoTakeaway, Source: types.SourceHeuristic, NoContent: true}
	}

	model := s.cfg.TLDRModel
	if model == "" {
		model = s.cfg.SummaryModel
	}
	params := map[string]any{"max_length": 60, "min_length": 10, "do_sample": false}
	if text := heuristic.Takeaway(s.callModel(ctx, types.ModeTLDR, model, s.modelInput(doc), params)); text != "" {
		return types.ExtractionResult{Text: text, Source: types.SourceModel}
	}
	return types.ExtractionResult{Text: heuristic.TLDR(doc.RawText), Source: types.SourceHeuristic}
}

func (s *Service) summary(ctx context.Context, req types.ExtractionRequest) types.ExtractionResult {
	doc := s.source(ctx, req, false)
	if doc.IsEmpty() {
		return types.ExtractionResult{Text: heuristic.NoReadableText, Source: types.SourceHeuristic, NoContent: true}
	}

	params := map[string]any{"max_length": 200, "min_length": 60, "do_sample": false}
	if text := s.callModel(ctx, types.ModeSummary, s.cfg.SummaryModel, s.modelInput(doc), params); text != "" {
		return types.ExtractionResult{Text: text, Source: types.SourceModel}
	}
	return types.ExtractionResult{Text: heuristic.Summary(doc.RawText), Source: types.SourceHeuristic}
}

func (s *Service) methods(ctx context.Context, req types.ExtractionRequest) types.ExtractionResult {
	doc := s.source(ctx, req, false)
	if doc.IsEmpty() {
		return types.ExtractionResult{Text: NoDocumentText, Source: types.SourceRules, NoContent: true}
	}
	checklist := extract.Methods(doc.NormalizedText)
	return types.ExtractionResult{
		Text:      extract.MethodsMarkdown(checklist),
		Source:    types.SourceRules,
		Checklist: &checklist,
	}
}

func (s *Service) recommendations(ctx context.Context, req types.ExtractionRequest) types.ExtractionResult {
	doc := s.source(ctx, req, true)
	if doc.IsEmpty() {
		return types.ExtractionResult{Text: NoDocumentText, Source: types.SourceRules, NoContent: true}
	}

	items, source, err := extract.Recommendations(ctx, doc.RawText, s.completer())
	if err != nil {
		s.logger.Warn("model recommendations failed", zap.Error(err))
	}
	return types.ExtractionResult{
		Text:            extract.RecommendationsMarkdown(items),
		Source:          source,
		Recommendations: items,
	}
}

// completer returns the recommendation backend, or nil when model calls
// are disabled. A nil interface value keeps the extractor from calling it.
func (s *Service) completer() extract.AIBackend {
	if s.model == nil || !s.cfg.Enabled() || s.cfg.RecommendationModel == "" {
		return nil
	}
	return inference.Completer{
		Client:      s.model,
		ModelID:     s.cfg.RecommendationModel,
		Token:       s.cfg.Token,
		MaxAttempts: s.cfg.MaxAttempts,
		Timeout:     s.cfg.Timeout,
		Parameters:  map[string]any{"max_new_tokens": 400, "return_full_text": false},
	}
}

func (s *Service) refscan(ctx context.Context, req types.ExtractionRequest) types.ExtractionResult {
	doc := s.source(ctx, req, true)
	if doc.IsEmpty() {
		return types.ExtractionResult{Text: NoDocumentText, Source: types.SourceRules, NoContent: true}
	}
	entries := extract.ScanReferences(doc.RawText)
	return types.ExtractionResult{
		Text:       extract.ReferencesMarkdown(entries),
		Source:     types.SourceRules,
		References: entries,
	}
}

func (s *Service) citations(req types.ExtractionRequest) (types.ExtractionResult, error) {
	meta := req.Metadata
	if meta == nil {
		return types.ExtractionResult{Text: NoMetadata, Source: types.SourceRules, NoContent: true}, nil
	}

	set := citation.Format(meta.Author, meta.Title, meta.Year)
	var csl bytes.Buffer
	if err := citation.WriteCSL(&csl, citation.CSL(*meta)); err != nil {
		return types.ExtractionResult{}, fmt.Errorf("rendering CSL: %w", err)
	}
	return types.ExtractionResult{
		Text:      CitationsMarkdown(set),
		Source:    types.SourceRules,
		Citations: &set,
		CSL:       csl.String(),
	}, nil
}

// CitationsMarkdown renders the three dialects under bold labels.
func CitationsMarkdown(set types.CitationSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**APA:** %s\n\n", set.APA)
	fmt.Fprintf(&b, "**IEEE:** %s\n\n", set.IEEE)
	fmt.Fprintf(&b, "**BibTeX:**\n\n```bibtex\n%s\n```", set.BibTeX)
	return b.String()
}
