// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inference calls a hosted summarization model over HTTP.
// Every call resolves to an Outcome; transport trouble, busy models and
// malformed replies become a Failure that callers downgrade to heuristics.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paperlens/internal/httputil"
)

// Defaults applied when a Call leaves a field zero.
const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 30 * time.Second
)

// FailureClass names why a call failed.
type FailureClass string

const (
	FailureNetwork   FailureClass = "network"
	FailureBusy      FailureClass = "busy"
	FailureHTTP      FailureClass = "http"
	FailureMalformed FailureClass = "malformed"
	FailureCanceled  FailureClass = "canceled"
)

// Failure describes the last error of an unsuccessful call.
type Failure struct {
	Class    FailureClass
	Status   int
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("inference %s failure after %d attempt(s)", f.Class, f.Attempts)
	if f.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", f.Status)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// Outcome is either a success carrying Text or a Failure.
type Outcome struct {
	Text    string
	Failure *Failure
}

// Succeeded reports whether the call produced a reply.
func (o Outcome) Succeeded() bool { return o.Failure == nil }

// Call is one model invocation.
type Call struct {
	ModelID     string
	Input       string
	Parameters  map[string]any
	Token       string
	MaxAttempts int
	Timeout     time.Duration
}

// Client posts to {Endpoint}/{modelId}.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger

	// sleep overrides the backoff wait in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient returns a client for the given endpoint.
func NewClient(endpoint string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		HTTPClient: &http.Client{},
		Logger:     logger,
	}
}

type requestBody struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type replyItem struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// CallModel sends c to the provider, retrying network failures, 429 and 503
// with a growing backoff. It never returns an error; inspect the Outcome.
func (cl *Client) CallModel(ctx context.Context, c Call) Outcome {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	log := cl.logger().With(zap.String("model", c.ModelID))

	body, err := json.Marshal(requestBody{Inputs: c.Input, Parameters: c.Parameters})
	if err != nil {
		return fail(FailureMalformed, 0, 0, fmt.Errorf("encoding request: %w", err))
	}
	url := cl.Endpoint + "/" + c.ModelID

	attempt := 0
	newRequest := func(ctx context.Context) (*http.Request, error) {
		attempt++
		log.Debug("inference attempt", zap.Int("attempt", attempt), zap.Int("max_attempts", c.MaxAttempts))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		}
		return req, nil
	}

	start := time.Now()
	resp, err := httputil.Do(ctx, cl.HTTPClient, newRequest, httputil.Policy{
		MaxAttempts:    c.MaxAttempts,
		AttemptTimeout: c.Timeout,
		Sleep:          cl.sleep,
	})
	if err != nil {
		out := classifyError(err, attempt)
		log.Warn("inference call failed",
			zap.String("class", string(out.Failure.Class)),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return out
	}

	switch {
	case httputil.DefaultRetryable(resp.StatusCode):
		log.Warn("inference provider busy", zap.Int("status", resp.StatusCode), zap.Int("attempts", resp.Attempts))
		return fail(FailureBusy, resp.StatusCode, resp.Attempts, fmt.Errorf("provider busy: %s", snippet(resp.Body)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Warn("inference provider error", zap.Int("status", resp.StatusCode))
		return fail(FailureHTTP, resp.StatusCode, resp.Attempts, fmt.Errorf("provider returned %d: %s", resp.StatusCode, snippet(resp.Body)))
	}

	text, err := parseReply(resp.Body)
	if err != nil {
		log.Warn("inference reply malformed", zap.Error(err))
		return fail(FailureMalformed, resp.StatusCode, resp.Attempts, err)
	}
	log.Info("inference call succeeded",
		zap.Int("attempts", resp.Attempts),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(text)))
	return Outcome{Text: text}
}

func (cl *Client) logger() *zap.Logger {
	if cl.Logger == nil {
		return zap.NewNop()
	}
	return cl.Logger
}

func fail(class FailureClass, status, attempts int, err error) Outcome {
	return Outcome{Failure: &Failure{Class: class, Status: status, Attempts: attempts, Err: err}}
}

func classifyError(err error, attempts int) Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var attemptErr *httputil.AttemptError
		if !errors.As(err, &attemptErr) {
			return fail(FailureCanceled, 0, attempts, err)
		}
	}
	return fail(FailureNetwork, 0, attempts, err)
}

// parseReply accepts either [{...}] or {...} and returns summary_text,
// falling back to generated_text. A missing field yields "".
func parseReply(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", errors.New("empty reply body")
	}

	var item replyItem
	if trimmed[0] == '[' {
		var items []replyItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", fmt.Errorf("decoding reply array: %w", err)
		}
		if len(items) > 0 {
			item = items[0]
		}
	} else if err := json.Unmarshal(trimmed, &item); err != nil {
		return "", fmt.Errorf("decoding reply object: %w", err)
	}

	if s := strings.TrimSpace(item.SummaryText); s != "" {
		return s, nil
	}
	return strings.TrimSpace(item.GeneratedText), nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
