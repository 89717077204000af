// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default backoff settings for hosted model endpoints: the first wait is
// 800ms and each later wait is 1.6 times the previous one.
const (
	DefaultInitialBackoff = 800 * time.Millisecond
	DefaultMultiplier     = 1.6
	defaultMaxAttempts    = 3
	maxBodyBytes          = 8 << 20
)

// Policy controls how Do retries a request.
type Policy struct {
	// MaxAttempts is the total number of requests sent, including the first.
	// Zero uses 3.
	MaxAttempts int

	// InitialBackoff is the wait after the first retryable failure. Zero
	// uses DefaultInitialBackoff.
	InitialBackoff time.Duration

	// Multiplier grows the wait after each retryable failure. Values below
	// 1 use DefaultMultiplier.
	Multiplier float64

	// AttemptTimeout bounds each request, body read included. Zero means
	// only the caller's context applies.
	AttemptTimeout time.Duration

	// Retryable reports whether a status code warrants another attempt.
	// Nil retries 429 and 503.
	Retryable func(status int) bool

	// Sleep waits between attempts. Nil uses a context-aware timer. Tests
	// substitute a recorder.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Response is the final HTTP exchange of a Do call. The body is fully read
// inside the attempt so it stays valid after the attempt's context ends.
type Response struct {
	StatusCode int
	Body       []byte
	Attempts   int
}

// AttemptError reports that every attempt failed at the transport level.
type AttemptError struct {
	Attempts int
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// DefaultRetryable retries HTTP 429 (rate limited) and 503 (model loading).
func DefaultRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// Do sends the request built by newRequest until it gets a non-retryable
// answer or the attempts run out. Transport errors (timeouts included) and
// retryable status codes trigger a backoff; any other status is returned at
// once. When attempts run out on a retryable status, the last response is
// returned with a nil error so the caller can inspect it. When they run out
// on transport errors, an *AttemptError is returned. Cancelling ctx stops
// the loop and returns ctx.Err().
func Do(ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error), p Policy) (*Response, error) {
	p = p.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}

	backoff := p.InitialBackoff
	var lastErr error
	var last *Response

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		resp, err := p.attempt(ctx, client, newRequest)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			last = nil
		} else {
			resp.Attempts = attempt
			if !p.Retryable(resp.StatusCode) {
				return resp, nil
			}
			last = resp
			lastErr = nil
		}

		if attempt == p.MaxAttempts {
			break
		}
		if err := p.Sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff = time.Duration(float64(backoff) * p.Multiplier)
	}

	if last != nil {
		return last, nil
	}
	return nil, &AttemptError{Attempts: p.MaxAttempts, Err: lastErr}
}

func (p Policy) attempt(ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	attemptCtx := ctx
	if p.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()
	}

	req, err := newRequest(attemptCtx)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultMultiplier
	}
	if p.Retryable == nil {
		p.Retryable = DefaultRetryable
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTimeout reports whether err came from a deadline, either the attempt's
// own timeout or a transport-level one.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
