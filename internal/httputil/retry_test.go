// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepRecorder records requested waits without sleeping.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func getRequest(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDo_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	rec := &sleepRecorder{}
	resp, err := Do(context.Background(), ts.Client(), getRequest(ts.URL), Policy{MaxAttempts: 3, Sleep: rec.sleep})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, rec.waits)
}

func TestDo_RetriesBusyThen200(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		switch n {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer ts.Close()

	rec := &sleepRecorder{}
	resp, err := Do(context.Background(), ts.Client(), getRequest(ts.URL), Policy{MaxAttempts: 3, Sleep: rec.sleep})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{800 * time.Millisecond, 1280 * time.Millisecond}, rec.waits)
}

func TestDo_ExhaustsAttemptsOnBusy(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	rec := &sleepRecorder{}
	resp, err := Do(context.Background(), ts.Client(), getRequest(ts.URL), Policy{MaxAttempts: 3, Sleep: rec.sleep})
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	// No wait after the final attempt.
	assert.Len(t, rec.waits, 2)
}

func TestDo_NonRetryableStatusPassesThrough(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	resp, err := Do(context.Background(), ts.Client(), getRequest(ts.URL), Policy{MaxAttempts: 5, Sleep: (&sleepRecorder{}).sleep})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_AttemptTimeoutIsRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rec := &sleepRecorder{}
	resp, err := Do(context.Background(), ts.Client(), getRequest(ts.URL), Policy{
		MaxAttempts:    3,
		AttemptTimeout: 50 * time.Millisecond,
		Sleep:          rec.sleep,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, resp.Attempts)
	assert.Len(t, rec.waits, 1)
}

func TestDo_TransportFailureExhausts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close()

	rec := &sleepRecorder{}
	_, err := Do(context.Background(), http.DefaultClient, getRequest(url), Policy{MaxAttempts: 2, Sleep: rec.sleep})
	require.Error(t, err)

	var attemptErr *AttemptError
	require.ErrorAs(t, err, &attemptErr)
	assert.Equal(t, 2, attemptErr.Attempts)
	assert.Len(t, rec.waits, 1)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Real sleeps: the 800ms first backoff outlives the context.
	_, err := Do(ctx, ts.Client(), getRequest(ts.URL), Policy{MaxAttempts: 5})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.False(t, IsTimeout(context.Canceled))
	assert.False(t, IsTimeout(nil))
}
