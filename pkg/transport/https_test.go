package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.ClientID = "TEST1"
	cfg.RetryAttempts = 0
	client := NewClient(cfg, nil)
	// Talk plain HTTP to the httptest server.
	client.rest.SetTransport(http.DefaultTransport)
	return client, srv
}

func TestDo_CapturesStatusHeadersBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TEST1", r.Header.Get(HeaderClientID))
		w.Header().Set(HeaderRequestID, "REQ-42")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"count":3}`))
	}))

	res, err := client.Do(context.Background(), http.MethodGet, "/messages/count", nil, KindJSON)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "REQ-42", res.RequestID())
	assert.Equal(t, `{"count":3}`, string(res.Body))
}

func TestDo_IndependentResultsPerCall(t *testing.T) {
	var n atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			w.Header().Set(HeaderRequestID, "FIRST")
		} else {
			w.Header().Set(HeaderRequestID, "SECOND")
		}
		w.Write([]byte("ok"))
	}))

	first, err := client.Do(context.Background(), http.MethodGet, "/a", nil, KindJSON)
	require.NoError(t, err)
	second, err := client.Do(context.Background(), http.MethodGet, "/b", nil, KindJSON)
	require.NoError(t, err)

	assert.Equal(t, "FIRST", first.RequestID())
	assert.Equal(t, "SECOND", second.RequestID())
}

func TestDo_DeleteNotFoundIsSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	res, err := client.Do(context.Background(), http.MethodDelete, "/messages/gone", nil, KindJSON)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDo_GetNotFoundIsError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such message", http.StatusNotFound)
	}))

	_, err := client.Do(context.Background(), http.MethodGet, "/messages/gone", nil, KindJSON)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.False(t, apiErr.Retryable())
}

func TestDo_EmptyBodyClassification(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		status  int
		wantErr bool
	}{
		{"accepted", http.MethodPost, http.StatusAccepted, false},
		{"no content", http.MethodPost, http.StatusNoContent, false},
		{"delete ok", http.MethodDelete, http.StatusOK, false},
		{"get ok empty", http.MethodGet, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.Do(context.Background(), tt.method, "/x", nil, KindJSON)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var n atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	client.rest.SetRetryCount(1)
	client.rest.SetRetryWaitTime(0).SetRetryAfter(nil)

	res, err := client.Do(context.Background(), http.MethodGet, "/flaky", nil, KindJSON)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(res.Body))
	assert.Equal(t, int32(2), n.Load())
}

func TestDo_BackoffGrowsPerAttempt(t *testing.T) {
	if testing.Short() {
		t.Skip("measures real retry backoff")
	}

	var mu sync.Mutex
	var attempts []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts = append(attempts, time.Now())
		mu.Unlock()
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.RetryAttempts = 2
	client := NewClient(cfg, nil)

	_, err := client.Do(context.Background(), http.MethodGet, "/down", nil, KindJSON)
	require.Error(t, err)
	require.Len(t, attempts, 3)

	// 2s before the first retry, 4s before the second. The upper bounds
	// guard against the client cap silently truncating the second wait.
	gap1 := attempts[1].Sub(attempts[0])
	gap2 := attempts[2].Sub(attempts[1])
	assert.InDelta(t, (2 * time.Second).Seconds(), gap1.Seconds(), 0.5, "first backoff %v", gap1)
	assert.InDelta(t, (4 * time.Second).Seconds(), gap2.Seconds(), 0.5, "second backoff %v", gap2)
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	var n atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	client.rest.SetRetryCount(2)

	_, err := client.Do(context.Background(), http.MethodGet, "/bad", nil, KindJSON)
	require.Error(t, err)
	assert.Equal(t, int32(1), n.Load())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate([]byte("abc"), 1000))
	assert.Equal(t, "ab", Truncate([]byte("abcd"), 2))
}
