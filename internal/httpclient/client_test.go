package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(client.Close)
	return client
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		client := newTestClient(t, nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("zero values filled in", func(t *testing.T) {
		client := newTestClient(t, &Config{})
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("explicit values kept", func(t *testing.T) {
		client := newTestClient(t, &Config{
			DefaultTimeout: 5 * time.Second,
			UserAgent:      "sxcat-go-test/0.0",
		})
		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "sxcat-go-test/0.0", client.userAgent)
	})

	t.Run("caller config not mutated", func(t *testing.T) {
		cfg := Config{}
		newTestClient(t, &cfg)
		assert.Zero(t, cfg.DefaultTimeout)
	})
}

func TestDoInjectsUserAgent(t *testing.T) {
	var gotUA atomic.Value
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, &Config{UserAgent: "sxcat-go/9.9"})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(t.Context(), req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "sxcat-go/9.9", gotUA.Load())

	// A request that already carries an agent keeps it.
	req, err = http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "archive-mirror/1.0")
	resp, err = client.Do(t.Context(), req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "archive-mirror/1.0", gotUA.Load())
}

func TestDoNilRequest(t *testing.T) {
	client := newTestClient(t, nil)
	_, err := client.Do(t.Context(), nil)
	require.Error(t, err)
}

func TestDoDefaultTimeout(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, &Config{DefaultTimeout: 50 * time.Millisecond})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	// t.Context has no deadline, so the client's own timeout must fire.
	_, err = client.Do(t.Context(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoContextDeadlineWins(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	// The default timeout is shorter than the handler, but the request
	// deadline is the one that counts.
	client := newTestClient(t, &Config{DefaultTimeout: 10 * time.Millisecond})

	ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(ctx, req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoCancelledContext(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGet(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("spectrum bytes"))
	})

	client := newTestClient(t, nil)

	resp, err := client.Get(t.Context(), server.URL)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "spectrum bytes", string(body))
}

func TestDisableCompression(t *testing.T) {
	var gotEncoding atomic.Value
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotEncoding.Store(r.Header.Get("Accept-Encoding"))
		w.WriteHeader(http.StatusOK)
	})

	t.Run("default requests gzip", func(t *testing.T) {
		client := newTestClient(t, nil)
		resp, err := client.Get(t.Context(), server.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Contains(t, gotEncoding.Load(), "gzip")
	})

	t.Run("disabled leaves wire bytes alone", func(t *testing.T) {
		client := newTestClient(t, &Config{DisableCompression: true})
		resp, err := client.Get(t.Context(), server.URL)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.NotContains(t, gotEncoding.Load(), "gzip")
	})
}

func TestConcurrentRequests(t *testing.T) {
	var requests atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, nil)

	g, ctx := errgroup.WithContext(t.Context())
	for range 32 {
		g.Go(func() error {
			resp, err := client.Get(ctx, server.URL)
			if err != nil {
				return err
			}
			return resp.Body.Close()
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(32), requests.Load())
}

func TestCloseIsIdempotent(t *testing.T) {
	client := New(nil)
	client.Close()
	client.Close()
}
