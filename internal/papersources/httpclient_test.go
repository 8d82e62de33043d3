package papersources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	provider string
	endpoint string
	outcome  string
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveUpstreamRequest(provider, endpoint, outcome string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{provider: provider, endpoint: endpoint, outcome: outcome})
}

func (r *recordingObserver) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.seen))
	for i, o := range r.seen {
		out[i] = o.outcome
	}
	return out
}

func newTestHTTPClient(obs RequestObserver) *HTTPClient {
	return NewHTTPClient(HTTPClientConfig{
		Provider:  "openalex",
		Timeout:   2 * time.Second,
		RateLimit: 100,
		BurstSize: 10,
		UserAgent: "TestAgent/1.0",
		Observer:  obs,
	})
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("applies default values", func(t *testing.T) {
		client := NewHTTPClient(HTTPClientConfig{})

		require.NotNil(t, client)
		assert.Equal(t, DefaultTimeout, client.Timeout())
		assert.Equal(t, 15*time.Second, client.client.Timeout)
		assert.Equal(t, DefaultUserAgent, client.UserAgent())
		assert.Equal(t, float64(10), client.rateLimiter.Limit())
		assert.Equal(t, 10, client.rateLimiter.Burst())
	})

	t.Run("keeps custom config", func(t *testing.T) {
		client := NewHTTPClient(HTTPClientConfig{
			Timeout:   3 * time.Second,
			RateLimit: 5,
			BurstSize: 2,
			UserAgent: "Custom/2.0",
		})

		assert.Equal(t, 3*time.Second, client.Timeout())
		assert.Equal(t, "Custom/2.0", client.UserAgent())
		assert.Equal(t, 2, client.rateLimiter.Burst())
	})
}

func TestHTTPClient_GetJSON(t *testing.T) {
	t.Run("decodes body and sends headers", func(t *testing.T) {
		var gotUA, gotAccept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"ok","count":3}`))
		}))
		defer server.Close()

		obs := &recordingObserver{}
		client := newTestHTTPClient(obs)

		var out struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}
		err := client.GetJSON(context.Background(), "search", server.URL, &out)

		require.NoError(t, err)
		assert.Equal(t, "ok", out.Name)
		assert.Equal(t, 3, out.Count)
		assert.Equal(t, "TestAgent/1.0", gotUA)
		assert.Equal(t, "application/json", gotAccept)
		require.Len(t, obs.seen, 1)
		assert.Equal(t, observation{provider: "openalex", endpoint: "search", outcome: OutcomeSuccess}, obs.seen[0])
	})

	t.Run("non-2xx returns status error without retrying", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("busy"))
		}))
		defer server.Close()

		obs := &recordingObserver{}
		client := newTestHTTPClient(obs)

		var out map[string]any
		err := client.GetJSON(context.Background(), "search", server.URL, &out)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		assert.Equal(t, "busy", statusErr.Body)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Equal(t, []string{OutcomeHTTPError}, obs.outcomes())
	})

	t.Run("404 is observed as not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		obs := &recordingObserver{}
		client := newTestHTTPClient(obs)

		var out map[string]any
		err := client.GetJSON(context.Background(), "lookup", server.URL, &out)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, "unexpected status 404", statusErr.Error())
		assert.Equal(t, []string{OutcomeNotFound}, obs.outcomes())
	})

	t.Run("malformed json is a decode error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		obs := &recordingObserver{}
		client := newTestHTTPClient(obs)

		var out map[string]any
		err := client.GetJSON(context.Background(), "search", server.URL, &out)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding response")
		assert.Equal(t, []string{OutcomeDecodeError}, obs.outcomes())
	})

	t.Run("slow upstream times out", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		obs := &recordingObserver{}
		client := NewHTTPClient(HTTPClientConfig{
			Provider:  "crossref",
			Timeout:   50 * time.Millisecond,
			RateLimit: 100,
			Observer:  obs,
		})

		var out map[string]any
		err := client.GetJSON(context.Background(), "search", server.URL, &out)

		require.Error(t, err)
		assert.Equal(t, []string{OutcomeTimeout}, obs.outcomes())
	})

	t.Run("unreachable host is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		obs := &recordingObserver{}
		client := newTestHTTPClient(obs)

		var out map[string]any
		err := client.GetJSON(context.Background(), "search", url, &out)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "executing request")
		assert.Equal(t, []string{OutcomeTransportError}, obs.outcomes())
	})

	t.Run("works without observer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100})

		var out map[string]any
		assert.NoError(t, client.GetJSON(context.Background(), "search", server.URL, &out))
	})
}

func TestHTTPClient_GetJSON_StatusClasses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
		outcome string
	}{
		{name: "200 ok", status: http.StatusOK, outcome: OutcomeSuccess},
		{name: "203 from a caching proxy", status: http.StatusNonAuthoritativeInfo, outcome: OutcomeSuccess},
		{name: "206 partial content", status: http.StatusPartialContent, outcome: OutcomeSuccess},
		{name: "301 not followed", status: http.StatusMovedPermanently, wantErr: true, outcome: OutcomeHTTPError},
		{name: "404", status: http.StatusNotFound, wantErr: true, outcome: OutcomeNotFound},
		{name: "500", status: http.StatusInternalServerError, wantErr: true, outcome: OutcomeHTTPError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"name":"ok"}`))
			}))
			defer server.Close()

			obs := &recordingObserver{}
			client := newTestHTTPClient(obs)

			var out struct {
				Name string `json:"name"`
			}
			err := client.GetJSON(context.Background(), "search", server.URL, &out)

			if tt.wantErr {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.status, statusErr.StatusCode)
				assert.Empty(t, out.Name)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ok", out.Name)
			}
			assert.Equal(t, []string{tt.outcome}, obs.outcomes())
		})
	}
}

func TestHTTPClient_Do_KeepsExplicitUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := newTestHTTPClient(nil)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "Explicit/1.0")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Explicit/1.0", gotUA)
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "unexpected status 500: boom", (&StatusError{StatusCode: 500, Body: "boom"}).Error())
	assert.Equal(t, "unexpected status 502", (&StatusError{StatusCode: 502}).Error())
}

func TestUserAgentWithContact(t *testing.T) {
	assert.Equal(t, "ResearchMetadataAPI/1.0 (mailto:ops@example.com)", UserAgentWithContact("", "ops@example.com"))
	assert.Equal(t, "Custom/2.0 (mailto:a@b.c)", UserAgentWithContact("Custom/2.0", "a@b.c"))
	assert.Equal(t, "Custom/2.0", UserAgentWithContact("Custom/2.0", ""))
}
