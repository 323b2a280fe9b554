package sources

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Timeout:    2 * time.Second,
	})
}

func TestClient_GetJSON_Success(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/score/2026-03-14" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"games":[{"id":2026020001}]}`))
	})

	var envelope nhlScoreEnvelope
	if err := client.GetJSON(t.Context(), "/v1/score/2026-03-14", nil, &envelope); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if len(envelope.Games) != 1 || envelope.Games[0].ID != 2026020001 {
		t.Fatalf("unexpected payload: %+v", envelope)
	}
}

func TestClient_GetJSON_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "429 is rate limited", status: http.StatusTooManyRequests, wantErr: feed.ErrRateLimited},
		{name: "404 is not found", status: http.StatusNotFound, wantErr: feed.ErrNotFound},
		{name: "500 is transient", status: http.StatusInternalServerError, wantErr: feed.ErrTransient},
		{name: "403 is malformed", status: http.StatusForbidden, wantErr: feed.ErrMalformed},
		{name: "bad json is malformed", status: http.StatusOK, body: "{not json", wantErr: feed.ErrMalformed},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			var target map[string]any
			err := client.GetJSON(t.Context(), "/anything", nil, &target)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("unexpected error: got=%v want marker=%v", err, tc.wantErr)
			}
		})
	}
}

func TestClient_GetJSON_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		MaxRetries: 1,
	})

	var target map[string]any
	if err := client.GetJSON(t.Context(), "/x", nil, &target); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("unexpected attempt count: %d", attempts)
	}
}

func TestClient_GetJSON_OpenBreakerShortCircuits(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	breaker := resilience.NewCircuitBreaker(1, time.Minute, 1)
	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Breaker:    breaker,
	})

	var target map[string]any
	if err := client.GetJSON(t.Context(), "/x", nil, &target); !errors.Is(err, feed.ErrTransient) {
		t.Fatalf("expected transient failure, got %v", err)
	}
	if err := client.GetJSON(t.Context(), "/x", nil, &target); !errors.Is(err, feed.ErrTransient) {
		t.Fatalf("expected short-circuit failure, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("open breaker still reached upstream: calls=%d", calls)
	}
}

func TestClient_RedactsToken(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "https://example.test", Token: "sekret-token"})

	redacted := client.redact("https://example.test/x?api_key=sekret-token")
	if strings.Contains(redacted, "sekret-token") {
		t.Fatalf("token leaked: %s", redacted)
	}
}
