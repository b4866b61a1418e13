package syncauth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newAuthenticator(t *testing.T, token *string, opts ...ConfigOption) (*Authenticator, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	if token != nil {
		_ = store.Set(context.Background(), KeyAuthToken, *token)
	}
	return NewAuthenticator(newTestConfig(t, store, opts...)), store
}

func strPtr(s string) *string { return &s }

func TestAuthenticateAttachesBearer(t *testing.T) {
	auth, _ := newAuthenticator(t, strPtr("abc123"))

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/list/all", nil)
	req.Header.Set("Accept", "application/json")

	out := auth.Authenticate(req)

	if out == req {
		t.Fatal("expected a cloned request")
	}
	if got := out.Header.Get("Authorization"); got != "Bearer abc123" {
		t.Errorf("expected Authorization 'Bearer abc123', got %q", got)
	}
	if got := out.Header.Get("Accept"); got != "application/json" {
		t.Errorf("other headers must be preserved, got Accept %q", got)
	}
	if out.Method != req.Method || out.URL.String() != req.URL.String() {
		t.Errorf("request target changed: %s %s", out.Method, out.URL)
	}
	if req.Header.Get("Authorization") != "" {
		t.Error("original request was mutated")
	}
}

func TestAuthenticatePublicEndpoints(t *testing.T) {
	for _, token := range []*string{nil, strPtr(""), strPtr("abc123")} {
		auth, _ := newAuthenticator(t, token)
		for _, path := range []string{"/auth/login", "/auth/register", "/api/v1/auth/login"} {
			req := httptest.NewRequest(http.MethodPost, "http://api.example.com"+path, nil)
			out := auth.Authenticate(req)
			if out != req {
				t.Errorf("%s: expected the original request to pass through", path)
			}
			if out.Header.Get("Authorization") != "" {
				t.Errorf("%s: auth endpoints must not carry a credential", path)
			}
		}
	}
}

func TestAuthenticateWithoutToken(t *testing.T) {
	tests := []struct {
		name  string
		token *string
	}{
		{"no token stored", nil},
		// An empty stored token is skipped silently rather than rejected.
		{"empty token stored", strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, _ := newAuthenticator(t, tt.token)
			req := httptest.NewRequest(http.MethodGet, "http://api.example.com/account/details", nil)
			out := auth.Authenticate(req)
			if out != req {
				t.Error("expected the original request to pass through")
			}
			if out.Header.Get("Authorization") != "" {
				t.Error("no header expected without a token")
			}
		})
	}
}

func TestAuthenticateStoreFailurePassesThrough(t *testing.T) {
	auth := NewAuthenticator(newTestConfig(t, newFailingStore("get")))
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/list/all", nil)
	if out := auth.Authenticate(req); out != req {
		t.Error("store failure should leave the request unmodified")
	}
}

func TestAuthenticateCustomPublicSegment(t *testing.T) {
	auth, _ := newAuthenticator(t, strPtr("abc123"), WithPublicPathSegment("/session/"))

	public := httptest.NewRequest(http.MethodPost, "http://api.example.com/session/new", nil)
	if auth.Authenticate(public) != public {
		t.Error("custom public segment should pass through")
	}

	protected := httptest.NewRequest(http.MethodPost, "http://api.example.com/auth/login", nil)
	if auth.Authenticate(protected).Header.Get("Authorization") == "" {
		t.Error("/auth/ is no longer public once the segment is overridden")
	}
}

func TestTransportRoundTrip(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+"|"+r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	auth, store := newAuthenticator(t, strPtr("abc123"))
	client := &http.Client{Transport: auth.Transport(server.Client().Transport)}

	for _, path := range []string{"/list/all", "/auth/login"} {
		resp, err := client.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
	}

	_ = store.Remove(context.Background(), KeyAuthToken)
	resp, err := client.Get(server.URL + "/list/all")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()

	expected := []string{"/list/all|Bearer abc123", "/auth/login|", "/list/all|"}
	if strings.Join(seen, ",") != strings.Join(expected, ",") {
		t.Errorf("server saw %v, want %v", seen, expected)
	}
}

func TestAuthenticatorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	auth, _ := newAuthenticator(t, strPtr("abc123"), WithRegisterer(reg))

	auth.Authenticate(httptest.NewRequest(http.MethodGet, "http://x/list/all", nil))
	auth.Authenticate(httptest.NewRequest(http.MethodGet, "http://x/list/1", nil))
	auth.Authenticate(httptest.NewRequest(http.MethodPost, "http://x/auth/login", nil))

	if got := testutil.ToFloat64(auth.cfg.metrics.requests.WithLabelValues(outcomeAttached)); got != 2 {
		t.Errorf("expected 2 attached requests, got %v", got)
	}
	if got := testutil.ToFloat64(auth.cfg.metrics.requests.WithLabelValues(outcomePublic)); got != 1 {
		t.Errorf("expected 1 public request, got %v", got)
	}
}
