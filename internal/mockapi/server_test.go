package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/syncup/syncup-go/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("test-secret-key-at-least-32-bytes-long!!")

func newTestServer(t *testing.T, opts ...ConfigOption) *Server {
	t.Helper()
	cfg, err := NewConfig(append([]ConfigOption{WithHS256(testSecret), WithBcryptCost(bcrypt.MinCost)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	return NewServer(cfg)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func registerBody(username, email, password string) map[string]string {
	return map[string]string{
		"firstName": "Test",
		"lastName":  "User",
		"username":  username,
		"email":     email,
		"password":  password,
	}
}

func TestBindingMessagesUseJSONNames(t *testing.T) {
	s := newTestServer(t)

	body := registerBody("", "not-an-email", "short")
	delete(body, "firstName")
	w := doJSON(t, s, http.MethodPost, "/auth/register", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message api.ErrorMessage `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := []string{
		"firstName is required",
		"username is required",
		"email must be a valid email",
		"password must be at least 8 characters",
	}
	got := resp.Message.Values()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedInBody string
		arrayMessage   bool
	}{
		{
			name:           "new user is created",
			body:           registerBody("alice", "alice@example.com", "password123"),
			expectedStatus: http.StatusCreated,
			expectedInBody: "User registered successfully",
		},
		{
			name:           "duplicate username conflicts",
			body:           registerBody("ALICE", "other@example.com", "password123"),
			expectedStatus: http.StatusConflict,
			expectedInBody: "Username already exists",
		},
		{
			name:           "duplicate email conflicts",
			body:           registerBody("bob", "alice@example.com", "password123"),
			expectedStatus: http.StatusConflict,
			expectedInBody: "Email already exists",
		},
		{
			name:           "binding errors come back as a list",
			body:           registerBody("", "not-an-email", "short"),
			expectedStatus: http.StatusBadRequest,
			arrayMessage:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/auth/register", "", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedInBody != "" && !strings.Contains(w.Body.String(), tt.expectedInBody) {
				t.Errorf("expected %q in body, got %s", tt.expectedInBody, w.Body.String())
			}
			if tt.arrayMessage {
				var body struct {
					Message api.ErrorMessage `json:"message"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if !body.Message.IsMultiple() || len(body.Message.Values()) != 3 {
					t.Errorf("expected three messages, got %v", body.Message.Values())
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	now := time.Unix(1735324800, 0)
	s := newTestServer(t, WithClock(func() time.Time { return now }))
	if err := s.SeedUser("alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name           string
		username       string
		password       string
		expectedStatus int
	}{
		{"valid credentials", "alice", "password123", http.StatusOK},
		{"username is case-insensitive", "Alice", "password123", http.StatusOK},
		{"unknown user", "mallory", "password123", http.StatusNotFound},
		{"wrong password", "alice", "password124", http.StatusUnauthorized},
		{"missing password", "alice", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
				"username": tt.username,
				"password": tt.password,
			})
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}

			var resp api.TokenResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode token: %v", err)
			}
			claims := jwt.MapClaims{}
			if _, _, err := jwt.NewParser().ParseUnverified(resp.Token, claims); err != nil {
				t.Fatalf("parse token: %v", err)
			}
			if claims["sub"] != "alice" {
				t.Errorf("expected canonical subject alice, got %v", claims["sub"])
			}
			if claims["iat"] != float64(now.Unix()) || claims["exp"] != float64(now.Add(DefaultTokenTTL).Unix()) {
				t.Errorf("unexpected iat/exp: %v/%v", claims["iat"], claims["exp"])
			}
		})
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t)
	if err := s.SeedUser("alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	valid, err := s.IssueToken("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString(testSecret)
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("some-other-secret-that-is-32-bytes-long"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString(testSecret)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedReason string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "MALFORMED"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "EXPIRED"},
		{"bad signature", "Bearer " + forged, http.StatusUnauthorized, "INVALID_SIGNATURE"},
		{"exp required", "Bearer " + noExp, http.StatusUnauthorized, "MALFORMED"},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "MALFORMED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/account/details", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedReason != "" && !strings.Contains(w.Body.String(), tt.expectedReason) {
				t.Errorf("expected reason %q, got %s", tt.expectedReason, w.Body.String())
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("expected echoed request id, got %q", got)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestListsAccess(t *testing.T) {
	s := newTestServer(t)
	for _, u := range []string{"alice", "bob", "carol"} {
		if err := s.SeedUser(u, u+"@example.com", "password123"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	own := s.SeedList("alice", "Groceries", nil, SeedTask{"milk", true}, SeedTask{"eggs", false})
	shared := s.SeedList("bob", "Trip", []string{"Alice"})
	private := s.SeedList("carol", "Secret", nil)

	token, _ := s.IssueToken("alice")

	w := doJSON(t, s, http.MethodGet, "/list/all", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var lists []api.TaskListResponseDTO
	if err := json.Unmarshal(w.Body.Bytes(), &lists); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lists) != 2 || lists[0].ID != own || lists[1].ID != shared {
		t.Fatalf("unexpected lists: %+v", lists)
	}
	if lists[0].Tasks[0].TaskListTitle != "Groceries" || !lists[0].Tasks[0].Completed {
		t.Errorf("unexpected task: %+v", lists[0].Tasks[0])
	}

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"owned list", "/list/" + itoa(own), http.StatusOK},
		{"shared list", "/list/" + itoa(shared), http.StatusOK},
		{"someone else's list", "/list/" + itoa(private), http.StatusForbidden},
		{"missing list", "/list/999", http.StatusNotFound},
		{"bad id", "/list/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, tt.path, token, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestCreateListAndDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	if err := s.SeedUser("alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, _ := s.IssueToken("alice")

	w := doJSON(t, s, http.MethodPost, "/list/create", token, map[string]string{"title": "Chores"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodDelete, "/account/delete", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	// The token is still well-formed but its subject is gone.
	w = doJSON(t, s, http.MethodGet, "/list/all", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after delete, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(ErrUnknownUser)) {
		t.Errorf("expected UNKNOWN_USER reason, got %s", w.Body.String())
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
