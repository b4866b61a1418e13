// Package api is the SyncUp REST client. Authentication headers are not set
// here: pass an HTTPClient whose transport is a syncauth.Transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultUserAgent     = "syncup-go/0.1"
	defaultPublicSegment = "/auth/"
)

// RequestIDHeader correlates client calls with backend logs
const RequestIDHeader = "X-Request-ID"

// Config wires the base URL, transport and the session-invalidation hook.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	Logger     *slog.Logger

	// Unauthorized runs when a non-auth endpoint answers 401. Wire it to
	// syncauth.Guard.Invalidate so every caller ends the session the same way.
	Unauthorized func(ctx context.Context)

	// PublicSegment marks auth endpoints: a request URL path containing it
	// never triggers Unauthorized. Use the value given to
	// syncauth.WithPublicPathSegment; defaults to "/auth/".
	PublicSegment string
}

// Client talks to the SyncUp backend
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger        *slog.Logger
	unauthorized  func(ctx context.Context)
	publicSegment string
}

// NewClient validates the configuration and returns a ready-to-use Client.
func NewClient(cfg Config) (*Client, error) {
	normalized, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	segment := cfg.PublicSegment
	if segment == "" {
		segment = defaultPublicSegment
	}
	return &Client{
		baseURL:       normalized,
		httpClient:    httpClient,
		userAgent:     ua,
		logger:        cfg.Logger,
		unauthorized:  cfg.Unauthorized,
		publicSegment: segment,
	}, nil
}

// BaseURL returns the normalized backend URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("api: base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("api: invalid base URL: %w", err)
	}
	if u.Scheme == "" {
		return "", errors.New("api: base URL missing scheme (http/https)")
	}
	if u.Host == "" {
		return "", errors.New("api: base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.New().String())
	return req, nil
}

// do sends one request and decodes a JSON response into out. Calls are never
// retried; failures go back to the caller unmodified.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, slog.LevelWarn, "request failed", req, 0, start, err)
		return &NetworkError{Method: method, Path: path, Cause: err}
	}
	//nolint:errcheck // best-effort cleanup on return
	defer func() { _ = resp.Body.Close() }()

	c.log(ctx, slog.LevelDebug, "request completed", req, resp.StatusCode, start, nil)

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized && !c.isAuthPath(req) && c.unauthorized != nil {
			c.unauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) log(ctx context.Context, level slog.Level, msg string, req *http.Request, status int, start time.Time, err error) {
	if c.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.Duration("latency", time.Since(start)),
	}
	if status != 0 {
		attrs = append(attrs, slog.Int("status", status))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(ctx, level, msg, attrs...)
}

// isAuthPath applies the same rule as syncauth.Authenticator, so a request
// sent without a bearer token never ends the session.
func (c *Client) isAuthPath(req *http.Request) bool {
	return strings.Contains(req.URL.Path, c.publicSegment)
}
