// Package backend is the REST client for the telemetry backend that serves
// call rows and per-story aggregates.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"observatory/app/interfaces"
)

// Default JSONPath expressions of the row arrays in response envelopes
const (
	DefaultRowsPath  = "$.rows"
	DefaultCallsPath = "$.calls"
)

// DefaultTimeout is the per-request timeout used when none is configured
const DefaultTimeout = 30 * time.Second

// MaxResponseSize bounds the body read from one backend response
const MaxResponseSize = 256 * 1024 * 1024

var (
	ErrNotFound     = errors.New("not found")
	ErrBadResponse  = errors.New("unexpected response")
	ErrTokenExpired = errors.New("API token expired")

	ErrResponseTooLarge = errors.New("response too large")
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Is matches ErrNotFound for 404 responses
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config configures a Client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RowsPath  string
	CallsPath string

	// Token is sent as a bearer token when set
	Token string

	// MaxResponseSize overrides the package MaxResponseSize when positive
	MaxResponseSize int64
}

// Response is a row array plus the optional precomputed summary
type Response struct {
	Rows    []interfaces.Row `json:"rows"`
	Summary map[string]any   `json:"summary,omitempty"`
}

// Client talks to the backend REST API
type Client struct {
	baseURL   string
	client    *http.Client
	rowsPath  jp.Expr
	callsPath jp.Expr

	token   string
	expires time.Time
	maxBody int64
}

// NewClient creates a client for cfg.BaseURL
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", base, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = MaxResponseSize
	}
	if cfg.RowsPath == "" {
		cfg.RowsPath = DefaultRowsPath
	}
	if cfg.CallsPath == "" {
		cfg.CallsPath = DefaultCallsPath
	}

	rowsPath, err := jp.ParseString(cfg.RowsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid rows path %q: %w", cfg.RowsPath, err)
	}
	callsPath, err := jp.ParseString(cfg.CallsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid calls path %q: %w", cfg.CallsPath, err)
	}

	c := &Client{
		baseURL:   base,
		client:    &http.Client{Timeout: cfg.Timeout},
		rowsPath:  rowsPath,
		callsPath: callsPath,
		token:     strings.TrimSpace(cfg.Token),
		maxBody:   cfg.MaxResponseSize,
	}
	if info, ok := ParseToken(c.token); ok {
		c.expires = info.Expires
	}
	return c, nil
}

// TokenExpires returns the expiry of a JWT API token, or the zero time for
// no token, an opaque token or one without an exp claim.
func (c *Client) TokenExpires() time.Time {
	return c.expires
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetCalls fetches /api/calls
func (c *Client) GetCalls(ctx context.Context) (*Response, error) {
	doc, err := c.get(ctx, "/api/calls")
	if err != nil {
		return nil, err
	}
	return envelope(doc, c.callsPath)
}

// GetStory fetches /api/stories/:id
func (c *Client) GetStory(ctx context.Context, id string) (*Response, error) {
	doc, err := c.get(ctx, "/api/stories/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return envelope(doc, c.rowsPath)
}

// GetCall fetches the full record of one call from /api/stories/calls/:id
func (c *Client) GetCall(ctx context.Context, callID string) (interfaces.Row, error) {
	doc, err := c.get(ctx, "/api/stories/calls/"+url.PathEscape(callID))
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("call %q: expected an object, got %T: %w", callID, doc, ErrBadResponse)
	}
	if inner, ok := obj["call"].(map[string]any); ok {
		obj = inner
	}
	return interfaces.Row(obj), nil
}

func (c *Client) get(ctx context.Context, path string) (any, error) {
	if !c.expires.IsZero() && time.Now().After(c.expires) {
		return nil, fmt.Errorf("expired at %s: %w", c.expires.Format(time.RFC3339), ErrTokenExpired)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("response larger than %d bytes: %w", c.maxBody, ErrResponseTooLarge)
	}
	slog.Debug("backend request", "path", path, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}

	doc, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return doc, nil
}

// statusError decodes an error envelope of the form
// {"error": {"code": "...", "message": "..."}} or {"error": "..."}
func statusError(status int, body []byte) error {
	se := &StatusError{StatusCode: status}
	doc, err := oj.Parse(body)
	if err != nil {
		se.Message = strings.TrimSpace(string(body))
		return se
	}
	obj, _ := doc.(map[string]any)
	switch e := obj["error"].(type) {
	case map[string]any:
		se.Code, _ = e["code"].(string)
		se.Message, _ = e["message"].(string)
	case string:
		se.Message = e
	default:
		se.Message, _ = obj["message"].(string)
	}
	return se
}

// envelope extracts the row array selected by expr and the summary object.
// A bare top-level array is accepted as the row array.
func envelope(doc any, expr jp.Expr) (*Response, error) {
	if arr, ok := doc.([]any); ok {
		rows, err := toRows(arr)
		if err != nil {
			return nil, err
		}
		return &Response{Rows: rows}, nil
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object or array, got %T: %w", doc, ErrBadResponse)
	}

	resp := &Response{Rows: []interfaces.Row{}}
	if summary, ok := obj["summary"].(map[string]any); ok {
		resp.Summary = summary
	}

	results := expr.Get(doc)
	if len(results) == 0 {
		return resp, nil
	}
	arr, ok := results[0].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must select an array, got %T: %w", expr, results[0], ErrBadResponse)
	}
	rows, err := toRows(arr)
	if err != nil {
		return nil, err
	}
	resp.Rows = rows
	return resp, nil
}

func toRows(arr []any) ([]interfaces.Row, error) {
	rows := make([]interfaces.Row, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d is %T, not an object: %w", i, item, ErrBadResponse)
		}
		rows = append(rows, interfaces.Row(obj))
	}
	return rows, nil
}
