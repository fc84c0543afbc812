// Package remote talks to the caregiving REST service and adapts its
// payloads into agenda items.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/session"
)

// Default connection settings.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second
)

const maxErrorBody = 64 << 10

var (
	// ErrNoSession is returned before any request when no credential is stored.
	ErrNoSession = errors.New("invalid session: log in to continue")
	// ErrUnauthorized is matched by HTTPError for 401 and 403 responses.
	ErrUnauthorized = errors.New("session rejected by the server: log in again")
)

// HTTPError is a non-success response. Its message is the response body, or
// "HTTP <status>" when the body is empty.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match rejected credentials.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Credentials supplies the stored Basic credential. *session.Session satisfies it.
type Credentials interface {
	Basic() string
}

// Backend is everything the application needs from the remote service.
// Client and Mock both implement it.
type Backend interface {
	session.Authenticator
	CreateTask(ctx context.Context, it *item.Item) error
	ListTasks(ctx context.Context, fallbackYear int) ([]item.Item, error)
	LookupElderly(ctx context.Context) (*Elderly, error)
	RegisterElderly(ctx context.Context, form ElderlyForm) (*Elderly, error)
}

// Client is the HTTP implementation of Backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient creates a client that authenticates with creds.
func NewClient(opts Options, creds Credentials) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, http: hc, creds: creds}
}

// request describes one call. Auth is the credential to send; empty means
// the call is anonymous.
type request struct {
	method string
	path   string
	body   any
	auth   string
}

// authorized returns the stored credential or ErrNoSession.
func (c *Client) authorized() (string, error) {
	if c.creds == nil {
		return "", ErrNoSession
	}
	basic := c.creds.Basic()
	if basic == "" {
		return "", ErrNoSession
	}
	return basic, nil
}

// do performs the request and returns the response body. A 204 yields a nil body.
func (c *Client) do(ctx context.Context, r request) ([]byte, int, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth != "" {
		req.Header.Set("Authorization", "Basic "+r.auth)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		debuglog.Error("remote "+r.method+" "+r.path, err)
		return nil, 0, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	debuglog.Log("HTTP", map[string]any{
		"method":   r.method,
		"path":     r.path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(text))
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, resp.StatusCode, &HTTPError{Status: resp.StatusCode, Message: msg}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.StatusCode, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// idString accepts a JSON string or number and returns it as text.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
