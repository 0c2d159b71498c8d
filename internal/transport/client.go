// Package transport wraps outbound calls to the remote auth API: base
// address, JSON headers, shared cookie jar, bearer injection from the
// credentials store and the global 401 teardown hook.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// FallbackMessage is returned to callers when the server gives no usable
// message for a failure.
const FallbackMessage = "An unexpected error occurred"

// TokenSource yields the current bearer token. The adapter reads it per
// request and never keeps its own copy.
type TokenSource interface {
	Token() string
}

// Response is the decoded API reply. The service wraps every payload in a
// {success, message, data} envelope; Body keeps the raw bytes for the few
// endpoints that answer outside the envelope.
type Response struct {
	StatusCode int
	Success    bool
	Message    string
	Data       json.RawMessage
	Body       json.RawMessage
}

// APIError is any non-2xx reply, carrying the server's message when it
// sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// UserMessage is what a screen should show for err: the server message for
// API errors, the generic fallback for everything else.
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = FallbackMessage
	}
	if apiErr, ok := err.(*APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// NewClient builds an adapter for the given base URL. timeout of zero
// means no client-enforced timeout, matching the browser behavior.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		tokens: tokens,
	}, nil
}

// SetUnauthorizedHandler registers the hook run on any 401 response. Wired
// once at startup by the session store.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// PrimeCSRF asks the service to set its CSRF cookie before a login
// attempt. The cookie lands in the shared jar.
func (c *Client) PrimeCSRF(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/sanctum/csrf-cookie", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{StatusCode: res.StatusCode, Body: raw}

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if len(raw) > 0 && json.Unmarshal(raw, &envelope) == nil {
		resp.Success = envelope.Success
		resp.Message = envelope.Message
		resp.Data = envelope.Data
	}

	if res.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return resp, &APIError{StatusCode: res.StatusCode, Message: resp.Message}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return resp, &APIError{StatusCode: res.StatusCode, Message: resp.Message}
	}

	return resp, nil
}
