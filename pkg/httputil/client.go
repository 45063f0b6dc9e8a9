package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/assys/brickguide/pkg/observability"
)

// Client defaults.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = 250 * time.Millisecond
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client sends JSON requests to one server.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Attempts int
	Delay    time.Duration
}

// NewClient returns a client for baseURL with default timeout and retries.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Get requests path and decodes a JSON response into out, if out is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON sends in as a JSON body to path and decodes the response into out,
// if out is non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	target := c.BaseURL + path
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	hooks := observability.HTTP()

	return Retry(ctx, c.Attempts, c.Delay, func() error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rd)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		hooks.OnRequest(ctx, method, u.Host, u.Path)
		start := time.Now()
		resp, err := c.HTTP.Do(req)
		if err != nil {
			hooks.OnError(ctx, method, u.Host, u.Path, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			serr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
			if RetryableStatus(resp.StatusCode) {
				return &RetryableError{Err: serr}
			}
			return serr
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}
