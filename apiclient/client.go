package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-case-portal/internal/errors"
)

const maxResponseBody = 10 << 20

// Client makes JSON calls against the backend. Every call goes through the
// refreshing Transport.
type Client struct {
	baseURL   string
	http      *http.Client
	refresher *Refresher
}

// New creates a Client for the API rooted at baseURL, e.g.
// "http://127.0.0.1:8000/api".
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	o := newOptions(opts)
	baseURL = strings.TrimSuffix(baseURL, "/")
	refresher := newRefresher(baseURL+o.refreshPath, creds, o)
	return &Client{
		baseURL:   baseURL,
		refresher: refresher,
		http: &http.Client{
			Transport: newTransport(creds, refresher, o),
			Timeout:   o.timeout,
		},
	}
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient exposes the underlying client for callers that need to send
// something other than JSON. Its requests are still intercepted.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Refresher returns the refresher shared by every request of this client.
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// Do sends body as JSON (when not nil) to path and decodes a 2xx response
// into out (when not nil). A non-2xx response is returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, errors.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// PathWithQuery appends the non-empty values of query to path.
func PathWithQuery(path string, query url.Values) string {
	for k, vs := range query {
		kept := vs[:0]
		for _, v := range vs {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			query.Del(k)
		} else {
			query[k] = kept
		}
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
