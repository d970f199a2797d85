// Package transport fetches raw tile bytes from a locator.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Response struct {
	Data        []byte
	ContentType string
}

type Transport interface {
	Fetch(ctx context.Context, locator string) (*Response, error)
}

// Func adapts a plain function to Transport.
type Func func(ctx context.Context, locator string) (*Response, error)

func (f Func) Fetch(ctx context.Context, locator string) (*Response, error) {
	return f(ctx, locator)
}

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	Locator    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.Locator)
}

type HTTPTransport struct {
	client  *http.Client
	headers http.Header
}

var _ Transport = (*HTTPTransport)(nil)

type Option func(*HTTPTransport)

// WithClient replaces the default client, e.g. to route through a proxy.
func WithClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

func WithHeader(key, value string) Option {
	return func(t *HTTPTransport) {
		if value != "" {
			t.headers.Set(key, value)
		}
	}
}

func WithUserAgent(ua string) Option {
	return WithHeader("User-Agent", ua)
}

func NewHTTPTransport(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Fetch(ctx context.Context, locator string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range t.headers {
		req.Header[k] = v
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Locator: locator, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile data: %w", err)
	}

	return &Response{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
