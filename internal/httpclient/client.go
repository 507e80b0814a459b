// Package httpclient provides HTTP client functionality for POS API operations
package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (50MB)
	MaxResponseSize = 50 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "pos-sync-server/1.0"
)

// Client is an interface for HTTP operations against POS APIs
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client
type Client interface {
	// Get performs an HTTP GET request with the given headers and returns
	// the response body. Failures are returned as typed errors from this
	// package; the client never retries.
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client  *http.Client
	timeout time.Duration
}

// NewDefaultClient creates a new default HTTP client with the specified timeout.
// If timeout is 0, uses DefaultTimeout.
func NewDefaultClient(timeout time.Duration) Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs an HTTP GET request
func (c *DefaultClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// The request went out but nothing usable came back: timeout,
		// connection refused, reset, etc.
		return nil, &NoResponseError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewHTTPError(resp.StatusCode, url, resp.Status)
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, NewHTTPError(resp.StatusCode, url, "response exceeds maximum allowed size")
	}

	// Read response body with size limit; +1 to detect if limit exceeded
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, &NoResponseError{URL: url, Err: err}
	}

	if int64(len(body)) > MaxResponseSize {
		return nil, NewHTTPError(resp.StatusCode, url, "response exceeds maximum allowed size")
	}

	return body, nil
}
