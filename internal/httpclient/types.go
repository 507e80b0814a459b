package httpclient

import (
	"errors"
	"fmt"
)

// HTTPError represents a response that arrived with a non-2xx status code.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

// NoResponseError represents a request that was sent but received no
// response: timeouts, connection resets, DNS failures after dial.
type NoResponseError struct {
	URL string
	Err error
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response from %s: %v", e.URL, e.Err)
}

func (e *NoResponseError) Unwrap() error {
	return e.Err
}

// RequestError represents a failure to construct or set up the request
// before anything went over the wire.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("failed to build request for %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err belongs to this package's transport
// error taxonomy (status, no-response, or request-setup).
func IsTransportError(err error) bool {
	var httpErr *HTTPError
	var noRespErr *NoResponseError
	var reqErr *RequestError
	return errors.As(err, &httpErr) || errors.As(err, &noRespErr) || errors.As(err, &reqErr)
}

// StatusCode returns the HTTP status carried by err, or 0 when the failure
// happened before a response arrived.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
