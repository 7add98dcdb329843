package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTransport performs calls with net/http. Availability is delegated to
// the caller-supplied check, typically network.Reader.Available.
type HTTPTransport struct {
	client    *http.Client
	available func() bool
	userAgent string
}

// NewHTTPTransport creates a transport whose client gives up after timeout.
// A nil available func means always available.
func NewHTTPTransport(timeout time.Duration, available func() bool, userAgent string) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = "presence-sensor"
	}
	return &HTTPTransport{
		client:    &http.Client{Timeout: timeout},
		available: available,
		userAgent: userAgent,
	}
}

// SetTimeout changes the client timeout. Not safe to call concurrently with Do.
func (t *HTTPTransport) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		t.client.Timeout = timeout
	}
}

// Available reports whether the network is associated.
func (t *HTTPTransport) Available() bool {
	if t.available == nil {
		return true
	}
	return t.available()
}

// Do sends the request and returns the status code.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (int, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// Drain a little so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

var _ Transport = (*HTTPTransport)(nil)
