package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/debug"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 60 * time.Second

// maxResponseBody bounds how much of a backend response is read.
const maxResponseBody = 16 << 20

// Client sends prepared backend requests. It is shared by all slots and
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport sets the HTTP round tripper, mainly for tests.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// NewClient creates a Client with DefaultTimeout unless overridden.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = c.timeout
	return c
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do sends req and returns the response body of a 2xx answer. Any other
// outcome is returned as a *Failure.
func (c *Client) Do(ctx context.Context, req *Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &Failure{
			Kind:    api.FailureTransport,
			Message: fmt.Sprintf("invalid backend request: %s", err.Error()),
			Cause:   err,
		}
	}
	for name, values := range req.Header {
		httpReq.Header[name] = values
	}
	// net/http takes the Host header from the request, not the header map.
	if host := req.Header.Get("Host"); host != "" {
		httpReq.Host = host
	}

	debug.Log("providers", "backend request", "method", req.Method, "url", req.URL, "body_bytes", len(req.Body))
	debug.Trace("providers", "backend request body", "body", debug.Truncate(string(req.Body), 2048))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err, c.timeout)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody+1))
	if err != nil {
		return nil, MapNetworkError(err, c.timeout)
	}
	debug.Log("providers", "backend response", "url", req.URL, "status", httpResp.StatusCode, "body_bytes", len(body))
	debug.Trace("providers", "backend response body", "body", debug.Truncate(string(body), 2048))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp.StatusCode, body)
	}
	// A cut-off body would decode as garbage and be reported as output.
	if len(body) > maxResponseBody {
		return nil, &Failure{
			Kind:       api.FailureBackend,
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("response body exceeds %d bytes", maxResponseBody),
		}
	}
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
