package architecture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single generation call. Generation is slow, so
	// this is generous, but it is never left to transport defaults.
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 2048
)

var _ Generator = (*Client)(nil)

// Client calls the architecture-generation service over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a client posting to url. A non-positive timeout falls back
// to DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClientWithHTTP(url, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP uses hc for transport. Unless hc sets its own
// CheckRedirect, redirects are not followed and a 3xx from the service comes
// back as a StatusError.
func NewClientWithHTTP(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	if hc.CheckRedirect == nil {
		hc.CheckRedirect = noRedirect
	}
	return &Client{http: hc, baseURL: url}
}

func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func (c *Client) URL() string { return c.baseURL }

// Generate posts req to the service and decodes its answer.
//
// Errors are *UnavailableError when the service cannot be reached,
// *StatusError for any non-200 answer and ErrInvalidResponse when a 200 body
// cannot be decoded.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("architecture: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("architecture: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, newUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newUnavailableError(err)
	}
	var out *Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}
	return out, nil
}
