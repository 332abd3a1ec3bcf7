// Package gateway is the HTTP boundary to the remote storefront backend.
//
// Catalog reads never fail outward: transport errors, non-2xx statuses, and
// malformed bodies all degrade to empty results so the browse view renders
// "no data" instead of crashing. Auth and order calls surface errors to the
// caller, carrying the backend message when one is present.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodySize caps response reads; catalog payloads are small.
const maxBodySize = 8 << 20

// Config holds the gateway connection settings.
type Config struct {
	// BaseURL is the backend root, e.g. https://api.example.com.
	BaseURL string
	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
}

// Client talks to the storefront backend over an otel-instrumented transport.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given backend.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// get performs a GET and returns the body for 2xx responses. Non-2xx
// responses become an error carrying the backend message when present.
func (c *Client) get(ctx context.Context, path string, query url.Values, token string) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req)
}

// post sends a JSON body and returns the response body for 2xx responses.
func (c *Client) post(ctx context.Context, path string, body any, token string, header http.Header) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return c.do(req)
}

// put sends a JSON body with the PUT method.
func (c *Client) put(ctx context.Context, path string, body any, token string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverError(resp.StatusCode, body)
	}
	return body, nil
}

// StatusError is a non-2xx backend response. Message carries the backend's
// own failure reason when the body had one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message + " (HTTP " + strconv.Itoa(e.Status) + ")"
	}
	return "HTTP " + strconv.Itoa(e.Status)
}

// serverError extracts the backend message from an error body, falling back
// to a generic "HTTP {status}" message.
func serverError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	// A non-JSON error body is fine; the status alone is the message then.
	_ = json.Unmarshal(body, &payload)
	return &StatusError{Status: status, Message: payload.Message}
}
