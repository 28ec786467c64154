package unitsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshp123/acwatch/internal/units"
)

const (
	UnitsPath      = "/api/units"
	requestTimeout = 10 * time.Second
)

// Client reads unit snapshots from an acwatch bridge.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: requestTimeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{baseURL: trimmed, httpClient: httpClient}, nil
}

// Fetch performs GET /api/units. Transport errors, non-2xx responses and
// malformed payloads are all returned as errors.
func (c *Client) Fetch(ctx context.Context) ([]units.Snapshot, error) {
	payload, err := c.getBytes(ctx, UnitsPath)
	if err != nil {
		return nil, err
	}
	snapshots, err := units.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", UnitsPath, err)
	}
	return snapshots, nil
}

func (c *Client) getBytes(ctx context.Context, path string) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	return payload, nil
}

// StatusError reports a non-2xx response from the bridge.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
