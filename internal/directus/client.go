// Package directus provides a REST client for the Directus items API.
// It implements a deep module interface - simple methods hiding the query
// string encoding and response envelope handling.
package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoUser indicates that no authenticated user identity is available.
// State-row operations require one.
var ErrNoUser = errors.New("no authenticated user")

// FetchError is returned for non-2xx HTTP responses. It carries the status
// code and the response body text for diagnosis.
type FetchError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("directus: %s: %s", e.Status, e.Body)
}

// Client is a Directus REST API client.
// It provides high-level methods for querying and mutating CMS collections.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a new Directus client for the given base URL and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the configured CMS base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one request with authentication and decodes the JSON response
// envelope into out (which may be nil for write operations without a result).
// This is a helper method to avoid repeating header and error handling.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &FetchError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(text)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ping checks connectivity to the CMS. Used as the online/offline signal by
// the background sync queue.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/server/ping", nil, nil, nil)
}
