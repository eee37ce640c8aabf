// Package apiclient talks to the external SpotnSort REST backend that owns
// reports and accounts. Every call is a single request: no retry, no caching.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"spotnsort/metrics"
	"spotnsort/models"
	"strings"
	"time"

	"github.com/apex/log"
)

const maxErrorBody = 4096

// Client is a thin JSON client over the backend base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (e.g. https://host/api)
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own http.Client
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// do sends body (if any) as JSON and decodes a 2xx response into out (if any).
// Transport failures and non-2xx responses become *models.NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveUpstream(op, started, err) }()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warnf("[apiclient] %s %s failed: %v", method, path, err)
		return &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.WithFields(log.Fields{
			"op":     op,
			"status": resp.StatusCode,
		}).Warn("[apiclient] backend returned an error status")
		return &models.NetworkError{Op: op, StatusCode: resp.StatusCode, Message: upstreamMessage(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// upstreamMessage pulls a human message out of an error body, verbatim
func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
