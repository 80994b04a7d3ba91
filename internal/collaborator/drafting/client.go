// Package drafting talks to the draft generation service over HTTP.
package drafting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grantflow/internal/collaborator"
)

const defaultHTTPTimeout = 120 * time.Second

// Client wraps the drafting service's /generate endpoint. Draft generation
// is the slowest collaborator call, hence the longer default timeout; the
// caller's context still bounds each request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a drafting client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GenerateDraft(ctx context.Context, req collaborator.DraftRequest) (collaborator.DraftResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return collaborator.DraftResult{}, fmt.Errorf("marshal draft request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return collaborator.DraftResult{}, fmt.Errorf("build draft request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return collaborator.DraftResult{}, fmt.Errorf("call drafting service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return collaborator.DraftResult{}, fmt.Errorf("drafting service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed collaborator.DraftResult
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return collaborator.DraftResult{}, fmt.Errorf("decode draft response: %w", err)
	}
	return parsed, nil
}
