// Package ocr talks to the document OCR service over HTTP.
package ocr

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

const defaultHTTPTimeout = 60 * time.Second

// Client wraps the OCR service's /process endpoint.
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

// NewClient constructs an OCR client for the given base URL.
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

func (c *Client) Process(ctx context.Context, req collaborator.OCRRequest) (collaborator.OCRResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return collaborator.OCRResult{}, fmt.Errorf("marshal ocr request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return collaborator.OCRResult{}, fmt.Errorf("build ocr request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return collaborator.OCRResult{}, fmt.Errorf("call ocr service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return collaborator.OCRResult{}, fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed collaborator.OCRResult
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return collaborator.OCRResult{}, fmt.Errorf("decode ocr response: %w", err)
	}
	return parsed, nil
}
