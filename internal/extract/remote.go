package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/easel-ai/easel/internal/log"
)

// Remote talks to a Firecrawl-style extraction API.
type Remote struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     log.Logger
}

// NewRemote creates a Remote extractor.
func NewRemote(baseURL, apiKey string, timeout time.Duration, logger log.Logger) (*Remote, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("extraction service base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("extraction service API key is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Remote{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type extractRequest struct {
	URLs   []string `json:"urls"`
	Prompt string   `json:"prompt,omitempty"`
	Schema string   `json:"schema,omitempty"`
}

type mapRequest struct {
	URL string `json:"url"`
}

// Extract asks the service to pull structured records from the URLs.
// A response with Success=false is returned as-is, not as an error:
// the caller decides how to surface structured failures.
func (r *Remote) Extract(ctx context.Context, urls []string, prompt, schemaHint string) (*ExtractResult, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one URL is required")
	}

	req := extractRequest{URLs: urls, Prompt: prompt, Schema: schemaHint}

	var result ExtractResult
	if err := r.makeRequest(ctx, r.baseURL+"/v1/extract", req, &result); err != nil {
		return nil, fmt.Errorf("extract request failed: %w", err)
	}

	if !result.Success {
		r.logger.Warn("extraction service reported failure",
			"urls", urls,
			"error", result.Error)
	}

	return &result, nil
}

// MapURL asks the service for all URLs nested under the website root.
func (r *Remote) MapURL(ctx context.Context, url string) (*MapResult, error) {
	if url == "" {
		return nil, fmt.Errorf("URL is required")
	}

	var result MapResult
	if err := r.makeRequest(ctx, r.baseURL+"/v1/map", mapRequest{URL: url}, &result); err != nil {
		return nil, fmt.Errorf("map request failed: %w", err)
	}

	if !result.Success {
		r.logger.Warn("extraction service reported map failure",
			"url", url,
			"error", result.Error)
	}

	return &result, nil
}

func (r *Remote) makeRequest(ctx context.Context, url string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("extraction API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
