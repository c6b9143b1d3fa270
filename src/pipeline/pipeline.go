// Package pipeline is the boundary to the external generation pipeline service.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"placement_studio/pkg"
	"placement_studio/src/model"
)

// Path is the pipeline endpoint relative to the service base URL
const Path = "/api/placement/pipeline"

// ErrPipeline wraps every failure to obtain a batch from the pipeline
var ErrPipeline = errors.New("pipeline request failed")

// Pipeline produces one batch of placements per call
type Pipeline interface {
	Run(ctx context.Context, req pkg.PipelineRequest) (*pkg.PipelineResponse, error)
}

// Client calls the pipeline over HTTP. It makes exactly one attempt per Run.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service described by cfg
func NewClient(cfg model.PipelineConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Run posts req and decodes the pipeline's response
func (c *Client) Run(ctx context.Context, req pkg.PipelineRequest) (*pkg.PipelineResponse, error) {
	body, err := sonic.ConfigStd.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrPipeline, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrPipeline, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrPipeline, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrPipeline, resp.StatusCode, detail(data))
	}

	var out pkg.PipelineResponse
	if err := sonic.ConfigStd.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrPipeline, err)
	}
	return &out, nil
}

// detail extracts the service's error message, falling back to a body excerpt
func detail(body []byte) string {
	var parsed struct {
		Detail any `json:"detail"`
	}
	if err := sonic.ConfigStd.Unmarshal(body, &parsed); err == nil {
		if s, ok := parsed.Detail.(string); ok && s != "" {
			return s
		}
	}

	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}
	if excerpt == "" {
		return "empty response"
	}
	return excerpt
}
