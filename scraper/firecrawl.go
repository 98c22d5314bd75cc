package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"listing_studio/config"
	"listing_studio/retry"
)

const firecrawlDefaultBase = "https://api.firecrawl.dev"

// Extraction job statuses reported by the service.
const (
	firecrawlProcessing = "processing"
	firecrawlCompleted  = "completed"
	firecrawlFailed     = "failed"
	firecrawlCancelled  = "cancelled"
)

// SubmitResult is either inline data or the id of an asynchronous job.
type SubmitResult struct {
	Data  any
	JobID string
}

type StatusResult struct {
	Status string
	Data   any
	Error  string
}

// ExtractionService is the external extraction API.
type ExtractionService interface {
	Submit(ctx context.Context, req ExtractRequest) (SubmitResult, error)
	Status(ctx context.Context, jobID string) (StatusResult, error)
}

// FirecrawlClient talks to the Firecrawl v1 extract endpoints.
type FirecrawlClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFirecrawlClient(cfg config.FirecrawlConfig, client *http.Client) *FirecrawlClient {
	base := cfg.BaseURL
	if base == "" {
		base = firecrawlDefaultBase
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &FirecrawlClient{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

type firecrawlEnvelope struct {
	Success *bool           `json:"success"`
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (e firecrawlEnvelope) failure() string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	return "service reported failure"
}

func (c *FirecrawlClient) Submit(ctx context.Context, extract ExtractRequest) (SubmitResult, error) {
	if c.apiKey == "" {
		return SubmitResult{}, retry.Permanent(fmt.Errorf("FIRECRAWL_API_KEY not set"))
	}

	body, err := json.Marshal(extract)
	if err != nil {
		return SubmitResult{}, retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, retry.Permanent(err)
	}
	c.setHeaders(req)

	env, err := c.do(req)
	if err != nil {
		return SubmitResult{}, err
	}
	if env.Success != nil && !*env.Success {
		return SubmitResult{}, retry.Permanent(fmt.Errorf("firecrawl extract rejected: %s", env.failure()))
	}

	data, err := decodeData(env.Data)
	if err != nil {
		return SubmitResult{}, retry.Permanent(err)
	}
	if data != nil {
		return SubmitResult{Data: data}, nil
	}
	if env.ID != "" {
		return SubmitResult{JobID: env.ID}, nil
	}
	return SubmitResult{}, retry.Permanent(fmt.Errorf("firecrawl response carried neither data nor job id"))
}

func (c *FirecrawlClient) Status(ctx context.Context, jobID string) (StatusResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/extract/"+jobID, nil)
	if err != nil {
		return StatusResult{}, err
	}
	c.setHeaders(req)

	env, err := c.do(req)
	if err != nil {
		return StatusResult{}, err
	}

	data, err := decodeData(env.Data)
	if err != nil {
		return StatusResult{}, err
	}
	result := StatusResult{Status: strings.ToLower(env.Status), Data: data}
	if env.Success != nil && !*env.Success && result.Status == "" {
		result.Status = firecrawlFailed
	}
	if result.Status == firecrawlFailed || result.Status == firecrawlCancelled {
		result.Error = env.failure()
	}
	return result, nil
}

func (c *FirecrawlClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

// do executes req and decodes the envelope. 4xx responses other than 408 and
// 429 are marked permanent; everything else is left retryable.
func (c *FirecrawlClient) do(req *http.Request) (firecrawlEnvelope, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return firecrawlEnvelope{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return firecrawlEnvelope{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("firecrawl %s %s failed %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncate(string(respBody), 300))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
			return firecrawlEnvelope{}, retry.Permanent(err)
		}
		return firecrawlEnvelope{}, err
	}

	var env firecrawlEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return firecrawlEnvelope{}, fmt.Errorf("decode firecrawl response: %w", err)
	}
	return env, nil
}

func decodeData(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode firecrawl data: %w", err)
	}
	if rootData(v) == nil {
		return nil, nil
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
