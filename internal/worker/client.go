package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the external ingestion worker.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type ingestRequest struct {
	DocumentID uint `json:"documentId"`
	JobID      uint `json:"jobId"`
}

// The worker either answers with a bare {status} or wraps it as {data:{status}}.
type ingestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Status string `json:"status"`
	} `json:"data"`
}

// Ingest asks the worker to process documentID for jobID and returns the
// status it reports, as sent.
func (c *Client) Ingest(ctx context.Context, documentID, jobID uint) (string, error) {
	payload, err := json.Marshal(ingestRequest{DocumentID: documentID, JobID: jobID})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("X-Worker-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("worker returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	status := out.Status
	if out.Data != nil && out.Data.Status != "" {
		status = out.Data.Status
	}
	if status == "" {
		return "", fmt.Errorf("worker response has no status")
	}
	return status, nil
}
