package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tnnandi/biom3-docker/pkg/types"
)

const (
	// requestTimeout bounds predict calls. Pipeline runs take minutes, so
	// this mirrors the 600s the service itself allows per request.
	requestTimeout = 600 * time.Second

	// statusTimeout bounds the cheap health/info calls
	statusTimeout = 30 * time.Second

	defaultPollInterval = 5 * time.Second
)

// Client talks to a deployed BioM3 service
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		pollInterval: defaultPollInterval,
	}
}

// Health checks the health of the service
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var health types.HealthResponse
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return nil, err
	}

	return &health, nil
}

// Info returns the service description
func (c *Client) Info(ctx context.Context) (*types.ServiceInfo, error) {
	var info types.ServiceInfo
	if err := c.getJSON(ctx, "/info", &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// Predict runs the pipeline remotely over the given prompts
func (c *Client) Predict(ctx context.Context, prompts []string, params types.PipelineParams) (*types.PredictResponse, error) {
	payload := types.PredictRequest{
		Prompts: prompts,
		Config:  &params,
	}

	var result types.PredictResponse
	if err := c.postJSON(ctx, "/predict", payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// PredictBatch submits several predict requests in one call
func (c *Client) PredictBatch(ctx context.Context, requests []types.PredictRequest) (*types.BatchResponse, error) {
	payload := types.BatchRequest{Requests: requests}

	var result types.BatchResponse
	if err := c.postJSON(ctx, "/predict/batch", payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// WaitForService polls the health endpoint until the service reports
// healthy or maxWait elapses. Cold starts on Cloud Run can take a while
// when the container has to pull model weights.
func (c *Client) WaitForService(ctx context.Context, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)

	for {
		if health, err := c.Health(ctx); err == nil && health.Status == "healthy" {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("service not ready after %s", maxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// HTTP helper methods

func (c *Client) getJSON(ctx context.Context, path string, result interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, result interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// apiError surfaces the JSON error payload the service attaches to
// non-200 responses
func apiError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		if payload.Message != "" {
			return fmt.Errorf("service returned status %d: %s: %s", resp.StatusCode, payload.Error, payload.Message)
		}
		return fmt.Errorf("service returned status %d: %s", resp.StatusCode, payload.Error)
	}

	return fmt.Errorf("service returned status %d", resp.StatusCode)
}
