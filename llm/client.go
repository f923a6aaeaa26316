package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mentorai/tutor/config"
	"mentorai/tutor/types"
)

const maxResponseBytes = 1 << 20

// Client sends a single user message to the completion endpoint and returns
// the assistant's reply. It does not retry and sends no history.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        config.Logger.WithField("endpoint", endpoint),
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	jsonData, err := json.Marshal(types.AIChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Endpoint: c.endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(body))
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   detail,
		}).Warn("Completion endpoint returned an error status")
		return "", &RequestFailedError{StatusCode: resp.StatusCode, Status: resp.Status, Detail: detail}
	}

	var out types.AIChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &RequestFailedError{StatusCode: resp.StatusCode, Status: resp.Status, Detail: "invalid response body: " + err.Error()}
	}
	if out.Error != "" {
		return "", &RequestFailedError{StatusCode: resp.StatusCode, Status: resp.Status, Detail: out.Error}
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", &RequestFailedError{StatusCode: resp.StatusCode, Status: resp.Status, Detail: "empty response"}
	}

	return out.Response, nil
}
