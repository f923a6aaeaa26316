package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	groqURL   = "https://api.groq.com/openai/v1/chat/completions"
	openaiURL = "https://api.openai.com/v1/chat/completions"
)

// chatCompletions speaks the OpenAI chat-completions protocol, which Groq also serves.
type chatCompletions struct {
	name       string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func newChatCompletions(name, defaultURL, defaultModel, apiKey, model string, cfg providerConfig) *chatCompletions {
	if model == "" {
		model = defaultModel
	}
	endpoint := defaultURL
	if cfg.endpoint != "" {
		endpoint = cfg.endpoint
	}
	return &chatCompletions{
		name:       name,
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: cfg.httpClient,
	}
}

func (p *chatCompletions) Name() string  { return p.name }
func (p *chatCompletions) Model() string { return p.model }

func (p *chatCompletions) Generate(ctx context.Context, message string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%s API key not configured", p.name)
	}

	body := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": message,
			},
		},
		"temperature": 0.7,
		"max_tokens":  1024,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return "", fmt.Errorf("%s API error: %s", p.name, strings.TrimSpace(string(errText)))
	}

	var res map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return extractTextFromOpenAIResponse(res)
}

// Extract text from a chat-completions response
func extractTextFromOpenAIResponse(res map[string]interface{}) (string, error) {
	choices, ok := res["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", fmt.Errorf("no choices returned from provider")
	}

	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid choice format")
	}

	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("no message in choice")
	}

	content, ok := message["content"].(string)
	if !ok {
		return "", fmt.Errorf("no content in message")
	}

	return content, nil
}
