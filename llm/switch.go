package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Model string

const (
	Groq   Model = "groq"
	OpenAI Model = "openai"
	Gemini Model = "gemini"
)

// Provider turns one user message into one assistant reply using a hosted model.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, message string) (string, error)
}

type ProviderOption func(*providerConfig)

type providerConfig struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint overrides the provider's API URL.
func WithEndpoint(url string) ProviderOption {
	return func(c *providerConfig) { c.endpoint = url }
}

func WithProviderHTTPClient(h *http.Client) ProviderOption {
	return func(c *providerConfig) { c.httpClient = h }
}

// NewProvider builds the named provider. An empty model selects the provider default.
func NewProvider(name Model, apiKey, model string, opts ...ProviderOption) (Provider, error) {
	cfg := providerConfig{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch name {
	case Groq:
		return newChatCompletions(string(Groq), groqURL, "llama-3.1-8b-instant", apiKey, model, cfg), nil
	case OpenAI:
		return newChatCompletions(string(OpenAI), openaiURL, "gpt-4o-mini", apiKey, model, cfg), nil
	case Gemini:
		return newGemini(apiKey, model, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported model: %s (supported: %s, %s, %s)", name, Groq, OpenAI, Gemini)
	}
}
