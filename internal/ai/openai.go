package ai

import (
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// newOpenAIClient builds a client, honoring an optional base URL override so
// an OpenAI-compatible host (e.g. a local Ollama gateway) can be swapped in.
func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	if baseURL == "" {
		return openai.NewClient(apiKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

// classifyOpenAIError determines whether an OpenAI API error is retryable
// and the base wait duration before the next attempt.
func classifyOpenAIError(err error) (shouldRetry bool, waitTime time.Duration) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return true, 2 * time.Second
		case 500, 502, 503:
			return true, 2 * time.Second
		default:
			return false, 0
		}
	}
	return false, 0
}

// upstreamStatus extracts the HTTP status from an OpenAI API error, or 0.
func upstreamStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	return 0
}
