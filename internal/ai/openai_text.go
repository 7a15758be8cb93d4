package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAITextProvider implements TextProvider using chat completions. With a
// base URL override it also serves OpenAI-compatible hosts such as a local
// Ollama gateway running llama3.2.
type OpenAITextProvider struct {
	apiKey  string
	baseURL string
	model   string
}

// NewOpenAITextProvider creates a text-generation provider. An empty model
// falls back to gpt-4o-mini.
func NewOpenAITextProvider(apiKey, baseURL, model string) *OpenAITextProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAITextProvider{apiKey: apiKey, baseURL: baseURL, model: model}
}

// GenerateReply submits {system prompt, user text} and returns the
// assistant's reply.
func (p *OpenAITextProvider) GenerateReply(ctx context.Context, systemPrompt string, userText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	}

	client := newOpenAIClient(p.apiKey, p.baseURL)
	const maxRetries = 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return "", &BadResponseError{Provider: "openai-text", Reason: "empty completion"}
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		shouldRetry, waitTime := classifyOpenAIError(err)
		if !shouldRetry {
			return "", &UpstreamError{Provider: "openai-text", StatusCode: upstreamStatus(err), Message: err.Error(), Err: err}
		}

		logger.Get().Warn("text API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(waitTime * time.Duration(i+1)):
			}
		}
	}

	return "", &UpstreamError{
		Provider:   "openai-text",
		StatusCode: upstreamStatus(lastErr),
		Message:    fmt.Sprintf("exhausted %d retries: %v", maxRetries, lastErr),
		Err:        lastErr,
	}
}
