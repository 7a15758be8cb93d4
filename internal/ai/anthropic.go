package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"go.uber.org/zap"
)

// AnthropicProvider implements TextProvider using Claude. Selected when the
// deployment prefers Claude for coaching replies over the default
// OpenAI-compatible backend.
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a new AnthropicProvider with the given API key.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		client: client,
		model:  anthropic.ModelClaude3_5Sonnet20241022,
	}
}

// GenerateReply submits the coaching system prompt and the user's
// transcribed text to Claude and returns the reply text.
func (p *AnthropicProvider) GenerateReply(ctx context.Context, systemPrompt string, userText string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(userText),
				},
			},
		},
	}

	resp, err := p.createMessageWithRetry(ctx, params)
	if err != nil {
		return "", err
	}
	return extractTextContent(resp)
}

// createMessageWithRetry wraps the Claude API call with exponential backoff.
func (p *AnthropicProvider) createMessageWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	const maxRetries = 5
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := p.client.Messages.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		shouldRetry, waitTime, status := classifyAnthropicError(err)
		if !shouldRetry {
			return nil, &UpstreamError{Provider: "claude", StatusCode: status, Message: err.Error(), Err: err}
		}

		logger.Get().Warn("claude API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		backoff := waitTime * time.Duration(i+1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, &UpstreamError{
		Provider: "claude",
		Message:  fmt.Sprintf("exhausted %d retries: %v", maxRetries, lastErr),
		Err:      lastErr,
	}
}

// classifyAnthropicError determines whether to retry, the base wait
// duration, and the upstream status code.
func classifyAnthropicError(err error) (shouldRetry bool, waitTime time.Duration, status int) {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable:
			return true, 2 * time.Second, apiErr.StatusCode
		default:
			return false, 0, apiErr.StatusCode
		}
	}
	return false, 0, 0
}

// extractTextContent returns the concatenated text blocks from a Claude response.
func extractTextContent(msg *anthropic.Message) (string, error) {
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", &BadResponseError{Provider: "claude", Reason: "no text content in response"}
	}
	return text, nil
}
