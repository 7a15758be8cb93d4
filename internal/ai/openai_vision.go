package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// VisionModel is the default model for scene analysis.
const VisionModel = openai.GPT4oMini

// visionMaxTokens bounds the structured scene description.
const visionMaxTokens = 300

// OpenAIVisionProvider implements VisionProvider using GPT-4o-mini vision
// chat completions.
type OpenAIVisionProvider struct {
	apiKey  string
	baseURL string
	model   string
}

// NewOpenAIVisionProvider creates a new vision provider.
func NewOpenAIVisionProvider(apiKey, baseURL string) *OpenAIVisionProvider {
	return &OpenAIVisionProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   VisionModel,
	}
}

// AnalyzeImage sends the base64-encoded image plus the prompt to the vision
// model and strictly decodes the JSON reply into a VisionAnalysis. A reply
// that violates the documented schema surfaces as a BadResponseError rather
// than a raw decode failure.
func (p *OpenAIVisionProvider) AnalyzeImage(ctx context.Context, imageData []byte, contentType string, prompt string) (*VisionAnalysis, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(imageData))

	req := openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: visionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	client := newOpenAIClient(p.apiKey, p.baseURL)
	const maxRetries = 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return nil, &BadResponseError{Provider: "openai-vision", Reason: "empty completion"}
			}
			return parseVisionAnalysis(resp.Choices[0].Message.Content)
		}

		lastErr = err
		shouldRetry, waitTime := classifyOpenAIError(err)
		if !shouldRetry {
			return nil, &UpstreamError{Provider: "openai-vision", StatusCode: upstreamStatus(err), Message: err.Error(), Err: err}
		}

		logger.Get().Warn("vision API error, retrying",
			zap.Error(err),
			zap.Int("attempt", i+1),
		)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitTime * time.Duration(i+1)):
			}
		}
	}

	return nil, &UpstreamError{
		Provider:   "openai-vision",
		StatusCode: upstreamStatus(lastErr),
		Message:    fmt.Sprintf("exhausted %d retries: %v", maxRetries, lastErr),
		Err:        lastErr,
	}
}

// parseVisionAnalysis decodes the model's JSON reply. Vision models often
// wrap JSON in markdown code fences; those are stripped before decoding.
func parseVisionAnalysis(content string) (*VisionAnalysis, error) {
	cleaned := stripCodeFences(content)

	var analysis VisionAnalysis
	if err := util.DeserializeFromJSONString(cleaned, &analysis); err != nil {
		return nil, &BadResponseError{
			Provider: "openai-vision",
			Reason:   fmt.Sprintf("reply is not the documented JSON object: %v", err),
		}
	}
	if analysis.CurrentStep == "" {
		return nil, &BadResponseError{Provider: "openai-vision", Reason: "missing current_step"}
	}
	if analysis.NextAction == "" {
		return nil, &BadResponseError{Provider: "openai-vision", Reason: "missing next_action"}
	}
	return &analysis, nil
}

// stripCodeFences removes a surrounding ``` or ```json fence, if present.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
