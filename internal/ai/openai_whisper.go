package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// WhisperProvider implements SpeechProvider using OpenAI Whisper.
type WhisperProvider struct {
	apiKey  string
	baseURL string
}

// NewWhisperProvider creates a new Whisper speech-to-text provider.
func NewWhisperProvider(apiKey, baseURL string) *WhisperProvider {
	return &WhisperProvider{apiKey: apiKey, baseURL: baseURL}
}

// TranscribeAudio writes the audio to a scratch file, submits it to Whisper,
// and returns the transcribed text. The scratch file is removed on every
// path, success or failure. Empty or whitespace-only transcriptions are
// reported as ErrEmptyTranscription.
func (p *WhisperProvider) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	if len(audioData) == 0 {
		return "", &UpstreamError{Provider: "whisper", Message: "audio data is empty"}
	}

	scratch, err := os.CreateTemp("", "cereal-audio-*.m4a")
	if err != nil {
		return "", fmt.Errorf("create scratch audio file: %w", err)
	}
	scratchPath := scratch.Name()
	defer os.Remove(scratchPath)

	if _, err := scratch.Write(audioData); err != nil {
		scratch.Close()
		return "", fmt.Errorf("write scratch audio file: %w", err)
	}
	if err := scratch.Close(); err != nil {
		return "", fmt.Errorf("close scratch audio file: %w", err)
	}

	client := newOpenAIClient(p.apiKey, p.baseURL)
	const maxRetries = 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    openai.Whisper1,
			FilePath: scratchPath,
		})
		if err == nil {
			if strings.TrimSpace(resp.Text) == "" {
				return "", ErrEmptyTranscription
			}
			return resp.Text, nil
		}

		lastErr = err
		shouldRetry, waitTime := classifyOpenAIError(err)
		if !shouldRetry {
			return "", &UpstreamError{Provider: "whisper", StatusCode: upstreamStatus(err), Message: err.Error(), Err: err}
		}

		logger.Get().Warn("Whisper API error, retrying",
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
		Provider:   "whisper",
		StatusCode: upstreamStatus(lastErr),
		Message:    fmt.Sprintf("exhausted %d retries: %v", maxRetries, lastErr),
		Err:        lastErr,
	}
}
