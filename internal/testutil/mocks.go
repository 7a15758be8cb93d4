package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
)

// --- MockVisionProvider ---

// MockVisionProvider is a mock implementation of ai.VisionProvider. Calls
// counts invocations so tests can assert an external call never happened.
type MockVisionProvider struct {
	AnalyzeImageFunc func(ctx context.Context, imageData []byte, contentType string, prompt string) (*ai.VisionAnalysis, error)
	Calls            atomic.Int64
}

func (m *MockVisionProvider) AnalyzeImage(ctx context.Context, imageData []byte, contentType string, prompt string) (*ai.VisionAnalysis, error) {
	m.Calls.Add(1)
	if m.AnalyzeImageFunc != nil {
		return m.AnalyzeImageFunc(ctx, imageData, contentType, prompt)
	}
	return nil, fmt.Errorf("AnalyzeImage not configured")
}

// --- MockSpeechProvider ---

// MockSpeechProvider is a mock implementation of ai.SpeechProvider.
type MockSpeechProvider struct {
	TranscribeAudioFunc func(ctx context.Context, audioData []byte) (string, error)
}

func (m *MockSpeechProvider) TranscribeAudio(ctx context.Context, audioData []byte) (string, error) {
	if m.TranscribeAudioFunc != nil {
		return m.TranscribeAudioFunc(ctx, audioData)
	}
	return "", fmt.Errorf("TranscribeAudio not configured")
}

// --- MockTextProvider ---

// MockTextProvider is a mock implementation of ai.TextProvider.
type MockTextProvider struct {
	GenerateReplyFunc func(ctx context.Context, systemPrompt string, userText string) (string, error)
}

func (m *MockTextProvider) GenerateReply(ctx context.Context, systemPrompt string, userText string) (string, error) {
	if m.GenerateReplyFunc != nil {
		return m.GenerateReplyFunc(ctx, systemPrompt, userText)
	}
	return "", fmt.Errorf("GenerateReply not configured")
}

// --- MockSynthesizer ---

// MockSynthesizer is a mock implementation of ai.SpeechSynthesizer.
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string) ([]byte, error)
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return nil, fmt.Errorf("Synthesize not configured")
}
