package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModel          = "eleven_turbo_v2_5"

	// synthChunkSize is the read size used while buffering the streamed
	// audio body.
	synthChunkSize = 1024
)

// ElevenLabsProvider implements SpeechSynthesizer against the ElevenLabs
// text-to-speech API. The streamed audio is buffered into one in-memory
// blob before returning.
type ElevenLabsProvider struct {
	apiKey     string
	voiceID    string
	stability  float64
	similarity float64
	baseURL    string
	httpClient *http.Client
}

// NewElevenLabsProvider creates a synthesizer bound to a fixed voice with
// the given voice-quality parameters.
func NewElevenLabsProvider(apiKey, voiceID string, stability, similarity float64) *ElevenLabsProvider {
	return &ElevenLabsProvider{
		apiKey:     apiKey,
		voiceID:    voiceID,
		stability:  stability,
		similarity: similarity,
		baseURL:    defaultElevenLabsBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize posts the text to ElevenLabs and buffers the full audio stream.
// A non-2xx initial response surfaces the service's status code and message;
// a mid-stream read failure is also an error rather than truncated audio.
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: voiceSettings{
			Stability:       p.stability,
			SimilarityBoost: p.similarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", p.baseURL, p.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Provider: "elevenlabs", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Provider:   "elevenlabs",
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	var audio bytes.Buffer
	chunk := make([]byte, synthChunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			audio.Write(chunk[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &UpstreamError{
				Provider: "elevenlabs",
				Message:  fmt.Sprintf("audio stream interrupted: %v", readErr),
				Err:      readErr,
			}
		}
	}

	if audio.Len() == 0 {
		return nil, &BadResponseError{Provider: "elevenlabs", Reason: "empty audio stream"}
	}
	return audio.Bytes(), nil
}

// readErrorMessage extracts a best-effort message from an error response
// body, which ElevenLabs returns as JSON but may be anything.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}
	var parsed struct {
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	if json.Unmarshal(data, &parsed) == nil && parsed.Detail.Message != "" {
		return parsed.Detail.Message
	}
	return strings.TrimSpace(string(data))
}
